package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aiobandojss-lgtm/Educanexo360Back/internal/profile"
	"github.com/aiobandojss-lgtm/Educanexo360Back/server"
	"github.com/aiobandojss-lgtm/Educanexo360Back/store/cache"
)

const version = "0.4.1"

const greetingBanner = `
Educanexo360 cache service
`

var rootCmd = &cobra.Command{
	Use:   "educanexo-cache",
	Short: "The Educanexo360 caching service: TTL cache, invalidation, and admin API",
	Run: func(_cmd *cobra.Command, _args []string) {
		instanceProfile := &profile.Profile{
			Mode:    viper.GetString("mode"),
			Addr:    viper.GetString("addr"),
			Port:    viper.GetInt("port"),
			Config:  viper.GetString("config"),
			Version: version,
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			panic(err)
		}
		setupLogger(instanceProfile)

		cacheConfig, err := loadCacheConfig(instanceProfile)
		if err != nil {
			slog.Error("failed to load cache config", slog.String("error", err.Error()))
			return
		}

		cacheHandle, err := cache.New(cacheConfig)
		if err != nil {
			slog.Error("failed to create cache", slog.String("error", err.Error()))
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		s, err := server.NewServer(ctx, instanceProfile, cacheHandle)
		if err != nil {
			cancel()
			cacheHandle.Close()
			slog.Error("failed to create server", slog.String("error", err.Error()))
			return
		}

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-c
			s.Shutdown(ctx)
			cancel()
		}()

		printGreetings(instanceProfile)

		if err := s.Start(ctx); err != nil {
			if err != http.ErrServerClosed {
				slog.Error("failed to start server", slog.String("error", err.Error()))
				cancel()
			}
		}

		// Wait for CTRL-C.
		<-ctx.Done()
	},
}

// cacheFileConfig is the optional `cache:` section of the config file.
type cacheFileConfig struct {
	MaxEntries           int                        `mapstructure:"max_entries"`
	DefaultTTLSeconds    int                        `mapstructure:"default_ttl_seconds"`
	SweepIntervalSeconds int                        `mapstructure:"sweep_interval_seconds"`
	DisableCoalescing    bool                       `mapstructure:"disable_coalescing"`
	Types                map[string]cacheTypeConfig `mapstructure:"types"`
}

type cacheTypeConfig struct {
	TTLSeconds  int    `mapstructure:"ttl_seconds"`
	Description string `mapstructure:"description"`
}

// loadCacheConfig builds the cache configuration from the profile's
// environment knobs, overridden by the config file when one is given. A type
// with ttl_seconds 0 is a deliberate "never cache this type".
func loadCacheConfig(p *profile.Profile) (cache.Config, error) {
	cfg := cache.Config{
		MaxEntries:        p.CacheMaxEntries,
		DefaultTTL:        time.Duration(p.CacheDefaultTTLSeconds) * time.Second,
		SweepInterval:     time.Duration(p.CacheSweepIntervalSeconds) * time.Second,
		DisableCoalescing: p.CacheDisableCoalescing,
	}
	if p.Config == "" {
		return cfg, nil
	}

	viper.SetConfigFile(p.Config)
	if err := viper.ReadInConfig(); err != nil {
		return cfg, errors.Wrapf(err, "failed to read config file %s", p.Config)
	}
	var fileCfg cacheFileConfig
	if err := viper.UnmarshalKey("cache", &fileCfg); err != nil {
		return cfg, errors.Wrap(err, "failed to parse cache section")
	}

	if fileCfg.MaxEntries > 0 {
		cfg.MaxEntries = fileCfg.MaxEntries
	}
	if fileCfg.DefaultTTLSeconds > 0 {
		cfg.DefaultTTL = time.Duration(fileCfg.DefaultTTLSeconds) * time.Second
	}
	if fileCfg.SweepIntervalSeconds > 0 {
		cfg.SweepInterval = time.Duration(fileCfg.SweepIntervalSeconds) * time.Second
	}
	if fileCfg.DisableCoalescing {
		cfg.DisableCoalescing = true
	}
	if len(fileCfg.Types) > 0 {
		cfg.Types = make(map[string]cache.TypePolicy, len(fileCfg.Types))
		for name, tc := range fileCfg.Types {
			cfg.Types[name] = cache.TypePolicy{
				TTL:         time.Duration(tc.TTLSeconds) * time.Second,
				Description: tc.Description,
			}
		}
	}
	return cfg, nil
}

func setupLogger(p *profile.Profile) {
	level := slog.LevelInfo
	if p.IsDev() {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))
}

func printGreetings(p *profile.Profile) {
	fmt.Print(greetingBanner)
	fmt.Printf("version %s, mode %s\n", p.Version, p.Mode)
	fmt.Printf("listening on %s:%d\n", p.Addr, p.Port)
	fmt.Println()
}

func init() {
	viper.SetDefault("mode", "demo")
	viper.SetDefault("addr", "")
	viper.SetDefault("port", 8081)

	rootCmd.PersistentFlags().String("mode", "demo", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of server")
	rootCmd.PersistentFlags().String("config", "", "path of the cache config file")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("educanexo")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(-1)
	}
}
