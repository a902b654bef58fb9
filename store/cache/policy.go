package cache

import "time"

// Cache type names for the aggregate families the platform memoizes. Every
// key in the store is produced from exactly one of these (or a type a caller
// registers through Config.Types), and the type is always recoverable from
// the key prefix.
const (
	// TypeDashboard covers the per-user dashboard aggregates: pending
	// tasks, unread messages, upcoming events.
	TypeDashboard = "dashboard"
	// TypePeriodAverage covers grade averages for one academic period.
	TypePeriodAverage = "promedio_periodo"
	// TypeYearAverage covers grade averages across a school year.
	TypeYearAverage = "promedio_anual"
	// TypeRecipients covers the directory of users someone may message.
	TypeRecipients = "destinatarios"
)

// Defaults applied by New when a Config field is zero.
const (
	DefaultMaxEntries    = 1000
	DefaultTTL           = 300 * time.Second
	DefaultSweepInterval = time.Minute
)

// TypePolicy is the lifetime configuration for one cache type.
type TypePolicy struct {
	// TTL is how long entries of this type stay valid.
	TTL time.Duration
	// Description is informational only; it shows up in config files and
	// nowhere else.
	Description string
}

// Config configures a cache handle. Zero fields fall back to the defaults
// above. All values are static: they are read once by New and never
// reloaded.
type Config struct {
	// MaxEntries caps the total number of stored entries.
	MaxEntries int
	// SweepInterval is how often the background sweep discards expired
	// entries, independent of read traffic.
	SweepInterval time.Duration
	// DefaultTTL applies to any type without an explicit policy.
	DefaultTTL time.Duration
	// Types overrides or extends the built-in type policies.
	Types map[string]TypePolicy
	// DisableCoalescing turns off single-flight deduplication of
	// concurrent misses for the same key, restoring the behavior where
	// every concurrent miss issues its own computation.
	DisableCoalescing bool

	// now overrides the clock, for deterministic expiry tests.
	now func() time.Time
}

// defaultTypePolicies returns the built-in TTL table for the known aggregate
// families. Dashboards go stale quickly because they mix several mutable
// sources; averages survive longer because grades change in bursts.
func defaultTypePolicies() map[string]TypePolicy {
	return map[string]TypePolicy{
		TypeDashboard: {
			TTL:         120 * time.Second,
			Description: "per-user dashboard aggregates",
		},
		TypePeriodAverage: {
			TTL:         600 * time.Second,
			Description: "grade averages for one academic period",
		},
		TypeYearAverage: {
			TTL:         900 * time.Second,
			Description: "grade averages across a school year",
		},
		TypeRecipients: {
			TTL:         300 * time.Second,
			Description: "message recipient directory",
		},
	}
}

// policyTable resolves a cache type to its TTL.
type policyTable struct {
	types      map[string]TypePolicy
	defaultTTL time.Duration
}

func newPolicyTable(cfg Config) *policyTable {
	types := defaultTypePolicies()
	for name, p := range cfg.Types {
		if p.TTL < 0 {
			p.TTL = 0
		}
		types[name] = p
	}

	defaultTTL := cfg.DefaultTTL
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}

	return &policyTable{types: types, defaultTTL: defaultTTL}
}

// ttlFor returns the TTL for typeName, falling back to the default policy
// for unknown types. Unknown types are not an error; they are simply cached
// with the default lifetime.
func (t *policyTable) ttlFor(typeName string) time.Duration {
	if p, ok := t.types[typeName]; ok {
		return p.TTL
	}
	return t.defaultTTL
}
