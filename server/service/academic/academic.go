// Package academic serves grade-average aggregates through the shared cache.
// Averages are expensive to compute (they join grades, weights, and period
// metadata) and change in bursts when teachers record grades, which makes
// them the platform's longest-lived cache types.
package academic

import (
	"context"
	"log/slog"

	"github.com/aiobandojss-lgtm/Educanexo360Back/store/cache"
)

// PeriodAverage is a student's grade average for one academic period,
// optionally narrowed to a single course.
type PeriodAverage struct {
	StudentID string             `json:"student_id"`
	PeriodID  string             `json:"period_id"`
	CourseID  string             `json:"course_id,omitempty"`
	Average   float64            `json:"average"`
	BySubject map[string]float64 `json:"by_subject,omitempty"`
}

// YearAverage is a student's grade average across a school year.
type YearAverage struct {
	StudentID string  `json:"student_id"`
	Year      string  `json:"year"`
	Average   float64 `json:"average"`
}

// Source computes averages from the grade records.
type Source interface {
	LoadPeriodAverage(ctx context.Context, studentID, schoolID, periodID, courseID string) (*PeriodAverage, error)
	LoadYearAverage(ctx context.Context, studentID, schoolID, year string) (*YearAverage, error)
}

// Service answers average reads through the cache and owns the invalidation
// hooks the grade write paths call after committing.
type Service struct {
	source Source
	cache  *cache.Cache
}

// NewService creates an academic service backed by source and c.
func NewService(source Source, c *cache.Cache) *Service {
	return &Service{source: source, cache: c}
}

// GetPeriodAverage returns a student's average for one period, per course
// when courseID is non-empty. Cache trouble degrades to a direct load.
func (s *Service) GetPeriodAverage(ctx context.Context, studentID, schoolID, periodID, courseID string) (*PeriodAverage, error) {
	params := []string{studentID, schoolID, periodID}
	if courseID != "" {
		params = append(params, courseID)
	}

	key, err := cache.BuildKey(cache.TypePeriodAverage, params...)
	if err != nil {
		slog.Warn("period average cache key rejected, loading directly",
			"student", studentID,
			"school", schoolID,
			"period", periodID,
			"error", err)
		return s.source.LoadPeriodAverage(ctx, studentID, schoolID, periodID, courseID)
	}

	return cache.Fetch(ctx, s.cache, key, cache.TypePeriodAverage, func(ctx context.Context) (*PeriodAverage, error) {
		return s.source.LoadPeriodAverage(ctx, studentID, schoolID, periodID, courseID)
	})
}

// GetYearAverage returns a student's average across a school year.
func (s *Service) GetYearAverage(ctx context.Context, studentID, schoolID, year string) (*YearAverage, error) {
	key, err := cache.BuildKey(cache.TypeYearAverage, studentID, schoolID, year)
	if err != nil {
		slog.Warn("year average cache key rejected, loading directly",
			"student", studentID,
			"school", schoolID,
			"year", year,
			"error", err)
		return s.source.LoadYearAverage(ctx, studentID, schoolID, year)
	}

	return cache.Fetch(ctx, s.cache, key, cache.TypeYearAverage, func(ctx context.Context) (*YearAverage, error) {
		return s.source.LoadYearAverage(ctx, studentID, schoolID, year)
	})
}

// GradeRecorded purges everything a new grade can change for the student:
// both average types and the dashboard. Call it after the grade commits.
func (s *Service) GradeRecorded(studentID, schoolID string) int {
	return s.cache.Invalidate(cache.TypePeriodAverage, studentID, schoolID,
		cache.TypeYearAverage, cache.TypeDashboard)
}

// PeriodClosed flushes every cached average in the store. Closing a period
// rewrites weights and final grades for everyone, so scoped purges would
// miss entries.
func (s *Service) PeriodClosed() int {
	return s.cache.FlushType(cache.TypePeriodAverage, cache.TypeYearAverage)
}

// CourseUpdated drops every cached average that mentions the course,
// whichever student or period it is keyed under. Weight or curriculum
// changes on a course silently shift many students' numbers.
func (s *Service) CourseUpdated(courseID string) int {
	return s.cache.InvalidateByEntityID(
		[]string{cache.TypePeriodAverage, cache.TypeYearAverage}, courseID)
}
