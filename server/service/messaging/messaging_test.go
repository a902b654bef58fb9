package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiobandojss-lgtm/Educanexo360Back/store/cache"
)

type stubSource struct {
	loads int
}

func (s *stubSource) LoadRecipients(ctx context.Context, userID, schoolID, courseID string, filter *Filter) ([]Recipient, error) {
	s.loads++
	return []Recipient{
		{UserID: "t1", Name: "Prof. Rojas", Role: "teacher", CourseID: courseID},
		{UserID: "p1", Name: "Sra. Díaz", Role: "parent", CourseID: courseID},
	}, nil
}

func newTestService(t *testing.T) (*Service, *stubSource, *cache.Cache) {
	t.Helper()

	c, err := cache.New(cache.Config{SweepInterval: time.Hour})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	source := &stubSource{}
	return NewService(source, c), source, c
}

func TestService_GetRecipients(t *testing.T) {
	svc, source, _ := newTestService(t)
	ctx := context.Background()

	t.Run("SecondReadIsCached", func(t *testing.T) {
		first, err := svc.GetRecipients(ctx, "u1", "s1", "", nil)
		require.NoError(t, err)
		require.Len(t, first, 2)

		second, err := svc.GetRecipients(ctx, "u1", "s1", "", nil)
		require.NoError(t, err)

		assert.Equal(t, 1, source.loads)
		assert.Equal(t, first, second)
	})

	t.Run("CourseDirectoryCachesSeparately", func(t *testing.T) {
		_, err := svc.GetRecipients(ctx, "u1", "s1", "course42", nil)
		require.NoError(t, err)
		assert.Equal(t, 2, source.loads)
	})

	t.Run("FilteredDirectoryCachesSeparately", func(t *testing.T) {
		_, err := svc.GetRecipients(ctx, "u1", "s1", "", &Filter{Role: "teacher"})
		require.NoError(t, err)
		assert.Equal(t, 3, source.loads)

		_, err = svc.GetRecipients(ctx, "u1", "s1", "", &Filter{Role: "teacher"})
		require.NoError(t, err)
		assert.Equal(t, 3, source.loads)
	})
}

func TestService_RosterChanged(t *testing.T) {
	svc, source, _ := newTestService(t)
	ctx := context.Background()

	for _, user := range []string{"u1", "u2", "u3"} {
		_, err := svc.GetRecipients(ctx, user, "s1", "", nil)
		require.NoError(t, err)
	}
	require.Equal(t, 3, source.loads)

	removed := svc.RosterChanged("s1", "u1", "u2")
	assert.Equal(t, 2, removed)

	// Affected users reload; the bystander stays cached.
	_, err := svc.GetRecipients(ctx, "u1", "s1", "", nil)
	require.NoError(t, err)
	_, err = svc.GetRecipients(ctx, "u3", "s1", "", nil)
	require.NoError(t, err)
	assert.Equal(t, 4, source.loads)
}

func TestService_CourseRosterChanged(t *testing.T) {
	svc, source, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetRecipients(ctx, "u1", "s1", "course42", nil)
	require.NoError(t, err)
	_, err = svc.GetRecipients(ctx, "u2", "s1", "course42", nil)
	require.NoError(t, err)
	_, err = svc.GetRecipients(ctx, "u3", "s1", "", nil)
	require.NoError(t, err)
	require.Equal(t, 3, source.loads)

	removed := svc.CourseRosterChanged("course42")
	assert.Equal(t, 2, removed)

	// Whole-school directories without the course stay cached.
	_, err = svc.GetRecipients(ctx, "u3", "s1", "", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, source.loads)

	_, err = svc.GetRecipients(ctx, "u1", "s1", "course42", nil)
	require.NoError(t, err)
	assert.Equal(t, 4, source.loads)
}
