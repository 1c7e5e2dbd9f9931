package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/swim-conditions/internal/conditions"
)

func snapshotAt(id string, at time.Time) conditions.Snapshot {
	return conditions.Snapshot{ID: id, Timestamp: at}
}

func TestMemoryStoreLatest(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Latest(ctx)
	require.ErrorIs(t, err, ErrNoSnapshot)

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.Save(ctx, snapshotAt("a", base)))
	require.NoError(t, s.Save(ctx, snapshotAt("b", base.Add(10*time.Minute))))

	got, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", got.ID)
}

func TestMemoryStoreLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.Save(ctx, snapshotAt("newer", base.Add(time.Minute))))
	require.NoError(t, s.Save(ctx, snapshotAt("older", base)))

	// Save replaces unconditionally; ordering is the writer's job.
	got, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "older", got.ID)
	assert.Equal(t, base, got.Timestamp)
}
