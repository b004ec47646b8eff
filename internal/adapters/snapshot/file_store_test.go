package snapshot_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/idlecolony-go/internal/adapters/schema"
	"github.com/andrescamacho/idlecolony-go/internal/adapters/snapshot"
	"github.com/andrescamacho/idlecolony-go/internal/application/game"
	"github.com/andrescamacho/idlecolony-go/internal/domain/progress"
	"github.com/andrescamacho/idlecolony-go/internal/domain/skill"
	"github.com/andrescamacho/idlecolony-go/internal/domain/worker"
)

func stateAt(savedAt time.Time, wood float64) *game.GameState {
	return &game.GameState{
		Version:   game.CurrentVersion,
		SavedAt:   savedAt,
		ClockTime: savedAt.Add(-time.Minute),
		Ledger:    map[string]float64{"wood": wood},
		Skills:    map[string]skill.State{"woodcutting": {Level: 1, XP: 40}},
		Workers: worker.Snapshot{
			Assignments: map[string]map[string]int{"peasant": {"forest": 2}},
			Workers: []worker.EntityState{
				{ID: "w-1", Type: "peasant", TargetID: "forest"},
				{ID: "w-2", Type: "peasant", TargetID: "forest", Harvests: 1},
			},
		},
		Nodes:    []game.NodeState{{ID: "forest", Available: 7.5}},
		Progress: progress.State{Stats: progress.NewStats()},
	}
}

func newStore(t *testing.T) (*snapshot.FileStore, string) {
	t.Helper()
	validator, err := schema.NewValidator()
	require.NoError(t, err)
	dir := t.TempDir()
	return snapshot.NewFileStore(dir, validator), dir
}

func TestFileStore_RoundTrip(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	saved := stateAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), 42)

	require.NoError(t, store.Save(ctx, "alpha", saved))
	loaded, err := store.Load(ctx, "alpha")

	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestFileStore_SaveOverwritesSlot(t *testing.T) {
	store, dir := newStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, "alpha", stateAt(at, 1)))
	require.NoError(t, store.Save(ctx, "alpha", stateAt(at, 2)))

	loaded, err := store.Load(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, 2.0, loaded.Ledger["wood"])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")
}

func TestFileStore_MissingSlot(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	_, err := store.Load(ctx, "ghost")
	var notFound *game.ErrSaveNotFound
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "ghost", notFound.Slot)

	err = store.Delete(ctx, "ghost")
	assert.True(t, errors.As(err, &notFound))
}

func TestFileStore_RejectsUnsafeSlotNames(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	for _, slot := range []string{"", "../escape", "a/b", ".hidden"} {
		assert.Error(t, store.Save(ctx, slot, stateAt(time.Now(), 1)), slot)
	}
}

func TestFileStore_ListNewestFirst(t *testing.T) {
	store, dir := newStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, "old", stateAt(base, 1)))
	require.NoError(t, store.Save(ctx, "new", stateAt(base.Add(time.Hour), 1)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.save.zst"), []byte("not zstd"), 0o644))

	summaries, err := store.List(ctx)

	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "new", summaries[0].Slot)
	assert.Equal(t, "old", summaries[1].Slot)
	assert.Equal(t, game.CurrentVersion, summaries[0].Version)
	assert.Equal(t, base.Add(time.Hour-time.Minute), summaries[0].ClockTime)
	assert.Positive(t, summaries[0].Size)
}

func TestFileStore_DeleteRemovesSlot(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "alpha", stateAt(time.Now().UTC(), 1)))

	require.NoError(t, store.Delete(ctx, "alpha"))

	_, err := store.Load(ctx, "alpha")
	var notFound *game.ErrSaveNotFound
	assert.True(t, errors.As(err, &notFound))
}

func TestFileStore_LoadRejectsCorruptSnapshot(t *testing.T) {
	store, dir := newStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alpha.save.zst"), []byte("garbage"), 0o644))

	_, err := store.Load(context.Background(), "alpha")

	require.Error(t, err)
	var notFound *game.ErrSaveNotFound
	assert.False(t, errors.As(err, &notFound))
}

type rejectAll struct{}

func (rejectAll) Validate([]byte) error { return errors.New("schema mismatch") }

func TestDecode_AppliesValidator(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, snapshot.Encode(&buf, "alpha", stateAt(time.Now().UTC(), 3)))
	raw := buf.Bytes()

	header, err := snapshot.ReadHeader(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "alpha", header.Slot)

	_, _, err = snapshot.Decode(bytes.NewReader(raw), rejectAll{})
	assert.ErrorContains(t, err, "schema mismatch")

	_, state, err := snapshot.Decode(bytes.NewReader(raw), nil)
	require.NoError(t, err)
	assert.Equal(t, 3.0, state.Ledger["wood"])
}
