package worker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/idlecolony-go/internal/domain/activity"
	"github.com/andrescamacho/idlecolony-go/internal/domain/events"
	"github.com/andrescamacho/idlecolony-go/internal/domain/ledger"
	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
	"github.com/andrescamacho/idlecolony-go/internal/domain/worker"
)

type fixedSkills map[string]float64

func (s fixedSkills) SpeedBonus(skill string) float64 { return s[skill] }

type fixedModifiers struct {
	walk, harvest, activity float64
}

func (m fixedModifiers) WalkSpeedBonus() float64     { return m.walk }
func (m fixedModifiers) HarvestSpeedBonus() float64  { return m.harvest }
func (m fixedModifiers) ActivitySpeedBonus() float64 { return m.activity }

func baker() worker.Type {
	return worker.Type{
		ID:              "baker",
		WalkSpeed:       40,
		CarrySpeed:      20,
		HarvestSpeed:    1,
		BaseSpeed:       1,
		BonusActivities: []string{"bakery"},
		BonusMultiplier: 2,
	}
}

func bakery(publisher events.Publisher) *activity.Activity {
	return activity.NewActivity(activity.Definition{
		ID:       "bakery",
		Skill:    "cooking",
		Duration: 10,
		Inputs:   map[string]float64{"wheat": 1},
		Outputs:  map[string]float64{"bread": 1},
		Position: shared.NewPosition(0, 0),
	}, publisher)
}

func rejectionCode(t *testing.T, err error) shared.RejectionCode {
	t.Helper()
	var rejection *shared.RejectionError
	require.True(t, errors.As(err, &rejection), "expected rejection, got %v", err)
	return rejection.Code
}

func newTestPool(l *ledger.Ledger, opts ...worker.PoolOption) *worker.Pool {
	opts = append([]worker.PoolOption{worker.WithRandom(shared.FixedRandom{Value: 0})}, opts...)
	pool := worker.NewPool(worker.DefaultConfig(), []worker.Type{peasant(), baker()}, l, opts...)
	pool.RegisterNode(newNode("forest", 100))
	pool.RegisterNode(newNode("quarry", 50))
	pool.RegisterActivity(bakery(nil))
	return pool
}

func TestPool_AssignValidates(t *testing.T) {
	l := ledger.NewLedger()
	l.Set("peasant", 2)
	pool := newTestPool(l)

	assert.Equal(t, shared.RejectInvalidID, rejectionCode(t, pool.Assign("wizard", "forest", 1)))
	assert.Equal(t, shared.RejectInvalidID, rejectionCode(t, pool.Assign("peasant", "moon", 1)))
	assert.Equal(t, shared.RejectInvalidAmount, rejectionCode(t, pool.Assign("peasant", "forest", 0)))
	assert.Equal(t, shared.RejectInsufficientWorkers, rejectionCode(t, pool.Assign("peasant", "forest", 3)))
	assert.Empty(t, pool.Entities())
}

func TestPool_AssignSpawnsOneEntityPerWorker(t *testing.T) {
	l := ledger.NewLedger()
	l.Set("peasant", 5)
	pool := newTestPool(l)

	require.NoError(t, pool.Assign("peasant", "forest", 2))
	require.NoError(t, pool.Assign("peasant", "quarry", 1))

	assert.Len(t, pool.Entities(), 3)
	assert.Len(t, pool.EntitiesFor("forest"), 2)
	assert.Equal(t, 3, pool.Assigned("peasant"))
	assert.Equal(t, 2, pool.Free("peasant"))
	for _, e := range pool.Entities() {
		assert.Equal(t, worker.StateIdle, e.State())
		assert.Equal(t, pool.Config().Home, e.Position())
	}
}

func TestPool_UnassignDiscardsEntities(t *testing.T) {
	l := ledger.NewLedger()
	l.Set("peasant", 3)
	pool := newTestPool(l)
	require.NoError(t, pool.Assign("peasant", "forest", 3))

	require.NoError(t, pool.Unassign("peasant", "forest", 2))

	assert.Len(t, pool.EntitiesFor("forest"), 1)
	assert.Equal(t, 1, pool.AssignedTo("forest", "peasant"))

	require.NoError(t, pool.Unassign("peasant", "forest", 5))
	assert.Empty(t, pool.Entities())
	assert.Equal(t, shared.RejectInsufficientWorkers, rejectionCode(t, pool.Unassign("peasant", "forest", 1)))
}

func TestPool_SyncTrimsAssignmentsToPopulation(t *testing.T) {
	l := ledger.NewLedger()
	l.Set("peasant", 4)
	pool := newTestPool(l)
	require.NoError(t, pool.Assign("peasant", "forest", 2))
	require.NoError(t, pool.Assign("peasant", "quarry", 2))

	l.Set("peasant", 3)
	pool.Sync()

	assert.Equal(t, 3, pool.Assigned("peasant"))
	assert.Len(t, pool.Entities(), 3)
}

func TestPool_SpeedMultiplier(t *testing.T) {
	l := ledger.NewLedger()
	l.Set("peasant", 2)
	l.Set("baker", 1)
	pool := newTestPool(l,
		worker.WithSkills(fixedSkills{"cooking": 0.1}),
		worker.WithModifiers(fixedModifiers{activity: 0.5}),
	)

	assert.Equal(t, 0.0, pool.SpeedMultiplier("bakery"), "no workers")

	require.NoError(t, pool.Assign("peasant", "bakery", 2))
	require.NoError(t, pool.Assign("baker", "bakery", 1))

	// (2*1 + 1*1*2) * 1.1 * 1.5
	assert.InDelta(t, 6.6, pool.SpeedMultiplier("bakery"), 1e-9)
	assert.InDelta(t, 10/6.6, pool.CycleTime(mustTarget(t, pool, "bakery"), "peasant"), 1e-9)
}

func TestPool_SpeedMultiplierIsCapped(t *testing.T) {
	l := ledger.NewLedger()
	l.Set("baker", 100)
	pool := newTestPool(l)

	require.NoError(t, pool.Assign("baker", "bakery", 100))

	assert.Equal(t, pool.Config().MaxSpeedMultiplier, pool.SpeedMultiplier("bakery"))
}

func TestPool_NodeCycleTimeUsesHarvestSpeed(t *testing.T) {
	l := ledger.NewLedger()
	pool := newTestPool(l,
		worker.WithSkills(fixedSkills{"": 0}),
		worker.WithModifiers(fixedModifiers{harvest: 1}),
	)

	assert.Equal(t, 1.0, pool.CycleTime(mustTarget(t, pool, "forest"), "peasant"))
	assert.Equal(t, 0.0, pool.CycleTime(mustTarget(t, pool, "forest"), "wizard"))
}

func TestPool_BoostsMultiplyAndExpire(t *testing.T) {
	// Arrange
	recorder := events.NewRecorder()
	l := ledger.NewLedger()
	l.Set("baker", 1)
	l.Set("gold", 10)
	pool := newTestPool(l,
		worker.WithPublisher(recorder),
		worker.WithBoosts([]worker.BoostDefinition{
			{ID: "coffee", Cost: map[string]float64{"gold": 4}, Multiplier: 2, Duration: 5, ActivityID: "bakery"},
		}),
	)
	require.NoError(t, pool.Assign("baker", "bakery", 1))

	// Act
	require.NoError(t, pool.ActivateBoost("coffee"))

	// Assert
	assert.Equal(t, 6.0, l.Get("gold"))
	assert.Equal(t, 4.0, pool.SpeedMultiplier("bakery"))

	pool.DecayBoosts(3)
	assert.Equal(t, []worker.BoostState{{ID: "coffee", Remaining: 2}}, pool.ActiveBoosts())

	pool.DecayBoosts(2)
	assert.Empty(t, pool.ActiveBoosts())
	assert.Equal(t, 2.0, pool.SpeedMultiplier("bakery"))
	assert.Equal(t, 1, recorder.Count(events.BoostActivated))
	assert.Equal(t, 1, recorder.Count(events.BoostExpired))

	require.NoError(t, pool.ActivateBoost("coffee"))
	assert.Equal(t, shared.RejectInsufficientFunds, rejectionCode(t, pool.ActivateBoost("coffee")))
	assert.Equal(t, shared.RejectInvalidID, rejectionCode(t, pool.ActivateBoost("tea")))
}

func TestPool_ReassignKeepsCarryingWorkersOnTheirTrip(t *testing.T) {
	// Arrange
	l := ledger.NewLedger()
	l.Set("peasant", 1)
	pool := newTestPool(l)
	require.NoError(t, pool.Assign("peasant", "forest", 1))
	ctx := context.Background()

	// walk out (1 tick to start + 2 ticks travel), harvest 2s
	for i := 0; i < 5; i++ {
		require.NoError(t, pool.Update(ctx, 1, l.Snapshot()))
	}
	e := pool.Entities()[0]
	require.Equal(t, worker.StateWalkingBack, e.State())

	// Act
	require.NoError(t, pool.Reassign("peasant", "forest", "quarry", 1))

	// Assert
	require.Len(t, pool.Entities(), 1)
	assert.Same(t, e, pool.Entities()[0])
	assert.Equal(t, worker.StateWalkingBack, e.State())
	assert.Equal(t, 1, pool.AssignedTo("quarry", "peasant"))
	assert.Equal(t, 0, pool.AssignedTo("forest", "peasant"))

	for i := 0; i < 10 && e.State() != worker.StateIdle; i++ {
		require.NoError(t, pool.Update(ctx, 1, l.Snapshot()))
	}
	assert.Equal(t, 3.0, l.Get("wood"))
	assert.Equal(t, "quarry", e.TargetID())
}

func TestPool_UpdateActivityStatus(t *testing.T) {
	recorder := events.NewRecorder()
	l := ledger.NewLedger()
	l.Set("baker", 1)
	pool := worker.NewPool(worker.DefaultConfig(), []worker.Type{baker()}, l)
	pool.RegisterActivity(bakery(recorder))
	require.NoError(t, pool.Assign("baker", "bakery", 1))

	pool.UpdateActivityStatus(l.Snapshot())

	assert.Equal(t, 1, recorder.Count(events.ProductionHalted), "assigned but missing wheat")

	l.Set("wheat", 5)
	pool.UpdateActivityStatus(l.Snapshot())
	assert.Equal(t, 1, recorder.Count(events.ProductionResumed))
}

func TestPool_UpdateHonoursCancellation(t *testing.T) {
	l := ledger.NewLedger()
	l.Set("peasant", 1)
	pool := newTestPool(l)
	require.NoError(t, pool.Assign("peasant", "forest", 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, pool.Update(ctx, 1, l.Snapshot()), context.Canceled)
}

func TestPool_SnapshotRestoreIsIdempotent(t *testing.T) {
	// Arrange
	l := ledger.NewLedger()
	l.Set("peasant", 3)
	l.Set("gold", 10)
	boosts := []worker.BoostDefinition{{ID: "coffee", Multiplier: 2, Duration: 5}}
	pool := newTestPool(l, worker.WithBoosts(boosts))
	require.NoError(t, pool.Assign("peasant", "forest", 2))
	require.NoError(t, pool.Assign("peasant", "bakery", 1))
	require.NoError(t, pool.ActivateBoost("coffee"))
	for i := 0; i < 6; i++ {
		require.NoError(t, pool.Update(context.Background(), 1, l.Snapshot()))
	}
	snap := pool.Snapshot()
	snap.Assignments["moon"] = map[string]int{"peasant": 1}
	snap.Workers = append(snap.Workers, worker.EntityState{ID: "wrk-000099", Type: "wizard", TargetID: "forest"})

	// Act
	restored := newTestPool(l, worker.WithBoosts(boosts))
	for i := 0; i < 3; i++ {
		restored.Restore(snap)

		// Assert
		again := restored.Snapshot()
		assert.Equal(t, pool.Assignments(), again.Assignments)
		assert.Equal(t, pool.Snapshot().Workers, again.Workers)
		assert.Equal(t, pool.ActiveBoosts(), again.Boosts)
		for _, e := range restored.Entities() {
			assert.Equal(t, worker.StateIdle, e.State())
			assert.Equal(t, restored.Config().Home, e.Position())
		}
	}
}

func TestPool_Reset(t *testing.T) {
	l := ledger.NewLedger()
	l.Set("peasant", 1)
	pool := newTestPool(l)
	require.NoError(t, pool.Assign("peasant", "forest", 1))

	pool.Reset()

	assert.Empty(t, pool.Entities())
	assert.Empty(t, pool.Assignments())
}

func mustTarget(t *testing.T, pool *worker.Pool, id string) worker.Target {
	t.Helper()
	target, ok := pool.Target(id)
	require.True(t, ok)
	return target
}
