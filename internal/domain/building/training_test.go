package building_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/idlecolony-go/internal/domain/building"
	"github.com/andrescamacho/idlecolony-go/internal/domain/events"
	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
)

func TestStartTraining_ValidationOrder(t *testing.T) {
	// Arrange
	free := fixedFree{"peasant": 0}
	f := newFixture(building.WithWorkerAvailability(free))
	f.ledger.Restore(map[string]float64{"wood": 100, "stone": 100, "peasant": 5})

	_, err := f.manager.StartTraining("missing", "knight")
	assert.Equal(t, shared.RejectInvalidID, rejectionCode(t, err), "building not found")

	barracks := f.build(t, "barracks")
	_, err = f.manager.StartTraining(barracks.ID(), "knight")
	assert.Equal(t, shared.RejectIncomplete, rejectionCode(t, err))

	f.clock.Advance(barracks.Duration())
	f.manager.UpdateConstruction()
	_, err = f.manager.StartTraining(barracks.ID(), "wizard")
	assert.Equal(t, shared.RejectInvalidID, rejectionCode(t, err), "program not found")

	_, err = f.manager.StartTraining(barracks.ID(), "knight")
	assert.Equal(t, shared.RejectInsufficientWorkers, rejectionCode(t, err), "assigned workers are not idle")

	free["peasant"] = 5
	_, err = f.manager.StartTraining(barracks.ID(), "knight")
	assert.Equal(t, shared.RejectInsufficientFunds, rejectionCode(t, err))

	// Assert - nothing was deducted by any failure
	assert.Equal(t, 5.0, f.ledger.Get("peasant"))
	assert.Equal(t, 0, f.recorder.Count(events.TrainingStarted))
}

func TestStartTraining_QueueFull(t *testing.T) {
	f := newFixture()
	f.ledger.Restore(map[string]float64{"wood": 100, "gold": 100, "peasant": 10})
	barracks := f.complete(t, "barracks")

	_, err := f.manager.StartTraining(barracks.ID(), "knight")
	require.NoError(t, err)
	_, err = f.manager.StartTraining(barracks.ID(), "knight")

	assert.Equal(t, shared.RejectQueueFull, rejectionCode(t, err))
	assert.Equal(t, 8.0, f.ledger.Get("peasant"))
	assert.Equal(t, 90.0, f.ledger.Get("gold"))
}

func TestTraining_CompletesAndCreditsOutput(t *testing.T) {
	// Arrange
	f := newFixture()
	f.ledger.Restore(map[string]float64{"wood": 100, "gold": 100, "peasant": 10})
	barracks := f.complete(t, "barracks")

	// Act
	entry, err := f.manager.StartTraining(barracks.ID(), "knight")
	require.NoError(t, err)

	// Assert - inputs consumed immediately
	assert.Equal(t, 8.0, f.ledger.Get("peasant"))
	assert.Equal(t, 30*time.Second, entry.Duration)

	f.clock.Advance(29 * time.Second)
	f.manager.UpdateTraining()
	assert.Equal(t, 0.0, f.ledger.Get("knight"))
	assert.Equal(t, time.Second, entry.Remaining(f.clock.Now()))

	f.clock.Advance(time.Second)
	f.manager.UpdateTraining()
	f.manager.UpdateTraining()
	assert.Equal(t, 1.0, f.ledger.Get("knight"))
	assert.Equal(t, 1, f.recorder.Count(events.TrainingCompleted))

	queue, _ := barracks.Training()
	assert.Empty(t, queue.Queue())
}

func TestTraining_SlotsUpgradeAndIndependentQueues(t *testing.T) {
	f := newFixture()
	f.ledger.Restore(map[string]float64{"wood": 100, "gold": 100, "peasant": 20})
	first := f.complete(t, "barracks")
	second := f.complete(t, "barracks")

	_, err := f.manager.PurchaseBuildingUpgrade(first.ID(), "drill_yard")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = f.manager.StartTraining(first.ID(), "knight")
		require.NoError(t, err)
	}
	_, err = f.manager.StartTraining(second.ID(), "knight")
	require.NoError(t, err)

	q1, _ := first.Training()
	q2, _ := second.Training()
	assert.Equal(t, 2, q1.Slots())
	assert.Len(t, q1.Queue(), 2)
	assert.Len(t, q2.Queue(), 1)
	assert.False(t, q2.HasFreeSlot())
}
