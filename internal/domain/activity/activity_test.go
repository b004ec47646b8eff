package activity_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/idlecolony-go/internal/domain/activity"
	"github.com/andrescamacho/idlecolony-go/internal/domain/events"
	"github.com/andrescamacho/idlecolony-go/internal/domain/ledger"
	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
)

func bakeryDefinition() activity.Definition {
	return activity.Definition{
		ID:       "bakery",
		Skill:    "cooking",
		Duration: 10,
		Inputs:   map[string]float64{"wheat": 2},
		Outputs:  map[string]float64{"bread": 1},
	}
}

func TestActivity_EffectiveDuration(t *testing.T) {
	act := activity.NewActivity(bakeryDefinition(), nil)

	assert.Equal(t, 10.0, act.EffectiveDuration(1))
	assert.Equal(t, 5.0, act.EffectiveDuration(2))
	assert.False(t, math.IsInf(act.EffectiveDuration(0), 0))
}

func TestActivity_WorkChargesInputsAtomically(t *testing.T) {
	// Arrange
	l := ledger.NewLedger()
	l.Set("wheat", 3)
	act := activity.NewActivity(bakeryDefinition(), nil)

	// Act
	payload, ok := act.Work(l)

	// Assert
	require.True(t, ok)
	assert.Equal(t, shared.ResourceMap{"bread": 1}, payload)
	assert.Equal(t, 1.0, l.Get("wheat"))
	assert.Equal(t, 0.0, l.Get("bread"), "outputs are credited on deposit")

	// Act - not enough for a second cycle
	_, ok = act.Work(l)

	// Assert
	assert.False(t, ok)
	assert.Equal(t, 1.0, l.Get("wheat"))
}

func TestActivity_FreeActivityNeedsNothing(t *testing.T) {
	def := bakeryDefinition()
	def.Inputs = nil
	act := activity.NewActivity(def, nil)

	assert.True(t, act.IsFree())
	assert.True(t, act.Ready(ledger.Balances{}))
	_, ok := act.Work(ledger.NewLedger())
	assert.True(t, ok)
}

func TestActivity_StatusTransitionsPublishOnce(t *testing.T) {
	// Arrange
	recorder := events.NewRecorder()
	act := activity.NewActivity(bakeryDefinition(), recorder)
	funded := ledger.Balances{"wheat": 10}
	broke := ledger.Balances{}

	// Act & Assert - no workers is the initial state
	assert.Equal(t, activity.StatusHalted, act.UpdateStatus(0, funded))
	assert.Empty(t, recorder.Events())

	assert.Equal(t, activity.StatusRunning, act.UpdateStatus(1.5, funded))
	assert.Equal(t, activity.StatusRunning, act.UpdateStatus(1.5, funded))
	assert.Equal(t, 1, recorder.Count(events.ProductionResumed))

	assert.Equal(t, activity.StatusHalted, act.UpdateStatus(1.5, broke))
	assert.Equal(t, activity.StatusHalted, act.UpdateStatus(1.5, broke))
	assert.Equal(t, activity.ReasonMissingInputs, act.HaltReason())
	assert.Equal(t, 1, recorder.Count(events.ProductionHalted))

	act.UpdateStatus(-1, funded)
	assert.Equal(t, activity.ReasonNoWorkers, act.HaltReason())
	assert.Equal(t, 2, recorder.Count(events.ProductionHalted))
}
