package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/idlecolony-go/internal/domain/ledger"
	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
)

func TestLedger_AddSubtractScenario(t *testing.T) {
	// Arrange
	l := ledger.NewLedger()

	// Act
	l.Add("wood", 100)
	ok := l.Subtract("wood", 40)

	// Assert
	require.True(t, ok)
	assert.Equal(t, 60.0, l.Get("wood"))

	// Act - overdraw
	ok = l.Subtract("wood", 1000)

	// Assert
	assert.False(t, ok)
	assert.Equal(t, 60.0, l.Get("wood"))
}

func TestLedger_GetDefaultsToZero(t *testing.T) {
	l := ledger.NewLedger()
	assert.Equal(t, 0.0, l.Get("missing"))
	assert.True(t, l.Has("missing", 0))
	assert.False(t, l.Has("missing", 1))
}

func TestLedger_NeverNegative(t *testing.T) {
	l := ledger.NewLedger()
	rng := shared.NewSeededRandom(42)

	for i := 0; i < 2000; i++ {
		amount := shared.RandomRange(rng, -50, 50)
		switch i % 3 {
		case 0:
			l.Add("stone", amount)
		case 1:
			l.Subtract("stone", amount)
		default:
			l.Set("stone", amount)
		}
		require.GreaterOrEqual(t, l.Get("stone"), 0.0, "iteration %d", i)
	}
}

func TestLedger_AddNegativeClampsAtZero(t *testing.T) {
	l := ledger.NewLedger()
	l.Add("gold", 10)

	l.Add("gold", -25)

	assert.Equal(t, 0.0, l.Get("gold"))
}

func TestLedger_SetClampsNegative(t *testing.T) {
	l := ledger.NewLedger()

	l.Set("gold", -3)

	assert.Equal(t, 0.0, l.Get("gold"))
	_, present := l.GetAll()["gold"]
	assert.True(t, present)
}

func TestLedger_SpendCostsIsAtomic(t *testing.T) {
	tests := []struct {
		name      string
		wood      float64
		stone     float64
		expectOK  bool
		wantWood  float64
		wantStone float64
	}{
		{name: "both affordable", wood: 50, stone: 30, expectOK: true, wantWood: 0, wantStone: 0},
		{name: "wood short", wood: 49, stone: 30, expectOK: false, wantWood: 49, wantStone: 30},
		{name: "stone short", wood: 50, stone: 29, expectOK: false, wantWood: 50, wantStone: 29},
		{name: "both short", wood: 1, stone: 1, expectOK: false, wantWood: 1, wantStone: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := ledger.NewLedger()
			l.Set("wood", tt.wood)
			l.Set("stone", tt.stone)

			ok := l.SpendCosts(shared.ResourceMap{"wood": 50, "stone": 30})

			assert.Equal(t, tt.expectOK, ok)
			assert.Equal(t, tt.wantWood, l.Get("wood"))
			assert.Equal(t, tt.wantStone, l.Get("stone"))
		})
	}
}

func TestLedger_CanAffordIgnoresNonPositiveEntries(t *testing.T) {
	l := ledger.NewLedger()
	assert.True(t, l.CanAfford(shared.ResourceMap{"wood": 0, "stone": -5}))
	assert.True(t, l.CanAfford(nil))
}

func TestLedger_SnapshotIsIsolated(t *testing.T) {
	l := ledger.NewLedger()
	l.Add("wood", 10)

	view := l.Snapshot()
	l.Add("wood", 5)

	assert.Equal(t, 10.0, view.Get("wood"))
	assert.True(t, view.CanAfford(shared.ResourceMap{"wood": 10}))
	assert.False(t, view.CanAfford(shared.ResourceMap{"wood": 11}))
	assert.Equal(t, 15.0, l.Get("wood"))
}

func TestLedger_ResetClearsEverything(t *testing.T) {
	l := ledger.NewLedger()
	l.Add("wood", 10)
	l.Add("miner", 2)

	l.Reset()

	assert.Empty(t, l.GetAll())
}

func TestLedger_RestoreReplacesAndSanitises(t *testing.T) {
	l := ledger.NewLedger()
	l.Add("stale", 99)

	l.Restore(map[string]float64{"wood": 12, "stone": -4})
	l.Restore(map[string]float64{"wood": 12, "stone": -4})

	assert.Equal(t, map[string]float64{"wood": 12, "stone": 0}, l.GetAll())
}

func TestLedger_ChargeAndCreditAreJournaled(t *testing.T) {
	// Arrange
	clock := shared.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	journal := ledger.NewJournal(10)
	l := ledger.NewLedger(ledger.WithRecorder(journal), ledger.WithClock(clock))

	// Act
	l.Credit(shared.ResourceMap{"wood": 20}, ledger.TransactionTypeHarvestDeposit, "forest")
	ok := l.Charge(shared.ResourceMap{"wood": 15}, ledger.TransactionTypeConstructionCost, "hut-1")

	// Assert
	require.True(t, ok)
	txs := journal.Find(ledger.QueryOptions{OrderBy: "timestamp ASC"})
	require.Len(t, txs, 2)

	assert.Equal(t, ledger.TransactionTypeHarvestDeposit, txs[0].TransactionType())
	assert.Equal(t, ledger.CategoryProduction, txs[0].Category())
	assert.Equal(t, 20.0, txs[0].Amount())
	assert.Equal(t, "forest", txs[0].RelatedEntityID())

	assert.Equal(t, ledger.CategoryInvestment, txs[1].Category())
	assert.Equal(t, -15.0, txs[1].Amount())
	assert.Equal(t, 20.0, txs[1].BalanceBefore())
	assert.Equal(t, 5.0, txs[1].BalanceAfter())
	assert.Equal(t, clock.Now(), txs[1].Timestamp())
}

func TestLedger_FailedChargeRecordsNothing(t *testing.T) {
	journal := ledger.NewJournal(10)
	l := ledger.NewLedger(ledger.WithRecorder(journal))
	l.Restore(map[string]float64{"wood": 5})

	ok := l.Charge(shared.ResourceMap{"wood": 6}, ledger.TransactionTypeUpgradeCost, "axe")

	assert.False(t, ok)
	assert.Equal(t, 0, journal.Len())
}

func TestLedger_ClampedAddRecordsAppliedDelta(t *testing.T) {
	journal := ledger.NewJournal(10)
	l := ledger.NewLedger(ledger.WithRecorder(journal))
	l.Restore(map[string]float64{"gold": 3})

	l.Add("gold", -10)

	txs := journal.Find(ledger.DefaultQueryOptions())
	require.Len(t, txs, 1)
	assert.Equal(t, -3.0, txs[0].Amount())
	assert.Equal(t, 0.0, txs[0].BalanceAfter())
}

func journalEntry(t *testing.T, amount float64) *ledger.Transaction {
	t.Helper()
	tx, err := ledger.NewTransaction(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ledger.TransactionTypeHarvestDeposit, "wood", amount, 0, amount, "forest")
	require.NoError(t, err)
	return tx
}

func TestJournal_PendingIsBounded(t *testing.T) {
	journal := ledger.NewJournal(3)
	for i := 1; i <= 5; i++ {
		journal.Record(journalEntry(t, float64(i)))
	}

	assert.Equal(t, 3, journal.Len())
	assert.Equal(t, 3, journal.Pending())
	assert.Equal(t, 2, journal.Dropped())

	drained := journal.Drain()
	require.Len(t, drained, 3)
	assert.Equal(t, 3.0, drained[0].Amount())
	assert.Equal(t, 5.0, drained[2].Amount())
	assert.Equal(t, 0, journal.Pending())
}

func TestJournal_RequeueKeepsOrderAndBound(t *testing.T) {
	journal := ledger.NewJournal(3)
	journal.Record(journalEntry(t, 1))
	journal.Record(journalEntry(t, 2))
	failed := journal.Drain()

	journal.Record(journalEntry(t, 3))
	journal.Requeue(failed)

	pending := journal.Drain()
	require.Len(t, pending, 3)
	assert.Equal(t, []float64{1, 2, 3}, []float64{pending[0].Amount(), pending[1].Amount(), pending[2].Amount()})
	assert.Equal(t, 0, journal.Dropped())

	journal.Record(journalEntry(t, 4))
	journal.Record(journalEntry(t, 5))
	journal.Requeue(pending)

	assert.Equal(t, 3, journal.Pending())
	assert.Equal(t, 2, journal.Dropped())
	rest := journal.Drain()
	assert.Equal(t, 3.0, rest[0].Amount())
	assert.Equal(t, 5.0, rest[2].Amount())
}

func TestJournal_RequeueNothingIsNoop(t *testing.T) {
	journal := ledger.NewJournal(2)
	journal.Requeue(nil)
	assert.Equal(t, 0, journal.Pending())
}
