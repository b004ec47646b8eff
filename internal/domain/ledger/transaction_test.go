package ledger_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/idlecolony-go/internal/domain/ledger"
)

func TestNewTransaction_Valid(t *testing.T) {
	now := time.Now()

	tx, err := ledger.NewTransaction(now, ledger.TransactionTypeTrainingOutput, "knight", 1, 2, 3, "barracks-1")

	require.NoError(t, err)
	assert.NotEmpty(t, tx.ID())
	assert.Equal(t, ledger.CategoryPopulation, tx.Category())
	assert.True(t, tx.IsCredit())
	assert.True(t, tx.Category().IsIncome())
}

func TestNewTransaction_RejectsInvalidInput(t *testing.T) {
	now := time.Now()

	_, err := ledger.NewTransaction(now, ledger.TransactionTypeAdjustment, "", 1, 0, 1, "")
	var invalid *ledger.ErrInvalidTransaction
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "resource", invalid.Field)

	_, err = ledger.NewTransaction(now, ledger.TransactionType("BOGUS"), "wood", 1, 0, 1, "")
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "transaction_type", invalid.Field)

	_, err = ledger.NewTransaction(now, ledger.TransactionTypeAdjustment, "wood", 0, 1, 1, "")
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "amount", invalid.Field)
}

func TestNewTransaction_BalanceInvariant(t *testing.T) {
	_, err := ledger.NewTransaction(time.Now(), ledger.TransactionTypeAdjustment, "wood", 5, 10, 16, "")

	var violation *ledger.ErrBalanceInvariantViolation
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, 15.0, violation.Expected)
}

func TestTransactionTypes_AllHaveCategories(t *testing.T) {
	for _, tt := range ledger.AllTransactionTypes() {
		category, err := tt.ToCategory()
		require.NoError(t, err, tt.String())
		assert.True(t, category.IsValid())
	}

	_, err := ledger.ParseTransactionType("NOPE")
	assert.Error(t, err)
	_, err = ledger.ParseCategory("NOPE")
	assert.Error(t, err)
}

func TestJournal_BoundedAndDrained(t *testing.T) {
	journal := ledger.NewJournal(3)
	l := ledger.NewLedger(ledger.WithRecorder(journal))

	for i := 0; i < 5; i++ {
		l.Add("wood", 1)
	}

	assert.Equal(t, 3, journal.Len())
	newest := journal.Find(ledger.QueryOptions{Limit: 1})
	require.Len(t, newest, 1)
	assert.Equal(t, 5.0, newest[0].BalanceAfter())

	pending := journal.Drain()
	assert.Len(t, pending, 5)
	assert.Empty(t, journal.Drain())
}

func TestJournal_FiltersByResource(t *testing.T) {
	journal := ledger.NewJournal(0)
	l := ledger.NewLedger(ledger.WithRecorder(journal))
	l.Add("wood", 1)
	l.Add("stone", 2)

	stone := "stone"
	txs := journal.Find(ledger.QueryOptions{Resource: &stone})

	require.Len(t, txs, 1)
	assert.Equal(t, "stone", txs[0].Resource())
}
