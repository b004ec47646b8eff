package ledger

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// balanceTolerance absorbs float drift when checking balance arithmetic
const balanceTolerance = 1e-6

// Transaction is an immutable journal entry describing one balance change
type Transaction struct {
	id              string
	timestamp       time.Time
	transactionType TransactionType
	category        Category
	resource        string
	amount          float64 // Positive for credits, negative for debits
	balanceBefore   float64
	balanceAfter    float64
	relatedEntityID string
}

// NewTransaction creates a new transaction with validation
func NewTransaction(
	timestamp time.Time,
	transactionType TransactionType,
	resource string,
	amount float64,
	balanceBefore float64,
	balanceAfter float64,
	relatedEntityID string,
) (*Transaction, error) {
	if resource == "" {
		return nil, &ErrInvalidTransaction{
			Field:  "resource",
			Reason: "resource cannot be empty",
		}
	}

	if !transactionType.IsValid() {
		return nil, &ErrInvalidTransaction{
			Field:  "transaction_type",
			Reason: fmt.Sprintf("invalid transaction type: %s", transactionType),
		}
	}

	category, err := transactionType.ToCategory()
	if err != nil {
		return nil, &ErrInvalidTransaction{
			Field:  "category",
			Reason: err.Error(),
		}
	}

	t := &Transaction{
		id:              uuid.New().String(),
		timestamp:       timestamp,
		transactionType: transactionType,
		category:        category,
		resource:        resource,
		amount:          amount,
		balanceBefore:   balanceBefore,
		balanceAfter:    balanceAfter,
		relatedEntityID: relatedEntityID,
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	return t, nil
}

// ReconstructTransaction rebuilds a transaction from persistence without validation
func ReconstructTransaction(
	id string,
	timestamp time.Time,
	transactionType TransactionType,
	category Category,
	resource string,
	amount float64,
	balanceBefore float64,
	balanceAfter float64,
	relatedEntityID string,
) *Transaction {
	return &Transaction{
		id:              id,
		timestamp:       timestamp,
		transactionType: transactionType,
		category:        category,
		resource:        resource,
		amount:          amount,
		balanceBefore:   balanceBefore,
		balanceAfter:    balanceAfter,
		relatedEntityID: relatedEntityID,
	}
}

// Validate checks that the transaction satisfies all invariants
func (t *Transaction) Validate() error {
	if t.amount == 0 || math.IsNaN(t.amount) || math.IsInf(t.amount, 0) {
		return &ErrInvalidTransaction{
			Field:  "amount",
			Reason: "amount must be a non-zero finite number",
		}
	}

	if t.balanceAfter < 0 {
		return &ErrInvalidTransaction{
			Field:  "balance_after",
			Reason: "balance cannot become negative",
		}
	}

	expected := t.balanceBefore + t.amount
	if math.Abs(t.balanceAfter-expected) > balanceTolerance {
		return &ErrBalanceInvariantViolation{
			BalanceBefore: t.balanceBefore,
			Amount:        t.amount,
			BalanceAfter:  t.balanceAfter,
			Expected:      expected,
		}
	}

	return nil
}

// Getters

func (t *Transaction) ID() string                       { return t.id }
func (t *Transaction) Timestamp() time.Time             { return t.timestamp }
func (t *Transaction) TransactionType() TransactionType { return t.transactionType }
func (t *Transaction) Category() Category               { return t.category }
func (t *Transaction) Resource() string                 { return t.resource }
func (t *Transaction) Amount() float64                  { return t.amount }
func (t *Transaction) BalanceBefore() float64           { return t.balanceBefore }
func (t *Transaction) BalanceAfter() float64            { return t.balanceAfter }
func (t *Transaction) RelatedEntityID() string          { return t.relatedEntityID }

// IsCredit returns true if the transaction increased the balance
func (t *Transaction) IsCredit() bool {
	return t.amount > 0
}

func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction[%s, %s, %s %+g, %g -> %g]",
		t.id, t.transactionType, t.resource, t.amount, t.balanceBefore, t.balanceAfter)
}
