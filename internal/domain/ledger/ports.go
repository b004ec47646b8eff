package ledger

import (
	"context"
	"time"
)

// Recorder receives every transaction the ledger applies
type Recorder interface {
	Record(tx *Transaction)
}

// TransactionRepository defines persistence operations for transactions
type TransactionRepository interface {
	// CreateBatch persists transactions in a single write
	CreateBatch(ctx context.Context, transactions []*Transaction) error

	// Find retrieves transactions with optional filtering
	Find(ctx context.Context, opts QueryOptions) ([]*Transaction, error)

	// Count returns the number of transactions matching the criteria
	Count(ctx context.Context, opts QueryOptions) (int, error)

	// DeleteAll removes the journal, used when the game is reset
	DeleteAll(ctx context.Context) error
}

// QueryOptions defines filtering and pagination options for transaction queries
type QueryOptions struct {
	// Date range filtering (simulated time)
	StartDate *time.Time
	EndDate   *time.Time

	Resource        *string
	Category        *Category
	TransactionType *TransactionType
	RelatedEntityID *string

	// Pagination
	Limit  int
	Offset int

	// Sorting
	OrderBy string // "timestamp ASC" or "timestamp DESC" (default DESC)
}

// DefaultQueryOptions returns default query options
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{
		Limit:   50,
		Offset:  0,
		OrderBy: "timestamp DESC",
	}
}

// Matches reports whether tx satisfies the filters (pagination ignored)
func (o QueryOptions) Matches(tx *Transaction) bool {
	if o.StartDate != nil && tx.Timestamp().Before(*o.StartDate) {
		return false
	}
	if o.EndDate != nil && tx.Timestamp().After(*o.EndDate) {
		return false
	}
	if o.Resource != nil && tx.Resource() != *o.Resource {
		return false
	}
	if o.Category != nil && tx.Category() != *o.Category {
		return false
	}
	if o.TransactionType != nil && tx.TransactionType() != *o.TransactionType {
		return false
	}
	if o.RelatedEntityID != nil && tx.RelatedEntityID() != *o.RelatedEntityID {
		return false
	}
	return true
}
