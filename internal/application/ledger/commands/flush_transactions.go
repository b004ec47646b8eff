package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/idlecolony-go/internal/adapters/metrics"
	"github.com/andrescamacho/idlecolony-go/internal/application/common"
	"github.com/andrescamacho/idlecolony-go/internal/domain/ledger"
)

// TransactionSource hands over journal entries not yet persisted and takes
// back the ones a failed write could not store
type TransactionSource interface {
	DrainTransactions() []*ledger.Transaction
	RequeueTransactions(txs []*ledger.Transaction)
}

// FlushTransactionsCommand moves the in-memory journal into the repository
type FlushTransactionsCommand struct{}

// FlushTransactionsResponse represents the result of a flush
type FlushTransactionsResponse struct {
	Persisted int
}

// FlushTransactionsHandler handles the FlushTransactions command
type FlushTransactionsHandler struct {
	source          TransactionSource
	transactionRepo ledger.TransactionRepository
}

// NewFlushTransactionsHandler creates a new FlushTransactionsHandler
func NewFlushTransactionsHandler(
	source TransactionSource,
	transactionRepo ledger.TransactionRepository,
) *FlushTransactionsHandler {
	return &FlushTransactionsHandler{
		source:          source,
		transactionRepo: transactionRepo,
	}
}

// Handle executes the FlushTransactions command
func (h *FlushTransactionsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*FlushTransactionsCommand); !ok {
		return nil, fmt.Errorf("invalid request type: expected *FlushTransactionsCommand")
	}

	transactions := h.source.DrainTransactions()
	if len(transactions) == 0 {
		return &FlushTransactionsResponse{}, nil
	}

	if err := h.transactionRepo.CreateBatch(ctx, transactions); err != nil {
		h.source.RequeueTransactions(transactions)
		common.LoggerFromContext(ctx).Log(common.LevelWarn, "journal flush failed, transactions requeued", map[string]interface{}{
			"count": len(transactions),
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to persist %d transactions: %w", len(transactions), err)
	}

	for _, tx := range transactions {
		metrics.RecordTransaction(tx)
	}

	return &FlushTransactionsResponse{Persisted: len(transactions)}, nil
}

// ClearTransactionsCommand deletes the persisted journal of the current save
type ClearTransactionsCommand struct{}

// ClearTransactionsHandler handles the ClearTransactions command
type ClearTransactionsHandler struct {
	transactionRepo ledger.TransactionRepository
}

// NewClearTransactionsHandler creates a new ClearTransactionsHandler
func NewClearTransactionsHandler(transactionRepo ledger.TransactionRepository) *ClearTransactionsHandler {
	return &ClearTransactionsHandler{transactionRepo: transactionRepo}
}

// Handle executes the ClearTransactions command
func (h *ClearTransactionsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*ClearTransactionsCommand); !ok {
		return nil, fmt.Errorf("invalid request type: expected *ClearTransactionsCommand")
	}
	if err := h.transactionRepo.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear transactions: %w", err)
	}
	return struct{}{}, nil
}
