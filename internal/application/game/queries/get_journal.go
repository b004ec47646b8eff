package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/idlecolony-go/internal/application/common"
	"github.com/andrescamacho/idlecolony-go/internal/application/game"
	"github.com/andrescamacho/idlecolony-go/internal/domain/ledger"
)

// GetJournalQuery reads recent transactions from the engine's in-memory
// journal, newest first
type GetJournalQuery struct {
	Resource        string
	TransactionType string
	Limit           int
}

// GetJournalResponse carries the matching transactions
type GetJournalResponse struct {
	Transactions []*ledger.Transaction
}

// GetJournalHandler handles the GetJournal query
type GetJournalHandler struct {
	engine *game.Engine
}

// NewGetJournalHandler creates a new GetJournalHandler
func NewGetJournalHandler(engine *game.Engine) *GetJournalHandler {
	return &GetJournalHandler{engine: engine}
}

// Handle executes the GetJournal query
func (h *GetJournalHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetJournalQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetJournalQuery")
	}

	opts := ledger.DefaultQueryOptions()
	if query.Limit > 0 {
		opts.Limit = query.Limit
	}
	if query.Resource != "" {
		opts.Resource = &query.Resource
	}
	if query.TransactionType != "" {
		txType, err := ledger.ParseTransactionType(query.TransactionType)
		if err != nil {
			return nil, err
		}
		opts.TransactionType = &txType
	}

	return &GetJournalResponse{Transactions: h.engine.Transactions(opts)}, nil
}
