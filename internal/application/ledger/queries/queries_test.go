package queries

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/idlecolony-go/internal/domain/ledger"
)

var flowStart = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

// memoryRepository is an in-memory ledger.TransactionRepository
type memoryRepository struct {
	transactions []*ledger.Transaction
	lastOpts     ledger.QueryOptions
	findErr      error
}

func (r *memoryRepository) CreateBatch(_ context.Context, txs []*ledger.Transaction) error {
	r.transactions = append(r.transactions, txs...)
	return nil
}

func (r *memoryRepository) matching(opts ledger.QueryOptions) []*ledger.Transaction {
	var out []*ledger.Transaction
	for _, tx := range r.transactions {
		if opts.Matches(tx) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if opts.OrderBy == "timestamp ASC" {
			return out[i].Timestamp().Before(out[j].Timestamp())
		}
		return out[i].Timestamp().After(out[j].Timestamp())
	})
	return out
}

func (r *memoryRepository) Find(_ context.Context, opts ledger.QueryOptions) ([]*ledger.Transaction, error) {
	r.lastOpts = opts
	if r.findErr != nil {
		return nil, r.findErr
	}
	out := r.matching(opts)
	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return nil, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (r *memoryRepository) Count(_ context.Context, opts ledger.QueryOptions) (int, error) {
	return len(r.matching(opts)), nil
}

func (r *memoryRepository) DeleteAll(context.Context) error {
	r.transactions = nil
	return nil
}

func tx(t *testing.T, offset time.Duration, txType ledger.TransactionType, resource string, amount, before float64) *ledger.Transaction {
	t.Helper()
	created, err := ledger.NewTransaction(flowStart.Add(offset), txType, resource, amount, before, before+amount, "forest")
	require.NoError(t, err)
	return created
}

func journal(t *testing.T) []*ledger.Transaction {
	return []*ledger.Transaction{
		tx(t, 0, ledger.TransactionTypeHarvestDeposit, "wood", 5, 0),
		tx(t, time.Second, ledger.TransactionTypeHarvestDeposit, "wood", 5, 5),
		tx(t, 2*time.Second, ledger.TransactionTypeConstructionCost, "wood", -7.5, 10),
		tx(t, 3*time.Second, ledger.TransactionTypeActivityInput, "wood", -2, 2.5),
		tx(t, 4*time.Second, ledger.TransactionTypeHarvestDeposit, "stone", 2, 0),
	}
}

func TestCalculateResourceFlow(t *testing.T) {
	resp := calculateResourceFlow(journal(t))

	require.Len(t, resp.Resources, 2)
	stone, wood := resp.Resources[0], resp.Resources[1]

	assert.Equal(t, "stone", stone.Resource)
	assert.Equal(t, 2.0, stone.Inflow)
	assert.Equal(t, 0.0, stone.Outflow)
	assert.Equal(t, 2.0, stone.NetFlow)

	assert.Equal(t, "wood", wood.Resource)
	assert.Equal(t, 10.0, wood.Inflow)
	assert.Equal(t, 9.5, wood.Outflow)
	assert.InDelta(t, 0.5, wood.NetFlow, 1e-9)

	require.Len(t, wood.Categories, 3)
	assert.Equal(t, "CONSUMPTION", wood.Categories[0].Category)
	assert.Equal(t, 2.0, wood.Categories[0].Outflow)
	assert.Equal(t, "INVESTMENT", wood.Categories[1].Category)
	assert.Equal(t, -7.5, wood.Categories[1].NetFlow)
	assert.Equal(t, "PRODUCTION", wood.Categories[2].Category)
	assert.Equal(t, 2, wood.Categories[2].Transactions)
	assert.Equal(t, 10.0, wood.Categories[2].Inflow)
}

func TestCalculateResourceFlow_EmptyJournal(t *testing.T) {
	resp := calculateResourceFlow(nil)

	require.NotNil(t, resp)
	assert.Empty(t, resp.Resources)
}

func TestGetResourceFlowHandler_Filters(t *testing.T) {
	wood := "wood"
	from := flowStart.Add(time.Second)
	until := flowStart.Add(2 * time.Second)

	tests := []struct {
		name      string
		query     *GetResourceFlowQuery
		resources []string
		inflow    map[string]float64
		outflow   map[string]float64
	}{
		{
			name:      "whole journal",
			query:     &GetResourceFlowQuery{},
			resources: []string{"stone", "wood"},
			inflow:    map[string]float64{"stone": 2, "wood": 10},
			outflow:   map[string]float64{"stone": 0, "wood": 9.5},
		},
		{
			name:      "single resource",
			query:     &GetResourceFlowQuery{Resource: &wood},
			resources: []string{"wood"},
			inflow:    map[string]float64{"wood": 10},
			outflow:   map[string]float64{"wood": 9.5},
		},
		{
			name:      "time window",
			query:     &GetResourceFlowQuery{StartDate: &from, EndDate: &until},
			resources: []string{"wood"},
			inflow:    map[string]float64{"wood": 5},
			outflow:   map[string]float64{"wood": 7.5},
		},
		{
			name:      "window with no transactions",
			query:     &GetResourceFlowQuery{StartDate: &until, EndDate: &from},
			resources: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memoryRepository{transactions: journal(t)}
			handler := NewGetResourceFlowHandler(repo)

			resp, err := handler.Handle(context.Background(), tt.query)
			require.NoError(t, err)

			flow := resp.(*GetResourceFlowResponse)
			names := make([]string, 0, len(flow.Resources))
			for _, r := range flow.Resources {
				names = append(names, r.Resource)
				assert.Equal(t, tt.inflow[r.Resource], r.Inflow, r.Resource)
				assert.Equal(t, tt.outflow[r.Resource], r.Outflow, r.Resource)
			}
			assert.Equal(t, tt.resources, names)
			assert.Equal(t, "timestamp ASC", repo.lastOpts.OrderBy)
		})
	}
}

func TestGetResourceFlowHandler_RepositoryError(t *testing.T) {
	handler := NewGetResourceFlowHandler(&memoryRepository{findErr: errors.New("db down")})

	_, err := handler.Handle(context.Background(), &GetResourceFlowQuery{})

	assert.ErrorContains(t, err, "db down")
}

func TestGetTransactionsHandler_LimitAndOrdering(t *testing.T) {
	txs := journal(t)
	repo := &memoryRepository{transactions: txs}
	handler := NewGetTransactionsHandler(repo)
	ctx := context.Background()

	resp, err := handler.Handle(ctx, &GetTransactionsQuery{Limit: 2})
	require.NoError(t, err)
	page := resp.(*GetTransactionsResponse)
	require.Len(t, page.Transactions, 2)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, txs[4].ID(), page.Transactions[0].ID)
	assert.Equal(t, txs[3].ID(), page.Transactions[1].ID)

	resp, err = handler.Handle(ctx, &GetTransactionsQuery{Limit: 2, Offset: 1, OrderBy: "timestamp ASC"})
	require.NoError(t, err)
	page = resp.(*GetTransactionsResponse)
	require.Len(t, page.Transactions, 2)
	assert.Equal(t, txs[1].ID(), page.Transactions[0].ID)
	assert.Equal(t, txs[2].ID(), page.Transactions[1].ID)
	assert.Equal(t, "INVESTMENT", page.Transactions[1].Category)
	assert.Equal(t, -7.5, page.Transactions[1].Amount)
}

func TestGetTransactionsHandler_DefaultsAndFilters(t *testing.T) {
	repo := &memoryRepository{transactions: journal(t)}
	handler := NewGetTransactionsHandler(repo)
	category := "PRODUCTION"

	resp, err := handler.Handle(context.Background(), &GetTransactionsQuery{Category: &category})
	require.NoError(t, err)

	page := resp.(*GetTransactionsResponse)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 50, repo.lastOpts.Limit)
	assert.Equal(t, "timestamp DESC", repo.lastOpts.OrderBy)
	for _, dto := range page.Transactions {
		assert.Equal(t, "PRODUCTION", dto.Category)
	}
}

func TestGetTransactionsHandler_RejectsInvalidQueries(t *testing.T) {
	handler := NewGetTransactionsHandler(&memoryRepository{})
	bogus := "BOGUS"

	tests := []struct {
		name  string
		query *GetTransactionsQuery
	}{
		{"unknown category", &GetTransactionsQuery{Category: &bogus}},
		{"unknown type", &GetTransactionsQuery{TransactionType: &bogus}},
		{"unknown order", &GetTransactionsQuery{OrderBy: "amount DESC"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.Handle(context.Background(), tt.query)
			assert.Error(t, err)
		})
	}
}
