package queries

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/andrescamacho/idlecolony-go/internal/application/common"
	"github.com/andrescamacho/idlecolony-go/internal/domain/ledger"
)

// GetResourceFlowQuery summarises persisted transactions per resource and
// category. Nil dates leave the range open.
type GetResourceFlowQuery struct {
	StartDate *time.Time
	EndDate   *time.Time
	Resource  *string
}

// GetResourceFlowResponse represents the flow statement
type GetResourceFlowResponse struct {
	Resources []*ResourceFlow
}

// ResourceFlow is the flow of one resource
type ResourceFlow struct {
	Resource   string
	Inflow     float64
	Outflow    float64
	NetFlow    float64
	Categories []*CategoryFlow
}

// CategoryFlow is the flow of one resource within one category
type CategoryFlow struct {
	Category     string
	Inflow       float64
	Outflow      float64
	NetFlow      float64
	Transactions int
}

// GetResourceFlowHandler handles the GetResourceFlow query
type GetResourceFlowHandler struct {
	transactionRepo ledger.TransactionRepository
}

// NewGetResourceFlowHandler creates a new GetResourceFlowHandler
func NewGetResourceFlowHandler(transactionRepo ledger.TransactionRepository) *GetResourceFlowHandler {
	return &GetResourceFlowHandler{transactionRepo: transactionRepo}
}

// Handle executes the GetResourceFlow query
func (h *GetResourceFlowHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetResourceFlowQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetResourceFlowQuery")
	}

	opts := ledger.QueryOptions{
		StartDate: query.StartDate,
		EndDate:   query.EndDate,
		Resource:  query.Resource,
		OrderBy:   "timestamp ASC",
	}

	transactions, err := h.transactionRepo.Find(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}

	return calculateResourceFlow(transactions), nil
}

func calculateResourceFlow(transactions []*ledger.Transaction) *GetResourceFlowResponse {
	byResource := make(map[string]*ResourceFlow)
	byCategory := make(map[string]map[string]*CategoryFlow)

	for _, tx := range transactions {
		resource := tx.Resource()
		flow, ok := byResource[resource]
		if !ok {
			flow = &ResourceFlow{Resource: resource}
			byResource[resource] = flow
			byCategory[resource] = make(map[string]*CategoryFlow)
		}

		category := tx.Category().String()
		catFlow, ok := byCategory[resource][category]
		if !ok {
			catFlow = &CategoryFlow{Category: category}
			byCategory[resource][category] = catFlow
			flow.Categories = append(flow.Categories, catFlow)
		}

		catFlow.Transactions++
		if amount := tx.Amount(); amount > 0 {
			catFlow.Inflow += amount
			flow.Inflow += amount
		} else {
			catFlow.Outflow -= amount
			flow.Outflow -= amount
		}
		catFlow.NetFlow = catFlow.Inflow - catFlow.Outflow
		flow.NetFlow = flow.Inflow - flow.Outflow
	}

	resp := &GetResourceFlowResponse{Resources: make([]*ResourceFlow, 0, len(byResource))}
	for _, flow := range byResource {
		sort.Slice(flow.Categories, func(i, j int) bool {
			return flow.Categories[i].Category < flow.Categories[j].Category
		})
		resp.Resources = append(resp.Resources, flow)
	}
	sort.Slice(resp.Resources, func(i, j int) bool {
		return resp.Resources[i].Resource < resp.Resources[j].Resource
	})
	return resp
}
