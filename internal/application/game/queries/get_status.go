package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/idlecolony-go/internal/application/common"
	"github.com/andrescamacho/idlecolony-go/internal/application/game"
	"github.com/andrescamacho/idlecolony-go/internal/domain/building"
)

// GetStatusQuery asks for the full colony view
type GetStatusQuery struct{}

// GetStatusHandler handles the GetStatus query
type GetStatusHandler struct {
	engine *game.Engine
}

// NewGetStatusHandler creates a new GetStatusHandler
func NewGetStatusHandler(engine *game.Engine) *GetStatusHandler {
	return &GetStatusHandler{engine: engine}
}

// Handle executes the GetStatus query; the response is a *game.Status
func (h *GetStatusHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*GetStatusQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetStatusQuery")
	}
	status := h.engine.Status()
	return &status, nil
}

// CanBuildQuery pre-checks constructions. An empty BuildingTypes checks
// every type in the catalog.
type CanBuildQuery struct {
	BuildingTypes []string
}

// BuildOption is the construction check of one building type
type BuildOption struct {
	BuildingType string
	Check        building.Check
	Cost         map[string]float64
}

// CanBuildResponse lists the checks in catalog order
type CanBuildResponse struct {
	Options []BuildOption
}

// CanBuildHandler handles the CanBuild query
type CanBuildHandler struct {
	engine *game.Engine
}

// NewCanBuildHandler creates a new CanBuildHandler
func NewCanBuildHandler(engine *game.Engine) *CanBuildHandler {
	return &CanBuildHandler{engine: engine}
}

// Handle executes the CanBuild query
func (h *CanBuildHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*CanBuildQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CanBuildQuery")
	}

	types := query.BuildingTypes
	if len(types) == 0 {
		for _, def := range h.engine.Catalog().Buildings {
			types = append(types, def.ID)
		}
	}

	resp := &CanBuildResponse{Options: make([]BuildOption, 0, len(types))}
	for _, id := range types {
		resp.Options = append(resp.Options, BuildOption{
			BuildingType: id,
			Check:        h.engine.CanBuild(id),
			Cost:         h.engine.ConstructionCost(id),
		})
	}
	return resp, nil
}

// ListSavesQuery lists the stored save slots
type ListSavesQuery struct{}

// ListSavesResponse carries the slots, newest first
type ListSavesResponse struct {
	Saves []game.SaveSummary
}

// ListSavesHandler handles the ListSaves query
type ListSavesHandler struct {
	saves game.SaveRepository
}

// NewListSavesHandler creates a new ListSavesHandler
func NewListSavesHandler(saves game.SaveRepository) *ListSavesHandler {
	return &ListSavesHandler{saves: saves}
}

// Handle executes the ListSaves query
func (h *ListSavesHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*ListSavesQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListSavesQuery")
	}
	saves, err := h.saves.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}
	return &ListSavesResponse{Saves: saves}, nil
}

// RegisterHandlers registers every colony query on the mediator
func RegisterHandlers(m common.Mediator, engine *game.Engine, saves game.SaveRepository) error {
	if err := common.RegisterHandler[*GetStatusQuery](m, NewGetStatusHandler(engine)); err != nil {
		return err
	}
	if err := common.RegisterHandler[*CanBuildQuery](m, NewCanBuildHandler(engine)); err != nil {
		return err
	}
	if err := common.RegisterHandler[*GetJournalQuery](m, NewGetJournalHandler(engine)); err != nil {
		return err
	}
	if saves != nil {
		return common.RegisterHandler[*ListSavesQuery](m, NewListSavesHandler(saves))
	}
	return nil
}
