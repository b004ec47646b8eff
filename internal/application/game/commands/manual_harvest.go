package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/idlecolony-go/internal/application/common"
	"github.com/andrescamacho/idlecolony-go/internal/application/game"
	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
)

// ManualHarvestCommand harvests a node or runs an activity cycle by hand.
// Times repeats the click; it stops at the first rejection.
type ManualHarvestCommand struct {
	TargetID string
	Times    int
}

// ManualHarvestResponse carries everything credited
type ManualHarvestResponse struct {
	TargetID string
	Times    int
	Credited shared.ResourceMap
}

// ManualHarvestHandler handles the ManualHarvest command
type ManualHarvestHandler struct {
	engine *game.Engine
}

// NewManualHarvestHandler creates a new ManualHarvestHandler
func NewManualHarvestHandler(engine *game.Engine) *ManualHarvestHandler {
	return &ManualHarvestHandler{engine: engine}
}

// Handle executes the ManualHarvest command
func (h *ManualHarvestHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ManualHarvestCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ManualHarvestCommand")
	}

	times := cmd.Times
	if times <= 0 {
		times = 1
	}

	resp := &ManualHarvestResponse{TargetID: cmd.TargetID, Credited: shared.ResourceMap{}}
	for i := 0; i < times; i++ {
		payload, err := h.engine.ManualHarvest(cmd.TargetID)
		if err != nil {
			if resp.Times == 0 {
				return nil, err
			}
			break
		}
		resp.Credited.Add(payload)
		resp.Times++
	}
	return resp, nil
}
