package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/idlecolony-go/internal/application/common"
	"github.com/andrescamacho/idlecolony-go/internal/application/game"
)

// StartConstructionCommand starts building a new instance of a type
type StartConstructionCommand struct {
	BuildingType string
}

// StartConstructionResponse carries the id of the new instance
type StartConstructionResponse struct {
	InstanceID   string
	BuildingType string
}

// StartConstructionHandler handles the StartConstruction command
type StartConstructionHandler struct {
	engine *game.Engine
}

// NewStartConstructionHandler creates a new StartConstructionHandler
func NewStartConstructionHandler(engine *game.Engine) *StartConstructionHandler {
	return &StartConstructionHandler{engine: engine}
}

// Handle executes the StartConstruction command
func (h *StartConstructionHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*StartConstructionCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *StartConstructionCommand")
	}

	id, err := h.engine.StartConstruction(cmd.BuildingType)
	if err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Log(common.LevelInfo, "construction started", map[string]interface{}{
		"building_type": cmd.BuildingType,
		"instance_id":   id,
	})
	return &StartConstructionResponse{InstanceID: id, BuildingType: cmd.BuildingType}, nil
}

// PurchaseBuildingUpgradeCommand buys the next level of an instance upgrade
type PurchaseBuildingUpgradeCommand struct {
	InstanceID string
	UpgradeID  string
}

// PurchaseBuildingUpgradeResponse carries the new level
type PurchaseBuildingUpgradeResponse struct {
	InstanceID string
	UpgradeID  string
	Level      int
}

// PurchaseBuildingUpgradeHandler handles the PurchaseBuildingUpgrade command
type PurchaseBuildingUpgradeHandler struct {
	engine *game.Engine
}

// NewPurchaseBuildingUpgradeHandler creates a new PurchaseBuildingUpgradeHandler
func NewPurchaseBuildingUpgradeHandler(engine *game.Engine) *PurchaseBuildingUpgradeHandler {
	return &PurchaseBuildingUpgradeHandler{engine: engine}
}

// Handle executes the PurchaseBuildingUpgrade command
func (h *PurchaseBuildingUpgradeHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*PurchaseBuildingUpgradeCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *PurchaseBuildingUpgradeCommand")
	}

	level, err := h.engine.PurchaseBuildingUpgrade(cmd.InstanceID, cmd.UpgradeID)
	if err != nil {
		return nil, err
	}
	return &PurchaseBuildingUpgradeResponse{
		InstanceID: cmd.InstanceID,
		UpgradeID:  cmd.UpgradeID,
		Level:      level,
	}, nil
}

// StartTrainingCommand queues a training program in a training building
type StartTrainingCommand struct {
	BuildingID string
	ProgramID  string
}

// StartTrainingResponse describes the queued entry
type StartTrainingResponse struct {
	BuildingID   string
	ProgramID    string
	OutputWorker string
	OutputCount  int
	CompletesIn  float64
}

// StartTrainingHandler handles the StartTraining command
type StartTrainingHandler struct {
	engine *game.Engine
}

// NewStartTrainingHandler creates a new StartTrainingHandler
func NewStartTrainingHandler(engine *game.Engine) *StartTrainingHandler {
	return &StartTrainingHandler{engine: engine}
}

// Handle executes the StartTraining command
func (h *StartTrainingHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*StartTrainingCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *StartTrainingCommand")
	}

	entry, err := h.engine.StartTraining(cmd.BuildingID, cmd.ProgramID)
	if err != nil {
		return nil, err
	}
	return &StartTrainingResponse{
		BuildingID:   cmd.BuildingID,
		ProgramID:    entry.ProgramID,
		OutputWorker: entry.OutputWorker,
		OutputCount:  entry.OutputCount,
		CompletesIn:  entry.CompletesAt().Sub(h.engine.Now()).Seconds(),
	}, nil
}
