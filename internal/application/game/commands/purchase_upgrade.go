package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/idlecolony-go/internal/application/common"
	"github.com/andrescamacho/idlecolony-go/internal/application/game"
)

// PurchaseUpgradeCommand buys a global upgrade
type PurchaseUpgradeCommand struct {
	UpgradeID string
}

// PurchaseUpgradeResponse represents the result of a purchase
type PurchaseUpgradeResponse struct {
	UpgradeID string
	Balances  map[string]float64
}

// PurchaseUpgradeHandler handles the PurchaseUpgrade command
type PurchaseUpgradeHandler struct {
	engine *game.Engine
}

// NewPurchaseUpgradeHandler creates a new PurchaseUpgradeHandler
func NewPurchaseUpgradeHandler(engine *game.Engine) *PurchaseUpgradeHandler {
	return &PurchaseUpgradeHandler{engine: engine}
}

// Handle executes the PurchaseUpgrade command
func (h *PurchaseUpgradeHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*PurchaseUpgradeCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *PurchaseUpgradeCommand")
	}

	if err := h.engine.PurchaseUpgrade(cmd.UpgradeID); err != nil {
		return nil, err
	}
	return &PurchaseUpgradeResponse{
		UpgradeID: cmd.UpgradeID,
		Balances:  h.engine.Balances(),
	}, nil
}

// ActivateBoostCommand buys and starts a consumable boost
type ActivateBoostCommand struct {
	BoostID string
}

// ActivateBoostResponse represents an activated boost
type ActivateBoostResponse struct {
	BoostID string
}

// ActivateBoostHandler handles the ActivateBoost command
type ActivateBoostHandler struct {
	engine *game.Engine
}

// NewActivateBoostHandler creates a new ActivateBoostHandler
func NewActivateBoostHandler(engine *game.Engine) *ActivateBoostHandler {
	return &ActivateBoostHandler{engine: engine}
}

// Handle executes the ActivateBoost command
func (h *ActivateBoostHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ActivateBoostCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ActivateBoostCommand")
	}

	if err := h.engine.ActivateBoost(cmd.BoostID); err != nil {
		return nil, err
	}
	return &ActivateBoostResponse{BoostID: cmd.BoostID}, nil
}
