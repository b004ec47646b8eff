package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrescamacho/idlecolony-go/internal/application/common"
	"github.com/andrescamacho/idlecolony-go/internal/application/game"
)

// SaveGameCommand writes the current state to a slot
type SaveGameCommand struct {
	Slot string
}

// SaveGameResponse describes the written save
type SaveGameResponse struct {
	Slot  string
	State *game.GameState
}

// SaveGameHandler handles the SaveGame command
type SaveGameHandler struct {
	engine *game.Engine
	saves  game.SaveRepository
}

// NewSaveGameHandler creates a new SaveGameHandler
func NewSaveGameHandler(engine *game.Engine, saves game.SaveRepository) *SaveGameHandler {
	return &SaveGameHandler{engine: engine, saves: saves}
}

// Handle executes the SaveGame command
func (h *SaveGameHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*SaveGameCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *SaveGameCommand")
	}
	if cmd.Slot == "" {
		return nil, fmt.Errorf("save slot is required")
	}

	state := h.engine.Save()
	if err := h.saves.Save(ctx, cmd.Slot, state); err != nil {
		return nil, fmt.Errorf("failed to save slot %s: %w", cmd.Slot, err)
	}

	common.LoggerFromContext(ctx).Log(common.LevelInfo, "game saved", map[string]interface{}{
		"slot":    cmd.Slot,
		"elapsed": h.engine.Elapsed().String(),
	})
	return &SaveGameResponse{Slot: cmd.Slot, State: state}, nil
}

// LoadGameCommand replaces the current state with a saved one. A missing
// slot is an error unless IgnoreMissing is set, in which case the engine
// is left untouched.
type LoadGameCommand struct {
	Slot          string
	IgnoreMissing bool
}

// LoadGameResponse reports whether a save was applied
type LoadGameResponse struct {
	Slot   string
	Loaded bool
}

// LoadGameHandler handles the LoadGame command
type LoadGameHandler struct {
	engine *game.Engine
	saves  game.SaveRepository
}

// NewLoadGameHandler creates a new LoadGameHandler
func NewLoadGameHandler(engine *game.Engine, saves game.SaveRepository) *LoadGameHandler {
	return &LoadGameHandler{engine: engine, saves: saves}
}

// Handle executes the LoadGame command
func (h *LoadGameHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*LoadGameCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *LoadGameCommand")
	}
	if cmd.Slot == "" {
		return nil, fmt.Errorf("save slot is required")
	}

	state, err := h.saves.Load(ctx, cmd.Slot)
	if err != nil {
		var notFound *game.ErrSaveNotFound
		if cmd.IgnoreMissing && errors.As(err, &notFound) {
			return &LoadGameResponse{Slot: cmd.Slot}, nil
		}
		return nil, fmt.Errorf("failed to load slot %s: %w", cmd.Slot, err)
	}

	h.engine.Load(state)
	return &LoadGameResponse{Slot: cmd.Slot, Loaded: true}, nil
}

// DeleteSaveCommand removes a slot
type DeleteSaveCommand struct {
	Slot string
}

// DeleteSaveHandler handles the DeleteSave command
type DeleteSaveHandler struct {
	saves game.SaveRepository
}

// NewDeleteSaveHandler creates a new DeleteSaveHandler
func NewDeleteSaveHandler(saves game.SaveRepository) *DeleteSaveHandler {
	return &DeleteSaveHandler{saves: saves}
}

// Handle executes the DeleteSave command
func (h *DeleteSaveHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*DeleteSaveCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *DeleteSaveCommand")
	}
	if err := h.saves.Delete(ctx, cmd.Slot); err != nil {
		return nil, fmt.Errorf("failed to delete slot %s: %w", cmd.Slot, err)
	}
	return struct{}{}, nil
}

// ResetGameCommand returns the colony to its starting state
type ResetGameCommand struct{}

// ResetGameHandler handles the ResetGame command
type ResetGameHandler struct {
	engine *game.Engine
}

// NewResetGameHandler creates a new ResetGameHandler
func NewResetGameHandler(engine *game.Engine) *ResetGameHandler {
	return &ResetGameHandler{engine: engine}
}

// Handle executes the ResetGame command
func (h *ResetGameHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*ResetGameCommand); !ok {
		return nil, fmt.Errorf("invalid request type: expected *ResetGameCommand")
	}
	h.engine.Reset()
	return struct{}{}, nil
}
