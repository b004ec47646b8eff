package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/idlecolony-go/internal/application/common"
	"github.com/andrescamacho/idlecolony-go/internal/application/game"
)

// AssignWorkersCommand sends free workers of one type to a node or activity
type AssignWorkersCommand struct {
	WorkerType string
	TargetID   string
	Count      int
}

// AssignmentResponse reports the assignment counts after a change
type AssignmentResponse struct {
	WorkerType string
	TargetID   string
	Assigned   int
	Free       int
}

// AssignWorkersHandler handles the AssignWorkers command
type AssignWorkersHandler struct {
	engine *game.Engine
}

// NewAssignWorkersHandler creates a new AssignWorkersHandler
func NewAssignWorkersHandler(engine *game.Engine) *AssignWorkersHandler {
	return &AssignWorkersHandler{engine: engine}
}

// Handle executes the AssignWorkers command
func (h *AssignWorkersHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*AssignWorkersCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *AssignWorkersCommand")
	}

	if err := h.engine.Assign(cmd.WorkerType, cmd.TargetID, cmd.Count); err != nil {
		return nil, err
	}
	return assignmentResponse(h.engine, cmd.WorkerType, cmd.TargetID), nil
}

// UnassignWorkersCommand recalls workers from a target. All recalls every
// worker of every type from every target and ignores the other fields.
type UnassignWorkersCommand struct {
	WorkerType string
	TargetID   string
	Count      int
	All        bool
}

// UnassignWorkersHandler handles the UnassignWorkers command
type UnassignWorkersHandler struct {
	engine *game.Engine
}

// NewUnassignWorkersHandler creates a new UnassignWorkersHandler
func NewUnassignWorkersHandler(engine *game.Engine) *UnassignWorkersHandler {
	return &UnassignWorkersHandler{engine: engine}
}

// Handle executes the UnassignWorkers command
func (h *UnassignWorkersHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*UnassignWorkersCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *UnassignWorkersCommand")
	}

	if cmd.All {
		h.engine.UnassignAll()
		return &AssignmentResponse{}, nil
	}
	if err := h.engine.Unassign(cmd.WorkerType, cmd.TargetID, cmd.Count); err != nil {
		return nil, err
	}
	return assignmentResponse(h.engine, cmd.WorkerType, cmd.TargetID), nil
}

// ReassignWorkersCommand moves workers between two targets
type ReassignWorkersCommand struct {
	WorkerType string
	FromID     string
	ToID       string
	Count      int
}

// ReassignWorkersHandler handles the ReassignWorkers command
type ReassignWorkersHandler struct {
	engine *game.Engine
}

// NewReassignWorkersHandler creates a new ReassignWorkersHandler
func NewReassignWorkersHandler(engine *game.Engine) *ReassignWorkersHandler {
	return &ReassignWorkersHandler{engine: engine}
}

// Handle executes the ReassignWorkers command
func (h *ReassignWorkersHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ReassignWorkersCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ReassignWorkersCommand")
	}

	if err := h.engine.Reassign(cmd.WorkerType, cmd.FromID, cmd.ToID, cmd.Count); err != nil {
		return nil, err
	}
	return assignmentResponse(h.engine, cmd.WorkerType, cmd.ToID), nil
}

func assignmentResponse(engine *game.Engine, workerType, targetID string) *AssignmentResponse {
	return &AssignmentResponse{
		WorkerType: workerType,
		TargetID:   targetID,
		Assigned:   engine.AssignedTo(targetID, workerType),
		Free:       engine.FreeWorkers(workerType),
	}
}
