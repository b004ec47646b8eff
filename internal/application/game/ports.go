package game

import (
	"context"
	"fmt"
)

// SaveRepository stores game states by slot
type SaveRepository interface {
	Save(ctx context.Context, slot string, state *GameState) error
	Load(ctx context.Context, slot string) (*GameState, error)
	List(ctx context.Context) ([]SaveSummary, error)
	Delete(ctx context.Context, slot string) error
}

// ErrSaveNotFound is returned when a slot holds no save
type ErrSaveNotFound struct {
	Slot string
}

func (e *ErrSaveNotFound) Error() string {
	return fmt.Sprintf("no save in slot %q", e.Slot)
}
