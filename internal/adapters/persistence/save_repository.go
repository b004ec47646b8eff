package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/idlecolony-go/internal/application/game"
)

// StateValidator checks a JSON save document before it is decoded
type StateValidator interface {
	Validate(data []byte) error
}

// GormSaveRepository implements game.SaveRepository with one row per slot
type GormSaveRepository struct {
	db        *gorm.DB
	validator StateValidator
}

// NewGormSaveRepository creates a save repository. The validator may be nil.
func NewGormSaveRepository(db *gorm.DB, validator StateValidator) *GormSaveRepository {
	return &GormSaveRepository{db: db, validator: validator}
}

// Save inserts or replaces the slot's row
func (r *GormSaveRepository) Save(ctx context.Context, slot string, state *game.GameState) error {
	if slot == "" {
		return fmt.Errorf("save slot is required")
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	model := &SaveSlotModel{
		Slot:      slot,
		Version:   state.Version,
		SavedAt:   state.SavedAt,
		ClockTime: state.ClockTime,
		State:     string(data),
		Size:      len(data),
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slot"}}, UpdateAll: true}).
		Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save slot %s: %w", slot, result.Error)
	}
	return nil
}

// Load reads and validates the slot's state
func (r *GormSaveRepository) Load(ctx context.Context, slot string) (*game.GameState, error) {
	var model SaveSlotModel
	result := r.db.WithContext(ctx).Where("slot = ?", slot).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, &game.ErrSaveNotFound{Slot: slot}
		}
		return nil, fmt.Errorf("failed to find slot %s: %w", slot, result.Error)
	}

	if r.validator != nil {
		if err := r.validator.Validate([]byte(model.State)); err != nil {
			return nil, fmt.Errorf("slot %s: %w", slot, err)
		}
	}

	var state game.GameState
	if err := json.Unmarshal([]byte(model.State), &state); err != nil {
		return nil, fmt.Errorf("failed to decode slot %s: %w", slot, err)
	}
	return &state, nil
}

// List returns slot summaries, newest first
func (r *GormSaveRepository) List(ctx context.Context) ([]game.SaveSummary, error) {
	var models []SaveSlotModel
	result := r.db.WithContext(ctx).
		Select("slot", "version", "saved_at", "clock_time", "size").
		Order("saved_at DESC").Order("slot ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list saves: %w", result.Error)
	}

	summaries := make([]game.SaveSummary, len(models))
	for i, model := range models {
		summaries[i] = game.SaveSummary{
			Slot:      model.Slot,
			Version:   model.Version,
			SavedAt:   model.SavedAt,
			ClockTime: model.ClockTime,
			Size:      model.Size,
		}
	}
	return summaries, nil
}

// Delete removes the slot's row
func (r *GormSaveRepository) Delete(ctx context.Context, slot string) error {
	result := r.db.WithContext(ctx).Where("slot = ?", slot).Delete(&SaveSlotModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete slot %s: %w", slot, result.Error)
	}
	if result.RowsAffected == 0 {
		return &game.ErrSaveNotFound{Slot: slot}
	}
	return nil
}
