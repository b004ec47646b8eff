package building

import (
	"math"

	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
)

// Kind selects the per-instance sub-state of a building type
type Kind string

const (
	KindGenerator Kind = "generator"
	KindTraining  Kind = "training"
	KindPassive   Kind = "passive"
)

// Effect keys understood by the engine
const (
	EffectStorageBonus      = "storageBonus"
	EffectSpeedBonus        = "speedBonus"
	EffectConstructionSlots = "constructionSlots"
	EffectRoomCapacity      = "roomCapacity"
	EffectTrainingSlots     = "trainingSlots"
)

// UnlockKind is the predicate gating a building type
type UnlockKind string

const (
	UnlockNone               UnlockKind = "none"
	UnlockResourcesMined     UnlockKind = "resources_mined"
	UnlockBuildingsCompleted UnlockKind = "buildings_completed"
)

// Unlock gates construction behind a cumulative milestone. Resource narrows
// resources_mined to one resource; empty counts all of them.
type Unlock struct {
	Kind      UnlockKind `yaml:"kind" json:"kind" validate:"omitempty,oneof=none resources_mined buildings_completed"`
	Resource  string     `yaml:"resource" json:"resource"`
	Threshold float64    `yaml:"threshold" json:"threshold" validate:"gte=0"`
}

// UpgradeDefinition is a per-instance upgrade adding PerLevel to Effect for
// every level purchased
type UpgradeDefinition struct {
	ID             string             `yaml:"id" json:"id" validate:"required"`
	Name           string             `yaml:"name" json:"name"`
	Effect         string             `yaml:"effect" json:"effect" validate:"required"`
	PerLevel       float64            `yaml:"per_level" json:"per_level"`
	MaxLevel       int                `yaml:"max_level" json:"max_level" validate:"gte=1"`
	Cost           map[string]float64 `yaml:"cost" json:"cost"`
	CostMultiplier float64            `yaml:"cost_multiplier" json:"cost_multiplier" validate:"omitempty,gte=1"`
}

// CostAt returns the cost of buying the level after currentLevel
func (u UpgradeDefinition) CostAt(currentLevel int) shared.ResourceMap {
	return ScaledCost(u.Cost, u.CostMultiplier, currentLevel)
}

// GeneratorSpec configures worker-generating rooms
type GeneratorSpec struct {
	WorkerType string  `yaml:"worker_type" json:"worker_type" validate:"required"`
	Rooms      int     `yaml:"rooms" json:"rooms" validate:"gte=1"`
	MaxWorkers int     `yaml:"max_workers" json:"max_workers" validate:"gte=1"`
	Interval   float64 `yaml:"interval" json:"interval" validate:"gt=0"`
}

// TrainingProgram converts InputCount workers of InputWorker into
// OutputCount workers of OutputWorker after Duration seconds
type TrainingProgram struct {
	ID           string             `yaml:"id" json:"id" validate:"required"`
	Name         string             `yaml:"name" json:"name"`
	InputWorker  string             `yaml:"input_worker" json:"input_worker" validate:"required"`
	InputCount   int                `yaml:"input_count" json:"input_count" validate:"gte=1"`
	OutputWorker string             `yaml:"output_worker" json:"output_worker" validate:"required"`
	OutputCount  int                `yaml:"output_count" json:"output_count" validate:"gte=1"`
	Cost         map[string]float64 `yaml:"cost" json:"cost"`
	Duration     float64            `yaml:"duration" json:"duration" validate:"gt=0"`
}

// TrainingSpec configures a training building
type TrainingSpec struct {
	Slots    int               `yaml:"slots" json:"slots" validate:"gte=1"`
	Programs []TrainingProgram `yaml:"programs" json:"programs" validate:"required,min=1,dive"`
}

// Program returns a program by id
func (s TrainingSpec) Program(id string) (TrainingProgram, bool) {
	for _, p := range s.Programs {
		if p.ID == id {
			return p, true
		}
	}
	return TrainingProgram{}, false
}

// Type is the static description of a building type
type Type struct {
	ID             string              `yaml:"id" json:"id" validate:"required"`
	Name           string              `yaml:"name" json:"name"`
	Kind           Kind                `yaml:"kind" json:"kind" validate:"required,oneof=generator training passive"`
	BaseCost       map[string]float64  `yaml:"base_cost" json:"base_cost"`
	CostMultiplier float64             `yaml:"cost_multiplier" json:"cost_multiplier" validate:"omitempty,gte=1"`
	BuildTime      float64             `yaml:"build_time" json:"build_time" validate:"gte=0"`
	MaxCount       int                 `yaml:"max_count" json:"max_count" validate:"gte=0"`
	Unlock         Unlock              `yaml:"unlock" json:"unlock"`
	Effects        map[string]float64  `yaml:"effects" json:"effects"`
	Upgrades       []UpgradeDefinition `yaml:"upgrades" json:"upgrades" validate:"dive"`
	Generator      *GeneratorSpec      `yaml:"generator,omitempty" json:"generator,omitempty" validate:"required_if=Kind generator"`
	Training       *TrainingSpec       `yaml:"training,omitempty" json:"training,omitempty" validate:"required_if=Kind training"`
}

// Upgrade returns an upgrade definition by id
func (t Type) Upgrade(id string) (UpgradeDefinition, bool) {
	for _, u := range t.Upgrades {
		if u.ID == id {
			return u, true
		}
	}
	return UpgradeDefinition{}, false
}

// CostFor returns the cost of the next instance when started instances
// already exist
func (t Type) CostFor(started int) shared.ResourceMap {
	return ScaledCost(t.BaseCost, t.CostMultiplier, started)
}

// ScaledCost computes floor(base * multiplier^n) for every entry.
// A multiplier below 1 is treated as 1.
func ScaledCost(base map[string]float64, multiplier float64, n int) shared.ResourceMap {
	if multiplier < 1 {
		multiplier = 1
	}
	if n < 0 {
		n = 0
	}
	return shared.ResourceMap(base).Scale(math.Pow(multiplier, float64(n))).Floor()
}
