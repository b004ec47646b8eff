package game

import (
	"time"

	"github.com/andrescamacho/idlecolony-go/internal/domain/building"
	"github.com/andrescamacho/idlecolony-go/internal/domain/progress"
	"github.com/andrescamacho/idlecolony-go/internal/domain/skill"
	"github.com/andrescamacho/idlecolony-go/internal/domain/worker"
)

// CurrentVersion is the save format written by Save
const CurrentVersion = 1

// GameState is the versioned save blob. In-flight worker state is not part
// of it: loaded workers start idle at home.
type GameState struct {
	Version   int                      `json:"version" jsonschema:"minimum=0"`
	SavedAt   time.Time                `json:"saved_at"`
	ClockTime time.Time                `json:"clock_time"`
	Ledger    map[string]float64       `json:"ledger"`
	Skills    map[string]skill.State   `json:"skills"`
	Workers   worker.Snapshot          `json:"workers"`
	Nodes     []NodeState              `json:"nodes"`
	Progress  progress.State           `json:"progress"`
	Buildings []building.InstanceState `json:"buildings"`
}

// NodeState is the persisted form of a resource node
type NodeState struct {
	ID            string  `json:"id"`
	Available     float64 `json:"available"`
	CapacityLevel int     `json:"capacity_level"`
	SpawnLevel    int     `json:"spawn_level"`
}

// SaveSummary describes a stored save without decoding it
type SaveSummary struct {
	Slot      string
	Version   int
	SavedAt   time.Time
	ClockTime time.Time
	Size      int
}
