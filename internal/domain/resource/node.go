package resource

import (
	"math"

	"github.com/andrescamacho/idlecolony-go/internal/domain/ledger"
	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
)

// Multipliers are the additive per-level bonuses of node upgrades
type Multipliers struct {
	CapacityPerLevel  float64 `yaml:"capacity_per_level" json:"capacity_per_level" validate:"gte=0"`
	SpawnRatePerLevel float64 `yaml:"spawn_rate_per_level" json:"spawn_rate_per_level" validate:"gte=0"`
}

// DefaultMultipliers returns +50% capacity and +30% spawn rate per level
func DefaultMultipliers() Multipliers {
	return Multipliers{CapacityPerLevel: 0.5, SpawnRatePerLevel: 0.3}
}

// Definition is the static description of a resource node
type Definition struct {
	ID          string             `yaml:"id" json:"id" validate:"required"`
	Name        string             `yaml:"name" json:"name"`
	Skill       string             `yaml:"skill" json:"skill"`
	Position    shared.Position    `yaml:"position" json:"position"`
	Capacity    float64            `yaml:"capacity" json:"capacity" validate:"gt=0"`
	SpawnRate   float64            `yaml:"spawn_rate" json:"spawn_rate" validate:"gte=0"`
	HarvestTime float64            `yaml:"harvest_time" json:"harvest_time" validate:"gt=0"`
	Outputs     map[string]float64 `yaml:"outputs" json:"outputs" validate:"required,min=1"`
	XP          float64            `yaml:"xp" json:"xp" validate:"gte=0"`
}

// Node is a regenerating, harvestable location. Available units never leave
// [0, CurrentCapacity] and only whole units are harvested.
type Node struct {
	def           Definition
	multipliers   Multipliers
	available     float64
	capacityLevel int
	spawnLevel    int
	storageBonus  float64
}

// NewNode creates a node filled to capacity
func NewNode(def Definition, multipliers Multipliers) *Node {
	n := &Node{def: def, multipliers: multipliers}
	n.available = n.CurrentCapacity()
	return n
}

// Getters

func (n *Node) ID() string                  { return n.def.ID }
func (n *Node) Name() string                { return n.def.Name }
func (n *Node) Skill() string               { return n.def.Skill }
func (n *Node) Position() shared.Position   { return n.def.Position }
func (n *Node) HarvestTime() float64        { return n.def.HarvestTime }
func (n *Node) XP() float64                 { return n.def.XP }
func (n *Node) Available() float64          { return n.available }
func (n *Node) CapacityLevel() int          { return n.capacityLevel }
func (n *Node) SpawnLevel() int             { return n.spawnLevel }
func (n *Node) Definition() Definition      { return n.def }
func (n *Node) Outputs() shared.ResourceMap { return shared.ResourceMap(n.def.Outputs).Clone() }

// CurrentCapacity applies capacity upgrade levels and the building storage
// bonus to the base capacity
func (n *Node) CurrentCapacity() float64 {
	return n.def.Capacity * (1 + n.multipliers.CapacityPerLevel*float64(n.capacityLevel) + n.storageBonus)
}

// CurrentSpawnRate applies spawn upgrade levels to the base rate (units/second)
func (n *Node) CurrentSpawnRate() float64 {
	return n.def.SpawnRate * (1 + n.multipliers.SpawnRatePerLevel*float64(n.spawnLevel))
}

// Regenerate grows available units over dt seconds, capped at capacity
func (n *Node) Regenerate(dt float64) {
	if dt <= 0 {
		return
	}
	capacity := n.CurrentCapacity()
	if n.available >= capacity {
		return
	}
	n.available = math.Min(capacity, n.available+n.CurrentSpawnRate()*dt)
}

// CanHarvest reports whether at least one whole unit is present
func (n *Node) CanHarvest() bool {
	return n.available >= 1
}

// Harvest removes exactly one unit; false and no change when empty
func (n *Node) Harvest() bool {
	if !n.CanHarvest() {
		return false
	}
	n.available--
	return true
}

// Ready is the worker-facing form of CanHarvest
func (n *Node) Ready(ledger.View) bool {
	return n.CanHarvest()
}

// Work harvests one unit and returns the payload a worker carries home.
// Nodes never touch the ledger; the payload is credited on deposit.
func (n *Node) Work(*ledger.Ledger) (shared.ResourceMap, bool) {
	if !n.Harvest() {
		return nil, false
	}
	return n.Outputs(), true
}

// UpgradeCapacity raises the capacity level by one
func (n *Node) UpgradeCapacity() {
	n.capacityLevel++
}

// UpgradeSpawnRate raises the spawn level by one
func (n *Node) UpgradeSpawnRate() {
	n.spawnLevel++
}

// SetStorageBonus sets the fractional capacity bonus from buildings.
// Units above the new capacity are dropped.
func (n *Node) SetStorageBonus(bonus float64) {
	if bonus < 0 || math.IsNaN(bonus) {
		bonus = 0
	}
	n.storageBonus = bonus
	n.clamp()
}

// StorageBonus returns the fractional capacity bonus from buildings
func (n *Node) StorageBonus() float64 {
	return n.storageBonus
}

// Restore sets persisted values, clamping them into range
func (n *Node) Restore(available float64, capacityLevel, spawnLevel int) {
	if capacityLevel < 0 {
		capacityLevel = 0
	}
	if spawnLevel < 0 {
		spawnLevel = 0
	}
	if math.IsNaN(available) {
		available = 0
	}
	n.capacityLevel = capacityLevel
	n.spawnLevel = spawnLevel
	n.available = available
	n.clamp()
}

// Reset drops upgrades and refills the node
func (n *Node) Reset() {
	n.capacityLevel = 0
	n.spawnLevel = 0
	n.storageBonus = 0
	n.available = n.CurrentCapacity()
}

func (n *Node) clamp() {
	if capacity := n.CurrentCapacity(); n.available > capacity {
		n.available = capacity
	}
	if n.available < 0 {
		n.available = 0
	}
}
