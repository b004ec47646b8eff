package game

import (
	"time"

	"github.com/andrescamacho/idlecolony-go/internal/domain/activity"
	"github.com/andrescamacho/idlecolony-go/internal/domain/progress"
	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
	"github.com/andrescamacho/idlecolony-go/internal/domain/worker"
	"github.com/andrescamacho/idlecolony-go/pkg/utils"
)

// Status is a read-only view of the whole colony, for renderers and the CLI
type Status struct {
	Elapsed        time.Duration
	Resources      map[string]float64
	WorkerTypes    []WorkerTypeStatus
	Workers        []WorkerStatus
	Nodes          []NodeStatus
	Activities     []ActivityStatus
	Buildings      []BuildingStatus
	UsedSlots      int
	AvailableSlots int
	Skills         []SkillStatus
	Upgrades       []string
	Achievements   []string
	Boosts         []worker.BoostState
	Stats          progress.Stats
}

// WorkerTypeStatus is the population of one worker type
type WorkerTypeStatus struct {
	Type     string
	Total    int
	Assigned int
	Free     int
}

// WorkerStatus is the render state of one worker entity
type WorkerStatus struct {
	ID       string
	Type     string
	State    worker.State
	TargetID string
	Position shared.Position
	Carrying shared.ResourceMap
	Harvests int
	Distance float64
}

// NodeStatus is the render state of a resource node
type NodeStatus struct {
	ID            string
	Name          string
	Position      shared.Position
	Available     float64
	Capacity      float64
	SpawnRate     float64
	CapacityLevel int
	SpawnLevel    int
	Assigned      int
}

// ActivityStatus is the production state of an activity
type ActivityStatus struct {
	ID                string
	Name              string
	Status            activity.Status
	Reason            string
	SpeedMultiplier   float64
	EffectiveDuration float64
	Assigned          int
	Completions       int
}

// BuildingStatus is the render state of a building instance
type BuildingStatus struct {
	ID            string
	TypeID        string
	Complete      bool
	Progress      float64
	Occupancy     int
	TrainingQueue int
	Upgrades      map[string]int
}

// SkillStatus is the progress of one skill
type SkillStatus struct {
	Skill    string
	Level    int
	XP       float64
	Progress float64
}

// Status collects the current view
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := e.progress.Stats()
	s := Status{
		Elapsed:        e.clock.Elapsed(),
		Resources:      e.ledger.GetAll(),
		UsedSlots:      e.buildings.UsedSlots(),
		AvailableSlots: e.buildings.AvailableSlots(),
		Upgrades:       e.progress.Snapshot().Purchased,
		Achievements:   e.progress.Snapshot().Unlocked,
		Boosts:         e.pool.ActiveBoosts(),
		Stats:          stats,
	}

	for _, t := range e.pool.Types() {
		s.WorkerTypes = append(s.WorkerTypes, WorkerTypeStatus{
			Type:     t.ID,
			Total:    utils.FloorInt(e.ledger.Get(t.ID)),
			Assigned: e.pool.Assigned(t.ID),
			Free:     e.pool.Free(t.ID),
		})
	}

	for _, ent := range e.pool.Entities() {
		s.Workers = append(s.Workers, WorkerStatus{
			ID:       ent.ID(),
			Type:     ent.WorkerType(),
			State:    ent.State(),
			TargetID: ent.AssignedTargetID(),
			Position: ent.Position(),
			Carrying: ent.Carrying(),
			Harvests: ent.Harvests(),
			Distance: ent.DistanceTraveled(),
		})
	}

	for _, id := range e.nodeIDs {
		n := e.nodes[id]
		s.Nodes = append(s.Nodes, NodeStatus{
			ID:            id,
			Name:          n.Name(),
			Position:      n.Position(),
			Available:     n.Available(),
			Capacity:      n.CurrentCapacity(),
			SpawnRate:     n.CurrentSpawnRate(),
			CapacityLevel: n.CapacityLevel(),
			SpawnLevel:    n.SpawnLevel(),
			Assigned:      e.pool.TotalAssignedTo(id),
		})
	}

	for _, id := range e.activityIDs {
		a := e.activities[id]
		mult := e.pool.SpeedMultiplier(id)
		view := ActivityStatus{
			ID:              id,
			Name:            a.Name(),
			Status:          a.Status(),
			Reason:          a.HaltReason(),
			SpeedMultiplier: mult,
			Assigned:        e.pool.TotalAssignedTo(id),
			Completions:     stats.ActivityCompletions[id],
		}
		if mult > 0 {
			view.EffectiveDuration = a.EffectiveDuration(mult)
		} else {
			view.EffectiveDuration = a.BaseDuration()
		}
		s.Activities = append(s.Activities, view)
	}

	now := e.clock.Now()
	for _, inst := range e.buildings.Instances() {
		b := BuildingStatus{
			ID:       inst.ID(),
			TypeID:   inst.TypeID(),
			Complete: inst.IsComplete(),
			Progress: inst.Progress(now),
			Upgrades: inst.Upgrades(),
		}
		if g, ok := inst.Generator(); ok {
			b.Occupancy = g.Occupancy()
		}
		if t, ok := inst.Training(); ok {
			b.TrainingQueue = len(t.Queue())
		}
		s.Buildings = append(s.Buildings, b)
	}

	for _, id := range e.skills.Skills() {
		s.Skills = append(s.Skills, SkillStatus{
			Skill:    id,
			Level:    e.skills.Level(id),
			XP:       e.skills.XP(id),
			Progress: e.skills.Progress(id),
		})
	}
	return s
}
