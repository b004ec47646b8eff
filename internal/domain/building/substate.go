package building

import (
	"time"

	"github.com/andrescamacho/idlecolony-go/internal/domain/events"
	"github.com/andrescamacho/idlecolony-go/internal/domain/ledger"
	"github.com/andrescamacho/idlecolony-go/pkg/utils"
)

// TickContext is what a sub-state may touch while ticking
type TickContext struct {
	DT        float64
	Now       time.Time
	Ledger    *ledger.Ledger
	Publisher events.Publisher
	Instance  *Instance
}

// SubState is the per-type mutable state of a building instance. It only
// ticks once construction is complete.
type SubState interface {
	Kind() Kind

	// ApplyEffects recomputes capacities from the instance's upgrade levels
	ApplyEffects(inst *Instance)

	Tick(ctx *TickContext)
	Snapshot() SubStateSnapshot
	Restore(snap SubStateSnapshot, inst *Instance)
}

// RoomState is the persisted form of a generator room
type RoomState struct {
	CurrentWorkers int     `json:"current_workers"`
	MaxWorkers     int     `json:"max_workers"`
	Timer          float64 `json:"timer"`
}

// SubStateSnapshot is the persisted form of any sub-state; only the fields of
// the instance's kind are populated
type SubStateSnapshot struct {
	Rooms    []RoomState          `json:"rooms,omitempty"`
	Training []TrainingEntryState `json:"training,omitempty"`
}

func newSubState(t Type) SubState {
	switch t.Kind {
	case KindGenerator:
		if t.Generator != nil {
			return newGeneratorState(*t.Generator)
		}
	case KindTraining:
		if t.Training != nil {
			return newTrainingState(*t.Training)
		}
	}
	return passiveState{}
}

// passiveState has no behavior; its building only contributes effects
type passiveState struct{}

func (passiveState) Kind() Kind                          { return KindPassive }
func (passiveState) ApplyEffects(*Instance)              {}
func (passiveState) Tick(*TickContext)                   {}
func (passiveState) Snapshot() SubStateSnapshot          { return SubStateSnapshot{} }
func (passiveState) Restore(SubStateSnapshot, *Instance) {}

// Room is one worker-generating room
type Room struct {
	CurrentWorkers int
	MaxWorkers     int
	Timer          float64
}

// GeneratorState holds the rooms of a generator building
type GeneratorState struct {
	spec  GeneratorSpec
	rooms []Room
}

func newGeneratorState(spec GeneratorSpec) *GeneratorState {
	rooms := make([]Room, spec.Rooms)
	for i := range rooms {
		rooms[i].MaxWorkers = spec.MaxWorkers
	}
	return &GeneratorState{spec: spec, rooms: rooms}
}

func (g *GeneratorState) Kind() Kind { return KindGenerator }

// Rooms returns a copy of the rooms
func (g *GeneratorState) Rooms() []Room {
	return append([]Room(nil), g.rooms...)
}

// Occupancy returns the total workers generated across rooms
func (g *GeneratorState) Occupancy() int {
	total := 0
	for _, r := range g.rooms {
		total += r.CurrentWorkers
	}
	return total
}

// ApplyEffects raises each room's capacity by the roomCapacity effect
func (g *GeneratorState) ApplyEffects(inst *Instance) {
	capacity := g.spec.MaxWorkers + utils.FloorInt(inst.Effect(EffectRoomCapacity))
	for i := range g.rooms {
		g.rooms[i].MaxWorkers = capacity
	}
}

// Tick advances every room timer. A room that reaches the interval with
// space credits one worker to the ledger; full rooms stop generating.
func (g *GeneratorState) Tick(ctx *TickContext) {
	if ctx.DT <= 0 || g.spec.Interval <= 0 {
		return
	}
	for i := range g.rooms {
		room := &g.rooms[i]
		if room.CurrentWorkers >= room.MaxWorkers {
			room.Timer = 0
			continue
		}
		room.Timer += ctx.DT
		for room.Timer >= g.spec.Interval && room.CurrentWorkers < room.MaxWorkers {
			room.Timer -= g.spec.Interval
			room.CurrentWorkers++
			ctx.Ledger.Credit(map[string]float64{g.spec.WorkerType: 1},
				ledger.TransactionTypeWorkerGenerated, ctx.Instance.ID())
			ctx.Publisher.Publish(events.WorkerGenerated, events.WorkerGeneratedPayload{
				InstanceID: ctx.Instance.ID(),
				Room:       i,
				WorkerType: g.spec.WorkerType,
				Occupancy:  room.CurrentWorkers,
			})
		}
		if room.CurrentWorkers >= room.MaxWorkers {
			room.Timer = 0
		}
	}
}

func (g *GeneratorState) Snapshot() SubStateSnapshot {
	rooms := make([]RoomState, len(g.rooms))
	for i, r := range g.rooms {
		rooms[i] = RoomState{CurrentWorkers: r.CurrentWorkers, MaxWorkers: r.MaxWorkers, Timer: r.Timer}
	}
	return SubStateSnapshot{Rooms: rooms}
}

// Restore loads room occupancy. Capacity always comes from the type and
// upgrades; occupancy is clamped into it.
func (g *GeneratorState) Restore(snap SubStateSnapshot, inst *Instance) {
	g.ApplyEffects(inst)
	for i := range g.rooms {
		g.rooms[i].CurrentWorkers = 0
		g.rooms[i].Timer = 0
		if i >= len(snap.Rooms) {
			continue
		}
		saved := snap.Rooms[i]
		occupancy := saved.CurrentWorkers
		if occupancy < 0 {
			occupancy = 0
		}
		if occupancy > g.rooms[i].MaxWorkers {
			occupancy = g.rooms[i].MaxWorkers
		}
		g.rooms[i].CurrentWorkers = occupancy
		if saved.Timer > 0 && saved.Timer < g.spec.Interval {
			g.rooms[i].Timer = saved.Timer
		}
	}
}
