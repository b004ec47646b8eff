package worker

import (
	"fmt"
	"math"

	"github.com/andrescamacho/idlecolony-go/internal/domain/ledger"
	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
)

// Tick is everything an entity reads or writes during one update
type Tick struct {
	// DT is the elapsed simulated time in seconds
	DT float64

	// View is the ledger as it was before the tick; start decisions read it
	View ledger.View

	// Ledger is the live ledger; atomic spending goes through it
	Ledger *ledger.Ledger

	// SpeedFactor scales walk and carry speed
	SpeedFactor float64

	Timing Timing
	Sink   Sink
	Random shared.RandomSource
	Config Config
}

// Entity is one autonomous worker cycling between home and its target.
//
// Invariants:
// - carrying is non-nil only in walking_back and depositing
// - carrySpeed < walkSpeed
// - 0 <= jitter <= Config.MaxJitter
type Entity struct {
	id         string
	seq        int
	workerType string
	home       shared.Position
	position   shared.Position

	state      State
	stateTimer float64
	pollTimer  float64
	animTimer  float64

	target      Target
	pending     Target
	destination *shared.Position
	carrying    shared.ResourceMap

	walkSpeed  float64
	carrySpeed float64
	jitter     float64

	harvests int
	distance float64
}

// NewEntity creates an idle worker at home
func NewEntity(id string, seq int, workerType Type, home shared.Position, jitter float64) (*Entity, error) {
	if id == "" {
		return nil, shared.NewValidationError("id", "worker id cannot be empty")
	}
	if workerType.WalkSpeed <= 0 {
		return nil, shared.NewValidationError("walk_speed", "walk speed must be positive")
	}
	if workerType.CarrySpeed <= 0 || workerType.CarrySpeed >= workerType.WalkSpeed {
		return nil, shared.NewValidationError("carry_speed",
			fmt.Sprintf("carry speed %g must be positive and below walk speed %g", workerType.CarrySpeed, workerType.WalkSpeed))
	}
	if jitter < 0 {
		jitter = 0
	}

	return &Entity{
		id:         id,
		seq:        seq,
		workerType: workerType.ID,
		home:       home,
		position:   home,
		state:      StateIdle,
		walkSpeed:  workerType.WalkSpeed,
		carrySpeed: workerType.CarrySpeed,
		jitter:     jitter,
	}, nil
}

// Getters

func (e *Entity) ID() string                    { return e.id }
func (e *Entity) Seq() int                      { return e.seq }
func (e *Entity) WorkerType() string            { return e.workerType }
func (e *Entity) Home() shared.Position         { return e.home }
func (e *Entity) Position() shared.Position     { return e.position }
func (e *Entity) State() State                  { return e.state }
func (e *Entity) StateTimer() float64           { return e.stateTimer }
func (e *Entity) AnimationTimer() float64       { return e.animTimer }
func (e *Entity) Target() Target                { return e.target }
func (e *Entity) PendingTarget() Target         { return e.pending }
func (e *Entity) Destination() *shared.Position { return e.destination }
func (e *Entity) Carrying() shared.ResourceMap  { return e.carrying.Clone() }
func (e *Entity) WalkSpeed() float64            { return e.walkSpeed }
func (e *Entity) CarrySpeed() float64           { return e.carrySpeed }
func (e *Entity) Jitter() float64               { return e.jitter }
func (e *Entity) Harvests() int                 { return e.harvests }
func (e *Entity) DistanceTraveled() float64     { return e.distance }

// TargetID returns the current target id, empty when unassigned
func (e *Entity) TargetID() string {
	if e.target == nil {
		return ""
	}
	return e.target.ID()
}

// AssignedTargetID is the target the worker will serve once any trip in
// progress finishes
func (e *Entity) AssignedTargetID() string {
	if e.pending != nil {
		return e.pending.ID()
	}
	return e.TargetID()
}

// Update advances the state machine by one tick
func (e *Entity) Update(tick *Tick) {
	if tick.DT <= 0 {
		return
	}

	switch e.state {
	case StateIdle:
		e.updateIdle(tick)
	case StateWalkingTo:
		e.updateWalkingTo(tick)
	case StateBlocked:
		e.updateBlocked(tick)
	case StateHarvesting:
		e.updateHarvesting(tick)
	case StateWalkingBack:
		e.updateWalkingBack(tick)
	case StateDepositing:
		e.updateDepositing(tick)
	}
}

func (e *Entity) updateIdle(tick *Tick) {
	if e.target == nil || !e.target.Ready(tick.View) {
		return
	}
	dest := e.target.Position()
	e.destination = &dest
	e.transition(StateWalkingTo)
}

func (e *Entity) updateWalkingTo(tick *Tick) {
	if !e.walk(tick, e.walkSpeed) {
		return
	}
	if e.target.Ready(tick.View) {
		e.transition(StateHarvesting)
		return
	}
	e.transition(StateBlocked)
}

func (e *Entity) updateBlocked(tick *Tick) {
	e.animTimer += tick.DT
	e.pollTimer += tick.DT
	if e.pollTimer < tick.Config.BlockedPollInterval {
		return
	}
	e.pollTimer = 0
	if e.target.Ready(tick.View) {
		e.transition(StateHarvesting)
	}
}

func (e *Entity) updateHarvesting(tick *Tick) {
	threshold := tick.Timing.CycleTime(e.target, e.workerType)
	if threshold <= 0 {
		return
	}

	e.stateTimer += tick.DT
	if e.stateTimer < threshold {
		return
	}

	payload, ok := e.target.Work(tick.Ledger)
	if !ok {
		e.destination = nil
		e.transition(StateIdle)
		return
	}

	e.carrying = payload
	e.harvests++
	if tick.Sink != nil {
		tick.Sink.Harvested(e, e.target, payload.Clone())
	}
	home := e.home
	e.destination = &home
	e.transition(StateWalkingBack)
}

func (e *Entity) updateWalkingBack(tick *Tick) {
	if e.walk(tick, e.carrySpeed) {
		e.transition(StateDepositing)
	}
}

func (e *Entity) updateDepositing(tick *Tick) {
	e.stateTimer += tick.DT
	if e.stateTimer < e.jitter {
		return
	}

	if tick.Sink != nil && e.target != nil && !e.carrying.IsZero() {
		tick.Sink.Deposited(e, e.target, e.carrying.Clone())
	}
	e.carrying = nil
	e.destination = nil
	e.jitter = shared.RandomRange(tick.Random, 0, tick.Config.MaxJitter)

	if e.pending != nil {
		e.target = e.pending
		e.pending = nil
	}
	e.transition(StateIdle)
}

// walk moves toward the destination and reports arrival
func (e *Entity) walk(tick *Tick, speed float64) bool {
	if e.destination == nil {
		return true
	}
	factor := tick.SpeedFactor
	if factor <= 0 {
		factor = 1
	}
	next, moved := e.position.MoveToward(*e.destination, speed*factor*tick.DT)
	e.position = next
	e.distance += moved
	return e.position.DistanceTo(*e.destination) <= tick.Config.ArrivalEpsilon
}

func (e *Entity) transition(next State) {
	e.state = next
	e.stateTimer = 0
	e.pollTimer = 0
	if next != StateBlocked {
		e.animTimer = 0
	}
}

// Reassign points the worker at a new target. A worker carrying a payload
// finishes its trip first; any other worker drops its progress at once.
func (e *Entity) Reassign(target Target) {
	if e.state.IsCarrying() {
		e.pending = target
		return
	}
	e.target = target
	e.pending = nil
	e.destination = nil
	e.carrying = nil
	e.transition(StateIdle)
}

// Unassign stops the worker immediately. Any carried payload is discarded.
func (e *Entity) Unassign() {
	e.target = nil
	e.pending = nil
	e.destination = nil
	e.carrying = nil
	e.transition(StateIdle)
}

// ResetToHome drops in-flight progress and parks the worker idle at home,
// keeping its assignment
func (e *Entity) ResetToHome() {
	if e.pending != nil {
		e.target = e.pending
		e.pending = nil
	}
	e.position = e.home
	e.destination = nil
	e.carrying = nil
	e.transition(StateIdle)
}

// RestoreStats sets persisted cumulative statistics
func (e *Entity) RestoreStats(harvests int, distance float64) {
	if harvests < 0 {
		harvests = 0
	}
	if distance < 0 || math.IsNaN(distance) {
		distance = 0
	}
	e.harvests = harvests
	e.distance = distance
}
