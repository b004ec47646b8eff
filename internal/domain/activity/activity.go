package activity

import (
	"math"

	"github.com/andrescamacho/idlecolony-go/internal/domain/events"
	"github.com/andrescamacho/idlecolony-go/internal/domain/ledger"
	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
)

// MinSpeedMultiplier guards duration math against division by zero
const MinSpeedMultiplier = 1e-6

// Status is the production state of an activity
type Status string

const (
	StatusRunning Status = "running"
	StatusHalted  Status = "halted"
)

// Halt reasons
const (
	ReasonNoWorkers     = "no_workers"
	ReasonMissingInputs = "missing_inputs"
)

// Definition is a production recipe: inputs become outputs over Duration
// seconds at a speed multiplier of 1
type Definition struct {
	ID       string             `yaml:"id" json:"id" validate:"required"`
	Name     string             `yaml:"name" json:"name"`
	Skill    string             `yaml:"skill" json:"skill"`
	Duration float64            `yaml:"duration" json:"duration" validate:"gt=0"`
	Inputs   map[string]float64 `yaml:"inputs" json:"inputs"`
	Outputs  map[string]float64 `yaml:"outputs" json:"outputs" validate:"required,min=1"`
	XP       float64            `yaml:"xp" json:"xp" validate:"gte=0"`
	Position shared.Position    `yaml:"position" json:"position"`
}

// Activity is a running production recipe. Each assigned worker runs its
// own cycle; the activity only tracks whether production may proceed.
type Activity struct {
	def       Definition
	status    Status
	reason    string
	publisher events.Publisher
}

// NewActivity creates an activity, initially halted for lack of workers
func NewActivity(def Definition, publisher events.Publisher) *Activity {
	return &Activity{
		def:       def,
		status:    StatusHalted,
		reason:    ReasonNoWorkers,
		publisher: events.OrNop(publisher),
	}
}

// Getters

func (a *Activity) ID() string                { return a.def.ID }
func (a *Activity) Name() string              { return a.def.Name }
func (a *Activity) Skill() string             { return a.def.Skill }
func (a *Activity) Position() shared.Position { return a.def.Position }
func (a *Activity) BaseDuration() float64     { return a.def.Duration }
func (a *Activity) XP() float64               { return a.def.XP }
func (a *Activity) Status() Status            { return a.status }
func (a *Activity) HaltReason() string        { return a.reason }
func (a *Activity) Definition() Definition    { return a.def }

func (a *Activity) Inputs() shared.ResourceMap  { return shared.ResourceMap(a.def.Inputs).Clone() }
func (a *Activity) Outputs() shared.ResourceMap { return shared.ResourceMap(a.def.Outputs).Clone() }

// IsFree reports whether the activity consumes nothing
func (a *Activity) IsFree() bool {
	return shared.ResourceMap(a.def.Inputs).IsZero()
}

// IsHalted reports whether production is currently stopped
func (a *Activity) IsHalted() bool {
	return a.status == StatusHalted
}

// EffectiveDuration is the cycle length in seconds at multiplier
func (a *Activity) EffectiveDuration(multiplier float64) float64 {
	return a.def.Duration / math.Max(multiplier, MinSpeedMultiplier)
}

// Ready reports whether one cycle's inputs are affordable in view
func (a *Activity) Ready(view ledger.View) bool {
	if a.IsFree() {
		return true
	}
	return view.CanAfford(a.def.Inputs)
}

// Work completes one production cycle: inputs are charged atomically from
// the live ledger and the outputs are returned as the worker's payload
func (a *Activity) Work(l *ledger.Ledger) (shared.ResourceMap, bool) {
	if !a.IsFree() && !l.Charge(a.def.Inputs, ledger.TransactionTypeActivityInput, a.def.ID) {
		return nil, false
	}
	return a.Outputs(), true
}

// UpdateStatus recomputes the production status from the aggregate speed
// multiplier and a pre-tick ledger view. A multiplier of zero or less is
// the same as having no workers. Transitions are published once.
func (a *Activity) UpdateStatus(multiplier float64, view ledger.View) Status {
	status, reason := StatusRunning, ""
	switch {
	case multiplier <= 0:
		status, reason = StatusHalted, ReasonNoWorkers
	case !a.Ready(view):
		status, reason = StatusHalted, ReasonMissingInputs
	}

	if status == a.status && reason == a.reason {
		return status
	}

	a.status, a.reason = status, reason
	payload := events.ProductionStatusPayload{ActivityID: a.def.ID, Reason: reason}
	if status == StatusHalted {
		a.publisher.Publish(events.ProductionHalted, payload)
	} else {
		a.publisher.Publish(events.ProductionResumed, payload)
	}
	return status
}

// Reset returns the activity to its initial halted state without publishing
func (a *Activity) Reset() {
	a.status, a.reason = StatusHalted, ReasonNoWorkers
}
