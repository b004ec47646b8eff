package worker

import (
	"github.com/andrescamacho/idlecolony-go/internal/domain/ledger"
	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
)

// Target is anything a worker can be assigned to: a resource node or an
// activity site
type Target interface {
	ID() string
	Position() shared.Position
	Skill() string
	XP() float64

	// Ready reports whether a cycle could start given a pre-tick view
	Ready(view ledger.View) bool

	// Work finishes one cycle and returns the payload to carry home
	Work(l *ledger.Ledger) (shared.ResourceMap, bool)
}

// Timing supplies the harvest threshold for a worker type at a target.
// A threshold of zero or less means the target is halted.
type Timing interface {
	CycleTime(target Target, workerType string) float64
}

// Sink observes completed cycles and receives deposited payloads
type Sink interface {
	Harvested(e *Entity, target Target, payload shared.ResourceMap)
	Deposited(e *Entity, target Target, payload shared.ResourceMap)
}

// LedgerSink credits deposits to the ledger and nothing else
type LedgerSink struct {
	Ledger *ledger.Ledger
}

func (s LedgerSink) Harvested(*Entity, Target, shared.ResourceMap) {}

func (s LedgerSink) Deposited(e *Entity, target Target, payload shared.ResourceMap) {
	s.Ledger.Credit(payload, ledger.TransactionTypeHarvestDeposit, target.ID())
}
