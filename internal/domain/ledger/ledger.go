package ledger

import (
	"math"
	"sync"

	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
)

// View is read-only access to resource quantities. Simulation phases that
// decide whether to start work read a View taken before the tick.
type View interface {
	Get(id string) float64
	Has(id string, amount float64) bool
	CanAfford(costs shared.ResourceMap) bool
}

// Balances is an immutable snapshot of the ledger
type Balances map[string]float64

func (b Balances) Get(id string) float64 {
	return b[id]
}

func (b Balances) Has(id string, amount float64) bool {
	return b[id] >= amount
}

func (b Balances) CanAfford(costs shared.ResourceMap) bool {
	for id, amount := range costs {
		if amount > 0 && b[id] < amount {
			return false
		}
	}
	return true
}

// Ledger stores the non-negative quantity of every resource, currency and
// worker type. Insufficient funds are reported through boolean returns,
// never errors.
type Ledger struct {
	mu       sync.RWMutex
	balances map[string]float64
	recorder Recorder
	clock    shared.Clock
}

// Option configures a Ledger
type Option func(*Ledger)

// WithRecorder journals every balance change
func WithRecorder(r Recorder) Option {
	return func(l *Ledger) { l.recorder = r }
}

// WithClock sets the clock used to timestamp transactions
func WithClock(c shared.Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

// NewLedger creates an empty ledger
func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{balances: make(map[string]float64)}
	for _, opt := range opts {
		opt(l)
	}
	if l.clock == nil {
		l.clock = shared.NewRealClock()
	}
	return l
}

// Get returns the quantity of id, zero when absent
func (l *Ledger) Get(id string) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[id]
}

// Has reports whether at least amount of id is held
func (l *Ledger) Has(id string, amount float64) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[id] >= amount
}

// CanAfford reports whether every cost entry is covered at the same time
func (l *Ledger) CanAfford(costs shared.ResourceMap) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.canAffordLocked(costs)
}

// Add changes id by amount. Negative amounts subtract and the result is
// clamped at zero.
func (l *Ledger) Add(id string, amount float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.applyLocked(id, amount, TransactionTypeAdjustment, "")
}

// Set overwrites the quantity of id; negative input is stored as zero
func (l *Ledger) Set(id string, amount float64) {
	if !isFinite(amount) || amount < 0 {
		amount = 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.applyLocked(id, amount-l.balances[id], TransactionTypeAdjustment, "")
}

// Subtract removes amount of id only if enough is held. On failure nothing changes.
func (l *Ledger) Subtract(id string, amount float64) bool {
	if !isFinite(amount) || amount < 0 {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[id] < amount {
		return false
	}
	l.applyLocked(id, -amount, TransactionTypeAdjustment, "")
	return true
}

// SpendCosts deducts every cost entry or none of them
func (l *Ledger) SpendCosts(costs shared.ResourceMap) bool {
	return l.Charge(costs, TransactionTypeAdjustment, "")
}

// Charge is SpendCosts with the transaction type and related entity recorded
// in the journal
func (l *Ledger) Charge(costs shared.ResourceMap, txType TransactionType, relatedID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.canAffordLocked(costs) {
		return false
	}
	for _, id := range costs.Keys() {
		if amount := costs[id]; amount > 0 {
			l.applyLocked(id, -amount, txType, relatedID)
		}
	}
	return true
}

// Credit adds every payload entry, recording each as txType
func (l *Ledger) Credit(payload shared.ResourceMap, txType TransactionType, relatedID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range payload.Keys() {
		l.applyLocked(id, payload[id], txType, relatedID)
	}
}

// GetAll returns a snapshot of every entry
func (l *Ledger) GetAll() map[string]float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]float64, len(l.balances))
	for k, v := range l.balances {
		out[k] = v
	}
	return out
}

// Snapshot returns a View frozen at the current balances
func (l *Ledger) Snapshot() Balances {
	return Balances(l.GetAll())
}

// Reset clears all entries without journaling
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances = make(map[string]float64)
}

// Restore replaces the ledger contents with entries, e.g. from a save.
// Negative or non-finite quantities load as zero. Nothing is journaled.
func (l *Ledger) Restore(entries map[string]float64) {
	balances := make(map[string]float64, len(entries))
	for id, amount := range entries {
		if id == "" {
			continue
		}
		if !isFinite(amount) || amount < 0 {
			amount = 0
		}
		balances[id] = amount
	}
	l.mu.Lock()
	l.balances = balances
	l.mu.Unlock()
}

func (l *Ledger) canAffordLocked(costs shared.ResourceMap) bool {
	for id, amount := range costs {
		if amount > 0 && l.balances[id] < amount {
			return false
		}
	}
	return true
}

func (l *Ledger) applyLocked(id string, amount float64, txType TransactionType, relatedID string) {
	if id == "" || !isFinite(amount) {
		return
	}
	before := l.balances[id]
	after := before + amount
	if after < 0 {
		after = 0
	}
	l.balances[id] = after

	delta := after - before
	if delta == 0 || l.recorder == nil {
		return
	}
	tx, err := NewTransaction(l.clock.Now(), txType, id, delta, before, after, relatedID)
	if err != nil {
		return
	}
	l.recorder.Record(tx)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
