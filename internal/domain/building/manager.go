package building

import (
	"fmt"
	"sort"

	"github.com/andrescamacho/idlecolony-go/internal/domain/events"
	"github.com/andrescamacho/idlecolony-go/internal/domain/ledger"
	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
	"github.com/andrescamacho/idlecolony-go/pkg/utils"
)

// DefaultBaseSlots is the construction slot count before bonuses
const DefaultBaseSlots = 5

// MiningTally reports cumulative resources mined, used by unlock predicates
type MiningTally interface {
	ResourcesMined(resource string) float64
	TotalResourcesMined() float64
}

// WorkerAvailability reports how many workers of a type are idle
type WorkerAvailability interface {
	Free(workerType string) int
}

type noMining struct{}

func (noMining) ResourcesMined(string) float64 { return 0 }
func (noMining) TotalResourcesMined() float64  { return 0 }

// Check is the outcome of a construction pre-check
type Check struct {
	CanBuild bool
	Reason   string
	Code     shared.RejectionCode
}

func allowed() Check {
	return Check{CanBuild: true}
}

func denied(code shared.RejectionCode, format string, args ...interface{}) Check {
	return Check{Reason: fmt.Sprintf(format, args...), Code: code}
}

// Err converts a failed check into a rejection
func (c Check) Err() error {
	if c.CanBuild {
		return nil
	}
	return shared.NewRejectionError(c.Code, "%s", c.Reason)
}

// Manager owns every building instance: timed construction, slot and
// unlock limits, generator rooms, training queues and bonus aggregation.
type Manager struct {
	types     map[string]Type
	instances []*Instance
	baseSlots int

	ledger    *ledger.Ledger
	mining    MiningTally
	workers   WorkerAvailability
	clock     shared.Clock
	publisher events.Publisher
	newID     func(typeID string) string
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithBaseSlots overrides the construction slot count
func WithBaseSlots(n int) ManagerOption {
	return func(m *Manager) { m.baseSlots = n }
}

// WithMiningTally sets the source for resources_mined unlocks
func WithMiningTally(t MiningTally) ManagerOption {
	return func(m *Manager) { m.mining = t }
}

// WithWorkerAvailability sets the source of idle worker counts for training
func WithWorkerAvailability(w WorkerAvailability) ManagerOption {
	return func(m *Manager) { m.workers = w }
}

// WithClock sets the clock construction and training timers follow
func WithClock(c shared.Clock) ManagerOption {
	return func(m *Manager) { m.clock = c }
}

// WithPublisher sets the event publisher
func WithPublisher(p events.Publisher) ManagerOption {
	return func(m *Manager) { m.publisher = p }
}

// WithIDGenerator overrides instance id generation
func WithIDGenerator(fn func(typeID string) string) ManagerOption {
	return func(m *Manager) { m.newID = fn }
}

// NewManager creates a manager with no instances
func NewManager(types []Type, l *ledger.Ledger, opts ...ManagerOption) *Manager {
	m := &Manager{
		types:     make(map[string]Type, len(types)),
		baseSlots: DefaultBaseSlots,
		ledger:    l,
	}
	for _, t := range types {
		m.types[t.ID] = t
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.mining == nil {
		m.mining = noMining{}
	}
	if m.clock == nil {
		m.clock = shared.NewRealClock()
	}
	if m.newID == nil {
		m.newID = func(typeID string) string { return utils.GenerateEntityID("bld", typeID) }
	}
	m.publisher = events.OrNop(m.publisher)
	return m
}

// SetWorkerAvailability wires the idle worker source after construction
func (m *Manager) SetWorkerAvailability(w WorkerAvailability) {
	m.workers = w
}

// Type returns a building type by id
func (m *Manager) Type(id string) (Type, bool) {
	t, ok := m.types[id]
	return t, ok
}

// Types returns every building type sorted by id
func (m *Manager) Types() []Type {
	out := make([]Type, 0, len(m.types))
	for _, t := range m.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Instances returns all instances in creation order
func (m *Manager) Instances() []*Instance {
	return append([]*Instance(nil), m.instances...)
}

// Instance returns an instance by id
func (m *Manager) Instance(id string) (*Instance, error) {
	for _, inst := range m.instances {
		if inst.id == id {
			return inst, nil
		}
	}
	return nil, &ErrInstanceNotFound{InstanceID: id}
}

// CountOf returns how many instances of typeID were started
func (m *Manager) CountOf(typeID string) int {
	n := 0
	for _, inst := range m.instances {
		if inst.buildType.ID == typeID {
			n++
		}
	}
	return n
}

// CompletedCount returns how many instances finished construction
func (m *Manager) CompletedCount() int {
	n := 0
	for _, inst := range m.instances {
		if inst.complete {
			n++
		}
	}
	return n
}

// UsedSlots returns the number of slots taken; instances are never destroyed
func (m *Manager) UsedSlots() int {
	return len(m.instances)
}

// AvailableSlots is the base slot count plus the constructionSlots bonus
func (m *Manager) AvailableSlots() int {
	return m.baseSlots + utils.FloorInt(m.GetBuildingBonus(EffectConstructionSlots))
}

// CostFor returns the scaled cost of the next instance of typeID
func (m *Manager) CostFor(typeID string) (shared.ResourceMap, error) {
	t, ok := m.types[typeID]
	if !ok {
		return nil, &ErrUnknownType{TypeID: typeID}
	}
	return t.CostFor(m.CountOf(typeID)), nil
}

// IsUnlocked evaluates the unlock predicate of typeID
func (m *Manager) IsUnlocked(typeID string) bool {
	t, ok := m.types[typeID]
	if !ok {
		return false
	}
	switch t.Unlock.Kind {
	case UnlockResourcesMined:
		if t.Unlock.Resource != "" {
			return m.mining.ResourcesMined(t.Unlock.Resource) >= t.Unlock.Threshold
		}
		return m.mining.TotalResourcesMined() >= t.Unlock.Threshold
	case UnlockBuildingsCompleted:
		return float64(m.CompletedCount()) >= t.Unlock.Threshold
	default:
		return true
	}
}

// CanBuild checks, in order: type, unlock, per-type limit, slots, cost
func (m *Manager) CanBuild(typeID string) Check {
	t, ok := m.types[typeID]
	if !ok {
		return denied(shared.RejectInvalidID, "unknown building type %q", typeID)
	}
	if !m.IsUnlocked(typeID) {
		return denied(shared.RejectLocked, "%s is locked: requires %s >= %g", typeID, t.Unlock.Kind, t.Unlock.Threshold)
	}
	count := m.CountOf(typeID)
	if t.MaxCount > 0 && count >= t.MaxCount {
		return denied(shared.RejectMaxCount, "maximum of %d %s already built", t.MaxCount, typeID)
	}
	if used, available := m.UsedSlots(), m.AvailableSlots(); used >= available {
		return denied(shared.RejectNoSlots, "no free construction slots (%d/%d used)", used, available)
	}
	if cost := t.CostFor(count); !m.ledger.CanAfford(cost) {
		return denied(shared.RejectInsufficientFunds, "cannot afford %s", typeID)
	}
	return allowed()
}

// StartConstruction re-validates, charges the scaled cost, takes a slot and
// creates an incomplete instance. Nothing changes on rejection.
func (m *Manager) StartConstruction(typeID string) (*Instance, error) {
	check := m.CanBuild(typeID)
	if !check.CanBuild {
		return nil, check.Err()
	}

	t := m.types[typeID]
	inst := newInstance(m.newID(typeID), t, m.clock.Now())
	if !m.ledger.Charge(t.CostFor(m.CountOf(typeID)), ledger.TransactionTypeConstructionCost, inst.id) {
		return nil, shared.NewRejectionError(shared.RejectInsufficientFunds, "cannot afford %s", typeID)
	}
	m.instances = append(m.instances, inst)

	m.publisher.Publish(events.ConstructionStarted, events.ConstructionStartedPayload{
		InstanceID: inst.id,
		TypeID:     typeID,
		Duration:   inst.duration,
	})
	return inst, nil
}

// PurchaseBuildingUpgrade buys the next level of upgradeID on a completed instance
func (m *Manager) PurchaseBuildingUpgrade(instanceID, upgradeID string) (int, error) {
	inst, err := m.Instance(instanceID)
	if err != nil {
		return 0, shared.NewRejectionError(shared.RejectInvalidID, "%s", err.Error())
	}
	if !inst.complete {
		return 0, shared.NewRejectionError(shared.RejectIncomplete, "building %s is still under construction", instanceID)
	}
	def, ok := inst.buildType.Upgrade(upgradeID)
	if !ok {
		return 0, shared.NewRejectionError(shared.RejectInvalidID, "unknown upgrade %q for %s", upgradeID, inst.buildType.ID)
	}
	level := inst.upgrades[upgradeID]
	if level >= def.MaxLevel {
		return 0, shared.NewRejectionError(shared.RejectMaxLevel, "%s is already at max level %d", upgradeID, def.MaxLevel)
	}
	if !m.ledger.Charge(def.CostAt(level), ledger.TransactionTypeBuildingUpgradeCost, inst.id) {
		return 0, shared.NewRejectionError(shared.RejectInsufficientFunds, "cannot afford %s level %d", upgradeID, level+1)
	}

	inst.setUpgradeLevel(upgradeID, level+1)
	m.publisher.Publish(events.BuildingUpgraded, events.BuildingUpgradedPayload{
		InstanceID: inst.id,
		UpgradeID:  upgradeID,
		Level:      level + 1,
	})
	return level + 1, nil
}

// GetBuildingBonus sums effectKey over every completed instance that defines it
func (m *Manager) GetBuildingBonus(effectKey string) float64 {
	total := 0.0
	for _, inst := range m.instances {
		if inst.complete && inst.DefinesEffect(effectKey) {
			total += inst.Effect(effectKey)
		}
	}
	return total
}

// Update runs construction, worker generation and training for dt seconds
func (m *Manager) Update(dt float64) {
	m.UpdateConstruction()
	m.UpdateHouseWorkerGeneration(dt)
	m.UpdateTraining()
}

// UpdateConstruction completes every instance whose duration has elapsed.
// Completion is published exactly once per instance.
func (m *Manager) UpdateConstruction() {
	now := m.clock.Now()
	for _, inst := range m.instances {
		if !inst.checkCompletion(now) {
			continue
		}
		m.publisher.Publish(events.ConstructionCompleted, events.ConstructionCompletedPayload{
			InstanceID: inst.id,
			TypeID:     inst.buildType.ID,
		})
	}
}

// UpdateHouseWorkerGeneration advances generator rooms of completed instances
func (m *Manager) UpdateHouseWorkerGeneration(dt float64) {
	m.tick(KindGenerator, dt)
}

// UpdateTraining completes due training entries of completed instances
func (m *Manager) UpdateTraining() {
	m.tick(KindTraining, 0)
}

func (m *Manager) tick(kind Kind, dt float64) {
	now := m.clock.Now()
	for _, inst := range m.instances {
		if !inst.complete || inst.sub.Kind() != kind {
			continue
		}
		inst.sub.Tick(&TickContext{
			DT:        dt,
			Now:       now,
			Ledger:    m.ledger,
			Publisher: m.publisher,
			Instance:  inst,
		})
	}
}

// Snapshot returns the persisted form of every instance
func (m *Manager) Snapshot() []InstanceState {
	out := make([]InstanceState, len(m.instances))
	for i, inst := range m.instances {
		out[i] = inst.snapshot()
	}
	return out
}

// Restore replaces every instance. Unknown types and duplicate ids are
// skipped; missing ids are generated.
func (m *Manager) Restore(states []InstanceState) {
	m.instances = nil
	seen := make(map[string]bool, len(states))
	for _, state := range states {
		t, ok := m.types[state.TypeID]
		if !ok {
			continue
		}
		if state.ID == "" {
			state.ID = m.newID(t.ID)
		}
		if seen[state.ID] {
			continue
		}
		seen[state.ID] = true
		if state.StartedAt.IsZero() {
			state.StartedAt = m.clock.Now()
		}
		m.instances = append(m.instances, restoreInstance(state, t))
	}
}

// Reset removes every instance
func (m *Manager) Reset() {
	m.instances = nil
}
