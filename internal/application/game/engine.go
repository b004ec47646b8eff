package game

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/andrescamacho/idlecolony-go/internal/application/common"
	"github.com/andrescamacho/idlecolony-go/internal/domain/activity"
	"github.com/andrescamacho/idlecolony-go/internal/domain/building"
	"github.com/andrescamacho/idlecolony-go/internal/domain/events"
	"github.com/andrescamacho/idlecolony-go/internal/domain/ledger"
	"github.com/andrescamacho/idlecolony-go/internal/domain/progress"
	"github.com/andrescamacho/idlecolony-go/internal/domain/resource"
	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
	"github.com/andrescamacho/idlecolony-go/internal/domain/skill"
	"github.com/andrescamacho/idlecolony-go/internal/domain/worker"
	"github.com/andrescamacho/idlecolony-go/internal/infrastructure/catalog"
)

// DefaultMaxStep is the longest simulated slice one phase pass covers.
// Longer deltas are split so worker timers never skip a state.
const DefaultMaxStep = time.Second

// Engine owns one colony simulation. Every exported method takes the engine
// lock, which makes it the single writer of the ledger and of building
// sub-state; the tick loop and player commands never interleave.
type Engine struct {
	mu sync.Mutex

	catalog   *catalog.Catalog
	clock     *shared.TickClock
	wallClock shared.Clock
	bus       *events.Bus
	random    shared.RandomSource
	logger    common.Logger
	maxStep   time.Duration

	ledger      *ledger.Ledger
	journal     *ledger.Journal
	skills      *skill.Tracker
	nodes       map[string]*resource.Node
	nodeIDs     []string
	activities  map[string]*activity.Activity
	activityIDs []string
	pool        *worker.Pool
	buildings   *building.Manager
	progress    *progress.Tracker
}

type options struct {
	random      shared.RandomSource
	logger      common.Logger
	bus         *events.Bus
	wallClock   shared.Clock
	journalSize int
	maxStep     time.Duration
	buildingIDs func(typeID string) string
}

// Option configures an Engine
type Option func(*options)

// WithRandom sets the source of worker jitter
func WithRandom(r shared.RandomSource) Option {
	return func(o *options) { o.random = r }
}

// WithSeed seeds worker jitter deterministically
func WithSeed(seed int64) Option {
	return func(o *options) { o.random = shared.NewSeededRandom(seed) }
}

// WithLogger sets the engine logger
func WithLogger(l common.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithBus publishes engine events on an existing bus
func WithBus(b *events.Bus) Option {
	return func(o *options) { o.bus = b }
}

// WithWallClock sets the clock used to stamp saves
func WithWallClock(c shared.Clock) Option {
	return func(o *options) { o.wallClock = c }
}

// WithJournalSize bounds the in-memory transaction journal
func WithJournalSize(n int) Option {
	return func(o *options) { o.journalSize = n }
}

// WithMaxStep overrides DefaultMaxStep; zero disables splitting
func WithMaxStep(d time.Duration) Option {
	return func(o *options) { o.maxStep = d }
}

// WithBuildingIDs overrides building instance id generation
func WithBuildingIDs(fn func(typeID string) string) Option {
	return func(o *options) { o.buildingIDs = fn }
}

// NewEngine builds every component from the catalog and seeds the ledger
// with the starting resources
func NewEngine(cat *catalog.Catalog, opts ...Option) (*Engine, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	o := options{maxStep: DefaultMaxStep}
	for _, opt := range opts {
		opt(&o)
	}
	if o.random == nil {
		o.random = shared.NewSeededRandom(time.Now().UnixNano())
	}
	if o.logger == nil {
		o.logger = common.NopLogger()
	}
	if o.bus == nil {
		o.bus = events.NewBus()
	}
	if o.wallClock == nil {
		o.wallClock = shared.NewRealClock()
	}

	e := &Engine{
		catalog:    cat,
		clock:      shared.NewTickClock(),
		wallClock:  o.wallClock,
		bus:        o.bus,
		random:     o.random,
		logger:     o.logger,
		maxStep:    o.maxStep,
		journal:    ledger.NewJournal(o.journalSize),
		nodes:      make(map[string]*resource.Node, len(cat.Nodes)),
		activities: make(map[string]*activity.Activity, len(cat.Activities)),
	}
	e.ledger = ledger.NewLedger(ledger.WithRecorder(e.journal), ledger.WithClock(e.clock))
	e.skills = skill.NewTracker(cat.Skills, e.bus)

	for _, def := range cat.Nodes {
		e.nodes[def.ID] = resource.NewNode(def, cat.NodeMultipliers)
		e.nodeIDs = append(e.nodeIDs, def.ID)
	}
	for _, def := range cat.Activities {
		e.activities[def.ID] = activity.NewActivity(def, e.bus)
		e.activityIDs = append(e.activityIDs, def.ID)
	}
	sort.Strings(e.nodeIDs)
	sort.Strings(e.activityIDs)

	e.progress = progress.NewTracker(cat.Upgrades, cat.Achievements, e.ledger, nodeUpgrader{nodes: e.nodes}, e.bus)

	managerOpts := []building.ManagerOption{
		building.WithBaseSlots(cat.BaseSlots),
		building.WithMiningTally(e.progress),
		building.WithClock(e.clock),
		building.WithPublisher(e.bus),
	}
	if o.buildingIDs != nil {
		managerOpts = append(managerOpts, building.WithIDGenerator(o.buildingIDs))
	}
	e.buildings = building.NewManager(cat.Buildings, e.ledger, managerOpts...)

	e.pool = worker.NewPool(cat.Worker, cat.WorkerTypes, e.ledger,
		worker.WithSkills(e.skills),
		worker.WithModifiers(modifiers{progress: e.progress, buildings: e.buildings}),
		worker.WithSink(depositSink{engine: e}),
		worker.WithRandom(e.random),
		worker.WithPublisher(e.bus),
		worker.WithBoosts(cat.Boosts),
	)
	for _, id := range e.nodeIDs {
		e.pool.RegisterNode(e.nodes[id])
	}
	for _, id := range e.activityIDs {
		e.pool.RegisterActivity(e.activities[id])
	}
	e.buildings.SetWorkerAvailability(e.pool)

	e.bus.Subscribe(events.ConstructionCompleted, func(events.Event) { e.progress.RecordBuildingCompleted() })
	e.bus.Subscribe(events.TrainingCompleted, func(events.Event) { e.progress.RecordTrainingCompleted() })

	e.ledger.Restore(cat.StartingResources)
	return e, nil
}

// Bus returns the event bus; subscribers run on the engine goroutine while
// the engine lock is held and must not call back into the engine
func (e *Engine) Bus() *events.Bus { return e.bus }

// Catalog returns the definitions the engine was built from
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Now returns the simulated time
func (e *Engine) Now() time.Time { return e.clock.Now() }

// Elapsed returns how much simulated time has passed
func (e *Engine) Elapsed() time.Duration { return e.clock.Elapsed() }

// Update advances the simulation by delta. Deltas longer than the max step
// run as several full phase passes.
func (e *Engine) Update(ctx context.Context, delta time.Duration) error {
	if delta <= 0 {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	for delta > 0 {
		step := delta
		if e.maxStep > 0 && step > e.maxStep {
			step = e.maxStep
		}
		if err := e.step(ctx, step); err != nil {
			return err
		}
		delta -= step
	}
	return nil
}

// step runs one pass of the fixed phase order
func (e *Engine) step(ctx context.Context, d time.Duration) error {
	dt := d.Seconds()
	e.clock.Advance(d)

	e.applyBuildingEffects()
	for _, id := range e.nodeIDs {
		e.nodes[id].Regenerate(dt)
	}
	e.pool.DecayBoosts(dt)

	e.pool.Sync()
	view := e.ledger.Snapshot()
	if err := e.pool.Update(ctx, dt, view); err != nil {
		return fmt.Errorf("worker update interrupted: %w", err)
	}
	e.pool.UpdateActivityStatus(view)

	e.buildings.Update(dt)
	e.pool.Sync()

	e.progress.Evaluate(e.skills)
	return nil
}

// applyBuildingEffects pushes building bonuses that live on other
// components, currently node storage
func (e *Engine) applyBuildingEffects() {
	storage := e.buildings.GetBuildingBonus(building.EffectStorageBonus)
	for _, id := range e.nodeIDs {
		e.nodes[id].SetStorageBonus(storage)
	}
}

// Assign sends n free workers of workerType to a node or activity
func (e *Engine) Assign(workerType, targetID string, n int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pool.Assign(workerType, targetID, n)
}

// Unassign recalls up to n workers of workerType from a target
func (e *Engine) Unassign(workerType, targetID string, n int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pool.Unassign(workerType, targetID, n)
}

// Reassign moves n workers between targets; carrying workers deposit first
func (e *Engine) Reassign(workerType, fromID, toID string, n int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pool.Reassign(workerType, fromID, toID, n)
}

// UnassignAll recalls every worker
func (e *Engine) UnassignAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pool.UnassignAll()
}

// AssignedTo returns how many workers of workerType serve targetID
func (e *Engine) AssignedTo(targetID, workerType string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pool.AssignedTo(targetID, workerType)
}

// FreeWorkers returns the unassigned workers of workerType
func (e *Engine) FreeWorkers(workerType string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pool.Free(workerType)
}

// PurchaseUpgrade buys a global upgrade
func (e *Engine) PurchaseUpgrade(upgradeID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progress.Purchase(upgradeID)
}

// CanBuild pre-checks a construction without side effects
func (e *Engine) CanBuild(typeID string) building.Check {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buildings.CanBuild(typeID)
}

// ConstructionCost returns the cost of the next instance of typeID, nil
// for unknown types
func (e *Engine) ConstructionCost(typeID string) map[string]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	cost, err := e.buildings.CostFor(typeID)
	if err != nil {
		return nil
	}
	return cost
}

// StartConstruction charges the next instance's cost and starts its timer
func (e *Engine) StartConstruction(typeID string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	inst, err := e.buildings.StartConstruction(typeID)
	if err != nil {
		return "", err
	}
	return inst.ID(), nil
}

// PurchaseBuildingUpgrade buys the next level of a per-instance upgrade
func (e *Engine) PurchaseBuildingUpgrade(instanceID, upgradeID string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	level, err := e.buildings.PurchaseBuildingUpgrade(instanceID, upgradeID)
	if err != nil {
		return 0, err
	}
	e.applyBuildingEffects()
	return level, nil
}

// StartTraining queues a training program in a training building
func (e *Engine) StartTraining(buildingID, programID string) (building.TrainingEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buildings.StartTraining(buildingID, programID)
}

// ActivateBoost buys and starts a consumable boost
func (e *Engine) ActivateBoost(boostID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pool.ActivateBoost(boostID)
}

// ManualHarvest is the player's click: it takes one unit from a node, or
// runs one activity cycle instantly, and credits the ledger directly
func (e *Engine) ManualHarvest(targetID string) (shared.ResourceMap, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if n, ok := e.nodes[targetID]; ok {
		payload, ok := n.Work(e.ledger)
		if !ok {
			return nil, shared.NewRejectionError(shared.RejectInsufficientFunds, "node %s is empty", targetID)
		}
		e.ledger.Credit(payload, ledger.TransactionTypeManualHarvest, targetID)
		e.progress.RecordDeposit(payload, true)
		e.skills.AddXP(n.Skill(), n.XP())
		return payload, nil
	}

	if a, ok := e.activities[targetID]; ok {
		payload, ok := a.Work(e.ledger)
		if !ok {
			return nil, shared.NewRejectionError(shared.RejectInsufficientFunds, "cannot afford the inputs of %s", targetID)
		}
		e.ledger.Credit(payload, ledger.TransactionTypeManualHarvest, targetID)
		e.progress.RecordActivityCompletion(targetID)
		e.progress.RecordDeposit(payload, false)
		e.skills.AddXP(a.Skill(), a.XP())
		return payload, nil
	}

	return nil, shared.NewRejectionError(shared.RejectInvalidID, "unknown target %q", targetID)
}

// Balance returns the ledger quantity of a resource
func (e *Engine) Balance(resourceID string) float64 {
	return e.ledger.Get(resourceID)
}

// Balances returns a copy of the whole ledger
func (e *Engine) Balances() map[string]float64 {
	return e.ledger.GetAll()
}

// Transactions queries the in-memory journal
func (e *Engine) Transactions(opts ledger.QueryOptions) []*ledger.Transaction {
	return e.journal.Find(opts)
}

// DrainTransactions hands over transactions not yet persisted
func (e *Engine) DrainTransactions() []*ledger.Transaction {
	return e.journal.Drain()
}

// RequeueTransactions returns transactions that could not be persisted
func (e *Engine) RequeueTransactions(txs []*ledger.Transaction) {
	e.journal.Requeue(txs)
}

// Save captures the complete persisted state
func (e *Engine) Save() *GameState {
	e.mu.Lock()
	defer e.mu.Unlock()

	nodes := make([]NodeState, 0, len(e.nodeIDs))
	for _, id := range e.nodeIDs {
		n := e.nodes[id]
		nodes = append(nodes, NodeState{
			ID:            id,
			Available:     n.Available(),
			CapacityLevel: n.CapacityLevel(),
			SpawnLevel:    n.SpawnLevel(),
		})
	}

	return &GameState{
		Version:   CurrentVersion,
		SavedAt:   e.wallClock.Now(),
		ClockTime: e.clock.Now(),
		Ledger:    e.ledger.GetAll(),
		Skills:    e.skills.Snapshot(),
		Workers:   e.pool.Snapshot(),
		Nodes:     nodes,
		Progress:  e.progress.Snapshot(),
		Buildings: e.buildings.Snapshot(),
	}
}

// Load replaces every sub-state with the saved one. Missing fields load as
// zero values and unknown ids are ignored, so loading never fails and
// loading the same state twice yields the same engine.
func (e *Engine) Load(state *GameState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if state == nil {
		state = &GameState{}
	}
	version := state.Version
	if version == 0 {
		version = CurrentVersion
	}
	if version > CurrentVersion {
		e.logger.Log(common.LevelWarn, "loading save from a newer version", map[string]interface{}{
			"version":   version,
			"supported": CurrentVersion,
		})
	}

	e.clock.SetTime(state.ClockTime)
	e.ledger.Restore(state.Ledger)
	e.skills.Restore(state.Skills)
	e.progress.Restore(state.Progress)
	e.buildings.Restore(state.Buildings)

	saved := make(map[string]NodeState, len(state.Nodes))
	for _, ns := range state.Nodes {
		saved[ns.ID] = ns
	}
	storage := e.buildings.GetBuildingBonus(building.EffectStorageBonus)
	for _, id := range e.nodeIDs {
		n := e.nodes[id]
		n.Reset()
		n.SetStorageBonus(storage)
		if ns, ok := saved[id]; ok {
			n.Restore(ns.Available, ns.CapacityLevel, ns.SpawnLevel)
		}
	}

	for _, a := range e.activities {
		a.Reset()
	}
	e.pool.Restore(state.Workers)
	e.journal.Clear()

	e.logger.Log(common.LevelInfo, "game loaded", map[string]interface{}{
		"version":   version,
		"buildings": len(e.buildings.Instances()),
		"workers":   len(e.pool.Entities()),
	})
	e.bus.Publish(events.GameLoaded, nil)
}

// Reset returns the colony to its starting state
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.clock.SetTime(shared.SimulationEpoch)
	e.ledger.Reset()
	e.ledger.Restore(e.catalog.StartingResources)
	e.skills.Reset()
	e.progress.Reset()
	e.buildings.Reset()
	e.pool.Reset()
	for _, id := range e.nodeIDs {
		e.nodes[id].Reset()
	}
	e.journal.Clear()

	e.logger.Log(common.LevelInfo, "game reset", nil)
	e.bus.Publish(events.GameReset, nil)
}
