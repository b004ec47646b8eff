package worker

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/andrescamacho/idlecolony-go/internal/domain/activity"
	"github.com/andrescamacho/idlecolony-go/internal/domain/events"
	"github.com/andrescamacho/idlecolony-go/internal/domain/ledger"
	"github.com/andrescamacho/idlecolony-go/internal/domain/resource"
	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
	"github.com/andrescamacho/idlecolony-go/pkg/utils"
)

// SkillSource provides the speed bonus a skill grants
type SkillSource interface {
	SpeedBonus(skill string) float64
}

// Modifiers are global fractional bonuses from upgrades and buildings
type Modifiers interface {
	WalkSpeedBonus() float64
	HarvestSpeedBonus() float64
	ActivitySpeedBonus() float64
}

// NoModifiers applies no bonus
type NoModifiers struct{}

func (NoModifiers) WalkSpeedBonus() float64     { return 0 }
func (NoModifiers) HarvestSpeedBonus() float64  { return 0 }
func (NoModifiers) ActivitySpeedBonus() float64 { return 0 }

type noSkills struct{}

func (noSkills) SpeedBonus(string) float64 { return 0 }

// EntityState is the persisted form of a worker entity. In-flight state is
// not saved; restored workers start idle at home.
type EntityState struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	TargetID string  `json:"target_id"`
	Harvests int     `json:"harvests"`
	Distance float64 `json:"distance"`
}

// Snapshot is the persisted form of the pool
type Snapshot struct {
	Assignments map[string]map[string]int `json:"assignments"`
	Workers     []EntityState             `json:"workers"`
	Boosts      []BoostState              `json:"boosts"`
}

// Pool tracks how many workers of each type serve each target, keeps one
// entity per assigned worker and aggregates activity speed.
type Pool struct {
	cfg    Config
	ledger *ledger.Ledger

	types      map[string]Type
	nodes      map[string]*resource.Node
	activities map[string]*activity.Activity
	targets    map[string]Target

	// target id -> worker type -> count
	assignments map[string]map[string]int
	entities    map[string]*Entity
	nextSeq     int

	boostDefs map[string]BoostDefinition
	boosts    map[string]*activeBoost

	skills    SkillSource
	modifiers Modifiers
	sink      Sink
	random    shared.RandomSource
	publisher events.Publisher
}

// PoolOption configures a Pool
type PoolOption func(*Pool)

func WithSkills(s SkillSource) PoolOption         { return func(p *Pool) { p.skills = s } }
func WithModifiers(m Modifiers) PoolOption        { return func(p *Pool) { p.modifiers = m } }
func WithSink(s Sink) PoolOption                  { return func(p *Pool) { p.sink = s } }
func WithRandom(r shared.RandomSource) PoolOption { return func(p *Pool) { p.random = r } }
func WithPublisher(pub events.Publisher) PoolOption {
	return func(p *Pool) { p.publisher = pub }
}

// WithBoosts registers the consumable boosts that can be activated
func WithBoosts(defs []BoostDefinition) PoolOption {
	return func(p *Pool) {
		for _, def := range defs {
			p.boostDefs[def.ID] = def
		}
	}
}

// NewPool creates an empty pool
func NewPool(cfg Config, types []Type, l *ledger.Ledger, opts ...PoolOption) *Pool {
	p := &Pool{
		cfg:         cfg.withDefaults(),
		ledger:      l,
		types:       make(map[string]Type, len(types)),
		nodes:       make(map[string]*resource.Node),
		activities:  make(map[string]*activity.Activity),
		targets:     make(map[string]Target),
		assignments: make(map[string]map[string]int),
		entities:    make(map[string]*Entity),
		boostDefs:   make(map[string]BoostDefinition),
		boosts:      make(map[string]*activeBoost),
	}
	for _, t := range types {
		p.types[t.ID] = t
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.skills == nil {
		p.skills = noSkills{}
	}
	if p.modifiers == nil {
		p.modifiers = NoModifiers{}
	}
	if p.sink == nil {
		p.sink = LedgerSink{Ledger: l}
	}
	p.publisher = events.OrNop(p.publisher)
	return p
}

// RegisterNode makes a resource node assignable
func (p *Pool) RegisterNode(n *resource.Node) {
	p.nodes[n.ID()] = n
	p.targets[n.ID()] = n
}

// RegisterActivity makes an activity assignable
func (p *Pool) RegisterActivity(a *activity.Activity) {
	p.activities[a.ID()] = a
	p.targets[a.ID()] = a
}

// Config returns the simulation tuning
func (p *Pool) Config() Config {
	return p.cfg
}

// Type returns a worker type by id
func (p *Pool) Type(id string) (Type, bool) {
	t, ok := p.types[id]
	return t, ok
}

// Types returns every worker type sorted by id
func (p *Pool) Types() []Type {
	out := make([]Type, 0, len(p.types))
	for _, t := range p.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Target returns an assignable target by id
func (p *Pool) Target(id string) (Target, bool) {
	t, ok := p.targets[id]
	return t, ok
}

// Assigned returns how many workers of workerType are assigned anywhere
func (p *Pool) Assigned(workerType string) int {
	total := 0
	for _, byType := range p.assignments {
		total += byType[workerType]
	}
	return total
}

// AssignedTo returns how many workers of workerType serve targetID
func (p *Pool) AssignedTo(targetID, workerType string) int {
	return p.assignments[targetID][workerType]
}

// TotalAssignedTo returns how many workers of any type serve targetID
func (p *Pool) TotalAssignedTo(targetID string) int {
	total := 0
	for _, count := range p.assignments[targetID] {
		total += count
	}
	return total
}

// Free returns how many workers of workerType are neither assigned nor
// missing from the ledger
func (p *Pool) Free(workerType string) int {
	free := utils.FloorInt(p.ledger.Get(workerType)) - p.Assigned(workerType)
	if free < 0 {
		return 0
	}
	return free
}

// Assignments returns a copy of the assignment table
func (p *Pool) Assignments() map[string]map[string]int {
	out := make(map[string]map[string]int, len(p.assignments))
	for target, byType := range p.assignments {
		inner := make(map[string]int, len(byType))
		for t, count := range byType {
			inner[t] = count
		}
		out[target] = inner
	}
	return out
}

// Assign sends n free workers of workerType to targetID
func (p *Pool) Assign(workerType, targetID string, n int) error {
	if err := p.validate(workerType, targetID, n); err != nil {
		return err
	}
	if free := p.Free(workerType); free < n {
		return shared.NewRejectionError(shared.RejectInsufficientWorkers,
			"only %d free %s workers, %d requested", free, workerType, n)
	}

	p.setCount(targetID, workerType, p.AssignedTo(targetID, workerType)+n)
	p.Sync()
	return nil
}

// Unassign recalls up to n workers of workerType from targetID
func (p *Pool) Unassign(workerType, targetID string, n int) error {
	if err := p.validate(workerType, targetID, n); err != nil {
		return err
	}
	current := p.AssignedTo(targetID, workerType)
	if current == 0 {
		return shared.NewRejectionError(shared.RejectInsufficientWorkers,
			"no %s workers assigned to %s", workerType, targetID)
	}
	if n > current {
		n = current
	}

	// Recall the workers that are the least far along first
	for _, e := range p.excess(targetID, workerType, n) {
		e.Unassign()
		delete(p.entities, e.id)
	}
	p.setCount(targetID, workerType, current-n)
	p.Sync()
	return nil
}

// Reassign moves n workers of workerType from one target to another.
// Workers carrying a payload finish their deposit before switching.
func (p *Pool) Reassign(workerType, fromID, toID string, n int) error {
	if err := p.validate(workerType, fromID, n); err != nil {
		return err
	}
	to, ok := p.targets[toID]
	if !ok {
		return shared.NewRejectionError(shared.RejectInvalidID, "unknown target %q", toID)
	}
	if fromID == toID {
		return shared.NewRejectionError(shared.RejectInvalidID, "workers already serve %s", toID)
	}
	current := p.AssignedTo(fromID, workerType)
	if current < n {
		return shared.NewRejectionError(shared.RejectInsufficientWorkers,
			"only %d %s workers assigned to %s, %d requested", current, workerType, fromID, n)
	}

	moved := 0
	for _, e := range p.sortedEntities() {
		if moved == n {
			break
		}
		if e.workerType == workerType && e.AssignedTargetID() == fromID {
			e.Reassign(to)
			moved++
		}
	}

	p.setCount(fromID, workerType, current-n)
	p.setCount(toID, workerType, p.AssignedTo(toID, workerType)+n)
	p.Sync()
	return nil
}

// UnassignAll clears every assignment and despawns all entities
func (p *Pool) UnassignAll() {
	for _, e := range p.entities {
		e.Unassign()
	}
	p.assignments = make(map[string]map[string]int)
	p.entities = make(map[string]*Entity)
}

// Sync reconciles the assignment table with the ledger population and then
// creates or discards entities so each (target, type) pair has exactly as
// many entities as assigned workers. Idle workers and then the newest are
// discarded first.
func (p *Pool) Sync() {
	p.reconcilePopulation()

	for _, e := range p.sortedEntities() {
		if p.AssignedTo(e.AssignedTargetID(), e.workerType) == 0 {
			delete(p.entities, e.id)
		}
	}

	for _, targetID := range sortedKeys(p.assignments) {
		byType := p.assignments[targetID]
		for _, workerType := range sortedKeys(byType) {
			want := byType[workerType]
			have := p.countEntities(targetID, workerType)
			switch {
			case have < want:
				for i := have; i < want; i++ {
					p.spawn(workerType, p.targets[targetID])
				}
			case have > want:
				for _, e := range p.excess(targetID, workerType, have-want) {
					delete(p.entities, e.id)
				}
			}
		}
	}
}

// Update advances every entity in id order
func (p *Pool) Update(ctx context.Context, dt float64, view ledger.View) error {
	if dt <= 0 {
		return nil
	}
	tick := &Tick{
		DT:          dt,
		View:        view,
		Ledger:      p.ledger,
		SpeedFactor: 1 + p.modifiers.WalkSpeedBonus(),
		Timing:      p,
		Sink:        p.sink,
		Random:      p.random,
		Config:      p.cfg,
	}
	for _, e := range p.sortedEntities() {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.Update(tick)
	}
	return nil
}

// CycleTime implements Timing. Nodes take harvestTime divided by the
// worker's harvest speed; activities take their duration divided by the
// aggregate speed multiplier and are halted at a multiplier of zero.
func (p *Pool) CycleTime(target Target, workerType string) float64 {
	switch t := target.(type) {
	case *resource.Node:
		speed := p.HarvestSpeed(workerType, t.Skill())
		if speed <= 0 {
			return 0
		}
		return t.HarvestTime() / speed
	case *activity.Activity:
		mult := p.SpeedMultiplier(t.ID())
		if mult <= 0 {
			return 0
		}
		return t.EffectiveDuration(mult)
	default:
		return 0
	}
}

// HarvestSpeed is how fast one worker of workerType harvests a node using skill
func (p *Pool) HarvestSpeed(workerType, skill string) float64 {
	t, ok := p.types[workerType]
	if !ok {
		return 0
	}
	return t.HarvestSpeed * (1 + p.skills.SpeedBonus(skill)) * (1 + p.modifiers.HarvestSpeedBonus())
}

// SpeedMultiplier aggregates assigned worker speed on an activity:
// the sum of count x base speed (x bonus multiplier for specialists),
// scaled by skill bonus, active boosts and building speed bonus, capped at
// MaxSpeedMultiplier. No assigned workers yields 0.
func (p *Pool) SpeedMultiplier(activityID string) float64 {
	byType := p.assignments[activityID]
	sum := 0.0
	for workerType, count := range byType {
		t, ok := p.types[workerType]
		if !ok || count <= 0 {
			continue
		}
		sum += float64(count) * t.SpeedFor(activityID)
	}
	if sum <= 0 {
		return 0
	}

	skillBonus := 0.0
	if a, ok := p.activities[activityID]; ok {
		skillBonus = p.skills.SpeedBonus(a.Skill())
	}
	mult := sum * (1 + skillBonus) * p.BoostMultiplier(activityID) * (1 + p.modifiers.ActivitySpeedBonus())
	return math.Min(mult, p.cfg.MaxSpeedMultiplier)
}

// UpdateActivityStatus refreshes the halted/running status of every activity
func (p *Pool) UpdateActivityStatus(view ledger.View) {
	for _, id := range sortedKeys(p.activities) {
		p.activities[id].UpdateStatus(p.SpeedMultiplier(id), view)
	}
}

// Entities returns all entities in id order
func (p *Pool) Entities() []*Entity {
	return p.sortedEntities()
}

// EntitiesFor returns the entities serving targetID in id order
func (p *Pool) EntitiesFor(targetID string) []*Entity {
	var out []*Entity
	for _, e := range p.sortedEntities() {
		if e.AssignedTargetID() == targetID {
			out = append(out, e)
		}
	}
	return out
}

// Snapshot returns the persisted form of the pool
func (p *Pool) Snapshot() Snapshot {
	workers := make([]EntityState, 0, len(p.entities))
	for _, e := range p.sortedEntities() {
		workers = append(workers, EntityState{
			ID:       e.id,
			Type:     e.workerType,
			TargetID: e.AssignedTargetID(),
			Harvests: e.harvests,
			Distance: e.distance,
		})
	}
	return Snapshot{
		Assignments: p.Assignments(),
		Workers:     workers,
		Boosts:      p.ActiveBoosts(),
	}
}

// Restore replaces the pool with a snapshot. Unknown targets, types and
// boosts are ignored; every restored worker starts idle at home.
func (p *Pool) Restore(snap Snapshot) {
	p.assignments = make(map[string]map[string]int)
	p.entities = make(map[string]*Entity)
	p.nextSeq = 0

	for targetID, byType := range snap.Assignments {
		if _, ok := p.targets[targetID]; !ok {
			continue
		}
		for workerType, count := range byType {
			if _, ok := p.types[workerType]; !ok || count <= 0 {
				continue
			}
			p.setCount(targetID, workerType, count)
		}
	}

	for _, state := range snap.Workers {
		target, ok := p.targets[state.TargetID]
		if !ok || p.AssignedTo(state.TargetID, state.Type) <= p.countEntities(state.TargetID, state.Type) {
			continue
		}
		seq, ok := parseEntityID(state.ID)
		if !ok || p.entities[state.ID] != nil {
			continue
		}
		e := p.newEntity(state.ID, seq, state.Type, target)
		if e == nil {
			continue
		}
		e.RestoreStats(state.Harvests, state.Distance)
		if seq >= p.nextSeq {
			p.nextSeq = seq + 1
		}
	}

	p.restoreBoosts(snap.Boosts)
	p.Sync()
}

// ResetEntities parks every entity idle at home, keeping assignments
func (p *Pool) ResetEntities() {
	for _, e := range p.entities {
		e.ResetToHome()
	}
}

// Reset clears assignments, entities and boosts
func (p *Pool) Reset() {
	p.assignments = make(map[string]map[string]int)
	p.entities = make(map[string]*Entity)
	p.boosts = make(map[string]*activeBoost)
	p.nextSeq = 0
	for _, a := range p.activities {
		a.Reset()
	}
}

func (p *Pool) validate(workerType, targetID string, n int) error {
	if _, ok := p.types[workerType]; !ok {
		return shared.NewRejectionError(shared.RejectInvalidID, "unknown worker type %q", workerType)
	}
	if _, ok := p.targets[targetID]; !ok {
		return shared.NewRejectionError(shared.RejectInvalidID, "unknown target %q", targetID)
	}
	if n <= 0 {
		return shared.NewRejectionError(shared.RejectInvalidAmount, "worker count must be positive, got %d", n)
	}
	return nil
}

func (p *Pool) setCount(targetID, workerType string, count int) {
	if count <= 0 {
		if byType, ok := p.assignments[targetID]; ok {
			delete(byType, workerType)
			if len(byType) == 0 {
				delete(p.assignments, targetID)
			}
		}
		return
	}
	byType, ok := p.assignments[targetID]
	if !ok {
		byType = make(map[string]int)
		p.assignments[targetID] = byType
	}
	byType[workerType] = count
}

// reconcilePopulation trims assignments that exceed the workers the ledger holds
func (p *Pool) reconcilePopulation() {
	for workerType := range p.types {
		over := p.Assigned(workerType) - utils.FloorInt(p.ledger.Get(workerType))
		if over <= 0 {
			continue
		}
		targets := sortedKeys(p.assignments)
		for i := len(targets) - 1; i >= 0 && over > 0; i-- {
			current := p.AssignedTo(targets[i], workerType)
			cut := current
			if cut > over {
				cut = over
			}
			p.setCount(targets[i], workerType, current-cut)
			over -= cut
		}
	}
}

func (p *Pool) spawn(workerType string, target Target) {
	seq := p.nextSeq
	p.nextSeq++
	p.newEntity(formatEntityID(seq), seq, workerType, target)
}

func (p *Pool) newEntity(id string, seq int, workerType string, target Target) *Entity {
	t, ok := p.types[workerType]
	if !ok {
		return nil
	}
	jitter := shared.RandomRange(p.random, 0, p.cfg.MaxJitter)
	e, err := NewEntity(id, seq, t, p.cfg.Home, jitter)
	if err != nil {
		return nil
	}
	e.target = target
	p.entities[id] = e
	return e
}

func (p *Pool) countEntities(targetID, workerType string) int {
	n := 0
	for _, e := range p.entities {
		if e.workerType == workerType && e.AssignedTargetID() == targetID {
			n++
		}
	}
	return n
}

// excess picks n entities to discard: idle first, then newest
func (p *Pool) excess(targetID, workerType string, n int) []*Entity {
	var candidates []*Entity
	for _, e := range p.entities {
		if e.workerType == workerType && e.AssignedTargetID() == targetID {
			candidates = append(candidates, e)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ai, aj := candidates[i].state == StateIdle, candidates[j].state == StateIdle
		if ai != aj {
			return ai
		}
		return candidates[i].seq > candidates[j].seq
	})
	if n > len(candidates) {
		n = len(candidates)
	}
	return candidates[:n]
}

func (p *Pool) sortedEntities() []*Entity {
	out := make([]*Entity, 0, len(p.entities))
	for _, e := range p.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func formatEntityID(seq int) string {
	return fmt.Sprintf("wrk-%06d", seq)
}

func parseEntityID(id string) (int, bool) {
	var seq int
	if _, err := fmt.Sscanf(id, "wrk-%d", &seq); err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
