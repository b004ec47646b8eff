package game

import (
	"github.com/andrescamacho/idlecolony-go/internal/domain/activity"
	"github.com/andrescamacho/idlecolony-go/internal/domain/building"
	"github.com/andrescamacho/idlecolony-go/internal/domain/events"
	"github.com/andrescamacho/idlecolony-go/internal/domain/ledger"
	"github.com/andrescamacho/idlecolony-go/internal/domain/progress"
	"github.com/andrescamacho/idlecolony-go/internal/domain/resource"
	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
	"github.com/andrescamacho/idlecolony-go/internal/domain/worker"
)

// depositSink is where finished worker cycles land: activity completions
// are counted on harvest, and deposits credit the ledger, feed statistics
// and grant skill experience
type depositSink struct {
	engine *Engine
}

func (s depositSink) Harvested(_ *worker.Entity, target worker.Target, _ shared.ResourceMap) {
	if _, ok := target.(*activity.Activity); ok {
		s.engine.progress.RecordActivityCompletion(target.ID())
	}
}

func (s depositSink) Deposited(e *worker.Entity, target worker.Target, payload shared.ResourceMap) {
	s.engine.ledger.Credit(payload, ledger.TransactionTypeHarvestDeposit, target.ID())

	_, mined := target.(*resource.Node)
	s.engine.progress.RecordDeposit(payload, mined)
	s.engine.skills.AddXP(target.Skill(), target.XP())

	s.engine.bus.Publish(events.WorkerDeposited, events.WorkerDepositedPayload{
		WorkerID:   e.ID(),
		WorkerType: e.WorkerType(),
		TargetID:   target.ID(),
		Payload:    payload.Clone(),
	})
}

// modifiers combines upgrade and building bonuses for the worker pool
type modifiers struct {
	progress  *progress.Tracker
	buildings *building.Manager
}

func (m modifiers) WalkSpeedBonus() float64    { return m.progress.WalkSpeedBonus() }
func (m modifiers) HarvestSpeedBonus() float64 { return m.progress.HarvestSpeedBonus() }

func (m modifiers) ActivitySpeedBonus() float64 {
	return m.buildings.GetBuildingBonus(building.EffectSpeedBonus)
}

// nodeUpgrader applies node effects of global upgrades
type nodeUpgrader struct {
	nodes map[string]*resource.Node
}

func (u nodeUpgrader) HasNode(id string) bool {
	_, ok := u.nodes[id]
	return ok
}

func (u nodeUpgrader) UpgradeNode(id string, kind progress.EffectKind) {
	n, ok := u.nodes[id]
	if !ok {
		return
	}
	switch kind {
	case progress.EffectNodeCapacity:
		n.UpgradeCapacity()
	case progress.EffectNodeSpawnRate:
		n.UpgradeSpawnRate()
	}
}
