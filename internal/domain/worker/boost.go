package worker

import (
	"sort"

	"github.com/andrescamacho/idlecolony-go/internal/domain/events"
	"github.com/andrescamacho/idlecolony-go/internal/domain/ledger"
	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
)

// BoostDefinition is a consumable that multiplies activity speed for a while.
// An empty ActivityID applies to every activity.
type BoostDefinition struct {
	ID         string             `yaml:"id" json:"id" validate:"required"`
	Name       string             `yaml:"name" json:"name"`
	Cost       map[string]float64 `yaml:"cost" json:"cost"`
	Multiplier float64            `yaml:"multiplier" json:"multiplier" validate:"gt=0"`
	Duration   float64            `yaml:"duration" json:"duration" validate:"gt=0"`
	ActivityID string             `yaml:"activity_id" json:"activity_id"`
}

// Applies reports whether the boost affects activityID
func (d BoostDefinition) Applies(activityID string) bool {
	return d.ActivityID == "" || d.ActivityID == activityID
}

// BoostState is the persisted form of an active boost
type BoostState struct {
	ID        string  `json:"id"`
	Remaining float64 `json:"remaining"`
}

type activeBoost struct {
	def       BoostDefinition
	remaining float64
}

// ActivateBoost charges the boost cost and starts it. Activating a boost
// that is already running restarts its duration.
func (p *Pool) ActivateBoost(boostID string) error {
	def, ok := p.boostDefs[boostID]
	if !ok {
		return shared.NewRejectionError(shared.RejectInvalidID, "unknown boost %q", boostID)
	}
	if def.ActivityID != "" {
		if _, ok := p.activities[def.ActivityID]; !ok {
			return shared.NewRejectionError(shared.RejectInvalidID, "boost %q targets unknown activity %q", boostID, def.ActivityID)
		}
	}
	if !p.ledger.Charge(def.Cost, ledger.TransactionTypeBoostCost, boostID) {
		return shared.NewRejectionError(shared.RejectInsufficientFunds, "cannot afford boost %q", boostID)
	}

	if active, ok := p.boosts[boostID]; ok {
		active.remaining = def.Duration
	} else {
		p.boosts[boostID] = &activeBoost{def: def, remaining: def.Duration}
	}
	p.publisher.Publish(events.BoostActivated, events.BoostPayload{
		BoostID:    boostID,
		ActivityID: def.ActivityID,
		Multiplier: def.Multiplier,
	})
	return nil
}

// DecayBoosts counts active boosts down by dt seconds and expires finished ones
func (p *Pool) DecayBoosts(dt float64) {
	if dt <= 0 {
		return
	}
	for _, id := range p.boostIDs() {
		active := p.boosts[id]
		active.remaining -= dt
		if active.remaining > 0 {
			continue
		}
		delete(p.boosts, id)
		p.publisher.Publish(events.BoostExpired, events.BoostPayload{
			BoostID:    id,
			ActivityID: active.def.ActivityID,
			Multiplier: active.def.Multiplier,
		})
	}
}

// BoostMultiplier is the product of every active boost affecting activityID
func (p *Pool) BoostMultiplier(activityID string) float64 {
	mult := 1.0
	for _, active := range p.boosts {
		if active.def.Applies(activityID) {
			mult *= active.def.Multiplier
		}
	}
	return mult
}

// ActiveBoosts returns the running boosts sorted by id
func (p *Pool) ActiveBoosts() []BoostState {
	out := make([]BoostState, 0, len(p.boosts))
	for _, id := range p.boostIDs() {
		out = append(out, BoostState{ID: id, Remaining: p.boosts[id].remaining})
	}
	return out
}

// BoostDefinitions returns the known boosts sorted by id
func (p *Pool) BoostDefinitions() []BoostDefinition {
	out := make([]BoostDefinition, 0, len(p.boostDefs))
	for _, def := range p.boostDefs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (p *Pool) restoreBoosts(states []BoostState) {
	p.boosts = make(map[string]*activeBoost)
	for _, state := range states {
		def, ok := p.boostDefs[state.ID]
		if !ok || state.Remaining <= 0 {
			continue
		}
		remaining := state.Remaining
		if remaining > def.Duration {
			remaining = def.Duration
		}
		p.boosts[state.ID] = &activeBoost{def: def, remaining: remaining}
	}
}

func (p *Pool) boostIDs() []string {
	ids := make([]string, 0, len(p.boosts))
	for id := range p.boosts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
