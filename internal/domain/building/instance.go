package building

import (
	"sort"
	"time"

	"github.com/andrescamacho/idlecolony-go/pkg/utils"
)

// Instance is one constructed (or under construction) building. Effects and
// sub-state behavior only apply once construction is complete.
type Instance struct {
	id        string
	buildType Type
	startedAt time.Time
	duration  time.Duration
	complete  bool
	upgrades  map[string]int
	sub       SubState
}

func newInstance(id string, t Type, startedAt time.Time) *Instance {
	inst := &Instance{
		id:        id,
		buildType: t,
		startedAt: startedAt,
		duration:  seconds(t.BuildTime),
		upgrades:  make(map[string]int),
		sub:       newSubState(t),
	}
	inst.sub.ApplyEffects(inst)
	return inst
}

// Getters

func (i *Instance) ID() string                 { return i.id }
func (i *Instance) TypeID() string             { return i.buildType.ID }
func (i *Instance) Type() Type                 { return i.buildType }
func (i *Instance) StartedAt() time.Time       { return i.startedAt }
func (i *Instance) Duration() time.Duration    { return i.duration }
func (i *Instance) IsComplete() bool           { return i.complete }
func (i *Instance) SubState() SubState         { return i.sub }
func (i *Instance) CompletesAt() time.Time     { return i.startedAt.Add(i.duration) }
func (i *Instance) UpgradeLevel(id string) int { return i.upgrades[id] }

// Upgrades returns a copy of the purchased upgrade levels
func (i *Instance) Upgrades() map[string]int {
	out := make(map[string]int, len(i.upgrades))
	for k, v := range i.upgrades {
		out[k] = v
	}
	return out
}

// Progress returns construction progress in [0, 1] at now
func (i *Instance) Progress(now time.Time) float64 {
	if i.complete || i.duration <= 0 {
		return 1
	}
	return utils.Clamp(float64(now.Sub(i.startedAt))/float64(i.duration), 0, 1)
}

// Effect returns baseEffect + perLevel*level summed over upgrades for key.
// Incomplete instances still report their effect; callers aggregating
// bonuses skip them.
func (i *Instance) Effect(key string) float64 {
	total := i.buildType.Effects[key]
	for _, u := range i.buildType.Upgrades {
		if u.Effect == key {
			total += u.PerLevel * float64(i.upgrades[u.ID])
		}
	}
	return total
}

// DefinesEffect reports whether the type or any of its upgrades names key
func (i *Instance) DefinesEffect(key string) bool {
	if _, ok := i.buildType.Effects[key]; ok {
		return true
	}
	for _, u := range i.buildType.Upgrades {
		if u.Effect == key {
			return true
		}
	}
	return false
}

// Generator returns the generator sub-state, if any
func (i *Instance) Generator() (*GeneratorState, bool) {
	g, ok := i.sub.(*GeneratorState)
	return g, ok
}

// Training returns the training sub-state, if any
func (i *Instance) Training() (*TrainingState, bool) {
	t, ok := i.sub.(*TrainingState)
	return t, ok
}

// checkCompletion flips the instance to complete once the duration has
// elapsed; it reports true only on the transition
func (i *Instance) checkCompletion(now time.Time) bool {
	if i.complete || now.Sub(i.startedAt) < i.duration {
		return false
	}
	i.complete = true
	return true
}

func (i *Instance) setUpgradeLevel(id string, level int) {
	i.upgrades[id] = level
	i.sub.ApplyEffects(i)
}

// InstanceState is the persisted form of a building instance
type InstanceState struct {
	ID        string           `json:"id"`
	TypeID    string           `json:"type_id"`
	StartedAt time.Time        `json:"started_at"`
	Complete  bool             `json:"complete"`
	Upgrades  map[string]int   `json:"upgrades,omitempty"`
	SubState  SubStateSnapshot `json:"sub_state"`
}

func (i *Instance) snapshot() InstanceState {
	return InstanceState{
		ID:        i.id,
		TypeID:    i.buildType.ID,
		StartedAt: i.startedAt,
		Complete:  i.complete,
		Upgrades:  i.Upgrades(),
		SubState:  i.sub.Snapshot(),
	}
}

func restoreInstance(state InstanceState, t Type) *Instance {
	inst := newInstance(state.ID, t, state.StartedAt)
	inst.complete = state.Complete

	ids := make([]string, 0, len(state.Upgrades))
	for id := range state.Upgrades {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		def, ok := t.Upgrade(id)
		if !ok {
			continue
		}
		level := state.Upgrades[id]
		if level <= 0 {
			continue
		}
		if level > def.MaxLevel {
			level = def.MaxLevel
		}
		inst.upgrades[id] = level
	}
	inst.sub.Restore(state.SubState, inst)
	return inst
}
