package skill

import (
	"math"
	"sort"

	"github.com/andrescamacho/idlecolony-go/internal/domain/events"
)

// Curve describes how much experience each level needs and how much speed a
// level is worth
type Curve struct {
	BaseXP        float64 `yaml:"base_xp" json:"base_xp" validate:"gt=0"`
	Growth        float64 `yaml:"growth" json:"growth" validate:"gte=1"`
	MaxLevel      int     `yaml:"max_level" json:"max_level" validate:"gte=1"`
	SpeedPerLevel float64 `yaml:"speed_per_level" json:"speed_per_level" validate:"gte=0"`
}

// DefaultCurve returns the standard leveling curve
func DefaultCurve() Curve {
	return Curve{
		BaseXP:        100,
		Growth:        1.25,
		MaxLevel:      99,
		SpeedPerLevel: 0.02,
	}
}

// XPForLevel returns the total experience needed to reach level.
// Level 1 needs nothing; each following level k adds floor(BaseXP*Growth^(k-1)).
func (c Curve) XPForLevel(level int) float64 {
	if level <= 1 {
		return 0
	}
	if level > c.MaxLevel {
		level = c.MaxLevel
	}
	total := 0.0
	for k := 1; k < level; k++ {
		total += math.Floor(c.BaseXP * math.Pow(c.Growth, float64(k-1)))
	}
	return total
}

// LevelForXP returns the level reached with xp total experience
func (c Curve) LevelForXP(xp float64) int {
	level := 1
	for level < c.MaxLevel && xp >= c.XPForLevel(level+1) {
		level++
	}
	return level
}

// SpeedBonus returns the fractional speed bonus granted at level
func (c Curve) SpeedBonus(level int) float64 {
	if level <= 1 {
		return 0
	}
	return c.SpeedPerLevel * float64(level-1)
}

// State is the persisted progress of one skill
type State struct {
	Level int     `json:"level"`
	XP    float64 `json:"xp"`
}

// Tracker holds per-skill experience. Levels are always derived from XP.
type Tracker struct {
	curve     Curve
	xp        map[string]float64
	levels    map[string]int
	publisher events.Publisher
}

// NewTracker creates a tracker; a nil publisher drops level-up events
func NewTracker(curve Curve, publisher events.Publisher) *Tracker {
	if curve.MaxLevel < 1 {
		curve = DefaultCurve()
	}
	return &Tracker{
		curve:     curve,
		xp:        make(map[string]float64),
		levels:    make(map[string]int),
		publisher: events.OrNop(publisher),
	}
}

// Curve returns the leveling curve in use
func (t *Tracker) Curve() Curve {
	return t.curve
}

// AddXP grants experience to skill and returns how many levels were gained
func (t *Tracker) AddXP(skill string, xp float64) int {
	if skill == "" || xp <= 0 || math.IsNaN(xp) || math.IsInf(xp, 0) {
		return 0
	}
	before := t.Level(skill)
	t.xp[skill] += xp
	after := t.curve.LevelForXP(t.xp[skill])
	t.levels[skill] = after

	for level := before + 1; level <= after; level++ {
		t.publisher.Publish(events.SkillLevelUp, events.SkillLevelUpPayload{Skill: skill, Level: level})
	}
	return after - before
}

// XP returns the total experience of skill
func (t *Tracker) XP(skill string) float64 {
	return t.xp[skill]
}

// Level returns the level of skill, 1 when untrained
func (t *Tracker) Level(skill string) int {
	if level, ok := t.levels[skill]; ok {
		return level
	}
	return 1
}

// SpeedBonus returns the fractional speed bonus skill grants
func (t *Tracker) SpeedBonus(skill string) float64 {
	return t.curve.SpeedBonus(t.Level(skill))
}

// Progress returns the fraction of the way from the current level to the next
func (t *Tracker) Progress(skill string) float64 {
	level := t.Level(skill)
	if level >= t.curve.MaxLevel {
		return 1
	}
	floor := t.curve.XPForLevel(level)
	ceil := t.curve.XPForLevel(level + 1)
	if ceil <= floor {
		return 1
	}
	return (t.xp[skill] - floor) / (ceil - floor)
}

// Skills returns the ids of every skill with experience, sorted
func (t *Tracker) Skills() []string {
	ids := make([]string, 0, len(t.xp))
	for id := range t.xp {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Snapshot returns the persisted form of every skill
func (t *Tracker) Snapshot() map[string]State {
	out := make(map[string]State, len(t.xp))
	for id, xp := range t.xp {
		out[id] = State{Level: t.Level(id), XP: xp}
	}
	return out
}

// Restore replaces all progress. The stored level is ignored and rederived
// from XP so repeated restores never accumulate.
func (t *Tracker) Restore(states map[string]State) {
	t.xp = make(map[string]float64, len(states))
	t.levels = make(map[string]int, len(states))
	for id, state := range states {
		xp := state.XP
		if id == "" || xp < 0 || math.IsNaN(xp) || math.IsInf(xp, 0) {
			xp = 0
		}
		t.xp[id] = xp
		t.levels[id] = t.curve.LevelForXP(xp)
	}
}

// Reset clears all progress
func (t *Tracker) Reset() {
	t.xp = make(map[string]float64)
	t.levels = make(map[string]int)
}
