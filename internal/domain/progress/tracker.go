package progress

import (
	"sort"

	"github.com/andrescamacho/idlecolony-go/internal/domain/events"
	"github.com/andrescamacho/idlecolony-go/internal/domain/ledger"
	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
)

// NodeUpgrader applies node effects of global upgrades
type NodeUpgrader interface {
	HasNode(id string) bool
	UpgradeNode(id string, kind EffectKind)
}

// SkillLevels reports skill levels for skill_level achievements
type SkillLevels interface {
	Level(skill string) int
}

// State is the persisted form of the tracker
type State struct {
	Purchased []string `json:"purchased"`
	Unlocked  []string `json:"unlocked"`
	Stats     Stats    `json:"stats"`
}

// Tracker owns purchased upgrades, unlocked achievements and the cumulative
// statistics they depend on. Both sets only grow until reset.
type Tracker struct {
	upgrades     map[string]UpgradeDefinition
	achievements []AchievementDefinition

	purchased map[string]bool
	unlocked  map[string]bool
	stats     Stats

	ledger    *ledger.Ledger
	nodes     NodeUpgrader
	publisher events.Publisher
}

// NewTracker creates an empty tracker
func NewTracker(
	upgrades []UpgradeDefinition,
	achievements []AchievementDefinition,
	l *ledger.Ledger,
	nodes NodeUpgrader,
	publisher events.Publisher,
) *Tracker {
	t := &Tracker{
		upgrades:     make(map[string]UpgradeDefinition, len(upgrades)),
		achievements: append([]AchievementDefinition(nil), achievements...),
		purchased:    make(map[string]bool),
		unlocked:     make(map[string]bool),
		stats:        NewStats(),
		ledger:       l,
		nodes:        nodes,
		publisher:    events.OrNop(publisher),
	}
	for _, u := range upgrades {
		t.upgrades[u.ID] = u
	}
	sort.Slice(t.achievements, func(i, j int) bool { return t.achievements[i].ID < t.achievements[j].ID })
	return t
}

// Upgrades returns every upgrade definition sorted by id
func (t *Tracker) Upgrades() []UpgradeDefinition {
	out := make([]UpgradeDefinition, 0, len(t.upgrades))
	for _, u := range t.upgrades {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Achievements returns every achievement definition sorted by id
func (t *Tracker) Achievements() []AchievementDefinition {
	return append([]AchievementDefinition(nil), t.achievements...)
}

// IsPurchased reports whether upgrade id was bought
func (t *Tracker) IsPurchased(id string) bool { return t.purchased[id] }

// IsUnlocked reports whether achievement id was unlocked
func (t *Tracker) IsUnlocked(id string) bool { return t.unlocked[id] }

// Stats returns a copy of the statistics
func (t *Tracker) Stats() Stats { return t.stats.Clone() }

// Purchase buys a global upgrade: rejects unknown, owned, missing
// prerequisites and unaffordable; charges atomically; applies the effect
func (t *Tracker) Purchase(id string) error {
	def, ok := t.upgrades[id]
	if !ok {
		return shared.NewRejectionError(shared.RejectInvalidID, "unknown upgrade %q", id)
	}
	if t.purchased[id] {
		return shared.NewRejectionError(shared.RejectAlreadyOwned, "upgrade %q already purchased", id)
	}
	for _, pre := range def.Prerequisites {
		if !t.purchased[pre] {
			return shared.NewRejectionError(shared.RejectPrerequisiteMissing, "upgrade %q requires %q", id, pre)
		}
	}
	if def.Effect.IsNodeEffect() && (t.nodes == nil || !t.nodes.HasNode(def.Target)) {
		return shared.NewRejectionError(shared.RejectInvalidID, "upgrade %q targets unknown node %q", id, def.Target)
	}
	if !t.ledger.Charge(def.Cost, ledger.TransactionTypeUpgradeCost, id) {
		return shared.NewRejectionError(shared.RejectInsufficientFunds, "cannot afford upgrade %q", id)
	}

	t.purchased[id] = true
	if def.Effect.IsNodeEffect() {
		t.nodes.UpgradeNode(def.Target, def.Effect)
	}
	t.publisher.Publish(events.UpgradePurchased, events.UpgradePurchasedPayload{UpgradeID: id})
	return nil
}

// WalkSpeedBonus sums purchased worker_speed upgrades
func (t *Tracker) WalkSpeedBonus() float64 {
	return t.bonus(EffectWorkerSpeed)
}

// HarvestSpeedBonus sums purchased harvest_speed upgrades
func (t *Tracker) HarvestSpeedBonus() float64 {
	return t.bonus(EffectHarvestSpeed)
}

func (t *Tracker) bonus(kind EffectKind) float64 {
	total := 0.0
	for id := range t.purchased {
		if def, ok := t.upgrades[id]; ok && def.Effect == kind {
			total += def.Value
		}
	}
	return total
}

// RecordDeposit adds a credited payload to currency earned; payloads from
// resource nodes also count as mined
func (t *Tracker) RecordDeposit(payload shared.ResourceMap, mined bool) {
	for id, amount := range payload {
		if amount <= 0 {
			continue
		}
		t.stats.CurrencyEarned[id] += amount
		if mined {
			t.stats.ResourcesMined[id] += amount
			t.stats.TotalMined += amount
		}
	}
}

// RecordActivityCompletion counts one finished production cycle
func (t *Tracker) RecordActivityCompletion(activityID string) {
	t.stats.ActivityCompletions[activityID]++
}

// RecordBuildingCompleted counts one finished construction
func (t *Tracker) RecordBuildingCompleted() {
	t.stats.BuildingsCompleted++
}

// RecordTrainingCompleted counts one finished training entry
func (t *Tracker) RecordTrainingCompleted() {
	t.stats.TrainingsCompleted++
}

// ResourcesMined implements the building unlock tally
func (t *Tracker) ResourcesMined(resource string) float64 {
	return t.stats.ResourcesMined[resource]
}

// TotalResourcesMined implements the building unlock tally
func (t *Tracker) TotalResourcesMined() float64 {
	return t.stats.TotalMined
}

// Evaluate unlocks every achievement whose predicate now holds and returns
// the ids unlocked by this call
func (t *Tracker) Evaluate(skills SkillLevels) []string {
	var unlocked []string
	for _, def := range t.achievements {
		if t.unlocked[def.ID] || !t.satisfied(def, skills) {
			continue
		}
		t.unlocked[def.ID] = true
		unlocked = append(unlocked, def.ID)
		t.publisher.Publish(events.AchievementUnlocked, events.AchievementUnlockedPayload{AchievementID: def.ID})
	}
	return unlocked
}

func (t *Tracker) satisfied(def AchievementDefinition, skills SkillLevels) bool {
	var value float64
	switch def.Kind {
	case PredicateCurrencyEarned:
		value = t.stats.currencyEarned(def.Key)
	case PredicateActivityCompletions:
		value = t.stats.activityCompletions(def.Key)
	case PredicateResourcesMined:
		value = t.stats.resourcesMined(def.Key)
	case PredicateBuildingsCompleted:
		value = float64(t.stats.BuildingsCompleted)
	case PredicateSkillLevel:
		if skills == nil {
			return false
		}
		value = float64(skills.Level(def.Key))
	default:
		return false
	}
	return value >= def.Threshold
}

// Snapshot returns the persisted form
func (t *Tracker) Snapshot() State {
	return State{
		Purchased: sortedSet(t.purchased),
		Unlocked:  sortedSet(t.unlocked),
		Stats:     t.stats.Clone(),
	}
}

// Restore replaces all progress. Unknown ids are ignored; node effects are
// not re-applied because node levels are restored separately.
func (t *Tracker) Restore(state State) {
	t.purchased = make(map[string]bool)
	for _, id := range state.Purchased {
		if _, ok := t.upgrades[id]; ok {
			t.purchased[id] = true
		}
	}
	t.unlocked = make(map[string]bool)
	known := make(map[string]bool, len(t.achievements))
	for _, def := range t.achievements {
		known[def.ID] = true
	}
	for _, id := range state.Unlocked {
		if known[id] {
			t.unlocked[id] = true
		}
	}
	t.stats = state.Stats.sanitized()
}

// Reset clears purchases, achievements and statistics
func (t *Tracker) Reset() {
	t.purchased = make(map[string]bool)
	t.unlocked = make(map[string]bool)
	t.stats = NewStats()
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
