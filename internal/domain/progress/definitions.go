package progress

// EffectKind is what a global upgrade changes
type EffectKind string

const (
	EffectNodeCapacity  EffectKind = "node_capacity"
	EffectNodeSpawnRate EffectKind = "node_spawn_rate"
	EffectWorkerSpeed   EffectKind = "worker_speed"
	EffectHarvestSpeed  EffectKind = "harvest_speed"
)

// IsNodeEffect reports whether the effect upgrades a resource node
func (k EffectKind) IsNodeEffect() bool {
	return k == EffectNodeCapacity || k == EffectNodeSpawnRate
}

// UpgradeDefinition is a one-time global upgrade. Node effects raise the
// level of the node named by Target; speed effects add Value as a
// fractional bonus.
type UpgradeDefinition struct {
	ID            string             `yaml:"id" json:"id" validate:"required"`
	Name          string             `yaml:"name" json:"name"`
	Cost          map[string]float64 `yaml:"cost" json:"cost"`
	Prerequisites []string           `yaml:"prerequisites" json:"prerequisites"`
	Effect        EffectKind         `yaml:"effect" json:"effect" validate:"required,oneof=node_capacity node_spawn_rate worker_speed harvest_speed"`
	Target        string             `yaml:"target" json:"target"`
	Value         float64            `yaml:"value" json:"value" validate:"gte=0"`
}

// PredicateKind is the statistic an achievement watches
type PredicateKind string

const (
	PredicateCurrencyEarned      PredicateKind = "currency_earned"
	PredicateActivityCompletions PredicateKind = "activity_completions"
	PredicateResourcesMined      PredicateKind = "resources_mined"
	PredicateBuildingsCompleted  PredicateKind = "buildings_completed"
	PredicateSkillLevel          PredicateKind = "skill_level"
)

// AchievementDefinition unlocks once the watched statistic reaches
// Threshold. Key names the resource, activity or skill; an empty key sums
// every resource or activity.
type AchievementDefinition struct {
	ID        string        `yaml:"id" json:"id" validate:"required"`
	Name      string        `yaml:"name" json:"name"`
	Kind      PredicateKind `yaml:"kind" json:"kind" validate:"required,oneof=currency_earned activity_completions resources_mined buildings_completed skill_level"`
	Key       string        `yaml:"key" json:"key"`
	Threshold float64       `yaml:"threshold" json:"threshold" validate:"gt=0"`
}
