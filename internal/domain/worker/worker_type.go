package worker

// Type is the static description of a worker type. The ledger holds the
// population of each type under its ID.
type Type struct {
	ID              string   `yaml:"id" json:"id" validate:"required"`
	Name            string   `yaml:"name" json:"name"`
	WalkSpeed       float64  `yaml:"walk_speed" json:"walk_speed" validate:"gt=0"`
	CarrySpeed      float64  `yaml:"carry_speed" json:"carry_speed" validate:"gt=0,ltfield=WalkSpeed"`
	HarvestSpeed    float64  `yaml:"harvest_speed" json:"harvest_speed" validate:"gt=0"`
	BaseSpeed       float64  `yaml:"base_speed" json:"base_speed" validate:"gt=0"`
	BonusActivities []string `yaml:"bonus_activities" json:"bonus_activities"`
	BonusMultiplier float64  `yaml:"bonus_multiplier" json:"bonus_multiplier" validate:"omitempty,gte=1"`
}

// HasBonusFor reports whether the type specialises in activityID
func (t Type) HasBonusFor(activityID string) bool {
	for _, id := range t.BonusActivities {
		if id == activityID {
			return true
		}
	}
	return false
}

// SpeedFor is one worker's contribution to an activity's speed multiplier
func (t Type) SpeedFor(activityID string) float64 {
	if t.HasBonusFor(activityID) && t.BonusMultiplier > 0 {
		return t.BaseSpeed * t.BonusMultiplier
	}
	return t.BaseSpeed
}
