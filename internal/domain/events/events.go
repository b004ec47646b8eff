package events

import "time"

// Name identifies an event type. The set is closed: subscribers switch on
// these constants and type-assert the matching payload.
type Name string

const (
	// ConstructionStarted carries ConstructionStartedPayload
	ConstructionStarted Name = "construction.started"

	// ConstructionCompleted carries ConstructionCompletedPayload, published once per instance
	ConstructionCompleted Name = "construction.completed"

	// BuildingUpgraded carries BuildingUpgradedPayload
	BuildingUpgraded Name = "building.upgraded"

	// WorkerGenerated carries WorkerGeneratedPayload
	WorkerGenerated Name = "worker.generated"

	// WorkerDeposited carries WorkerDepositedPayload
	WorkerDeposited Name = "worker.deposited"

	// TrainingStarted carries TrainingPayload
	TrainingStarted Name = "training.started"

	// TrainingCompleted carries TrainingPayload
	TrainingCompleted Name = "training.completed"

	// ProductionHalted carries ProductionStatusPayload
	ProductionHalted Name = "production.halted"

	// ProductionResumed carries ProductionStatusPayload
	ProductionResumed Name = "production.resumed"

	// SkillLevelUp carries SkillLevelUpPayload
	SkillLevelUp Name = "skill.level_up"

	// UpgradePurchased carries UpgradePurchasedPayload
	UpgradePurchased Name = "upgrade.purchased"

	// AchievementUnlocked carries AchievementUnlockedPayload
	AchievementUnlocked Name = "achievement.unlocked"

	// BoostActivated and BoostExpired carry BoostPayload
	BoostActivated Name = "boost.activated"
	BoostExpired   Name = "boost.expired"

	// GameReset and GameLoaded carry no payload
	GameReset  Name = "game.reset"
	GameLoaded Name = "game.loaded"
)

// AllNames returns every event name in a stable order
func AllNames() []Name {
	return []Name{
		ConstructionStarted,
		ConstructionCompleted,
		BuildingUpgraded,
		WorkerGenerated,
		WorkerDeposited,
		TrainingStarted,
		TrainingCompleted,
		ProductionHalted,
		ProductionResumed,
		SkillLevelUp,
		UpgradePurchased,
		AchievementUnlocked,
		BoostActivated,
		BoostExpired,
		GameReset,
		GameLoaded,
	}
}

// Event is a published notification
type Event struct {
	Name    Name
	Payload interface{}
}

// ConstructionStartedPayload is published when a building instance is created
type ConstructionStartedPayload struct {
	InstanceID string
	TypeID     string
	Duration   time.Duration
}

// ConstructionCompletedPayload is published when construction finishes
type ConstructionCompletedPayload struct {
	InstanceID string
	TypeID     string
}

// BuildingUpgradedPayload is published when a per-instance upgrade level is bought
type BuildingUpgradedPayload struct {
	InstanceID string
	UpgradeID  string
	Level      int
}

// WorkerGeneratedPayload is published when a generator room produces a worker
type WorkerGeneratedPayload struct {
	InstanceID string
	Room       int
	WorkerType string
	Occupancy  int
}

// WorkerDepositedPayload is published when a worker credits its payload
type WorkerDepositedPayload struct {
	WorkerID   string
	WorkerType string
	TargetID   string
	Payload    map[string]float64
}

// TrainingPayload describes a training queue entry
type TrainingPayload struct {
	BuildingID   string
	ProgramID    string
	OutputWorker string
	Count        int
}

// ProductionStatusPayload describes an activity status transition
type ProductionStatusPayload struct {
	ActivityID string
	Reason     string
}

// SkillLevelUpPayload is published for each level gained
type SkillLevelUpPayload struct {
	Skill string
	Level int
}

// UpgradePurchasedPayload is published when a global upgrade is bought
type UpgradePurchasedPayload struct {
	UpgradeID string
}

// AchievementUnlockedPayload is published once per achievement
type AchievementUnlockedPayload struct {
	AchievementID string
}

// BoostPayload describes a consumable speed boost
type BoostPayload struct {
	BoostID    string
	ActivityID string
	Multiplier float64
}
