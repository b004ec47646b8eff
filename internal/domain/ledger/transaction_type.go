package ledger

import "fmt"

// TransactionType represents why a ledger balance changed
type TransactionType string

const (
	// TransactionTypeHarvestDeposit is a worker crediting its carried payload
	TransactionTypeHarvestDeposit TransactionType = "HARVEST_DEPOSIT"

	// TransactionTypeManualHarvest is a player-triggered harvest
	TransactionTypeManualHarvest TransactionType = "MANUAL_HARVEST"

	// TransactionTypeActivityInput is the input cost of one production cycle
	TransactionTypeActivityInput TransactionType = "ACTIVITY_INPUT"

	// TransactionTypeConstructionCost is paid when construction starts
	TransactionTypeConstructionCost TransactionType = "CONSTRUCTION_COST"

	// TransactionTypeBuildingUpgradeCost is paid for a per-instance upgrade level
	TransactionTypeBuildingUpgradeCost TransactionType = "BUILDING_UPGRADE_COST"

	// TransactionTypeTrainingCost covers resources and input workers consumed by training
	TransactionTypeTrainingCost TransactionType = "TRAINING_COST"

	// TransactionTypeTrainingOutput is the trained worker credited on completion
	TransactionTypeTrainingOutput TransactionType = "TRAINING_OUTPUT"

	// TransactionTypeWorkerGenerated is a worker produced by a generator room
	TransactionTypeWorkerGenerated TransactionType = "WORKER_GENERATED"

	// TransactionTypeUpgradeCost is paid for a global upgrade
	TransactionTypeUpgradeCost TransactionType = "UPGRADE_COST"

	// TransactionTypeBoostCost is paid to activate a consumable boost
	TransactionTypeBoostCost TransactionType = "BOOST_COST"

	// TransactionTypeAdjustment is any direct Add/Set/Subtract call
	TransactionTypeAdjustment TransactionType = "ADJUSTMENT"
)

// AllTransactionTypes returns all valid transaction types
func AllTransactionTypes() []TransactionType {
	return []TransactionType{
		TransactionTypeHarvestDeposit,
		TransactionTypeManualHarvest,
		TransactionTypeActivityInput,
		TransactionTypeConstructionCost,
		TransactionTypeBuildingUpgradeCost,
		TransactionTypeTrainingCost,
		TransactionTypeTrainingOutput,
		TransactionTypeWorkerGenerated,
		TransactionTypeUpgradeCost,
		TransactionTypeBoostCost,
		TransactionTypeAdjustment,
	}
}

// String returns the string representation of the TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	_, ok := typeToCategory[t]
	return ok
}

// ToCategory maps the transaction type to its category
func (t TransactionType) ToCategory() (Category, error) {
	category, exists := typeToCategory[t]
	if !exists {
		return "", fmt.Errorf("unknown transaction type: %s", t)
	}
	return category, nil
}

// ParseTransactionType parses a string into a TransactionType
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid transaction type: %s", s)
	}
	return t, nil
}
