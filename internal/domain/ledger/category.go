package ledger

import "fmt"

// Category groups transaction types for reporting
type Category string

const (
	// CategoryProduction is output of workers, activities and manual harvests
	CategoryProduction Category = "PRODUCTION"

	// CategoryPopulation is workers gained through generation or training
	CategoryPopulation Category = "POPULATION"

	// CategoryInvestment is spending on buildings and upgrades
	CategoryInvestment Category = "INVESTMENT"

	// CategoryConsumption is resources burnt by production, training and boosts
	CategoryConsumption Category = "CONSUMPTION"

	// CategoryAdjustment is anything applied directly to the ledger
	CategoryAdjustment Category = "ADJUSTMENT"
)

var typeToCategory = map[TransactionType]Category{
	TransactionTypeHarvestDeposit:      CategoryProduction,
	TransactionTypeManualHarvest:       CategoryProduction,
	TransactionTypeActivityInput:       CategoryConsumption,
	TransactionTypeConstructionCost:    CategoryInvestment,
	TransactionTypeBuildingUpgradeCost: CategoryInvestment,
	TransactionTypeTrainingCost:        CategoryConsumption,
	TransactionTypeTrainingOutput:      CategoryPopulation,
	TransactionTypeWorkerGenerated:     CategoryPopulation,
	TransactionTypeUpgradeCost:         CategoryInvestment,
	TransactionTypeBoostCost:           CategoryConsumption,
	TransactionTypeAdjustment:          CategoryAdjustment,
}

// AllCategories returns all valid categories
func AllCategories() []Category {
	return []Category{
		CategoryProduction,
		CategoryPopulation,
		CategoryInvestment,
		CategoryConsumption,
		CategoryAdjustment,
	}
}

// String returns the string representation of the Category
func (c Category) String() string {
	return string(c)
}

// IsValid checks if the category is valid
func (c Category) IsValid() bool {
	switch c {
	case CategoryProduction,
		CategoryPopulation,
		CategoryInvestment,
		CategoryConsumption,
		CategoryAdjustment:
		return true
	default:
		return false
	}
}

// IsIncome returns true if the category adds to balances
func (c Category) IsIncome() bool {
	return c == CategoryProduction || c == CategoryPopulation
}

// ParseCategory parses a string into a Category
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid category: %s", s)
	}
	return c, nil
}
