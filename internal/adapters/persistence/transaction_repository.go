package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/idlecolony-go/internal/domain/ledger"
)

const transactionBatchSize = 200

// GormTransactionRepository implements ledger.TransactionRepository using GORM.
// Every repository is scoped to one save slot.
type GormTransactionRepository struct {
	db   *gorm.DB
	slot string
}

// NewGormTransactionRepository creates a new GORM transaction repository
func NewGormTransactionRepository(db *gorm.DB, slot string) *GormTransactionRepository {
	return &GormTransactionRepository{db: db, slot: slot}
}

// CreateBatch persists transactions; ids already stored are skipped
func (r *GormTransactionRepository) CreateBatch(ctx context.Context, transactions []*ledger.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	models := make([]*TransactionModel, 0, len(transactions))
	for _, tx := range transactions {
		if tx == nil {
			continue
		}
		models = append(models, r.transactionToModel(tx))
	}
	if len(models) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		CreateInBatches(models, transactionBatchSize)
	if result.Error != nil {
		return fmt.Errorf("failed to create transactions: %w", result.Error)
	}

	return nil
}

// Find retrieves transactions with optional filtering
func (r *GormTransactionRepository) Find(ctx context.Context, opts ledger.QueryOptions) ([]*ledger.Transaction, error) {
	query := r.applyFilters(r.db.WithContext(ctx).Where("slot = ?", r.slot), opts)

	// Insertion order breaks ties inside one tick
	if opts.OrderBy == "timestamp ASC" {
		query = query.Order("timestamp ASC").Order("seq ASC")
	} else {
		query = query.Order("timestamp DESC").Order("seq DESC")
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	var models []TransactionModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find transactions: %w", err)
	}

	transactions := make([]*ledger.Transaction, len(models))
	for i := range models {
		tx, err := r.modelToTransaction(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert transaction model: %w", err)
		}
		transactions[i] = tx
	}

	return transactions, nil
}

// Count returns the number of transactions matching the criteria
func (r *GormTransactionRepository) Count(ctx context.Context, opts ledger.QueryOptions) (int, error) {
	query := r.db.WithContext(ctx).Model(&TransactionModel{}).Where("slot = ?", r.slot)
	query = r.applyFilters(query, opts)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return int(count), nil
}

// DeleteAll removes the slot's journal
func (r *GormTransactionRepository) DeleteAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("slot = ?", r.slot).Delete(&TransactionModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete transactions: %w", err)
	}
	return nil
}

func (r *GormTransactionRepository) applyFilters(query *gorm.DB, opts ledger.QueryOptions) *gorm.DB {
	if opts.StartDate != nil {
		query = query.Where("timestamp >= ?", *opts.StartDate)
	}
	if opts.EndDate != nil {
		query = query.Where("timestamp <= ?", *opts.EndDate)
	}
	if opts.Resource != nil {
		query = query.Where("resource = ?", *opts.Resource)
	}
	if opts.Category != nil {
		query = query.Where("category = ?", opts.Category.String())
	}
	if opts.TransactionType != nil {
		query = query.Where("transaction_type = ?", opts.TransactionType.String())
	}
	if opts.RelatedEntityID != nil {
		query = query.Where("related_entity_id = ?", *opts.RelatedEntityID)
	}
	return query
}

func (r *GormTransactionRepository) modelToTransaction(model *TransactionModel) (*ledger.Transaction, error) {
	transactionType, err := ledger.ParseTransactionType(model.TransactionType)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction type in database: %w", err)
	}

	category, err := ledger.ParseCategory(model.Category)
	if err != nil {
		return nil, fmt.Errorf("invalid category in database: %w", err)
	}

	return ledger.ReconstructTransaction(
		model.ID,
		model.Timestamp,
		transactionType,
		category,
		model.Resource,
		model.Amount,
		model.BalanceBefore,
		model.BalanceAfter,
		model.RelatedEntityID,
	), nil
}

func (r *GormTransactionRepository) transactionToModel(tx *ledger.Transaction) *TransactionModel {
	return &TransactionModel{
		ID:              tx.ID(),
		Slot:            r.slot,
		Timestamp:       tx.Timestamp(),
		TransactionType: tx.TransactionType().String(),
		Category:        tx.Category().String(),
		Resource:        tx.Resource(),
		Amount:          tx.Amount(),
		BalanceBefore:   tx.BalanceBefore(),
		BalanceAfter:    tx.BalanceAfter(),
		RelatedEntityID: tx.RelatedEntityID(),
	}
}
