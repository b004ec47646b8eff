package persistence

import (
	"time"
)

// SaveSlotModel represents the save_slots table. The state column holds the
// JSON save document.
type SaveSlotModel struct {
	Slot      string    `gorm:"column:slot;primaryKey"`
	Version   int       `gorm:"column:version;not null"`
	SavedAt   time.Time `gorm:"column:saved_at;not null"`
	ClockTime time.Time `gorm:"column:clock_time;not null"`
	State     string    `gorm:"column:state;type:text;not null"`
	Size      int       `gorm:"column:size;not null;default:0"`
}

func (SaveSlotModel) TableName() string {
	return "save_slots"
}

// TransactionModel represents the transactions table
type TransactionModel struct {
	Seq             int64     `gorm:"column:seq;primaryKey;autoIncrement"`
	ID              string    `gorm:"column:id;uniqueIndex;not null"`
	Slot            string    `gorm:"column:slot;index:idx_transactions_slot_time;not null"`
	Timestamp       time.Time `gorm:"column:timestamp;index:idx_transactions_slot_time;not null"`
	TransactionType string    `gorm:"column:transaction_type;not null"`
	Category        string    `gorm:"column:category;not null"`
	Resource        string    `gorm:"column:resource;not null"`
	Amount          float64   `gorm:"column:amount;not null"`
	BalanceBefore   float64   `gorm:"column:balance_before;not null"`
	BalanceAfter    float64   `gorm:"column:balance_after;not null"`
	RelatedEntityID string    `gorm:"column:related_entity_id"`
}

func (TransactionModel) TableName() string {
	return "transactions"
}

// EventLogModel represents the event_logs table
type EventLogModel struct {
	ID        int       `gorm:"column:id;primaryKey;autoIncrement"`
	Slot      string    `gorm:"column:slot;index;not null"`
	Timestamp time.Time `gorm:"column:timestamp;not null"`
	Level     string    `gorm:"column:level;not null;default:'INFO'"`
	EventType string    `gorm:"column:event_type;not null"`
	Message   string    `gorm:"column:message;type:text;not null"`
	Metadata  string    `gorm:"column:metadata;type:text"` // JSON as text
}

func (EventLogModel) TableName() string {
	return "event_logs"
}
