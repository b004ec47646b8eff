package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
)

// DefaultDedupWindow suppresses identical event log lines written within it
const DefaultDedupWindow = 60 * time.Second

// EventLogEntry is one persisted game event
type EventLogEntry struct {
	ID        int
	Slot      string
	Timestamp time.Time
	Level     string
	EventType string
	Message   string
	Metadata  map[string]interface{}
}

// EventLogFilter narrows GetLogs. Zero values mean no filter.
type EventLogFilter struct {
	Level     string
	EventType string
	Since     *time.Time
	Limit     int
	Offset    int
}

// GormEventLogRepository persists game events for one save slot
type GormEventLogRepository struct {
	db    *gorm.DB
	slot  string
	clock shared.Clock

	dedupCache   map[string]time.Time // key: eventType|message, value: last logged time
	dedupMu      sync.Mutex
	dedupWindow  time.Duration
	dedupMaxSize int
}

// NewGormEventLogRepository creates an event log repository.
// If clock is nil, uses RealClock. A non-positive window disables deduplication.
func NewGormEventLogRepository(db *gorm.DB, slot string, clock shared.Clock, window time.Duration) *GormEventLogRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormEventLogRepository{
		db:           db,
		slot:         slot,
		clock:        clock,
		dedupCache:   make(map[string]time.Time),
		dedupWindow:  window,
		dedupMaxSize: 10000,
	}
}

// Log writes an entry unless the same event type and message were written
// inside the dedup window
func (r *GormEventLogRepository) Log(ctx context.Context, level, eventType, message string, metadata map[string]interface{}) error {
	now := r.clock.Now()

	if r.dedupWindow > 0 {
		cacheKey := eventType + "|" + message

		r.dedupMu.Lock()
		if lastLogged, exists := r.dedupCache[cacheKey]; exists && now.Sub(lastLogged) < r.dedupWindow {
			r.dedupMu.Unlock()
			return nil
		}
		if len(r.dedupCache) >= r.dedupMaxSize {
			r.cleanupDedupCache(now)
		}
		r.dedupCache[cacheKey] = now
		r.dedupMu.Unlock()
	}

	var metadataJSON string
	if len(metadata) > 0 {
		if data, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(data)
		}
	}

	entry := &EventLogModel{
		Slot:      r.slot,
		Timestamp: now,
		Level:     level,
		EventType: eventType,
		Message:   message,
		Metadata:  metadataJSON,
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to write event log: %w", err)
	}
	return nil
}

// Must be called while holding dedupMu
func (r *GormEventLogRepository) cleanupDedupCache(now time.Time) {
	cutoff := now.Add(-r.dedupWindow)
	for key, timestamp := range r.dedupCache {
		if timestamp.Before(cutoff) {
			delete(r.dedupCache, key)
		}
	}
}

// GetLogs returns the slot's entries, newest first
func (r *GormEventLogRepository) GetLogs(ctx context.Context, filter EventLogFilter) ([]EventLogEntry, error) {
	query := r.db.WithContext(ctx).Where("slot = ?", r.slot)
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}
	if filter.EventType != "" {
		query = query.Where("event_type = ?", filter.EventType)
	}
	if filter.Since != nil {
		query = query.Where("timestamp > ?", *filter.Since)
	}
	query = query.Order("timestamp DESC").Order("id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var models []EventLogModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to read event log: %w", err)
	}

	entries := make([]EventLogEntry, len(models))
	for i, model := range models {
		var metadata map[string]interface{}
		if model.Metadata != "" {
			if err := json.Unmarshal([]byte(model.Metadata), &metadata); err != nil {
				metadata = nil
			}
		}
		entries[i] = EventLogEntry{
			ID:        model.ID,
			Slot:      model.Slot,
			Timestamp: model.Timestamp,
			Level:     model.Level,
			EventType: model.EventType,
			Message:   model.Message,
			Metadata:  metadata,
		}
	}
	return entries, nil
}

// DeleteAll clears the slot's event log and the dedup cache
func (r *GormEventLogRepository) DeleteAll(ctx context.Context) error {
	r.dedupMu.Lock()
	r.dedupCache = make(map[string]time.Time)
	r.dedupMu.Unlock()

	if err := r.db.WithContext(ctx).Where("slot = ?", r.slot).Delete(&EventLogModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear event log: %w", err)
	}
	return nil
}
