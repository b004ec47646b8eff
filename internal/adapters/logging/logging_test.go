package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/idlecolony-go/internal/adapters/logging"
	"github.com/andrescamacho/idlecolony-go/internal/application/common"
	"github.com/andrescamacho/idlecolony-go/internal/domain/events"
)

func TestStdLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWriterLogger(&buf, "warn", "text", "engine")

	logger.Log(common.LevelDebug, "hidden", nil)
	logger.Log(common.LevelInfo, "hidden", nil)
	logger.Log(common.LevelWarn, "shown", map[string]interface{}{"b": 2, "a": 1})
	logger.Log(common.LevelError, "also shown", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[engine] WARNING: shown a=1 b=2")
	assert.Contains(t, lines[1], "ERROR: also shown")
}

func TestStdLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWriterLogger(&buf, "debug", "json", "cli")

	logger.Log(common.LevelInfo, "saved", map[string]interface{}{"slot": "alpha"})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "INFO", line["level"])
	assert.Equal(t, "cli", line["component"])
	assert.Equal(t, "saved", line["message"])
	assert.Equal(t, map[string]interface{}{"slot": "alpha"}, line["metadata"])
}

type capturedLine struct {
	level, eventType, message string
}

type memoryWriter struct {
	mu    sync.Mutex
	lines []capturedLine
	err   error
}

func (w *memoryWriter) Log(_ context.Context, level, eventType, message string, _ map[string]interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.lines = append(w.lines, capturedLine{level, eventType, message})
	return nil
}

type memoryLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *memoryLogger) Log(level, message string, _ map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, level+" "+message)
}

func TestEventLogger_PersistsBusEvents(t *testing.T) {
	bus := events.NewBus()
	writer := &memoryWriter{}
	logger := &memoryLogger{}
	eventLogger := logging.NewEventLogger(logger, writer, 8)
	eventLogger.Subscribe(bus)

	bus.Publish(events.ConstructionCompleted, events.ConstructionCompletedPayload{InstanceID: "house-1", TypeID: "house"})
	bus.Publish(events.ProductionHalted, events.ProductionStatusPayload{ActivityID: "sawmill", Reason: "missing_inputs"})
	eventLogger.Close()

	require.Len(t, writer.lines, 2)
	assert.Equal(t, capturedLine{"INFO", "construction.completed", "Construction of house completed"}, writer.lines[0])
	assert.Equal(t, "WARNING", writer.lines[1].level)
	assert.Equal(t, []string{"INFO Construction of house completed", "WARNING Activity sawmill halted"}, logger.messages)
}

func TestEventLogger_ReportsWriteFailures(t *testing.T) {
	writer := &memoryWriter{err: errors.New("database is locked")}
	logger := &memoryLogger{}
	eventLogger := logging.NewEventLogger(logger, writer, 8)

	eventLogger.HandleEvent(events.Event{Name: events.GameReset})
	eventLogger.Close()

	require.Len(t, logger.messages, 2)
	assert.Equal(t, "INFO Event game.reset", logger.messages[0])
	assert.Contains(t, logger.messages[1], "database is locked")
}

func TestEventLogger_WithoutWriterOnlyLogs(t *testing.T) {
	logger := &memoryLogger{}
	eventLogger := logging.NewEventLogger(logger, nil, 1)

	eventLogger.HandleEvent(events.Event{Name: events.SkillLevelUp, Payload: events.SkillLevelUpPayload{Skill: "woodcutting", Level: 2}})
	eventLogger.Close()
	eventLogger.Close()
	eventLogger.HandleEvent(events.Event{Name: events.GameLoaded})

	assert.Equal(t, []string{"INFO Skill woodcutting reached level 2", "INFO Event game.loaded"}, logger.messages)
	assert.Zero(t, eventLogger.Dropped())
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name    string
		evt     events.Event
		level   string
		message string
	}{
		{
			name:    "deposit is debug",
			evt:     events.Event{Name: events.WorkerDeposited, Payload: events.WorkerDepositedPayload{WorkerID: "w-1", WorkerType: "peasant", TargetID: "forest", Payload: map[string]float64{"wood": 5}}},
			level:   common.LevelDebug,
			message: "peasant w-1 deposited at forest",
		},
		{
			name:    "training completed",
			evt:     events.Event{Name: events.TrainingCompleted, Payload: events.TrainingPayload{ProgramID: "train_soldier", OutputWorker: "soldier", Count: 3}},
			level:   common.LevelInfo,
			message: "Training of 3 soldier completed",
		},
		{
			name:    "boost expired",
			evt:     events.Event{Name: events.BoostExpired, Payload: events.BoostPayload{BoostID: "coffee"}},
			level:   common.LevelInfo,
			message: "Boost coffee expired",
		},
		{
			name:    "production resumed",
			evt:     events.Event{Name: events.ProductionResumed, Payload: events.ProductionStatusPayload{ActivityID: "sawmill"}},
			level:   common.LevelInfo,
			message: "Activity sawmill resumed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := logging.Describe(tt.evt)
			assert.Equal(t, tt.level, line.Level)
			assert.Equal(t, tt.message, line.Message)
			assert.Equal(t, string(tt.evt.Name), line.EventType)
		})
	}
}
