package logging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andrescamacho/idlecolony-go/internal/application/common"
	"github.com/andrescamacho/idlecolony-go/internal/domain/events"
)

const (
	defaultQueueSize = 256
	writeTimeout     = 5 * time.Second
)

// EventLogWriter persists one event log line
type EventLogWriter interface {
	Log(ctx context.Context, level, eventType, message string, metadata map[string]interface{}) error
}

// EventLine is the rendered form of one event
type EventLine struct {
	Level     string
	EventType string
	Message   string
	Metadata  map[string]interface{}
}

// EventLogger turns bus events into log lines. Every event goes to the
// logger; when a writer is set, events are also persisted by a background
// goroutine so the tick loop never waits on the database.
type EventLogger struct {
	logger common.Logger
	writer EventLogWriter

	mu      sync.Mutex
	queue   chan EventLine
	closed  bool
	done    chan struct{}
	dropped int
}

// NewEventLogger creates an event logger. writer may be nil.
func NewEventLogger(logger common.Logger, writer EventLogWriter, queueSize int) *EventLogger {
	if logger == nil {
		logger = common.NopLogger()
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	l := &EventLogger{
		logger: logger,
		writer: writer,
		queue:  make(chan EventLine, queueSize),
		done:   make(chan struct{}),
	}
	go l.run()
	return l
}

// Subscribe registers the logger for every event on the bus
func (l *EventLogger) Subscribe(bus *events.Bus) {
	bus.SubscribeAll(l.HandleEvent)
}

// HandleEvent logs one event and queues it for persistence
func (l *EventLogger) HandleEvent(evt events.Event) {
	line := Describe(evt)
	l.logger.Log(line.Level, line.Message, line.Metadata)

	if l.writer == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	select {
	case l.queue <- line:
	default:
		l.dropped++
	}
}

// Dropped reports how many lines were discarded because the queue was full
func (l *EventLogger) Dropped() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

// Close drains the queue and stops the writer goroutine
func (l *EventLogger) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		<-l.done
		return
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()
	<-l.done
}

func (l *EventLogger) run() {
	defer close(l.done)
	for line := range l.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := l.writer.Log(ctx, line.Level, line.EventType, line.Message, line.Metadata)
		cancel()
		if err != nil {
			l.logger.Log(common.LevelError, fmt.Sprintf("Failed to persist event log: %v", err), map[string]interface{}{
				"event": line.EventType,
			})
		}
	}
}

// Describe renders an event as a level, message and metadata
func Describe(evt events.Event) EventLine {
	line := EventLine{Level: common.LevelInfo, EventType: string(evt.Name)}

	switch p := evt.Payload.(type) {
	case events.ConstructionStartedPayload:
		line.Message = fmt.Sprintf("Construction of %s started", p.TypeID)
		line.Metadata = map[string]interface{}{"building_id": p.InstanceID, "duration": p.Duration.String()}
	case events.ConstructionCompletedPayload:
		line.Message = fmt.Sprintf("Construction of %s completed", p.TypeID)
		line.Metadata = map[string]interface{}{"building_id": p.InstanceID}
	case events.BuildingUpgradedPayload:
		line.Message = fmt.Sprintf("Building %s upgraded %s to level %d", p.InstanceID, p.UpgradeID, p.Level)
		line.Metadata = map[string]interface{}{"building_id": p.InstanceID, "upgrade": p.UpgradeID, "level": p.Level}
	case events.WorkerGeneratedPayload:
		line.Message = fmt.Sprintf("%s joined the colony", p.WorkerType)
		line.Metadata = map[string]interface{}{"building_id": p.InstanceID, "room": p.Room, "occupancy": p.Occupancy}
	case events.WorkerDepositedPayload:
		line.Level = common.LevelDebug
		line.Message = fmt.Sprintf("%s %s deposited at %s", p.WorkerType, p.WorkerID, p.TargetID)
		metadata := make(map[string]interface{}, len(p.Payload))
		for resource, amount := range p.Payload {
			metadata[resource] = amount
		}
		line.Metadata = metadata
	case events.TrainingPayload:
		phase := "started"
		if evt.Name == events.TrainingCompleted {
			phase = "completed"
		}
		line.Message = fmt.Sprintf("Training of %d %s %s", p.Count, p.OutputWorker, phase)
		line.Metadata = map[string]interface{}{"building_id": p.BuildingID, "program": p.ProgramID}
	case events.ProductionStatusPayload:
		if evt.Name == events.ProductionHalted {
			line.Level = common.LevelWarn
			line.Message = fmt.Sprintf("Activity %s halted", p.ActivityID)
		} else {
			line.Message = fmt.Sprintf("Activity %s resumed", p.ActivityID)
		}
		line.Metadata = map[string]interface{}{"activity": p.ActivityID, "reason": p.Reason}
	case events.SkillLevelUpPayload:
		line.Message = fmt.Sprintf("Skill %s reached level %d", p.Skill, p.Level)
	case events.UpgradePurchasedPayload:
		line.Message = fmt.Sprintf("Upgrade %s purchased", p.UpgradeID)
	case events.AchievementUnlockedPayload:
		line.Message = fmt.Sprintf("Achievement %s unlocked", p.AchievementID)
	case events.BoostPayload:
		if evt.Name == events.BoostExpired {
			line.Message = fmt.Sprintf("Boost %s expired", p.BoostID)
		} else {
			line.Message = fmt.Sprintf("Boost %s activated", p.BoostID)
		}
		line.Metadata = map[string]interface{}{"activity": p.ActivityID, "multiplier": p.Multiplier}
	default:
		line.Message = fmt.Sprintf("Event %s", evt.Name)
	}
	return line
}
