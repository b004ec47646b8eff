package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/idlecolony-go/internal/adapters/persistence"
	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
	"github.com/andrescamacho/idlecolony-go/test/helpers"
)

// eventLogContext holds state for event log scenarios
type eventLogContext struct {
	repo    *persistence.GormEventLogRepository
	clock   *shared.MockClock
	entries []persistence.EventLogEntry
}

func (elc *eventLogContext) reset() {
	elc.repo = nil
	elc.clock = shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	elc.entries = nil
}

func (elc *eventLogContext) anEventLogForSlotWithDedupWindow(slot string, seconds int) error {
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}
	elc.repo = persistence.NewGormEventLogRepository(helpers.SharedTestDB, slot, elc.clock, time.Duration(seconds)*time.Second)
	return nil
}

func (elc *eventLogContext) iLogEvent(level, eventType, message string) error {
	return elc.repo.Log(context.Background(), level, eventType, message, nil)
}

func (elc *eventLogContext) iLogTheSameEventTimes(times int, level, eventType, message string) error {
	for i := 0; i < times; i++ {
		if err := elc.iLogEvent(level, eventType, message); err != nil {
			return err
		}
	}
	return nil
}

func (elc *eventLogContext) secondsOfWallTimePass(seconds int) error {
	elc.clock.Advance(time.Duration(seconds) * time.Second)
	return nil
}

func (elc *eventLogContext) iReadTheEventLog() error {
	var err error
	elc.entries, err = elc.repo.GetLogs(context.Background(), persistence.EventLogFilter{})
	return err
}

func (elc *eventLogContext) iReadTheEventLogAtLevel(level string) error {
	var err error
	elc.entries, err = elc.repo.GetLogs(context.Background(), persistence.EventLogFilter{Level: level})
	return err
}

func (elc *eventLogContext) iClearTheEventLog() error {
	return elc.repo.DeleteAll(context.Background())
}

func (elc *eventLogContext) theEventLogShouldContainEntries(count int) error {
	if len(elc.entries) != count {
		return fmt.Errorf("expected %d entries, got %d", count, len(elc.entries))
	}
	return nil
}

func (elc *eventLogContext) theNewestEntryShouldBe(message string) error {
	if len(elc.entries) == 0 {
		return fmt.Errorf("event log is empty")
	}
	if elc.entries[0].Message != message {
		return fmt.Errorf("expected newest entry %q, got %q", message, elc.entries[0].Message)
	}
	return nil
}

// InitializeEventLogScenario registers the event log steps
func InitializeEventLogScenario(sc *godog.ScenarioContext) {
	elc := &eventLogContext{}

	sc.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		elc.reset()
		return ctx, nil
	})

	sc.Step(`^an event log for slot "([^"]*)" with a (\d+) second dedup window$`, elc.anEventLogForSlotWithDedupWindow)
	sc.Step(`^I log an? (DEBUG|INFO|WARNING|ERROR) "([^"]*)" event "([^"]*)"$`, elc.iLogEvent)
	sc.Step(`^I log (\d+) (DEBUG|INFO|WARNING|ERROR) "([^"]*)" events "([^"]*)"$`, elc.iLogTheSameEventTimes)
	sc.Step(`^(\d+) seconds of wall time pass$`, elc.secondsOfWallTimePass)
	sc.Step(`^I read the event log$`, elc.iReadTheEventLog)
	sc.Step(`^I read the (DEBUG|INFO|WARNING|ERROR) entries of the event log$`, elc.iReadTheEventLogAtLevel)
	sc.Step(`^I clear the event log$`, elc.iClearTheEventLog)
	sc.Step(`^the event log should contain (\d+) entr(?:y|ies)$`, elc.theEventLogShouldContainEntries)
	sc.Step(`^the newest entry should be "([^"]*)"$`, elc.theNewestEntryShouldBe)
}
