package steps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/idlecolony-go/internal/adapters/persistence"
	"github.com/andrescamacho/idlecolony-go/internal/adapters/schema"
	"github.com/andrescamacho/idlecolony-go/internal/application/common"
	"github.com/andrescamacho/idlecolony-go/internal/application/game"
	gameCmd "github.com/andrescamacho/idlecolony-go/internal/application/game/commands"
	gameQuery "github.com/andrescamacho/idlecolony-go/internal/application/game/queries"
	appLedger "github.com/andrescamacho/idlecolony-go/internal/application/ledger"
	ledgerCmd "github.com/andrescamacho/idlecolony-go/internal/application/ledger/commands"
	ledgerQuery "github.com/andrescamacho/idlecolony-go/internal/application/ledger/queries"
	"github.com/andrescamacho/idlecolony-go/internal/domain/events"
	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
	"github.com/andrescamacho/idlecolony-go/internal/infrastructure/catalog"
	"github.com/andrescamacho/idlecolony-go/test/helpers"
)

const colonySlot = "bdd"

const colonyCatalogYAML = `
worker:
  max_jitter: 0
starting_resources: {peasant: 2, wood: 10}
worker_types:
  - {id: peasant, walk_speed: 100, carry_speed: 50, harvest_speed: 1, base_speed: 1}
nodes:
  - {id: forest, skill: woodcutting, position: {x: 20, y: 0}, capacity: 10, spawn_rate: 0, harvest_time: 1, outputs: {wood: 1}, xp: 10}
activities:
  - {id: sawmill, skill: carpentry, duration: 2, inputs: {wood: 2}, outputs: {planks: 1}, xp: 5, position: {x: 0, y: 20}}
buildings:
  - id: house
    kind: generator
    base_cost: {wood: 5}
    cost_multiplier: 1.5
    build_time: 10
    generator: {worker_type: peasant, rooms: 1, max_workers: 2, interval: 5}
upgrades:
  - {id: dense_forest, effect: node_capacity, target: forest, cost: {wood: 3}}
achievements:
  - {id: first_wood, kind: resources_mined, key: wood, threshold: 1}
  - {id: builder, kind: buildings_completed, threshold: 1}
`

// colonyContext holds the engine and mediator of one scenario
type colonyContext struct {
	engine   *game.Engine
	mediator common.Mediator
	recorder *events.Recorder
	response common.Response
	err      error
	seq      int
}

func (c *colonyContext) reset() {
	c.engine = nil
	c.mediator = nil
	c.recorder = nil
	c.response = nil
	c.err = nil
	c.seq = 0
}

// ============================================================================
// Setup Steps
// ============================================================================

func (c *colonyContext) aColonyWithTheTestCatalog() error {
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}

	cat, err := catalog.Parse([]byte(colonyCatalogYAML))
	if err != nil {
		return err
	}

	c.recorder = events.NewRecorder()
	bus := events.NewBus()
	bus.SubscribeAll(func(evt events.Event) { c.recorder.Publish(evt.Name, evt.Payload) })

	c.engine, err = game.NewEngine(cat,
		game.WithRandom(shared.FixedRandom{Value: 0}),
		game.WithBus(bus),
		game.WithBuildingIDs(func(typeID string) string {
			c.seq++
			return fmt.Sprintf("%s-%d", typeID, c.seq)
		}),
	)
	if err != nil {
		return err
	}

	validator, err := schema.NewValidator()
	if err != nil {
		return err
	}
	saves := persistence.NewGormSaveRepository(helpers.SharedTestDB, validator)
	journal := persistence.NewGormTransactionRepository(helpers.SharedTestDB, colonySlot)

	c.mediator = common.NewMediator()
	if err := gameCmd.RegisterHandlers(c.mediator, c.engine, saves); err != nil {
		return err
	}
	if err := gameQuery.RegisterHandlers(c.mediator, c.engine, saves); err != nil {
		return err
	}
	return appLedger.RegisterHandlers(c.mediator, c.engine, journal)
}

// ============================================================================
// Action Steps
// ============================================================================

func (c *colonyContext) send(request common.Request) {
	c.response, c.err = c.mediator.Send(context.Background(), request)
}

func (c *colonyContext) iAssignWorkers(count int, workerType, target string) error {
	c.send(&gameCmd.AssignWorkersCommand{WorkerType: workerType, TargetID: target, Count: count})
	return nil
}

func (c *colonyContext) iUnassignAllWorkers(workerType, target string) error {
	c.send(&gameCmd.UnassignWorkersCommand{WorkerType: workerType, TargetID: target, All: true})
	return nil
}

func (c *colonyContext) iReassignWorkers(count int, workerType, from, to string) error {
	c.send(&gameCmd.ReassignWorkersCommand{WorkerType: workerType, FromID: from, ToID: to, Count: count})
	return nil
}

func (c *colonyContext) iStartConstructionOf(buildingType string) error {
	c.send(&gameCmd.StartConstructionCommand{BuildingType: buildingType})
	return nil
}

func (c *colonyContext) iPurchaseTheUpgrade(upgradeID string) error {
	c.send(&gameCmd.PurchaseUpgradeCommand{UpgradeID: upgradeID})
	return nil
}

func (c *colonyContext) iHarvestByHand(target string, times int) error {
	c.send(&gameCmd.ManualHarvestCommand{TargetID: target, Times: times})
	return nil
}

func (c *colonyContext) secondsPass(seconds int) error {
	total := time.Duration(seconds) * time.Second
	for elapsed := time.Duration(0); elapsed < total; elapsed += 100 * time.Millisecond {
		if err := c.engine.Update(context.Background(), 100*time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}

func (c *colonyContext) iSaveTheColonyToSlot(slot string) error {
	c.send(&gameCmd.SaveGameCommand{Slot: slot})
	return c.err
}

func (c *colonyContext) iResetTheColony() error {
	c.send(&gameCmd.ResetGameCommand{})
	return c.err
}

func (c *colonyContext) iLoadSlot(slot string) error {
	c.send(&gameCmd.LoadGameCommand{Slot: slot})
	return nil
}

func (c *colonyContext) iFlushTheJournal() error {
	c.send(&ledgerCmd.FlushTransactionsCommand{})
	return c.err
}

// ============================================================================
// Assertion Steps
// ============================================================================

func (c *colonyContext) theCommandShouldSucceed() error {
	if c.err != nil {
		return fmt.Errorf("expected success, got %v", c.err)
	}
	return nil
}

func (c *colonyContext) theCommandShouldBeRejectedWith(code string) error {
	var rejection *shared.RejectionError
	if !errors.As(c.err, &rejection) {
		return fmt.Errorf("expected rejection %s, got %v", code, c.err)
	}
	if string(rejection.Code) != code {
		return fmt.Errorf("expected rejection %s, got %s (%s)", code, rejection.Code, rejection.Reason())
	}
	return nil
}

func (c *colonyContext) theLoadShouldReportAMissingSave() error {
	var notFound *game.ErrSaveNotFound
	if !errors.As(c.err, &notFound) {
		return fmt.Errorf("expected a missing save, got %v", c.err)
	}
	return nil
}

func (c *colonyContext) theColonyShouldHave(amount float64, resource string) error {
	if got := c.engine.Balance(resource); got != amount {
		return fmt.Errorf("expected %v %s, got %v", amount, resource, got)
	}
	return nil
}

func (c *colonyContext) theColonyShouldHaveTable(table *godog.Table) error {
	for _, row := range table.Rows[1:] {
		resource := getCellValueFromTable(table, row, "resource")
		amount, err := parseFloat(getCellValueFromTable(table, row, "amount"))
		if err != nil {
			return err
		}
		if err := c.theColonyShouldHave(amount, resource); err != nil {
			return err
		}
	}
	return nil
}

func (c *colonyContext) status() (*game.Status, error) {
	resp, err := c.mediator.Send(context.Background(), &gameQuery.GetStatusQuery{})
	if err != nil {
		return nil, err
	}
	return resp.(*game.Status), nil
}

func (c *colonyContext) nodeShouldHaveUnitsAvailable(nodeID string, units float64) error {
	s, err := c.status()
	if err != nil {
		return err
	}
	for _, n := range s.Nodes {
		if n.ID == nodeID {
			if n.Available != units {
				return fmt.Errorf("expected %v units at %s, got %v", units, nodeID, n.Available)
			}
			return nil
		}
	}
	return fmt.Errorf("node %s not found", nodeID)
}

func (c *colonyContext) nodeShouldHaveCapacity(nodeID string, capacity float64) error {
	s, err := c.status()
	if err != nil {
		return err
	}
	for _, n := range s.Nodes {
		if n.ID == nodeID {
			if n.Capacity != capacity {
				return fmt.Errorf("expected capacity %v at %s, got %v", capacity, nodeID, n.Capacity)
			}
			return nil
		}
	}
	return fmt.Errorf("node %s not found", nodeID)
}

func (c *colonyContext) workerTypeShouldHaveFree(workerType string, free int) error {
	s, err := c.status()
	if err != nil {
		return err
	}
	for _, wt := range s.WorkerTypes {
		if wt.Type == workerType {
			if wt.Free != free {
				return fmt.Errorf("expected %d free %s, got %d", free, workerType, wt.Free)
			}
			return nil
		}
	}
	return fmt.Errorf("worker type %s not found", workerType)
}

func (c *colonyContext) activityShouldBe(activityID, state string) error {
	s, err := c.status()
	if err != nil {
		return err
	}
	for _, a := range s.Activities {
		if a.ID == activityID {
			if string(a.Status) != state {
				return fmt.Errorf("expected %s to be %s, got %s", activityID, state, a.Status)
			}
			return nil
		}
	}
	return fmt.Errorf("activity %s not found", activityID)
}

func (c *colonyContext) achievementShouldBeUnlocked(id string) error {
	s, err := c.status()
	if err != nil {
		return err
	}
	for _, a := range s.Achievements {
		if a == id {
			return nil
		}
	}
	return fmt.Errorf("achievement %s not unlocked (have %v)", id, s.Achievements)
}

func (c *colonyContext) eventShouldHaveBeenPublishedTimes(name string, times int) error {
	if got := c.recorder.Count(events.Name(name)); got != times {
		return fmt.Errorf("expected %s %d times, got %d", name, times, got)
	}
	return nil
}

func (c *colonyContext) buildingCanBeBuilt(buildingType, expected string) error {
	resp, err := c.mediator.Send(context.Background(), &gameQuery.CanBuildQuery{BuildingTypes: []string{buildingType}})
	if err != nil {
		return err
	}
	options := resp.(*gameQuery.CanBuildResponse).Options
	if len(options) != 1 {
		return fmt.Errorf("expected one option, got %d", len(options))
	}
	check := options[0].Check
	if expected == "can" && !check.CanBuild {
		return fmt.Errorf("expected %s to be buildable: %s", buildingType, check.Reason)
	}
	if expected == "cannot" && check.CanBuild {
		return fmt.Errorf("expected %s not to be buildable", buildingType)
	}
	return nil
}

func (c *colonyContext) theJournalShouldContainTransactions(count int, txType string) error {
	resp, err := c.mediator.Send(context.Background(), &ledgerQuery.GetTransactionsQuery{TransactionType: &txType})
	if err != nil {
		return err
	}
	if got := resp.(*ledgerQuery.GetTransactionsResponse).Total; got != count {
		return fmt.Errorf("expected %d %s transactions, got %d", count, txType, got)
	}
	return nil
}

// InitializeColonyScenario registers the colony steps
func InitializeColonyScenario(sc *godog.ScenarioContext) {
	c := &colonyContext{}

	sc.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		c.reset()
		return ctx, nil
	})

	// Setup steps
	sc.Step(`^a colony with the test catalog$`, c.aColonyWithTheTestCatalog)

	// Action steps
	sc.Step(`^I assign (\d+) "([^"]*)" to "([^"]*)"$`, c.iAssignWorkers)
	sc.Step(`^I unassign all "([^"]*)" from "([^"]*)"$`, c.iUnassignAllWorkers)
	sc.Step(`^I reassign (\d+) "([^"]*)" from "([^"]*)" to "([^"]*)"$`, c.iReassignWorkers)
	sc.Step(`^I start construction of "([^"]*)"$`, c.iStartConstructionOf)
	sc.Step(`^I purchase the upgrade "([^"]*)"$`, c.iPurchaseTheUpgrade)
	sc.Step(`^I harvest "([^"]*)" by hand (\d+) times?$`, c.iHarvestByHand)
	sc.Step(`^(\d+) seconds pass$`, c.secondsPass)
	sc.Step(`^I save the colony to slot "([^"]*)"$`, c.iSaveTheColonyToSlot)
	sc.Step(`^I reset the colony$`, c.iResetTheColony)
	sc.Step(`^I load slot "([^"]*)"$`, c.iLoadSlot)
	sc.Step(`^I flush the journal$`, c.iFlushTheJournal)

	// Assertion steps
	sc.Step(`^the command should succeed$`, c.theCommandShouldSucceed)
	sc.Step(`^the command should be rejected with "([^"]*)"$`, c.theCommandShouldBeRejectedWith)
	sc.Step(`^the load should report a missing save$`, c.theLoadShouldReportAMissingSave)
	sc.Step(`^the colony should have ([\d.]+) "([^"]*)"$`, c.theColonyShouldHave)
	sc.Step(`^the colony should have:$`, c.theColonyShouldHaveTable)
	sc.Step(`^node "([^"]*)" should have ([\d.]+) units available$`, c.nodeShouldHaveUnitsAvailable)
	sc.Step(`^node "([^"]*)" should have a capacity of ([\d.]+)$`, c.nodeShouldHaveCapacity)
	sc.Step(`^"([^"]*)" should have (\d+) free workers?$`, c.workerTypeShouldHaveFree)
	sc.Step(`^activity "([^"]*)" should be "([^"]*)"$`, c.activityShouldBe)
	sc.Step(`^achievement "([^"]*)" should be unlocked$`, c.achievementShouldBeUnlocked)
	sc.Step(`^event "([^"]*)" should have been published (\d+) times?$`, c.eventShouldHaveBeenPublishedTimes)
	sc.Step(`^a "([^"]*)" (can|cannot) be built$`, c.buildingCanBeBuilt)
	sc.Step(`^the journal should contain (\d+) "([^"]*)" transactions?$`, c.theJournalShouldContainTransactions)
}
