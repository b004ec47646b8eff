package building_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/idlecolony-go/internal/domain/building"
	"github.com/andrescamacho/idlecolony-go/internal/domain/events"
	"github.com/andrescamacho/idlecolony-go/internal/domain/ledger"
	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
)

func houseType() building.Type {
	return building.Type{
		ID:             "house",
		Kind:           building.KindGenerator,
		BaseCost:       map[string]float64{"wood": 50, "stone": 30},
		CostMultiplier: 1.5,
		BuildTime:      10,
		Generator: &building.GeneratorSpec{
			WorkerType: "peasant",
			Rooms:      1,
			MaxWorkers: 5,
			Interval:   2,
		},
		Upgrades: []building.UpgradeDefinition{
			{ID: "bunks", Effect: building.EffectRoomCapacity, PerLevel: 2, MaxLevel: 2, Cost: map[string]float64{"wood": 10}, CostMultiplier: 2},
		},
	}
}

func barracksType() building.Type {
	return building.Type{
		ID:        "barracks",
		Kind:      building.KindTraining,
		BaseCost:  map[string]float64{"wood": 10},
		BuildTime: 5,
		Training: &building.TrainingSpec{
			Slots: 1,
			Programs: []building.TrainingProgram{
				{ID: "knight", InputWorker: "peasant", InputCount: 2, OutputWorker: "knight", OutputCount: 1, Cost: map[string]float64{"gold": 10}, Duration: 30},
			},
		},
		Upgrades: []building.UpgradeDefinition{
			{ID: "drill_yard", Effect: building.EffectTrainingSlots, PerLevel: 1, MaxLevel: 3},
		},
	}
}

func warehouseType() building.Type {
	return building.Type{
		ID:        "warehouse",
		Kind:      building.KindPassive,
		BuildTime: 1,
		MaxCount:  2,
		Effects:   map[string]float64{building.EffectStorageBonus: 0.25, building.EffectConstructionSlots: 1},
		Upgrades: []building.UpgradeDefinition{
			{ID: "shelves", Effect: building.EffectStorageBonus, PerLevel: 0.1, MaxLevel: 5},
		},
	}
}

func libraryType() building.Type {
	return building.Type{
		ID:     "library",
		Kind:   building.KindPassive,
		Unlock: building.Unlock{Kind: building.UnlockBuildingsCompleted, Threshold: 2},
	}
}

type tally map[string]float64

func (t tally) ResourcesMined(r string) float64 { return t[r] }
func (t tally) TotalResourcesMined() float64 {
	total := 0.0
	for _, v := range t {
		total += v
	}
	return total
}

type fixedFree map[string]int

func (f fixedFree) Free(workerType string) int { return f[workerType] }

type fixture struct {
	ledger   *ledger.Ledger
	clock    *shared.MockClock
	recorder *events.Recorder
	manager  *building.Manager
}

func newFixture(opts ...building.ManagerOption) *fixture {
	f := &fixture{
		ledger:   ledger.NewLedger(),
		clock:    shared.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		recorder: events.NewRecorder(),
	}
	seq := 0
	base := []building.ManagerOption{
		building.WithClock(f.clock),
		building.WithPublisher(f.recorder),
		building.WithIDGenerator(func(typeID string) string {
			seq++
			return fmt.Sprintf("%s-%d", typeID, seq)
		}),
	}
	f.manager = building.NewManager(
		[]building.Type{houseType(), barracksType(), warehouseType(), libraryType()},
		f.ledger,
		append(base, opts...)...,
	)
	return f
}

func (f *fixture) build(t *testing.T, typeID string) *building.Instance {
	t.Helper()
	inst, err := f.manager.StartConstruction(typeID)
	require.NoError(t, err)
	return inst
}

func (f *fixture) complete(t *testing.T, typeID string) *building.Instance {
	t.Helper()
	inst := f.build(t, typeID)
	f.clock.Advance(inst.Duration())
	f.manager.UpdateConstruction()
	require.True(t, inst.IsComplete())
	return inst
}

func rejectionCode(t *testing.T, err error) shared.RejectionCode {
	t.Helper()
	var rejection *shared.RejectionError
	require.True(t, errors.As(err, &rejection), "expected rejection, got %v", err)
	return rejection.Code
}

func TestCostScaling_ThirdInstance(t *testing.T) {
	// Arrange
	f := newFixture()
	f.ledger.Restore(map[string]float64{"wood": 1000, "stone": 1000})
	f.build(t, "house")
	f.build(t, "house")

	// Act
	cost, err := f.manager.CostFor("house")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, shared.ResourceMap{"wood": 112, "stone": 67}, cost)

	f.build(t, "house")
	assert.Equal(t, 1000.0-50-75-112, f.ledger.Get("wood"))
	assert.Equal(t, 1000.0-30-45-67, f.ledger.Get("stone"))
}

func TestCanBuild_CheckOrder(t *testing.T) {
	f := newFixture(building.WithBaseSlots(1))

	check := f.manager.CanBuild("castle")
	assert.False(t, check.CanBuild)
	assert.Equal(t, shared.RejectInvalidID, check.Code)

	check = f.manager.CanBuild("library")
	assert.Equal(t, shared.RejectLocked, check.Code)
	assert.NotEmpty(t, check.Reason)

	check = f.manager.CanBuild("house")
	assert.Equal(t, shared.RejectInsufficientFunds, check.Code)

	f.ledger.Restore(map[string]float64{"wood": 1000, "stone": 1000})
	assert.True(t, f.manager.CanBuild("house").CanBuild)
	assert.NoError(t, f.manager.CanBuild("house").Err())
}

func TestStartConstruction_SlotCapacityEnforced(t *testing.T) {
	// Arrange
	f := newFixture(building.WithBaseSlots(1))
	f.ledger.Restore(map[string]float64{"wood": 1000, "stone": 1000})
	f.build(t, "house")
	before := f.ledger.GetAll()

	// Act
	inst, err := f.manager.StartConstruction("house")

	// Assert
	assert.Nil(t, inst)
	assert.Equal(t, shared.RejectNoSlots, rejectionCode(t, err))
	assert.Equal(t, before, f.ledger.GetAll())
	assert.Equal(t, 1, f.manager.UsedSlots())
	assert.Equal(t, 1, f.recorder.Count(events.ConstructionStarted))
}

func TestStartConstruction_MaxCount(t *testing.T) {
	f := newFixture()
	f.build(t, "warehouse")
	f.build(t, "warehouse")

	_, err := f.manager.StartConstruction("warehouse")

	assert.Equal(t, shared.RejectMaxCount, rejectionCode(t, err))
}

func TestUpdateConstruction_CompletionFiresOnce(t *testing.T) {
	// Arrange
	f := newFixture()
	f.ledger.Restore(map[string]float64{"wood": 100, "stone": 100})
	inst := f.build(t, "house")

	// Act - not yet due
	f.clock.Advance(9 * time.Second)
	f.manager.UpdateConstruction()
	assert.False(t, inst.IsComplete())
	assert.InDelta(t, 0.9, inst.Progress(f.clock.Now()), 1e-9)

	f.clock.Advance(time.Second)
	for i := 0; i < 5; i++ {
		f.manager.UpdateConstruction()
		f.clock.Advance(time.Minute)
	}

	// Assert
	assert.True(t, inst.IsComplete())
	assert.Equal(t, 1, f.recorder.Count(events.ConstructionCompleted))
}

func TestWorkerGeneration_StopsAtRoomCapacity(t *testing.T) {
	// Arrange
	f := newFixture()
	f.ledger.Restore(map[string]float64{"wood": 100, "stone": 100})
	inst := f.build(t, "house")

	// Act - incomplete buildings do not generate
	f.manager.UpdateHouseWorkerGeneration(100)
	assert.Equal(t, 0.0, f.ledger.Get("peasant"))

	f.clock.Advance(inst.Duration())
	f.manager.UpdateConstruction()
	for i := 0; i < 50; i++ {
		f.manager.UpdateHouseWorkerGeneration(2)
	}
	f.manager.UpdateHouseWorkerGeneration(1000)

	// Assert
	gen, ok := inst.Generator()
	require.True(t, ok)
	assert.Equal(t, 5, gen.Occupancy())
	assert.Equal(t, 5.0, f.ledger.Get("peasant"))
	assert.Equal(t, 5, f.recorder.Count(events.WorkerGenerated))
}

func TestWorkerGeneration_PartialInterval(t *testing.T) {
	f := newFixture()
	f.ledger.Restore(map[string]float64{"wood": 100, "stone": 100})
	f.complete(t, "house")

	f.manager.UpdateHouseWorkerGeneration(1.5)
	assert.Equal(t, 0.0, f.ledger.Get("peasant"))

	f.manager.UpdateHouseWorkerGeneration(0.5)
	assert.Equal(t, 1.0, f.ledger.Get("peasant"))

	f.manager.UpdateHouseWorkerGeneration(5)
	assert.Equal(t, 3.0, f.ledger.Get("peasant"))
}

func TestBuildingUpgrade_RaisesRoomCapacity(t *testing.T) {
	// Arrange
	f := newFixture()
	f.ledger.Restore(map[string]float64{"wood": 100, "stone": 100})
	inst := f.complete(t, "house")

	// Act
	level, err := f.manager.PurchaseBuildingUpgrade(inst.ID(), "bunks")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, level)
	assert.Equal(t, 40.0, f.ledger.Get("wood"))
	gen, _ := inst.Generator()
	assert.Equal(t, 7, gen.Rooms()[0].MaxWorkers)

	_, err = f.manager.PurchaseBuildingUpgrade(inst.ID(), "bunks")
	require.NoError(t, err)
	assert.Equal(t, 20.0, f.ledger.Get("wood"))

	_, err = f.manager.PurchaseBuildingUpgrade(inst.ID(), "bunks")
	assert.Equal(t, shared.RejectMaxLevel, rejectionCode(t, err))
	assert.Equal(t, 2, f.recorder.Count(events.BuildingUpgraded))
}

func TestBuildingUpgrade_Rejections(t *testing.T) {
	f := newFixture()
	f.ledger.Restore(map[string]float64{"wood": 100, "stone": 100})
	inst := f.build(t, "house")

	_, err := f.manager.PurchaseBuildingUpgrade("nope", "bunks")
	assert.Equal(t, shared.RejectInvalidID, rejectionCode(t, err))

	_, err = f.manager.PurchaseBuildingUpgrade(inst.ID(), "bunks")
	assert.Equal(t, shared.RejectIncomplete, rejectionCode(t, err))

	f.clock.Advance(inst.Duration())
	f.manager.UpdateConstruction()
	_, err = f.manager.PurchaseBuildingUpgrade(inst.ID(), "gold_roof")
	assert.Equal(t, shared.RejectInvalidID, rejectionCode(t, err))

	f.ledger.Set("wood", 0)
	_, err = f.manager.PurchaseBuildingUpgrade(inst.ID(), "bunks")
	assert.Equal(t, shared.RejectInsufficientFunds, rejectionCode(t, err))
	assert.Equal(t, 0, inst.UpgradeLevel("bunks"))
}

func TestGetBuildingBonus_OnlyCompletedInstances(t *testing.T) {
	// Arrange
	f := newFixture()
	first := f.complete(t, "warehouse")
	f.build(t, "warehouse")

	// Act
	_, err := f.manager.PurchaseBuildingUpgrade(first.ID(), "shelves")
	require.NoError(t, err)
	_, err = f.manager.PurchaseBuildingUpgrade(first.ID(), "shelves")
	require.NoError(t, err)

	// Assert
	assert.InDelta(t, 0.45, f.manager.GetBuildingBonus(building.EffectStorageBonus), 1e-9)
	assert.Equal(t, 0.0, f.manager.GetBuildingBonus(building.EffectSpeedBonus))
	assert.Equal(t, building.DefaultBaseSlots+1, f.manager.AvailableSlots())
}

func TestUnlock_ResourcesMinedAndBuildingsCompleted(t *testing.T) {
	mined := tally{}
	f := newFixture(building.WithMiningTally(mined))

	assert.False(t, f.manager.IsUnlocked("library"))
	f.complete(t, "warehouse")
	assert.False(t, f.manager.IsUnlocked("library"))
	f.complete(t, "warehouse")
	assert.True(t, f.manager.IsUnlocked("library"))

	f.manager.Reset()
	assert.False(t, f.manager.IsUnlocked("library"))
}

func TestSnapshotRestore_Idempotent(t *testing.T) {
	// Arrange
	f := newFixture()
	f.ledger.Restore(map[string]float64{"wood": 500, "stone": 500, "gold": 50, "peasant": 2})
	house := f.complete(t, "house")
	f.manager.UpdateHouseWorkerGeneration(5)
	_, err := f.manager.PurchaseBuildingUpgrade(house.ID(), "bunks")
	require.NoError(t, err)
	barracks := f.complete(t, "barracks")
	_, err = f.manager.StartTraining(barracks.ID(), "knight")
	require.NoError(t, err)
	f.build(t, "warehouse")

	saved := f.manager.Snapshot()
	saved = append(saved, building.InstanceState{ID: "ghost", TypeID: "castle"})

	// Act & Assert
	for i := 0; i < 3; i++ {
		f.manager.Restore(saved)
		assert.Equal(t, saved[:3], f.manager.Snapshot())
	}
	gen, _ := f.manager.Instances()[0].Generator()
	assert.Equal(t, 2, gen.Occupancy())
	assert.Equal(t, 7, gen.Rooms()[0].MaxWorkers)
	queue, _ := f.manager.Instances()[1].Training()
	assert.Len(t, queue.Queue(), 1)
	assert.False(t, f.manager.Instances()[2].IsComplete())
}

func TestRestore_ClampsOccupancy(t *testing.T) {
	f := newFixture()

	f.manager.Restore([]building.InstanceState{{
		ID:       "house-9",
		TypeID:   "house",
		Complete: true,
		SubState: building.SubStateSnapshot{Rooms: []building.RoomState{{CurrentWorkers: 40, MaxWorkers: 99}}},
	}})

	gen, ok := f.manager.Instances()[0].Generator()
	require.True(t, ok)
	assert.Equal(t, 5, gen.Rooms()[0].CurrentWorkers)
	assert.Equal(t, 5, gen.Rooms()[0].MaxWorkers)
}
