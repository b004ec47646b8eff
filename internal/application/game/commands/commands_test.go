package commands_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/idlecolony-go/internal/application/common"
	"github.com/andrescamacho/idlecolony-go/internal/application/game"
	"github.com/andrescamacho/idlecolony-go/internal/application/game/commands"
	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
	"github.com/andrescamacho/idlecolony-go/internal/infrastructure/catalog"
)

type memorySaves struct {
	mu    sync.Mutex
	slots map[string]*game.GameState
}

func newMemorySaves() *memorySaves {
	return &memorySaves{slots: make(map[string]*game.GameState)}
}

func (m *memorySaves) Save(_ context.Context, slot string, state *game.GameState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = state
	return nil
}

func (m *memorySaves) Load(_ context.Context, slot string) (*game.GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.slots[slot]
	if !ok {
		return nil, &game.ErrSaveNotFound{Slot: slot}
	}
	return state, nil
}

func (m *memorySaves) List(context.Context) ([]game.SaveSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]game.SaveSummary, 0, len(m.slots))
	for slot, state := range m.slots {
		out = append(out, game.SaveSummary{Slot: slot, Version: state.Version, SavedAt: state.SavedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out, nil
}

func (m *memorySaves) Delete(_ context.Context, slot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, slot)
	return nil
}

func setup(t *testing.T) (common.Mediator, *game.Engine, *memorySaves) {
	t.Helper()
	engine, err := game.NewEngine(catalog.MustDefault(), game.WithSeed(1))
	require.NoError(t, err)
	saves := newMemorySaves()
	m := common.NewMediator()
	require.NoError(t, commands.RegisterHandlers(m, engine, saves))
	return m, engine, saves
}

func requireRejection(t *testing.T, err error, code shared.RejectionCode) {
	t.Helper()
	var rejection *shared.RejectionError
	require.True(t, errors.As(err, &rejection), "expected rejection, got %v", err)
	assert.Equal(t, code, rejection.Code)
}

func TestAssignWorkers(t *testing.T) {
	m, _, _ := setup(t)
	ctx := context.Background()

	resp, err := m.Send(ctx, &commands.AssignWorkersCommand{WorkerType: "peasant", TargetID: "forest", Count: 2})
	require.NoError(t, err)

	assignment := resp.(*commands.AssignmentResponse)
	assert.Equal(t, 2, assignment.Assigned)
	assert.Equal(t, 1, assignment.Free)

	_, err = m.Send(ctx, &commands.AssignWorkersCommand{WorkerType: "peasant", TargetID: "quarry", Count: 2})
	requireRejection(t, err, shared.RejectInsufficientWorkers)

	resp, err = m.Send(ctx, &commands.ReassignWorkersCommand{WorkerType: "peasant", FromID: "forest", ToID: "quarry", Count: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.(*commands.AssignmentResponse).Assigned)

	_, err = m.Send(ctx, &commands.UnassignWorkersCommand{All: true})
	require.NoError(t, err)
	resp, err = m.Send(ctx, &commands.UnassignWorkersCommand{WorkerType: "peasant", TargetID: "forest", Count: 1})
	requireRejection(t, err, shared.RejectInsufficientWorkers)
	assert.Nil(t, resp)
}

func TestManualHarvest_RepeatsUntilRejected(t *testing.T) {
	m, engine, _ := setup(t)
	ctx := context.Background()

	resp, err := m.Send(ctx, &commands.ManualHarvestCommand{TargetID: "forest", Times: 25})
	require.NoError(t, err)

	harvest := resp.(*commands.ManualHarvestResponse)
	assert.Equal(t, 20, harvest.Times, "node capacity limits the clicks")
	assert.Equal(t, 20.0, harvest.Credited["wood"])
	assert.Equal(t, 20.0, engine.Balance("wood"))

	_, err = m.Send(ctx, &commands.ManualHarvestCommand{TargetID: "forest"})
	requireRejection(t, err, shared.RejectInsufficientFunds)

	_, err = m.Send(ctx, &commands.ManualHarvestCommand{TargetID: "volcano"})
	requireRejection(t, err, shared.RejectInvalidID)
}

func TestStartConstruction(t *testing.T) {
	m, engine, _ := setup(t)
	ctx := context.Background()

	_, err := m.Send(ctx, &commands.StartConstructionCommand{BuildingType: "house"})
	requireRejection(t, err, shared.RejectInsufficientFunds)

	engine.Load(&game.GameState{Ledger: map[string]float64{"wood": 30}})
	resp, err := m.Send(ctx, &commands.StartConstructionCommand{BuildingType: "house"})
	require.NoError(t, err)

	started := resp.(*commands.StartConstructionResponse)
	assert.NotEmpty(t, started.InstanceID)
	assert.Equal(t, 0.0, engine.Balance("wood"))

	_, err = m.Send(ctx, &commands.PurchaseBuildingUpgradeCommand{InstanceID: started.InstanceID, UpgradeID: "extra_beds"})
	requireRejection(t, err, shared.RejectIncomplete)

	_, err = m.Send(ctx, &commands.StartConstructionCommand{BuildingType: "workshop"})
	requireRejection(t, err, shared.RejectLocked)
}

func TestPurchaseUpgrade(t *testing.T) {
	m, engine, _ := setup(t)
	ctx := context.Background()
	engine.Load(&game.GameState{Ledger: map[string]float64{"coins": 100}})

	_, err := m.Send(ctx, &commands.PurchaseUpgradeCommand{UpgradeID: "dense_forest"})
	requireRejection(t, err, shared.RejectPrerequisiteMissing)

	resp, err := m.Send(ctx, &commands.PurchaseUpgradeCommand{UpgradeID: "sharp_axes"})
	require.NoError(t, err)
	assert.Equal(t, 70.0, resp.(*commands.PurchaseUpgradeResponse).Balances["coins"])

	_, err = m.Send(ctx, &commands.PurchaseUpgradeCommand{UpgradeID: "sharp_axes"})
	requireRejection(t, err, shared.RejectAlreadyOwned)
}

func TestSaveAndLoadGame(t *testing.T) {
	m, engine, saves := setup(t)
	ctx := context.Background()

	_, err := m.Send(ctx, &commands.ManualHarvestCommand{TargetID: "forest", Times: 3})
	require.NoError(t, err)
	_, err = m.Send(ctx, &commands.SaveGameCommand{Slot: "alpha"})
	require.NoError(t, err)
	assert.Contains(t, saves.slots, "alpha")

	_, err = m.Send(ctx, &commands.ResetGameCommand{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, engine.Balance("wood"))

	resp, err := m.Send(ctx, &commands.LoadGameCommand{Slot: "alpha"})
	require.NoError(t, err)
	assert.True(t, resp.(*commands.LoadGameResponse).Loaded)
	assert.Equal(t, 3.0, engine.Balance("wood"))

	_, err = m.Send(ctx, &commands.LoadGameCommand{Slot: "missing"})
	var notFound *game.ErrSaveNotFound
	assert.True(t, errors.As(err, &notFound))

	resp, err = m.Send(ctx, &commands.LoadGameCommand{Slot: "missing", IgnoreMissing: true})
	require.NoError(t, err)
	assert.False(t, resp.(*commands.LoadGameResponse).Loaded)
	assert.Equal(t, 3.0, engine.Balance("wood"))

	_, err = m.Send(ctx, &commands.DeleteSaveCommand{Slot: "alpha"})
	require.NoError(t, err)
	assert.Empty(t, saves.slots)

	_, err = m.Send(ctx, &commands.SaveGameCommand{})
	assert.Error(t, err)
}

func TestHandlers_RejectWrongRequestType(t *testing.T) {
	_, engine, _ := setup(t)

	_, err := commands.NewAssignWorkersHandler(engine).Handle(context.Background(), &commands.ResetGameCommand{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid request type")
}

func TestRegisterHandlers_SkipsSavesWithoutRepository(t *testing.T) {
	engine, err := game.NewEngine(catalog.MustDefault())
	require.NoError(t, err)
	m := common.NewMediator()
	require.NoError(t, commands.RegisterHandlers(m, engine, nil))

	_, err = m.Send(context.Background(), &commands.SaveGameCommand{Slot: "a"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no handler registered")
	assert.Error(t, commands.RegisterHandlers(m, engine, nil), "double registration")
}
