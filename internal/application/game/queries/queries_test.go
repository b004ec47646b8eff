package queries_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/idlecolony-go/internal/application/common"
	"github.com/andrescamacho/idlecolony-go/internal/application/game"
	"github.com/andrescamacho/idlecolony-go/internal/application/game/queries"
	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
	"github.com/andrescamacho/idlecolony-go/internal/infrastructure/catalog"
)

func setup(t *testing.T) (common.Mediator, *game.Engine) {
	t.Helper()
	engine, err := game.NewEngine(catalog.MustDefault(), game.WithSeed(7))
	require.NoError(t, err)
	m := common.NewMediator()
	require.NoError(t, queries.RegisterHandlers(m, engine, nil))
	return m, engine
}

func TestGetStatus(t *testing.T) {
	m, engine := setup(t)
	require.NoError(t, engine.Assign("peasant", "forest", 1))

	resp, err := m.Send(context.Background(), &queries.GetStatusQuery{})
	require.NoError(t, err)

	status := resp.(*game.Status)
	assert.Equal(t, 3.0, status.Resources["peasant"])
	require.Len(t, status.Workers, 1)
	assert.Equal(t, "forest", status.Workers[0].TargetID)
	assert.Len(t, status.Nodes, 3)
	assert.Equal(t, 5, status.AvailableSlots)
}

func TestCanBuild_ChecksEveryTypeByDefault(t *testing.T) {
	m, _ := setup(t)

	resp, err := m.Send(context.Background(), &queries.CanBuildQuery{})
	require.NoError(t, err)

	options := resp.(*queries.CanBuildResponse).Options
	require.Len(t, options, 4)
	assert.Equal(t, "house", options[0].BuildingType)
	assert.False(t, options[0].Check.CanBuild)
	assert.Equal(t, shared.RejectInsufficientFunds, options[0].Check.Code)
	assert.Equal(t, map[string]float64{"wood": 30}, options[0].Cost)
	assert.Equal(t, shared.RejectLocked, options[2].Check.Code)
}

func TestCanBuild_UnknownType(t *testing.T) {
	m, _ := setup(t)

	resp, err := m.Send(context.Background(), &queries.CanBuildQuery{BuildingTypes: []string{"castle"}})
	require.NoError(t, err)

	option := resp.(*queries.CanBuildResponse).Options[0]
	assert.Equal(t, shared.RejectInvalidID, option.Check.Code)
	assert.Nil(t, option.Cost)
}

func TestGetJournal(t *testing.T) {
	m, engine := setup(t)
	for i := 0; i < 3; i++ {
		_, err := engine.ManualHarvest("forest")
		require.NoError(t, err)
	}
	_, err := engine.ManualHarvest("berry_bush")
	require.NoError(t, err)

	resp, err := m.Send(context.Background(), &queries.GetJournalQuery{Resource: "wood", Limit: 2})
	require.NoError(t, err)

	txs := resp.(*queries.GetJournalResponse).Transactions
	require.Len(t, txs, 2)
	assert.Equal(t, 3.0, txs[0].BalanceAfter(), "newest first")

	_, err = m.Send(context.Background(), &queries.GetJournalQuery{TransactionType: "BOGUS"})
	assert.Error(t, err)
}
