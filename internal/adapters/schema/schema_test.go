package schema_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/idlecolony-go/internal/adapters/schema"
	"github.com/andrescamacho/idlecolony-go/internal/application/game"
	"github.com/andrescamacho/idlecolony-go/internal/domain/building"
	"github.com/andrescamacho/idlecolony-go/internal/domain/progress"
	"github.com/andrescamacho/idlecolony-go/internal/domain/skill"
	"github.com/andrescamacho/idlecolony-go/internal/domain/worker"
)

func sampleState() *game.GameState {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &game.GameState{
		Version:   game.CurrentVersion,
		SavedAt:   now,
		ClockTime: now,
		Ledger:    map[string]float64{"wood": 12.5, "peasant": 2},
		Skills:    map[string]skill.State{"woodcutting": {Level: 2, XP: 150}},
		Workers: worker.Snapshot{
			Assignments: map[string]map[string]int{"peasant": {"forest": 1}},
			Workers:     []worker.EntityState{{ID: "w-1", Type: "peasant", TargetID: "forest", Harvests: 3, Distance: 20}},
			Boosts:      []worker.BoostState{{ID: "coffee", Remaining: 2.5}},
		},
		Nodes: []game.NodeState{{ID: "forest", Available: 4, CapacityLevel: 1}},
		Progress: progress.State{
			Purchased: []string{"dense_forest"},
			Unlocked:  []string{"first_wood"},
			Stats:     progress.NewStats(),
		},
		Buildings: []building.InstanceState{{ID: "house-1", TypeID: "house", StartedAt: now, Complete: true}},
	}
}

func TestGenerate_DescribesGameState(t *testing.T) {
	data, err := schema.Generate()
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "Idle Colony Save", doc["title"])
	assert.Contains(t, string(data), `"clock_time"`)
	assert.Contains(t, string(data), `"capacity_level"`)
}

func TestValidator_AcceptsSavedState(t *testing.T) {
	v, err := schema.NewValidator()
	require.NoError(t, err)

	data, err := json.Marshal(sampleState())
	require.NoError(t, err)

	assert.NoError(t, v.Validate(data))
}

func TestValidator_AcceptsEmptyCollections(t *testing.T) {
	v, err := schema.NewValidator()
	require.NoError(t, err)

	data, err := json.Marshal(&game.GameState{Version: game.CurrentVersion})
	require.NoError(t, err)

	assert.NoError(t, v.Validate(data))
}

func TestValidator_RejectsMalformedDocuments(t *testing.T) {
	v, err := schema.NewValidator()
	require.NoError(t, err)

	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{"version":`},
		{"negative version", `{"version":-1}`},
		{"ledger of strings", `{"version":1,"ledger":{"wood":"lots"}}`},
		{"nodes not a list", `{"version":1,"nodes":{"id":"forest"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, v.Validate([]byte(tt.doc)))
		})
	}
}

func TestValidator_ToleratesMissingAndUnknownMembers(t *testing.T) {
	v, err := schema.NewValidator()
	require.NoError(t, err)

	tests := []struct {
		name string
		doc  string
	}{
		{"skills only", `{"skills":{"farming":{"xp":100}}}`},
		{"missing version", `{"ledger":{"wood":1}}`},
		{"newer version with extra section", `{"version":2,"ledger":{"wood":1},"pets":[]}`},
		{"worker with extra member", `{"version":1,"workers":{"workers":[{"id":"w-1","type":"peasant","mood":"happy"}]}}`},
		{"node with extra member", `{"version":1,"nodes":[{"id":"forest","available":3,"fertility":0.5}]}`},
		{"empty document", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, v.Validate([]byte(tt.doc)))
		})
	}
}

func TestGenerate_AllowsAdditionalProperties(t *testing.T) {
	data, err := schema.Generate()
	require.NoError(t, err)

	assert.NotContains(t, string(data), `"additionalProperties": false`)
	assert.NotContains(t, string(data), `"required"`)
}

func TestExport_WritesSchemaFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "save.schema.json")

	require.NoError(t, schema.Export(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}
