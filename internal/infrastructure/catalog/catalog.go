package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/idlecolony-go/internal/domain/activity"
	"github.com/andrescamacho/idlecolony-go/internal/domain/building"
	"github.com/andrescamacho/idlecolony-go/internal/domain/progress"
	"github.com/andrescamacho/idlecolony-go/internal/domain/resource"
	"github.com/andrescamacho/idlecolony-go/internal/domain/skill"
	"github.com/andrescamacho/idlecolony-go/internal/domain/worker"
)

//go:embed default.yaml
var defaultYAML []byte

// Catalog holds every static definition the engine is built from
type Catalog struct {
	Version           int                              `yaml:"version" json:"version" validate:"gte=1"`
	Worker            worker.Config                    `yaml:"worker" json:"worker"`
	NodeMultipliers   resource.Multipliers             `yaml:"node_multipliers" json:"node_multipliers"`
	Skills            skill.Curve                      `yaml:"skills" json:"skills"`
	BaseSlots         int                              `yaml:"base_slots" json:"base_slots" validate:"gte=0"`
	StartingResources map[string]float64               `yaml:"starting_resources" json:"starting_resources"`
	WorkerTypes       []worker.Type                    `yaml:"worker_types" json:"worker_types" validate:"required,min=1,dive"`
	Nodes             []resource.Definition            `yaml:"nodes" json:"nodes" validate:"dive"`
	Activities        []activity.Definition            `yaml:"activities" json:"activities" validate:"dive"`
	Buildings         []building.Type                  `yaml:"buildings" json:"buildings" validate:"dive"`
	Upgrades          []progress.UpgradeDefinition     `yaml:"upgrades" json:"upgrades" validate:"dive"`
	Achievements      []progress.AchievementDefinition `yaml:"achievements" json:"achievements" validate:"dive"`
	Boosts            []worker.BoostDefinition         `yaml:"boosts" json:"boosts" validate:"dive"`
}

// base returns a catalog holding only tuning defaults; decoding overlays
// whatever keys the file provides
func base() Catalog {
	return Catalog{
		Version:         1,
		Worker:          worker.DefaultConfig(),
		NodeMultipliers: resource.DefaultMultipliers(),
		Skills:          skill.DefaultCurve(),
		BaseSlots:       building.DefaultBaseSlots,
	}
}

// Parse decodes and validates a YAML catalog
func Parse(raw []byte) (*Catalog, error) {
	c := base()
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &c, nil
}

// Load reads a catalog file
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(raw)
}

// LoadOrDefault reads path, or returns the built-in catalog when path is empty
func LoadOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}

// Default returns the built-in colony catalog
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// MustDefault is Default for tests and examples
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

// DefaultYAML exposes the built-in catalog source, e.g. for `catalog dump`
func DefaultYAML() []byte {
	return append([]byte(nil), defaultYAML...)
}

// WorkerType returns a worker type by id
func (c *Catalog) WorkerType(id string) (worker.Type, bool) {
	for _, t := range c.WorkerTypes {
		if t.ID == id {
			return t, true
		}
	}
	return worker.Type{}, false
}

// Resources returns every resource id the catalog mentions, worker types
// included, in first-seen order
func (c *Catalog) Resources() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(m map[string]float64) {
		for _, id := range sortedKeys(m) {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	for _, t := range c.WorkerTypes {
		add(map[string]float64{t.ID: 0})
	}
	add(c.StartingResources)
	for _, n := range c.Nodes {
		add(n.Outputs)
	}
	for _, a := range c.Activities {
		add(a.Inputs)
		add(a.Outputs)
	}
	for _, b := range c.Buildings {
		add(b.BaseCost)
	}
	return out
}
