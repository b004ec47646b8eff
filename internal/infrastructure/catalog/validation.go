package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/andrescamacho/idlecolony-go/internal/domain/building"
	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
	"github.com/andrescamacho/idlecolony-go/internal/infrastructure/config"
)

// Validate runs the struct tag rules and then checks that every
// cross-reference resolves
func (c *Catalog) Validate() error {
	if err := config.NewValidator().Validate(c); err != nil {
		return err
	}
	return c.validateReferences()
}

func (c *Catalog) validateReferences() error {
	var errs []error
	fail := func(field, format string, args ...interface{}) {
		errs = append(errs, shared.NewValidationError(field, fmt.Sprintf(format, args...)))
	}

	workers := make(map[string]bool)
	for _, t := range c.WorkerTypes {
		if workers[t.ID] {
			fail("worker_types", "duplicate id %q", t.ID)
		}
		workers[t.ID] = true
	}

	// nodes and activities share the target namespace
	targets := make(map[string]bool)
	nodes := make(map[string]bool)
	activities := make(map[string]bool)
	for _, n := range c.Nodes {
		if targets[n.ID] {
			fail("nodes", "duplicate target id %q", n.ID)
		}
		targets[n.ID] = true
		nodes[n.ID] = true
	}
	for _, a := range c.Activities {
		if targets[a.ID] {
			fail("activities", "duplicate target id %q", a.ID)
		}
		targets[a.ID] = true
		activities[a.ID] = true
	}
	for _, t := range c.WorkerTypes {
		for _, id := range t.BonusActivities {
			if !activities[id] {
				fail("worker_types", "%s: bonus activity %q does not exist", t.ID, id)
			}
		}
	}

	buildings := make(map[string]bool)
	for _, b := range c.Buildings {
		if buildings[b.ID] {
			fail("buildings", "duplicate id %q", b.ID)
		}
		buildings[b.ID] = true
		if b.Generator != nil && !workers[b.Generator.WorkerType] {
			fail("buildings", "%s: generator worker type %q does not exist", b.ID, b.Generator.WorkerType)
		}
		if b.Training != nil {
			for _, p := range b.Training.Programs {
				if !workers[p.InputWorker] || !workers[p.OutputWorker] {
					fail("buildings", "%s: program %q references an unknown worker type", b.ID, p.ID)
				}
			}
		}
		if b.Unlock.Kind == building.UnlockResourcesMined && b.Unlock.Threshold <= 0 {
			fail("buildings", "%s: resources_mined unlock needs a positive threshold", b.ID)
		}
	}

	upgrades := make(map[string]bool)
	for _, u := range c.Upgrades {
		if upgrades[u.ID] {
			fail("upgrades", "duplicate id %q", u.ID)
		}
		upgrades[u.ID] = true
	}
	for _, u := range c.Upgrades {
		for _, pre := range u.Prerequisites {
			if !upgrades[pre] || pre == u.ID {
				fail("upgrades", "%s: invalid prerequisite %q", u.ID, pre)
			}
		}
		if u.Effect.IsNodeEffect() && !nodes[u.Target] {
			fail("upgrades", "%s: target node %q does not exist", u.ID, u.Target)
		}
	}

	achievements := make(map[string]bool)
	for _, a := range c.Achievements {
		if achievements[a.ID] {
			fail("achievements", "duplicate id %q", a.ID)
		}
		achievements[a.ID] = true
	}

	for _, b := range c.Boosts {
		if b.ActivityID != "" && !activities[b.ActivityID] {
			fail("boosts", "%s: activity %q does not exist", b.ID, b.ActivityID)
		}
	}

	for _, id := range sortedKeys(c.StartingResources) {
		if c.StartingResources[id] < 0 {
			fail("starting_resources", "%s must not be negative", id)
		}
	}

	return errors.Join(errs...)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
