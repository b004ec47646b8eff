package shared

import (
	"math"
	"sort"
)

// ResourceMap maps resource identifiers to quantities. It is used for costs,
// harvest outputs and carried payloads.
type ResourceMap map[string]float64

// Clone returns an independent copy (nil stays nil)
func (m ResourceMap) Clone() ResourceMap {
	if m == nil {
		return nil
	}
	out := make(ResourceMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Scale returns a copy with every amount multiplied by factor
func (m ResourceMap) Scale(factor float64) ResourceMap {
	out := make(ResourceMap, len(m))
	for k, v := range m {
		out[k] = v * factor
	}
	return out
}

// Floor returns a copy with every amount rounded down to an integer
func (m ResourceMap) Floor() ResourceMap {
	out := make(ResourceMap, len(m))
	for k, v := range m {
		out[k] = math.Floor(v)
	}
	return out
}

// Add accumulates other into m
func (m ResourceMap) Add(other ResourceMap) {
	for k, v := range other {
		m[k] += v
	}
}

// Total sums all amounts
func (m ResourceMap) Total() float64 {
	total := 0.0
	for _, v := range m {
		total += v
	}
	return total
}

// IsZero reports whether no entry has a positive amount
func (m ResourceMap) IsZero() bool {
	for _, v := range m {
		if v > 0 {
			return false
		}
	}
	return true
}

// Keys returns the resource ids in sorted order
func (m ResourceMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
