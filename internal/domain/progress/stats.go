package progress

import (
	"math"

	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
)

// Stats are the cumulative counters achievements and unlocks read.
// They only grow until reset.
type Stats struct {
	CurrencyEarned      map[string]float64 `json:"currency_earned"`
	ActivityCompletions map[string]int     `json:"activity_completions"`
	ResourcesMined      map[string]float64 `json:"resources_mined"`
	TotalMined          float64            `json:"total_mined"`
	BuildingsCompleted  int                `json:"buildings_completed"`
	TrainingsCompleted  int                `json:"trainings_completed"`
}

// NewStats returns zeroed statistics
func NewStats() Stats {
	return Stats{
		CurrencyEarned:      make(map[string]float64),
		ActivityCompletions: make(map[string]int),
		ResourcesMined:      make(map[string]float64),
	}
}

// Clone returns an independent copy
func (s Stats) Clone() Stats {
	out := NewStats()
	for k, v := range s.CurrencyEarned {
		out.CurrencyEarned[k] = v
	}
	for k, v := range s.ActivityCompletions {
		out.ActivityCompletions[k] = v
	}
	for k, v := range s.ResourcesMined {
		out.ResourcesMined[k] = v
	}
	out.TotalMined = s.TotalMined
	out.BuildingsCompleted = s.BuildingsCompleted
	out.TrainingsCompleted = s.TrainingsCompleted
	return out
}

// sanitized drops negative or non-finite values and recomputes nothing else
func (s Stats) sanitized() Stats {
	out := NewStats()
	for k, v := range s.CurrencyEarned {
		out.CurrencyEarned[k] = nonNegative(v)
	}
	for k, v := range s.ActivityCompletions {
		if v > 0 {
			out.ActivityCompletions[k] = v
		}
	}
	for k, v := range s.ResourcesMined {
		out.ResourcesMined[k] = nonNegative(v)
	}
	out.TotalMined = nonNegative(s.TotalMined)
	if s.BuildingsCompleted > 0 {
		out.BuildingsCompleted = s.BuildingsCompleted
	}
	if s.TrainingsCompleted > 0 {
		out.TrainingsCompleted = s.TrainingsCompleted
	}
	return out
}

func (s Stats) currencyEarned(key string) float64 {
	if key != "" {
		return s.CurrencyEarned[key]
	}
	return shared.ResourceMap(s.CurrencyEarned).Total()
}

func (s Stats) activityCompletions(key string) float64 {
	if key != "" {
		return float64(s.ActivityCompletions[key])
	}
	total := 0
	for _, v := range s.ActivityCompletions {
		total += v
	}
	return float64(total)
}

func (s Stats) resourcesMined(key string) float64 {
	if key != "" {
		return s.ResourcesMined[key]
	}
	return s.TotalMined
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
