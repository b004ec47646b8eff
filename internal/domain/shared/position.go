package shared

import (
	"fmt"
	"math"
)

// Position is an immutable point in the colony's 2D world space
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NewPosition creates a position
func NewPosition(x, y float64) Position {
	return Position{X: x, Y: y}
}

// DistanceTo calculates Euclidean distance to another position
func (p Position) DistanceTo(other Position) float64 {
	dx := other.X - p.X
	dy := other.Y - p.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// MoveToward steps toward dest by at most step units and returns the new
// position and the distance actually covered. The step never overshoots.
func (p Position) MoveToward(dest Position, step float64) (Position, float64) {
	if step <= 0 {
		return p, 0
	}
	remaining := p.DistanceTo(dest)
	if remaining <= step {
		return dest, remaining
	}
	ratio := step / remaining
	return Position{
		X: p.X + (dest.X-p.X)*ratio,
		Y: p.Y + (dest.Y-p.Y)*ratio,
	}, step
}

func (p Position) String() string {
	return fmt.Sprintf("(%.1f, %.1f)", p.X, p.Y)
}
