package utils

import (
	"math"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateEntityID_Format(t *testing.T) {
	id := GenerateEntityID("bld", "Town Hall")

	assert.Regexp(t, regexp.MustCompile(`^bld-town_hall-[0-9a-f]{8}$`), id)
}

func TestGenerateEntityID_OmitsEmptyType(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^bld-[0-9a-f]{8}$`), GenerateEntityID("bld", ""))
}

func TestGenerateEntityID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateEntityID("bld", "house")
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestFloorIntAndClamp(t *testing.T) {
	assert.Equal(t, 2, FloorInt(2.9))
	assert.Equal(t, 0, FloorInt(-1))
	assert.Equal(t, 0, FloorInt(math.NaN()))
	assert.Equal(t, 0, FloorInt(math.Inf(1)))
	assert.Equal(t, 1.0, Clamp(5, 0, 1))
	assert.Equal(t, 0.0, Clamp(-5, 0, 1))
}
