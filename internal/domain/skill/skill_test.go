package skill_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/idlecolony-go/internal/domain/events"
	"github.com/andrescamacho/idlecolony-go/internal/domain/skill"
)

func TestCurve_XPForLevel(t *testing.T) {
	curve := skill.DefaultCurve()

	assert.Equal(t, 0.0, curve.XPForLevel(1))
	assert.Equal(t, 100.0, curve.XPForLevel(2))
	assert.Equal(t, 225.0, curve.XPForLevel(3)) // 100 + 125
	assert.Equal(t, 381.0, curve.XPForLevel(4)) // + floor(156.25)
	assert.Equal(t, curve.XPForLevel(99), curve.XPForLevel(150))
}

func TestCurve_LevelForXP(t *testing.T) {
	curve := skill.DefaultCurve()

	assert.Equal(t, 1, curve.LevelForXP(0))
	assert.Equal(t, 1, curve.LevelForXP(99.9))
	assert.Equal(t, 2, curve.LevelForXP(100))
	assert.Equal(t, 3, curve.LevelForXP(380))
	assert.Equal(t, 99, curve.LevelForXP(1e30))
}

func TestTracker_AddXPEmitsLevelUps(t *testing.T) {
	// Arrange
	recorder := events.NewRecorder()
	tracker := skill.NewTracker(skill.DefaultCurve(), recorder)

	// Act
	gained := tracker.AddXP("farming", 230)

	// Assert
	assert.Equal(t, 2, gained)
	assert.Equal(t, 3, tracker.Level("farming"))
	assert.Equal(t, 2, recorder.Count(events.SkillLevelUp))
	assert.InDelta(t, 0.04, tracker.SpeedBonus("farming"), 1e-9)
}

func TestTracker_IgnoresInvalidXP(t *testing.T) {
	tracker := skill.NewTracker(skill.DefaultCurve(), nil)

	assert.Equal(t, 0, tracker.AddXP("farming", -10))
	assert.Equal(t, 0, tracker.AddXP("", 10))
	assert.Equal(t, 0.0, tracker.XP("farming"))
	assert.Equal(t, 1, tracker.Level("farming"))
}

func TestTracker_RestoreIsIdempotent(t *testing.T) {
	tracker := skill.NewTracker(skill.DefaultCurve(), nil)
	saved := map[string]skill.State{"farming": {XP: 100}}

	for i := 0; i < 3; i++ {
		tracker.Restore(saved)
		require.Equal(t, 100.0, tracker.XP("farming"))
		require.Equal(t, 2, tracker.Level("farming"))
	}
}

func TestTracker_RestoreDerivesLevel(t *testing.T) {
	tracker := skill.NewTracker(skill.DefaultCurve(), nil)

	tracker.Restore(map[string]skill.State{"mining": {Level: 50, XP: 10}, "fishing": {XP: -4}})

	assert.Equal(t, 1, tracker.Level("mining"))
	assert.Equal(t, 0.0, tracker.XP("fishing"))
	assert.Equal(t, []string{"fishing", "mining"}, tracker.Skills())
}

func TestTracker_ProgressAndReset(t *testing.T) {
	tracker := skill.NewTracker(skill.DefaultCurve(), nil)
	tracker.AddXP("farming", 50)

	assert.InDelta(t, 0.5, tracker.Progress("farming"), 1e-9)

	tracker.Reset()
	assert.Empty(t, tracker.Snapshot())
}
