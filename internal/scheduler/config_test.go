package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultGAConfigIsInternallyConsistent(t *testing.T) {
	cfg := DefaultGAConfig()

	assert.Greater(t, cfg.PopulationSize, 0)
	assert.Greater(t, cfg.Generations, 0)
	assert.NotEmpty(t, cfg.WorkingDays)
	assert.NotEmpty(t, cfg.AllowedStartTimes)
	assert.NotEmpty(t, cfg.AllowedDurations)
	assert.Contains(t, cfg.AllowedDurations, 180, "lab sessions require a 180-minute slot")
}

func TestGetMutationRateDecaysInThreeStages(t *testing.T) {
	cfg := DefaultGAConfig()

	assert.Equal(t, cfg.MutationRateInitial, cfg.GetMutationRate(0))
	assert.Equal(t, cfg.MutationRateInitial, cfg.GetMutationRate(cfg.MutationDecayGeneration-1))
	assert.Equal(t, cfg.MutationRateMid, cfg.GetMutationRate(cfg.MutationDecayGeneration))
	assert.Equal(t, cfg.MutationRateMid, cfg.GetMutationRate(cfg.MutationDecayGeneration*3-1))
	assert.Equal(t, cfg.MutationRateFinal, cfg.GetMutationRate(cfg.MutationDecayGeneration*3))
}

func TestIsValidStartTimeAndDuration(t *testing.T) {
	cfg := DefaultGAConfig()

	assert.True(t, cfg.IsValidStartTime("08:00"))
	assert.False(t, cfg.IsValidStartTime("08:15"))

	assert.True(t, cfg.IsValidDuration(90))
	assert.False(t, cfg.IsValidDuration(45))
}

func TestIsBlockedDetectsOverlapAgainstConfiguredWindow(t *testing.T) {
	cfg := DefaultGAConfig()

	assert.True(t, cfg.IsBlocked("Monday", "12:00", "13:00"))
	assert.False(t, cfg.IsBlocked("Monday", "10:00", "11:30"))
	assert.False(t, cfg.IsBlocked("Wednesday", "12:30", "14:00"), "Wednesday has no configured blocked window")
}

func TestAllowedSlotsExcludesBlockedProbeWindows(t *testing.T) {
	cfg := DefaultGAConfig()

	slots := cfg.AllowedSlots()
	assert.NotEmpty(t, slots)

	for _, s := range slots {
		if s.Day == "Monday" && s.StartTime == "12:30" {
			t.Fatalf("12:30 on Monday falls inside the configured lunch block and should be excluded")
		}
	}
}

func TestDayEndMinutes(t *testing.T) {
	cfg := DefaultGAConfig()
	assert.Equal(t, MustMinutes(cfg.DayEndTime), cfg.DayEndMinutes())
}
