package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeToMinutes(t *testing.T) {
	m, err := ParseTimeToMinutes("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, m)

	m, err = ParseTimeToMinutes("00:00")
	require.NoError(t, err)
	assert.Equal(t, 0, m)

	_, err = ParseTimeToMinutes("invalid")
	assert.Error(t, err)

	_, err = ParseTimeToMinutes("9")
	assert.Error(t, err)
}

func TestMustMinutesFallsBackToZeroOnError(t *testing.T) {
	assert.Equal(t, 0, MustMinutes("garbage"))
	assert.Equal(t, 570, MustMinutes("09:30"))
}

func TestMinutesToTimeWrapsPast24h(t *testing.T) {
	assert.Equal(t, "00:00", MinutesToTime(0))
	assert.Equal(t, "09:30", MinutesToTime(570))
	assert.Equal(t, "00:30", MinutesToTime(24*60+30))
	assert.Equal(t, "23:30", MinutesToTime(-30))
}

func TestAddMinutesToTime(t *testing.T) {
	assert.Equal(t, "11:30", AddMinutesToTime("09:30", 120))
	assert.Equal(t, "00:00", AddMinutesToTime("23:00", 60))
}

func TestSlotsOverlap(t *testing.T) {
	assert.True(t, SlotsOverlap(0, 90, 30, 60))
	assert.True(t, SlotsOverlap(0, 90, 89, 200))
	assert.False(t, SlotsOverlap(0, 90, 90, 180), "touching intervals do not overlap")
	assert.False(t, SlotsOverlap(90, 180, 0, 90), "touching intervals do not overlap regardless of order")
	assert.False(t, SlotsOverlap(0, 90, 91, 180))
}

func TestSlotsOverlapClock(t *testing.T) {
	assert.True(t, SlotsOverlapClock("09:00", "10:30", "10:00", "11:00"))
	assert.False(t, SlotsOverlapClock("09:00", "10:30", "10:30", "11:00"))
}
