package scheduler

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initializerFixture(t *testing.T) (*PopulationInitializer, []Session, []Room) {
	t.Helper()
	cfg := DefaultGAConfig()
	sessions := []Session{
		{SessionKey: "math-101-s1", CourseID: "math-101", SectionID: "section-a", TeacherID: "teacher-1", DurationMinutes: 90},
		{SessionKey: "sci-201-s1", CourseID: "sci-201", SectionID: "section-a", TeacherID: "teacher-2", DurationMinutes: 180, IsLab: true},
	}
	rooms := []Room{
		{RoomID: "room-101", RoomCode: "A101", RoomType: "theory", Capacity: 40},
		{RoomID: "room-lab1", RoomCode: "LAB1", RoomType: "lab", Capacity: 25},
	}
	rng := rand.New(rand.NewSource(7))
	return NewPopulationInitializer(cfg, sessions, rooms, nil, rng), sessions, rooms
}

func TestCreatePopulationProducesRequestedSize(t *testing.T) {
	init, sessions, _ := initializerFixture(t)

	pop := init.CreatePopulation(10, 0.5)
	require.Len(t, pop, 10)
	for _, c := range pop {
		assert.Len(t, c.Genes, len(sessions))
	}
}

func TestCreatePopulationPlacesLabsInLabRooms(t *testing.T) {
	init, _, _ := initializerFixture(t)

	pop := init.CreatePopulation(5, 1.0)
	for _, c := range pop {
		for _, g := range c.Genes {
			if g.IsLab {
				assert.Equal(t, "room-lab1", g.RoomID)
			}
		}
	}
}

func TestCreatePopulationHonorsFullLock(t *testing.T) {
	cfg := DefaultGAConfig()
	sessions := []Session{
		{SessionKey: "math-101-s1", TeacherID: "teacher-1", DurationMinutes: 90},
	}
	rooms := []Room{
		{RoomID: "room-101", RoomCode: "A101", RoomType: "theory"},
		{RoomID: "room-102", RoomCode: "A102", RoomType: "theory"},
	}
	locked := []LockedAssignment{
		{SessionKey: "math-101-s1", Day: "Monday", StartTime: "09:30", LockType: LockFull, RoomID: "room-102"},
	}
	rng := rand.New(rand.NewSource(1))
	init := NewPopulationInitializer(cfg, sessions, rooms, locked, rng)

	for _, c := range init.CreatePopulation(5, 1.0) {
		require.Len(t, c.Genes, 1)
		g := c.Genes[0]
		assert.True(t, g.IsLocked)
		assert.Equal(t, "Monday", g.Day)
		assert.Equal(t, "09:30", g.StartTime)
		assert.Equal(t, "room-102", g.RoomID)
	}
}

func TestCreateHeuristicChromosomeRejectsCandidateBlockedOverFullDuration(t *testing.T) {
	cfg := DefaultGAConfig()
	cfg.WorkingDays = []string{"Monday"}
	cfg.AllowedStartTimes = []string{"11:00", "15:30"}
	cfg.SlotDurationMin = 30
	cfg.BlockedWindows = map[string][]BlockedWindow{
		"Monday": {{StartTime: "12:30", EndTime: "14:00"}},
	}
	// 11:00 survives the 30-minute probe (11:00-11:30 isn't blocked) but a
	// 180-minute session starting at 11:00 runs until 14:00, which overlaps
	// the blocked window for its full length.
	sessions := []Session{
		{SessionKey: "lab-1", TeacherID: "t1", SectionID: "sec-a", DurationMinutes: 180, IsLab: true},
	}
	rooms := []Room{{RoomID: "room-lab1", RoomCode: "LAB1", RoomType: "lab"}}

	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		init := NewPopulationInitializer(cfg, sessions, rooms, nil, rng)
		c := init.createHeuristicChromosome()
		require.Len(t, c.Genes, 1)
		if c.Genes[0].StartTime == "11:00" {
			t.Fatalf("seed %d: heuristic placed a full-duration-blocked candidate at 11:00", seed)
		}
	}
}

func TestCreatePopulationTimeOnlyLockAllowsRoomToVary(t *testing.T) {
	cfg := DefaultGAConfig()
	sessions := []Session{
		{SessionKey: "math-101-s1", TeacherID: "teacher-1", DurationMinutes: 90},
	}
	rooms := []Room{
		{RoomID: "room-101", RoomCode: "A101", RoomType: "theory"},
	}
	locked := []LockedAssignment{
		{SessionKey: "math-101-s1", Day: "Monday", StartTime: "09:30", LockType: LockTimeOnly},
	}
	rng := rand.New(rand.NewSource(1))
	init := NewPopulationInitializer(cfg, sessions, rooms, locked, rng)

	c := init.CreatePopulation(1, 0)[0]
	require.Len(t, c.Genes, 1)
	assert.Equal(t, "Monday", c.Genes[0].Day)
	assert.Equal(t, "09:30", c.Genes[0].StartTime)
	assert.True(t, c.Genes[0].CanMutateRoom(), "a time-only lock leaves the room free for the operators")
	assert.Empty(t, c.Genes[0].LockedRoomID)
}
