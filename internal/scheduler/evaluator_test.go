package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feasibleChromosome() *Chromosome {
	g1 := NewGene(Session{SessionKey: "s1", SectionID: "sec-a", TeacherID: "t1", DurationMinutes: 90}, "Monday", "09:30", "room-101", "A101")
	g2 := NewGene(Session{SessionKey: "s2", SectionID: "sec-b", TeacherID: "t2", DurationMinutes: 90}, "Tuesday", "09:30", "room-102", "A102")
	return NewChromosome([]*Gene{g1, g2})
}

func TestEvaluateFeasibleChromosomeProducesPositiveFitness(t *testing.T) {
	cfg := DefaultGAConfig()
	rooms := []Room{
		{RoomID: "room-101", RoomCode: "A101", RoomType: "theory"},
		{RoomID: "room-102", RoomCode: "A102", RoomType: "theory"},
	}
	eval := NewFitnessEvaluator(cfg, rooms, nil)

	c := feasibleChromosome()
	fitness := eval.Evaluate(c)

	assert.True(t, c.IsFeasible)
	assert.Greater(t, fitness, 0.0)
	for _, n := range c.HardViolations {
		assert.Equal(t, 0, n)
	}
}

func TestEvaluateDetectsTeacherOverlap(t *testing.T) {
	cfg := DefaultGAConfig()
	rooms := []Room{
		{RoomID: "room-101", RoomCode: "A101", RoomType: "theory"},
		{RoomID: "room-102", RoomCode: "A102", RoomType: "theory"},
	}
	eval := NewFitnessEvaluator(cfg, rooms, nil)

	g1 := NewGene(Session{SessionKey: "s1", SectionID: "sec-a", TeacherID: "t1", DurationMinutes: 90}, "Monday", "09:30", "room-101", "A101")
	g2 := NewGene(Session{SessionKey: "s2", SectionID: "sec-b", TeacherID: "t1", DurationMinutes: 90}, "Monday", "10:00", "room-102", "A102")
	c := NewChromosome([]*Gene{g1, g2})

	fitness := eval.Evaluate(c)

	assert.False(t, c.IsFeasible)
	assert.Equal(t, 0.0, fitness)
	assert.Equal(t, 1, c.HardViolations["teacher_overlap"])
	assert.Nil(t, c.SoftScores)
}

func TestEvaluateDetectsMissingAssignmentAndShortCircuits(t *testing.T) {
	cfg := DefaultGAConfig()
	eval := NewFitnessEvaluator(cfg, nil, nil)

	g := NewGene(Session{SessionKey: "s1", DurationMinutes: 90}, "", "", "", "")
	c := NewChromosome([]*Gene{g})

	eval.Evaluate(c)

	assert.False(t, c.IsFeasible)
	assert.Equal(t, 1, c.HardViolations["missing_assignments"])
	assert.Equal(t, 0, c.HardViolations["teacher_overlap"], "other checks are skipped once placements are missing")
}

func TestEvaluateDetectsBlockedWindow(t *testing.T) {
	cfg := DefaultGAConfig()
	rooms := []Room{{RoomID: "room-101", RoomCode: "A101", RoomType: "theory"}}
	eval := NewFitnessEvaluator(cfg, rooms, nil)

	g := NewGene(Session{SessionKey: "s1", SectionID: "sec-a", TeacherID: "t1", DurationMinutes: 90}, "Monday", "12:30", "room-101", "A101")
	c := NewChromosome([]*Gene{g})

	eval.Evaluate(c)

	assert.False(t, c.IsFeasible)
	assert.Equal(t, 1, c.HardViolations["blocked_windows"])
}

func TestEvaluateDetectsLabContiguityViolation(t *testing.T) {
	cfg := DefaultGAConfig()
	rooms := []Room{{RoomID: "room-lab1", RoomCode: "LAB1", RoomType: "lab"}}
	eval := NewFitnessEvaluator(cfg, rooms, nil)

	g := NewGene(Session{SessionKey: "s1", SectionID: "sec-a", TeacherID: "t1", DurationMinutes: 90, IsLab: true}, "Monday", "09:30", "room-lab1", "LAB1")
	c := NewChromosome([]*Gene{g})

	eval.Evaluate(c)

	assert.False(t, c.IsFeasible)
	assert.Equal(t, 1, c.HardViolations["lab_contiguity"])
}

func TestEvaluateDetectsTeacherDayOffAndBlockedSlot(t *testing.T) {
	cfg := DefaultGAConfig()
	rooms := []Room{{RoomID: "room-101", RoomCode: "A101", RoomType: "theory"}}
	constraints := []TeacherConstraint{
		{TeacherID: "t1", Type: ConstraintDayOff, Days: []string{"Monday"}, IsHard: true},
		{TeacherID: "t1", Type: ConstraintBlockedSlot, Day: "Monday", StartTime: "10:00", EndTime: "11:00", IsHard: true},
	}
	eval := NewFitnessEvaluator(cfg, rooms, constraints)

	g := NewGene(Session{SessionKey: "s1", SectionID: "sec-a", TeacherID: "t1", DurationMinutes: 90}, "Monday", "09:30", "room-101", "A101")
	c := NewChromosome([]*Gene{g})

	eval.Evaluate(c)

	assert.False(t, c.IsFeasible)
	assert.Equal(t, 1, c.HardViolations["teacher_day_offs"])
	assert.Equal(t, 1, c.HardViolations["teacher_blocked_slots"])
}

func TestEvaluateIgnoresSoftConstraintsFromTeacherWhenNotHard(t *testing.T) {
	cfg := DefaultGAConfig()
	rooms := []Room{{RoomID: "room-101", RoomCode: "A101", RoomType: "theory"}}
	constraints := []TeacherConstraint{
		{TeacherID: "t1", Type: ConstraintDayOff, Days: []string{"Monday"}, IsHard: false},
	}
	eval := NewFitnessEvaluator(cfg, rooms, constraints)

	g := NewGene(Session{SessionKey: "s1", SectionID: "sec-a", TeacherID: "t1", DurationMinutes: 90}, "Monday", "09:30", "room-101", "A101")
	c := NewChromosome([]*Gene{g})

	eval.Evaluate(c)

	assert.True(t, c.IsFeasible, "soft (non-hard) constraints never block feasibility")
}

func TestEvaluateDetectsLockViolation(t *testing.T) {
	cfg := DefaultGAConfig()
	rooms := []Room{{RoomID: "room-101", RoomCode: "A101", RoomType: "theory"}}
	eval := NewFitnessEvaluator(cfg, rooms, nil)

	g := NewGene(Session{SessionKey: "s1", SectionID: "sec-a", TeacherID: "t1", DurationMinutes: 90}, "Monday", "09:30", "room-101", "A101")
	g.IsLocked = true
	g.LockedDay = "Tuesday"
	g.LockedStart = "09:30"
	c := NewChromosome([]*Gene{g})

	eval.Evaluate(c)

	assert.False(t, c.IsFeasible)
	assert.Equal(t, 1, c.HardViolations["lock_violations"])
}

func TestCalculateSoftScoresAreBoundedByConfiguredWeights(t *testing.T) {
	cfg := DefaultGAConfig()
	rooms := []Room{
		{RoomID: "room-101", RoomCode: "A101", RoomType: "theory"},
		{RoomID: "room-102", RoomCode: "A102", RoomType: "theory"},
	}
	eval := NewFitnessEvaluator(cfg, rooms, nil)

	c := feasibleChromosome()
	eval.Evaluate(c)

	require.NotNil(t, c.SoftScores)
	assert.LessOrEqual(t, c.SoftScores["even_distribution"], cfg.WeightEvenDistribution)
	assert.LessOrEqual(t, c.SoftScores["room_type_match"], cfg.WeightRoomTypeMatch)
}
