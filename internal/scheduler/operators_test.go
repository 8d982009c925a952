package scheduler

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func operatorsFixture(seed int64) (*GeneticOperators, []Room) {
	cfg := DefaultGAConfig()
	rooms := []Room{
		{RoomID: "room-101", RoomCode: "A101", RoomType: "theory"},
		{RoomID: "room-102", RoomCode: "A102", RoomType: "theory"},
		{RoomID: "room-lab1", RoomCode: "LAB1", RoomType: "lab"},
		{RoomID: "room-lab2", RoomCode: "LAB2", RoomType: "lab"},
	}
	rng := rand.New(rand.NewSource(seed))
	return NewGeneticOperators(cfg, rooms, rng), rooms
}

func twoParentChromosomes() (*Chromosome, *Chromosome) {
	p1Genes := []*Gene{
		NewGene(Session{SessionKey: "s1", TeacherID: "t1", DurationMinutes: 90}, "Monday", "09:30", "room-101", "A101"),
		NewGene(Session{SessionKey: "s2", TeacherID: "t2", DurationMinutes: 90}, "Tuesday", "11:00", "room-102", "A102"),
	}
	p2Genes := []*Gene{
		NewGene(Session{SessionKey: "s1", TeacherID: "t1", DurationMinutes: 90}, "Wednesday", "14:00", "room-102", "A102"),
		NewGene(Session{SessionKey: "s2", TeacherID: "t2", DurationMinutes: 90}, "Thursday", "15:30", "room-101", "A101"),
	}
	return NewChromosome(p1Genes), NewChromosome(p2Genes)
}

func TestCrossoverProducesChildrenWithEverySession(t *testing.T) {
	ops, _ := operatorsFixture(1)
	p1, p2 := twoParentChromosomes()

	c1, c2 := ops.Crossover(p1, p2)

	require.Len(t, c1.Genes, 2)
	require.Len(t, c2.Genes, 2)
	for _, c := range []*Chromosome{c1, c2} {
		keys := map[string]bool{}
		for _, g := range c.Genes {
			keys[g.SessionKey] = true
		}
		assert.True(t, keys["s1"])
		assert.True(t, keys["s2"])
	}
}

func TestCrossoverDoesNotMutateParents(t *testing.T) {
	ops, _ := operatorsFixture(2)
	p1, p2 := twoParentChromosomes()
	originalP1Day := p1.Genes[0].Day

	ops.Crossover(p1, p2)

	assert.Equal(t, originalP1Day, p1.Genes[0].Day)
}

func TestMutateSkipsFullyLockedGenes(t *testing.T) {
	ops, _ := operatorsFixture(3)

	g := NewGene(Session{SessionKey: "s1", TeacherID: "t1", DurationMinutes: 90}, "Monday", "09:30", "room-101", "A101")
	g.IsLocked = true
	g.LockType = LockFull
	c := NewChromosome([]*Gene{g})

	mutated := ops.Mutate(c, 0)

	assert.Equal(t, "Monday", mutated.Genes[0].Day)
	assert.Equal(t, "09:30", mutated.Genes[0].StartTime)
	assert.Equal(t, "room-101", mutated.Genes[0].RoomID)
}

func TestMutateReturnsACopyNotTheOriginal(t *testing.T) {
	ops, _ := operatorsFixture(4)

	g := NewGene(Session{SessionKey: "s1", TeacherID: "t1", DurationMinutes: 90}, "Monday", "09:30", "room-101", "A101")
	c := NewChromosome([]*Gene{g})

	mutated := ops.Mutate(c, 0)

	assert.NotSame(t, c.Genes[0], mutated.Genes[0])
}

func TestMutateRoomSwapStaysWithinRoomCategory(t *testing.T) {
	ops, _ := operatorsFixture(5)

	g := NewGene(Session{SessionKey: "lab-1", TeacherID: "t1", DurationMinutes: 180, IsLab: true}, "Monday", "09:30", "room-lab1", "LAB1")
	for i := 0; i < 20; i++ {
		ops.mutateRoomSwap(g)
		assert.NotEqual(t, "room-101", g.RoomID)
		assert.NotEqual(t, "room-102", g.RoomID)
	}
}
