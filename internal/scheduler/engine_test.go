package scheduler

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallEngineFixture(seed int64) (GAConfig, []Session, []Room) {
	cfg := DefaultGAConfig()
	cfg.PopulationSize = 12
	cfg.Generations = 20
	cfg.MaxWorkers = 2
	cfg.MinAcceptableFitness = 1
	cfg.RandomSeed = &seed

	sessions := []Session{
		{SessionKey: "math-101-s1", CourseID: "math-101", SectionID: "section-a", TeacherID: "teacher-1", DurationMinutes: 90, SessionNumber: 1},
		{SessionKey: "sci-101-s1", CourseID: "sci-101", SectionID: "section-b", TeacherID: "teacher-2", DurationMinutes: 90, SessionNumber: 1},
	}
	rooms := []Room{
		{RoomID: "room-101", RoomCode: "A101", RoomType: "theory", Capacity: 40},
		{RoomID: "room-102", RoomCode: "A102", RoomType: "theory", Capacity: 40},
	}
	return cfg, sessions, rooms
}

func TestEngineScenarioATrivialSingleSession(t *testing.T) {
	cfg, _, rooms := smallEngineFixture(42)
	sessions := []Session{
		{SessionKey: "math-101-s1", CourseID: "math-101", SectionID: "section-a", TeacherID: "teacher-1", DurationMinutes: 90},
	}
	cfg.PopulationSize = 6
	cfg.Generations = 5

	engine := NewGAEngine(cfg, sessions, rooms, nil, nil, nil, nil)
	result := engine.Run(context.Background())

	require.NotNil(t, result.BestChromosome)
	assert.True(t, result.IsFeasible)
	assert.Len(t, result.BestChromosome.Genes, 1)
}

func TestEngineScenarioBFeasibleRunConverges(t *testing.T) {
	cfg, sessions, rooms := smallEngineFixture(7)

	engine := NewGAEngine(cfg, sessions, rooms, nil, nil, nil, nil)
	result := engine.Run(context.Background())

	assert.True(t, result.IsFeasible)
	assert.Equal(t, 2, result.SessionsScheduled)
	assert.Equal(t, 100.0, result.CoveragePercent)
}

func TestEngineScenarioCLockedAssignmentIsPreserved(t *testing.T) {
	cfg, sessions, rooms := smallEngineFixture(9)
	locked := []LockedAssignment{
		{SessionKey: "math-101-s1", Day: "Monday", StartTime: "09:30", LockType: LockFull, RoomID: "room-101"},
	}

	engine := NewGAEngine(cfg, sessions, rooms, nil, nil, locked, nil)
	result := engine.Run(context.Background())

	var lockedGene *Gene
	for _, g := range result.BestChromosome.Genes {
		if g.SessionKey == "math-101-s1" {
			lockedGene = g
		}
	}
	require.NotNil(t, lockedGene)
	assert.Equal(t, "Monday", lockedGene.Day)
	assert.Equal(t, "09:30", lockedGene.StartTime)
	assert.Equal(t, "room-101", lockedGene.RoomID)
}

func TestEngineScenarioDContextCancellationStopsEarly(t *testing.T) {
	cfg, sessions, rooms := smallEngineFixture(3)
	cfg.Generations = 1000
	cfg.MinAcceptableFitness = 1_000_000

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewGAEngine(cfg, sessions, rooms, nil, nil, nil, nil)
	result := engine.Run(ctx)

	assert.Less(t, result.Generation, cfg.Generations)
}

func TestEngineScenarioEStagnationTriggersEarlyStop(t *testing.T) {
	cfg, sessions, rooms := smallEngineFixture(5)
	cfg.Generations = 1000
	cfg.MinAcceptableFitness = 1_000_000
	cfg.MaxStagnantGenerations = 2

	engine := NewGAEngine(cfg, sessions, rooms, nil, nil, nil, nil)
	result := engine.Run(context.Background())

	assert.Less(t, result.Generation, cfg.Generations)
}

func TestEngineScenarioFDeterministicWithFixedSeed(t *testing.T) {
	cfg, sessions, rooms := smallEngineFixture(21)

	engine1 := NewGAEngine(cfg, sessions, rooms, nil, nil, nil, nil)
	result1 := engine1.Run(context.Background())

	engine2 := NewGAEngine(cfg, sessions, rooms, nil, nil, nil, nil)
	result2 := engine2.Run(context.Background())

	assert.Equal(t, result1.BestFitness, result2.BestFitness)
	assert.Equal(t, result1.Generation, result2.Generation)
}

func TestCreateNextGenerationRoundsElitismCountUp(t *testing.T) {
	cfg, sessions, rooms := smallEngineFixture(1)
	cfg.PopulationSize = 50
	cfg.ElitismRate = 0.05 // 0.05 * 50 = 2.5, must round up to 3, not truncate to 2.

	engine := NewGAEngine(cfg, sessions, rooms, nil, nil, nil, nil)
	population := engine.initializer.CreatePopulation(cfg.PopulationSize, 0.2)
	engine.evaluatePopulation(context.Background(), population)

	sort.SliceStable(population, func(i, j int) bool { return population[i].Fitness > population[j].Fitness })
	eliteFitness := make([]float64, 3)
	for i := range eliteFitness {
		eliteFitness[i] = population[i].Fitness
	}

	next := engine.createNextGeneration(population, 0)

	eliteSurvivors := 0
	for _, want := range eliteFitness {
		for _, c := range next {
			if c.Fitness == want {
				eliteSurvivors++
				break
			}
		}
	}
	assert.GreaterOrEqual(t, eliteSurvivors, 3, "elitism rate 0.05 over a population of 50 must keep at least ceil(2.5)=3 elites")
}

func TestEngineRecordsPerGenerationHistory(t *testing.T) {
	cfg, sessions, rooms := smallEngineFixture(2)
	cfg.MinAcceptableFitness = 1_000_000
	cfg.MaxStagnantGenerations = 3

	engine := NewGAEngine(cfg, sessions, rooms, nil, nil, nil, nil)
	result := engine.Run(context.Background())

	assert.Len(t, result.BestFitnessHist, result.Generation)
	assert.Len(t, result.AvgFitnessHist, result.Generation)
	assert.Len(t, result.GenerationTimes, result.Generation)
	assert.Greater(t, result.TotalTime, time.Duration(0))
}
