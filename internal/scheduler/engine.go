package scheduler

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// GAResult is everything a caller needs out of a completed run.
type GAResult struct {
	BestChromosome    *Chromosome
	BestFitness       float64
	Generation        int
	TotalTime         time.Duration
	IsFeasible        bool
	HardViolations    map[string]int
	BestFitnessHist   []float64
	AvgFitnessHist    []float64
	GenerationTimes   []time.Duration
	FinalPopulation   int
	SessionsScheduled int
	CoveragePercent   float64
}

// GAEngine owns the full GA lifecycle: initialization, generational
// evolution, and convergence reporting.
type GAEngine struct {
	config GAConfig

	sessions []Session
	rooms    []Room

	initializer *PopulationInitializer
	operators   *GeneticOperators
	repairer    *RepairMechanism
	evaluator   *FitnessEvaluator

	logger *zap.Logger
	rng    *rand.Rand
}

// NewGAEngine wires every collaborator the engine drives.
func NewGAEngine(
	config GAConfig,
	sessions []Session,
	rooms []Room,
	teacherConstraints []TeacherConstraint,
	roomConstraints []RoomConstraint,
	locked []LockedAssignment,
	logger *zap.Logger,
) *GAEngine {
	if logger == nil {
		logger = zap.NewNop()
	}

	var seed int64 = time.Now().UnixNano()
	if config.RandomSeed != nil {
		seed = *config.RandomSeed
	}
	rng := rand.New(rand.NewSource(seed))

	return &GAEngine{
		config:      config,
		sessions:    sessions,
		rooms:       rooms,
		initializer: NewPopulationInitializer(config, sessions, rooms, locked, rng),
		operators:   NewGeneticOperators(config, rooms, rng),
		repairer:    NewRepairMechanism(config, rooms, rng),
		evaluator:   NewFitnessEvaluator(config, rooms, teacherConstraints),
		logger:      logger,
		rng:         rng,
	}
}

const defaultHeuristicSeedRatio = 0.20

// Run executes the full GA loop up to config.Generations generations,
// stopping early on target fitness or stagnation. ctx is checked at
// generation boundaries only.
func (e *GAEngine) Run(ctx context.Context) *GAResult {
	start := time.Now()

	populationSize := e.config.PopulationSize
	maxGenerations := e.config.Generations

	population := e.initializer.CreatePopulation(populationSize, defaultHeuristicSeedRatio)
	e.evaluatePopulation(ctx, population)

	best := bestOf(population)
	bestFitness := best.Fitness

	var bestHist, avgHist []float64
	var genTimes []time.Duration
	stagnantGenerations := 0
	generation := 0

	for generation = 0; generation < maxGenerations; generation++ {
		genStart := time.Now()

		select {
		case <-ctx.Done():
			generation++
			genTimes = append(genTimes, time.Since(genStart))
			return e.buildResult(best, bestFitness, generation, start, bestHist, avgHist, genTimes, len(population))
		default:
		}

		next := e.createNextGeneration(population, generation)
		e.evaluatePopulation(ctx, next)

		candidate := bestOf(next)
		if candidate.Fitness > bestFitness {
			best = candidate
			bestFitness = candidate.Fitness
			stagnantGenerations = 0
		} else {
			stagnantGenerations++
		}

		bestHist = append(bestHist, bestFitness)
		avgHist = append(avgHist, averageFitness(next))
		genTimes = append(genTimes, time.Since(genStart))

		if generation%e.config.LogInterval == 0 {
			e.logger.Info("ga_generation",
				zap.Int("generation", generation),
				zap.Float64("best_fitness", bestFitness),
				zap.Int("stagnant_generations", stagnantGenerations),
			)
		}

		population = next

		if bestFitness >= e.config.MinAcceptableFitness {
			generation++
			break
		}
		if stagnantGenerations >= e.config.MaxStagnantGenerations {
			generation++
			break
		}
	}

	return e.buildResult(best, bestFitness, generation, start, bestHist, avgHist, genTimes, len(population))
}

func (e *GAEngine) buildResult(best *Chromosome, bestFitness float64, generation int, start time.Time, bestHist, avgHist []float64, genTimes []time.Duration, finalPopSize int) *GAResult {
	stats := best.Statistics(len(e.sessions))
	return &GAResult{
		BestChromosome:    best,
		BestFitness:       bestFitness,
		Generation:        generation,
		TotalTime:         time.Since(start),
		IsFeasible:        best.IsFeasible,
		HardViolations:    best.HardViolations,
		BestFitnessHist:   bestHist,
		AvgFitnessHist:    avgHist,
		GenerationTimes:   genTimes,
		FinalPopulation:   finalPopSize,
		SessionsScheduled: stats.ScheduledCount,
		CoveragePercent:   stats.CoveragePercent,
	}
}

func (e *GAEngine) createNextGeneration(population []*Chromosome, generation int) []*Chromosome {
	ranked := make([]*Chromosome, len(population))
	copy(ranked, population)
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Fitness > ranked[j].Fitness })

	eliteCount := int(math.Ceil(float64(len(population)) * e.config.ElitismRate))
	if eliteCount < 1 {
		eliteCount = 1
	}

	next := make([]*Chromosome, 0, len(population))
	for i := 0; i < eliteCount && i < len(ranked); i++ {
		next = append(next, ranked[i].Copy())
	}

	for len(next) < len(population) {
		parent1 := e.tournamentSelect(population)
		parent2 := e.tournamentSelect(population)

		var child1, child2 *Chromosome
		if e.rng.Float64() < e.config.CrossoverRate {
			child1, child2 = e.operators.Crossover(parent1, parent2)
		} else {
			child1, child2 = parent1.Copy(), parent2.Copy()
		}

		child1 = e.operators.Mutate(child1, generation)
		child2 = e.operators.Mutate(child2, generation)

		if e.repairer.Repair(child1) {
			next = append(next, child1)
		} else {
			next = append(next, parent1.Copy())
		}
		if len(next) < len(population) {
			if e.repairer.Repair(child2) {
				next = append(next, child2)
			} else {
				next = append(next, parent2.Copy())
			}
		}
	}

	return next[:len(population)]
}

func (e *GAEngine) tournamentSelect(population []*Chromosome) *Chromosome {
	size := e.config.TournamentSize
	if size > len(population) {
		size = len(population)
	}

	indices := e.rng.Perm(len(population))[:size]
	best := population[indices[0]]
	for _, idx := range indices[1:] {
		if population[idx].Fitness > best.Fitness {
			best = population[idx]
		}
	}
	return best
}

// evaluatePopulation scores every chromosome, in parallel up to
// MaxWorkers when ParallelFitnessEvaluation is enabled, sequentially
// otherwise.
func (e *GAEngine) evaluatePopulation(ctx context.Context, population []*Chromosome) {
	if !e.config.ParallelFitnessEvaluation || e.config.MaxWorkers <= 1 {
		for _, c := range population {
			e.evaluator.Evaluate(c)
		}
		return
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(e.config.MaxWorkers)

	for _, c := range population {
		c := c
		g.Go(func() error {
			e.evaluator.Evaluate(c)
			return nil
		})
	}
	_ = g.Wait()
}

func bestOf(population []*Chromosome) *Chromosome {
	best := population[0]
	for _, c := range population[1:] {
		if c.Fitness > best.Fitness {
			best = c
		}
	}
	return best
}

func averageFitness(population []*Chromosome) float64 {
	if len(population) == 0 {
		return 0
	}
	total := 0.0
	for _, c := range population {
		total += c.Fitness
	}
	return total / float64(len(population))
}
