package scheduler

import "math/rand"

// GeneticOperators implements crossover and mutation over chromosomes.
type GeneticOperators struct {
	config GAConfig
	rooms  []Room

	labRooms    []Room
	theoryRooms []Room

	rng *rand.Rand
}

// NewGeneticOperators precomputes the room category lists.
func NewGeneticOperators(config GAConfig, rooms []Room, rng *rand.Rand) *GeneticOperators {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	var lab, theory []Room
	for _, r := range rooms {
		if r.IsLabRoom() {
			lab = append(lab, r)
		} else {
			theory = append(theory, r)
		}
	}
	return &GeneticOperators{config: config, rooms: rooms, labRooms: lab, theoryRooms: theory, rng: rng}
}

func (o *GeneticOperators) roomsByCategory(isLab bool) []Room {
	if isLab {
		if len(o.labRooms) > 0 {
			return o.labRooms
		}
		return o.rooms
	}
	if len(o.theoryRooms) > 0 {
		return o.theoryRooms
	}
	return o.rooms
}

// Crossover produces two children from two parents. With probability
// DayBasedCrossoverPct it uses day-based crossover, otherwise uniform
// crossover — a genuine probabilistic switch per call (see DESIGN.md for
// why this departs from an always-day-based call site).
func (o *GeneticOperators) Crossover(parent1, parent2 *Chromosome) (*Chromosome, *Chromosome) {
	if o.rng.Float64() < o.config.DayBasedCrossoverPct {
		return o.dayBasedCrossover(parent1, parent2)
	}
	return o.uniformCrossover(parent1, parent2)
}

func (o *GeneticOperators) dayBasedCrossover(parent1, parent2 *Chromosome) (*Chromosome, *Chromosome) {
	days := make([]string, len(o.config.WorkingDays))
	copy(days, o.config.WorkingDays)
	o.rng.Shuffle(len(days), func(i, j int) { days[i], days[j] = days[j], days[i] })

	split := len(days) / 2
	daysFromP1 := map[string]bool{}
	daysFromP2 := map[string]bool{}
	for i, d := range days {
		if i < split {
			daysFromP1[d] = true
		} else {
			daysFromP2[d] = true
		}
	}

	byKeyP1 := geneIndexBySession(parent1)
	byKeyP2 := geneIndexBySession(parent2)

	child1Genes := map[string]*Gene{}
	for _, g := range parent1.Genes {
		if daysFromP1[g.Day] {
			child1Genes[g.SessionKey] = g.Clone()
		}
	}
	for _, g := range parent2.Genes {
		if daysFromP2[g.Day] {
			if _, exists := child1Genes[g.SessionKey]; !exists {
				child1Genes[g.SessionKey] = g.Clone()
			}
		}
	}
	// Completion sweep: anything still missing is supplied from parent 1.
	for key, g := range byKeyP1 {
		if _, ok := child1Genes[key]; !ok {
			child1Genes[key] = g.Clone()
		}
	}

	child2Genes := map[string]*Gene{}
	for _, g := range parent2.Genes {
		if daysFromP1[g.Day] {
			child2Genes[g.SessionKey] = g.Clone()
		}
	}
	for _, g := range parent1.Genes {
		if daysFromP2[g.Day] {
			if _, exists := child2Genes[g.SessionKey]; !exists {
				child2Genes[g.SessionKey] = g.Clone()
			}
		}
	}
	// Completion sweep: symmetric with child 1, filled from parent 2.
	for key, g := range byKeyP2 {
		if _, ok := child2Genes[key]; !ok {
			child2Genes[key] = g.Clone()
		}
	}

	return NewChromosome(orderBySessionKeys(parent1, child1Genes)),
		NewChromosome(orderBySessionKeys(parent1, child2Genes))
}

func (o *GeneticOperators) uniformCrossover(parent1, parent2 *Chromosome) (*Chromosome, *Chromosome) {
	n := len(parent1.Genes)
	child1 := make([]*Gene, n)
	child2 := make([]*Gene, n)
	for i := 0; i < n; i++ {
		if o.rng.Float64() < 0.5 {
			child1[i] = parent1.Genes[i].Clone()
			child2[i] = parent2.Genes[i].Clone()
		} else {
			child1[i] = parent2.Genes[i].Clone()
			child2[i] = parent1.Genes[i].Clone()
		}
	}
	return NewChromosome(child1), NewChromosome(child2)
}

func geneIndexBySession(c *Chromosome) map[string]*Gene {
	out := make(map[string]*Gene, len(c.Genes))
	for _, g := range c.Genes {
		out[g.SessionKey] = g
	}
	return out
}

// orderBySessionKeys rebuilds a gene slice following reference's session
// ordering, so every chromosome keeps a stable, comparable gene order.
func orderBySessionKeys(reference *Chromosome, byKey map[string]*Gene) []*Gene {
	out := make([]*Gene, 0, len(reference.Genes))
	for _, g := range reference.Genes {
		if gene, ok := byKey[g.SessionKey]; ok {
			out = append(out, gene)
		}
	}
	return out
}

// Mutate copies chromosome and, for each gene that is not fully locked,
// applies one of four mutation kinds with probability given by the
// generation's decayed mutation rate. A gene under a time-only lock only
// ever changes room.
func (o *GeneticOperators) Mutate(chromosome *Chromosome, generation int) *Chromosome {
	rate := o.config.GetMutationRate(generation)
	mutated := chromosome.Copy()

	kinds := []string{"time_swap", "day_swap", "room_swap", "time_shift"}

	for _, g := range mutated.Genes {
		if !g.CanMutateTime() && !g.CanMutateRoom() {
			continue
		}
		if o.rng.Float64() >= rate {
			continue
		}
		kind := kinds[o.rng.Intn(len(kinds))]
		switch kind {
		case "time_swap":
			if g.CanMutateTime() {
				o.mutateTimeSwap(g)
			}
		case "day_swap":
			if g.CanMutateTime() {
				o.mutateDaySwap(g)
			}
		case "room_swap":
			if g.CanMutateRoom() {
				o.mutateRoomSwap(g)
			}
		case "time_shift":
			if g.CanMutateTime() {
				o.mutateTimeShift(g)
			}
		}
	}

	return mutated
}

func (o *GeneticOperators) mutateTimeSwap(g *Gene) {
	candidates := o.startTimesFitting(g.DurationMinutes, g.StartTime)
	if len(candidates) == 0 {
		return
	}
	g.UpdateTime(g.Day, candidates[o.rng.Intn(len(candidates))])
}

func (o *GeneticOperators) mutateDaySwap(g *Gene) {
	candidates := make([]string, 0, len(o.config.WorkingDays))
	for _, d := range o.config.WorkingDays {
		if d != g.Day {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		return
	}
	g.UpdateTime(candidates[o.rng.Intn(len(candidates))], g.StartTime)
}

func (o *GeneticOperators) mutateRoomSwap(g *Gene) {
	pool := o.roomsByCategory(g.IsLab)
	candidates := make([]Room, 0, len(pool))
	for _, r := range pool {
		if r.RoomID != g.RoomID {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		for _, r := range o.rooms {
			if r.RoomID != g.RoomID {
				candidates = append(candidates, r)
			}
		}
	}
	if len(candidates) == 0 {
		return
	}
	room := candidates[o.rng.Intn(len(candidates))]
	g.UpdateRoom(room.RoomID, room.RoomCode)
}

func (o *GeneticOperators) mutateTimeShift(g *Gene) {
	idx := -1
	for i, t := range o.config.AllowedStartTimes {
		if t == g.StartTime {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	dayEnd := o.config.DayEndMinutes()
	tryIdx := func(newIdx int) bool {
		if newIdx < 0 || newIdx >= len(o.config.AllowedStartTimes) {
			return false
		}
		newStart := o.config.AllowedStartTimes[newIdx]
		if MustMinutes(newStart)+g.DurationMinutes > dayEnd {
			return false
		}
		g.UpdateTime(g.Day, newStart)
		return true
	}

	if o.rng.Intn(2) == 0 {
		if tryIdx(idx + 1) {
			return
		}
		tryIdx(idx - 1)
		return
	}
	if tryIdx(idx - 1) {
		return
	}
	tryIdx(idx + 1)
}

func (o *GeneticOperators) startTimesFitting(durationMinutes int, exclude string) []string {
	dayEnd := o.config.DayEndMinutes()
	var out []string
	for _, t := range o.config.AllowedStartTimes {
		if t == exclude {
			continue
		}
		if MustMinutes(t)+durationMinutes <= dayEnd {
			out = append(out, t)
		}
	}
	return out
}
