package scheduler

import (
	"math/rand"
	"sort"
)

// daySlot is a candidate (day, start_time) pair.
type daySlot struct {
	Day       string
	StartTime string
}

type booking struct {
	Start, End int
}

// PopulationInitializer seeds the GA's first generation.
type PopulationInitializer struct {
	config   GAConfig
	sessions []Session
	rooms    []Room
	lockedBy map[string]LockedAssignment

	labRooms    []Room
	theoryRooms []Room
	timeSlots   []daySlot

	rng *rand.Rand
}

// NewPopulationInitializer precomputes the room categories and the
// filtered time-slot grid once up front.
func NewPopulationInitializer(config GAConfig, sessions []Session, rooms []Room, locked []LockedAssignment, rng *rand.Rand) *PopulationInitializer {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	lockedBy := map[string]LockedAssignment{}
	for _, l := range locked {
		lockedBy[l.SessionKey] = l
	}

	var lab, theory []Room
	for _, r := range rooms {
		if r.IsLabRoom() {
			lab = append(lab, r)
		} else {
			theory = append(theory, r)
		}
	}

	init := &PopulationInitializer{
		config:      config,
		sessions:    sessions,
		rooms:       rooms,
		lockedBy:    lockedBy,
		labRooms:    lab,
		theoryRooms: theory,
		rng:         rng,
	}

	for _, day := range config.WorkingDays {
		for _, start := range config.AllowedStartTimes {
			probeEnd := AddMinutesToTime(start, config.SlotDurationMin)
			if config.IsBlocked(day, start, probeEnd) {
				continue
			}
			init.timeSlots = append(init.timeSlots, daySlot{Day: day, StartTime: start})
		}
	}

	return init
}

func (p *PopulationInitializer) roomsByCategory(isLab bool) []Room {
	if isLab {
		if len(p.labRooms) > 0 {
			return p.labRooms
		}
		return p.rooms
	}
	if len(p.theoryRooms) > 0 {
		return p.theoryRooms
	}
	return p.rooms
}

// CreatePopulation builds populationSize chromosomes: heuristicSeedRatio
// of them via greedy placement, the remainder fully at random.
func (p *PopulationInitializer) CreatePopulation(populationSize int, heuristicSeedRatio float64) []*Chromosome {
	heuristicCount := int(float64(populationSize) * heuristicSeedRatio)
	randomCount := populationSize - heuristicCount

	population := make([]*Chromosome, 0, populationSize)
	for i := 0; i < heuristicCount; i++ {
		population = append(population, p.createHeuristicChromosome())
	}
	for i := 0; i < randomCount; i++ {
		population = append(population, p.createRandomChromosome())
	}
	return population
}

func (p *PopulationInitializer) createRandomChromosome() *Chromosome {
	genes := make([]*Gene, 0, len(p.sessions))
	for _, s := range p.sessions {
		if locked, ok := p.lockedBy[s.SessionKey]; ok {
			genes = append(genes, p.createLockedGene(s, locked))
			continue
		}

		validSlots := p.filterSlotsForDuration(s.DurationMinutes)
		if len(validSlots) == 0 {
			validSlots = p.timeSlots
		}
		slot := validSlots[p.rng.Intn(len(validSlots))]

		candidates := p.roomsByCategory(s.IsLab)
		room := candidates[p.rng.Intn(len(candidates))]

		genes = append(genes, NewGene(s, slot.Day, slot.StartTime, room.RoomID, room.RoomCode))
	}
	return NewChromosome(genes)
}

func (p *PopulationInitializer) createLockedGene(s Session, lock LockedAssignment) *Gene {
	roomID, roomCode := lock.RoomID, ""
	if lock.LockType == LockFull && lock.RoomID != "" {
		for _, r := range p.rooms {
			if r.RoomID == lock.RoomID {
				roomCode = r.RoomCode
				break
			}
		}
	} else {
		candidates := p.roomsByCategory(s.IsLab)
		room := candidates[p.rng.Intn(len(candidates))]
		roomID, roomCode = room.RoomID, room.RoomCode
	}

	g := NewGene(s, lock.Day, lock.StartTime, roomID, roomCode)
	g.IsLocked = true
	g.LockType = lock.LockType
	g.LockedDay = lock.Day
	g.LockedStart = lock.StartTime
	if lock.LockType == LockFull && lock.RoomID != "" {
		g.LockedRoomID = lock.RoomID
	}
	return g
}

func (p *PopulationInitializer) filterSlotsForDuration(durationMinutes int) []daySlot {
	dayEnd := p.config.DayEndMinutes()
	var out []daySlot
	for _, slot := range p.timeSlots {
		end := MustMinutes(slot.StartTime) + durationMinutes
		if end <= dayEnd {
			out = append(out, slot)
		}
	}
	return out
}

// slotCandidate is a fully-formed (day,start,end) triple under
// consideration during heuristic placement.
type slotCandidate struct {
	Day, StartTime, EndTime string
}

func (p *PopulationInitializer) candidatesForDuration(durationMinutes int) []slotCandidate {
	dayEnd := p.config.DayEndMinutes()
	var out []slotCandidate
	for _, slot := range p.timeSlots {
		end := MustMinutes(slot.StartTime) + durationMinutes
		if end <= dayEnd {
			out = append(out, slotCandidate{Day: slot.Day, StartTime: slot.StartTime, EndTime: MinutesToTime(end)})
		}
	}
	return out
}

const heuristicMaxAttempts = 50

func (p *PopulationInitializer) createHeuristicChromosome() *Chromosome {
	teacherSchedule := map[string]map[string][]booking{}
	sectionSchedule := map[string]map[string][]booking{}
	roomSchedule := map[string]map[string][]booking{}

	addBooking := func(schedule map[string]map[string][]booking, id, day string, start, end int) {
		if schedule[id] == nil {
			schedule[id] = map[string][]booking{}
		}
		schedule[id][day] = append(schedule[id][day], booking{Start: start, End: end})
	}

	hasOverlap := func(schedule map[string]map[string][]booking, id, day string, start, end int) bool {
		for _, b := range schedule[id][day] {
			if SlotsOverlap(start, end, b.Start, b.End) {
				return true
			}
		}
		return false
	}

	genes := make([]*Gene, 0, len(p.sessions))
	geneBySession := map[string]*Gene{}

	// Step 1: place locked sessions first and register their bookings.
	remaining := make([]Session, 0, len(p.sessions))
	for _, s := range p.sessions {
		if lock, ok := p.lockedBy[s.SessionKey]; ok {
			g := p.createLockedGene(s, lock)
			genes = append(genes, g)
			geneBySession[s.SessionKey] = g
			start, end := MustMinutes(g.StartTime), MustMinutes(g.EndTime)
			addBooking(teacherSchedule, s.TeacherID, g.Day, start, end)
			addBooking(sectionSchedule, s.SectionID, g.Day, start, end)
			addBooking(roomSchedule, g.RoomID, g.Day, start, end)
			continue
		}
		remaining = append(remaining, s)
	}

	// Step 2: labs first, then longer durations first.
	sort.SliceStable(remaining, func(i, j int) bool {
		if remaining[i].IsLab != remaining[j].IsLab {
			return remaining[i].IsLab
		}
		return remaining[i].DurationMinutes > remaining[j].DurationMinutes
	})

	for _, s := range remaining {
		candidates := p.candidatesForDuration(s.DurationMinutes)
		if len(candidates) == 0 {
			candidates = p.candidatesForDuration(0)
		}

		roomPool := p.roomsByCategory(s.IsLab)
		placed := false

		for attempt := 0; attempt < heuristicMaxAttempts && !placed && len(candidates) > 0; attempt++ {
			cand := candidates[p.rng.Intn(len(candidates))]
			if p.config.IsBlocked(cand.Day, cand.StartTime, cand.EndTime) {
				continue
			}
			start, end := MustMinutes(cand.StartTime), MustMinutes(cand.EndTime)

			shuffled := make([]Room, len(roomPool))
			copy(shuffled, roomPool)
			p.rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

			for _, room := range shuffled {
				if hasOverlap(teacherSchedule, s.TeacherID, cand.Day, start, end) {
					continue
				}
				if hasOverlap(roomSchedule, room.RoomID, cand.Day, start, end) {
					continue
				}
				if hasOverlap(sectionSchedule, s.SectionID, cand.Day, start, end) {
					continue
				}

				g := NewGene(s, cand.Day, cand.StartTime, room.RoomID, room.RoomCode)
				genes = append(genes, g)
				geneBySession[s.SessionKey] = g
				addBooking(teacherSchedule, s.TeacherID, cand.Day, start, end)
				addBooking(sectionSchedule, s.SectionID, cand.Day, start, end)
				addBooking(roomSchedule, room.RoomID, cand.Day, start, end)
				placed = true
				break
			}
		}

		if !placed {
			// Fall back to a single random placement; repair fixes it later.
			var cand slotCandidate
			if len(candidates) > 0 {
				cand = candidates[p.rng.Intn(len(candidates))]
			} else if len(p.timeSlots) > 0 {
				slot := p.timeSlots[p.rng.Intn(len(p.timeSlots))]
				cand = slotCandidate{Day: slot.Day, StartTime: slot.StartTime, EndTime: AddMinutesToTime(slot.StartTime, s.DurationMinutes)}
			}
			room := roomPool[p.rng.Intn(len(roomPool))]
			g := NewGene(s, cand.Day, cand.StartTime, room.RoomID, room.RoomCode)
			genes = append(genes, g)
			geneBySession[s.SessionKey] = g
			start, end := MustMinutes(cand.StartTime), MustMinutes(cand.EndTime)
			addBooking(teacherSchedule, s.TeacherID, cand.Day, start, end)
			addBooking(sectionSchedule, s.SectionID, cand.Day, start, end)
			addBooking(roomSchedule, room.RoomID, cand.Day, start, end)
		}
	}

	// Preserve original session ordering in the resulting chromosome.
	ordered := make([]*Gene, 0, len(p.sessions))
	for _, s := range p.sessions {
		if g, ok := geneBySession[s.SessionKey]; ok {
			ordered = append(ordered, g)
		}
	}

	return NewChromosome(ordered)
}
