package scheduler

import "math/rand"

// Bounded repair caps keep a pathological instance from looping forever
// on a per-resource search (see DESIGN.md).
const (
	maxRepairPasses     = 3
	maxTotalRepairSteps = 500
)

// RepairMechanism fixes constraint violations in a chromosome in place,
// bounded by the global pass/attempt caps above.
type RepairMechanism struct {
	config GAConfig
	rooms  []Room

	labRooms    []Room
	theoryRooms []Room

	rng *rand.Rand
}

// NewRepairMechanism precomputes room categories.
func NewRepairMechanism(config GAConfig, rooms []Room, rng *rand.Rand) *RepairMechanism {
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
	return &RepairMechanism{config: config, rooms: rooms, labRooms: lab, theoryRooms: theory, rng: rng}
}

func (r *RepairMechanism) roomsByCategory(isLab bool) []Room {
	if isLab {
		if len(r.labRooms) > 0 {
			return r.labRooms
		}
		return r.rooms
	}
	if len(r.theoryRooms) > 0 {
		return r.theoryRooms
	}
	return r.rooms
}

// Repair attempts to fix chromosome in place, within maxRepairPasses
// full sequences through config.RepairOrder and a global budget of
// maxTotalRepairSteps search steps shared across all passes. Lock
// shadows are re-applied before every pass. Returns true as soon as one
// pass runs every RepairOrder step without a remaining problem, false
// once the passes or the step budget run out. Only the categories named
// in RepairOrder are looked at: teacher day-offs, teacher blocked slots
// and end times past the end of the day are not checked, so a true
// result does not guarantee the evaluator finds the chromosome feasible.
func (r *RepairMechanism) Repair(chromosome *Chromosome) bool {
	stepsUsed := 0

	for pass := 0; pass < maxRepairPasses; pass++ {
		for _, g := range chromosome.Genes {
			g.RestoreLock()
		}

		allOK := true
		for _, constraintType := range r.config.RepairOrder {
			budget := maxTotalRepairSteps - stepsUsed
			if budget <= 0 {
				return false
			}

			var used int
			var ok bool
			switch constraintType {
			case "blocked_windows":
				ok, used = r.repairBlockedWindows(chromosome, budget)
			case "invalid_start_times":
				ok = r.repairInvalidStartTimes(chromosome)
			case "lab_contiguity":
				ok = r.repairLabContiguity(chromosome)
			case "teacher_conflicts":
				ok, used = r.repairResourceConflicts(chromosome, "teacher", budget)
			case "room_conflicts":
				ok, used = r.repairResourceConflicts(chromosome, "room", budget)
			case "section_conflicts":
				ok, used = r.repairResourceConflicts(chromosome, "section", budget)
			default:
				ok = true
			}
			stepsUsed += used

			if !ok {
				allOK = false
				break
			}
		}

		if allOK {
			for _, g := range chromosome.Genes {
				g.RestoreLock()
			}
			return true
		}
	}

	return false
}

func (r *RepairMechanism) repairBlockedWindows(chromosome *Chromosome, budget int) (bool, int) {
	used := 0
	for _, g := range chromosome.Genes {
		if used >= budget {
			return false, used
		}
		if !r.config.IsBlocked(g.Day, g.StartTime, g.EndTime) {
			continue
		}
		ok, steps := r.findAlternativeSlot(g, chromosome, budget-used)
		used += steps
		if !ok {
			return false, used
		}
	}
	return true, used
}

func (r *RepairMechanism) repairInvalidStartTimes(chromosome *Chromosome) bool {
	for _, g := range chromosome.Genes {
		if r.config.IsValidStartTime(g.StartTime) {
			continue
		}
		g.UpdateTime(g.Day, r.findNearestStartTime(g.StartTime))
	}
	return true
}

func (r *RepairMechanism) repairLabContiguity(chromosome *Chromosome) bool {
	for _, g := range chromosome.Genes {
		if g.IsLab && g.DurationMinutes != 180 {
			g.DurationMinutes = 180
			g.UpdateTime(g.Day, g.StartTime)
		}
	}
	return true
}

func (r *RepairMechanism) repairResourceConflicts(chromosome *Chromosome, resourceType string, budget int) (bool, int) {
	used := 0
	conflicts := r.findResourceConflicts(chromosome, resourceType)
	if len(conflicts) == 0 {
		return true, used
	}

	for len(conflicts) > 0 && used < budget {
		pair := conflicts[r.rng.Intn(len(conflicts))]

		var target *Gene
		for _, gene := range pair {
			if !gene.IsLocked {
				target = gene
				break
			}
		}
		if target == nil {
			// Both members of the pair are locked: relocating either would
			// be undone by the next RestoreLock() pass, so this conflict
			// cannot be resolved this round.
			return false, used
		}

		idx := -1
		for i, g := range chromosome.Genes {
			if g.SessionKey == target.SessionKey {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false, used
		}

		ok, steps := r.findAlternativeSlot(chromosome.Genes[idx], chromosome, budget-used)
		used += steps
		if !ok {
			return false, used
		}

		conflicts = r.findResourceConflicts(chromosome, resourceType)
	}

	return len(conflicts) == 0, used
}

func (r *RepairMechanism) findResourceConflicts(chromosome *Chromosome, resourceType string) [][2]*Gene {
	type key struct{ id, day string }
	byKey := map[key][]*Gene{}
	var order []key
	for _, g := range chromosome.Genes {
		var id string
		switch resourceType {
		case "teacher":
			id = g.TeacherID
		case "room":
			id = g.RoomID
		default:
			id = g.SectionID
		}
		k := key{id: id, day: g.Day}
		if _, seen := byKey[k]; !seen {
			order = append(order, k)
		}
		byKey[k] = append(byKey[k], g)
	}

	var conflicts [][2]*Gene
	for _, k := range order {
		genes := byKey[k]
		for i := 0; i < len(genes); i++ {
			for j := i + 1; j < len(genes); j++ {
				if SlotsOverlapClock(genes[i].StartTime, genes[i].EndTime, genes[j].StartTime, genes[j].EndTime) {
					conflicts = append(conflicts, [2]*Gene{genes[i], genes[j]})
				}
			}
		}
	}
	return conflicts
}

// findAlternativeSlot tries up to budget (capped by MaxRepairAttempts)
// random (day, start, room) triples until one produces no teacher/room/
// section conflict with the rest of the chromosome.
func (r *RepairMechanism) findAlternativeSlot(gene *Gene, chromosome *Chromosome, budget int) (bool, int) {
	maxAttempts := r.config.MaxRepairAttempts
	if budget < maxAttempts {
		maxAttempts = budget
	}
	if maxAttempts <= 0 {
		return false, 0
	}

	pool := r.roomsByCategory(gene.IsLab)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		newDay := r.config.WorkingDays[r.rng.Intn(len(r.config.WorkingDays))]
		newStart := r.config.AllowedStartTimes[r.rng.Intn(len(r.config.AllowedStartTimes))]
		newEnd := AddMinutesToTime(newStart, gene.DurationMinutes)

		if r.config.IsBlocked(newDay, newStart, newEnd) {
			continue
		}

		room := pool[r.rng.Intn(len(pool))]

		hasConflict := false
		for _, other := range chromosome.Genes {
			if other.SessionKey == gene.SessionKey {
				continue
			}
			if other.Day != newDay {
				continue
			}
			if !SlotsOverlapClock(other.StartTime, other.EndTime, newStart, newEnd) {
				continue
			}
			if other.TeacherID == gene.TeacherID || other.RoomID == room.RoomID || other.SectionID == gene.SectionID {
				hasConflict = true
				break
			}
		}

		if !hasConflict {
			gene.UpdateTime(newDay, newStart)
			gene.UpdateRoom(room.RoomID, room.RoomCode)
			return true, attempt + 1
		}
	}

	return false, maxAttempts
}

func (r *RepairMechanism) findNearestStartTime(current string) string {
	currentMinutes := MustMinutes(current)
	minDiff := int(^uint(0) >> 1)
	nearest := r.config.AllowedStartTimes[0]

	for _, allowed := range r.config.AllowedStartTimes {
		diff := MustMinutes(allowed) - currentMinutes
		if diff < 0 {
			diff = -diff
		}
		if diff < minDiff {
			minDiff = diff
			nearest = allowed
		}
	}

	return nearest
}
