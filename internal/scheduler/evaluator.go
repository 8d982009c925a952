package scheduler

import (
	"math"
	"sort"
	"strings"
)

// FitnessEvaluator scores a chromosome: hard constraints determine
// feasibility, soft constraints determine the 0-1000 fitness value.
type FitnessEvaluator struct {
	config GAConfig

	rooms         map[string]Room
	roomTypes     map[string]string
	roomBuildings map[string]string

	teacherBlockedSlots map[string][]blockedInterval
	teacherDayOffs      map[string]map[string]bool
}

// NewFitnessEvaluator precomputes the room/constraint lookup tables.
func NewFitnessEvaluator(config GAConfig, rooms []Room, teacherConstraints []TeacherConstraint) *FitnessEvaluator {
	e := &FitnessEvaluator{
		config:              config,
		rooms:               map[string]Room{},
		roomTypes:           map[string]string{},
		roomBuildings:       map[string]string{},
		teacherBlockedSlots: map[string][]blockedInterval{},
		teacherDayOffs:      map[string]map[string]bool{},
	}
	for _, r := range rooms {
		e.rooms[r.RoomID] = r
		e.roomTypes[r.RoomID] = r.RoomType
		e.roomBuildings[r.RoomID] = r.Building()
	}
	for _, tc := range teacherConstraints {
		if !tc.IsHard {
			continue
		}
		switch tc.Type {
		case ConstraintBlockedSlot:
			e.teacherBlockedSlots[tc.TeacherID] = append(e.teacherBlockedSlots[tc.TeacherID], blockedInterval{
				Day: tc.Day, StartTime: tc.StartTime, EndTime: tc.EndTime,
			})
		case ConstraintDayOff:
			days := tc.Days
			if len(days) == 0 && tc.Day != "" {
				days = []string{tc.Day}
			}
			set := e.teacherDayOffs[tc.TeacherID]
			if set == nil {
				set = map[string]bool{}
				e.teacherDayOffs[tc.TeacherID] = set
			}
			for _, d := range days {
				set[d] = true
			}
		}
	}
	return e
}

// Evaluate computes hard violations and, if feasible, the weighted soft
// score, writing both onto the chromosome and returning the fitness.
func (e *FitnessEvaluator) Evaluate(c *Chromosome) float64 {
	violations, conflicts := e.checkHardConstraints(c)
	c.HardViolations = violations
	c.ConflictDetails = conflicts

	total := 0
	for _, n := range violations {
		total += n
	}
	c.IsFeasible = total == 0

	if !c.IsFeasible {
		c.Fitness = 0.0
		c.SoftScores = nil
		return 0.0
	}

	scores := e.calculateSoftScores(c)
	c.SoftScores = scores

	categories := make([]string, 0, len(scores))
	for k := range scores {
		categories = append(categories, k)
	}
	sort.Strings(categories)
	fitness := 0.0
	for _, k := range categories {
		fitness += scores[k]
	}
	c.Fitness = fitness
	return fitness
}

func (e *FitnessEvaluator) checkHardConstraints(c *Chromosome) (map[string]int, []string) {
	violations := map[string]int{
		"teacher_overlap":      0,
		"room_overlap":         0,
		"section_overlap":      0,
		"invalid_time_slots":   0,
		"invalid_durations":    0,
		"blocked_windows":      0,
		"lab_contiguity":       0,
		"missing_assignments":  0,
		"teacher_blocked_slots": 0,
		"teacher_day_offs":     0,
		"lock_violations":      0,
	}
	var conflicts []string

	for _, g := range c.Genes {
		if g.Day == "" || g.StartTime == "" || g.RoomID == "" {
			violations["missing_assignments"]++
		}
	}
	if violations["missing_assignments"] > 0 {
		return violations, conflicts
	}

	for _, g := range c.Genes {
		if !e.config.IsValidStartTime(g.StartTime) {
			violations["invalid_time_slots"]++
		}
		if MustMinutes(g.EndTime) > e.config.DayEndMinutes() {
			violations["invalid_time_slots"]++
		}
		if !e.config.IsValidDuration(g.DurationMinutes) {
			violations["invalid_durations"]++
		}
		if e.config.IsBlocked(g.Day, g.StartTime, g.EndTime) {
			violations["blocked_windows"]++
		}
		if g.IsLab && g.DurationMinutes != 180 {
			violations["lab_contiguity"]++
		}
	}

	teacherOverlaps, tc := e.checkResourceOverlaps(c, "teacher")
	roomOverlaps, rc := e.checkResourceOverlaps(c, "room")
	sectionOverlaps, sc := e.checkResourceOverlaps(c, "section")
	violations["teacher_overlap"] = teacherOverlaps
	violations["room_overlap"] = roomOverlaps
	violations["section_overlap"] = sectionOverlaps
	conflicts = append(conflicts, tc...)
	conflicts = append(conflicts, rc...)
	conflicts = append(conflicts, sc...)

	violations["teacher_blocked_slots"] = e.checkTeacherBlockedSlots(c)
	violations["teacher_day_offs"] = e.checkTeacherDayOffs(c)
	violations["lock_violations"] = e.checkLockViolations(c)

	return violations, conflicts
}

func (e *FitnessEvaluator) checkResourceOverlaps(c *Chromosome, resourceType string) (int, []string) {
	type key struct{ id, day string }
	byKey := map[key][]*Gene{}
	for _, g := range c.Genes {
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
		byKey[k] = append(byKey[k], g)
	}

	count := 0
	var details []string
	for _, genes := range byKey {
		for i := 0; i < len(genes); i++ {
			for j := i + 1; j < len(genes); j++ {
				if SlotsOverlapClock(genes[i].StartTime, genes[i].EndTime, genes[j].StartTime, genes[j].EndTime) {
					count++
					details = append(details, resourceType+" overlap: "+genes[i].SessionKey+" vs "+genes[j].SessionKey)
				}
			}
		}
	}
	return count, details
}

func (e *FitnessEvaluator) checkTeacherBlockedSlots(c *Chromosome) int {
	count := 0
	for _, g := range c.Genes {
		for _, b := range e.teacherBlockedSlots[g.TeacherID] {
			if b.Day != g.Day {
				continue
			}
			if SlotsOverlapClock(g.StartTime, g.EndTime, b.StartTime, b.EndTime) {
				count++
			}
		}
	}
	return count
}

func (e *FitnessEvaluator) checkTeacherDayOffs(c *Chromosome) int {
	count := 0
	for _, g := range c.Genes {
		if e.teacherDayOffs[g.TeacherID][g.Day] {
			count++
		}
	}
	return count
}

func (e *FitnessEvaluator) checkLockViolations(c *Chromosome) int {
	count := 0
	for _, g := range c.Genes {
		if !g.IsLocked {
			continue
		}
		if g.Day != g.LockedDay || g.StartTime != g.LockedStart {
			count++
		}
		if g.LockType == LockFull && g.LockedRoomID != "" && g.RoomID != g.LockedRoomID {
			count++
		}
	}
	return count
}

func (e *FitnessEvaluator) calculateSoftScores(c *Chromosome) map[string]float64 {
	return map[string]float64{
		"even_distribution":         e.scoreEvenDistribution(c),
		"minimize_student_gaps":     e.scoreMinimizeGaps(c, "section"),
		"minimize_teacher_gaps":     e.scoreMinimizeGaps(c, "teacher"),
		"minimize_early_classes":    e.scoreTimePreference(c, "early", e.config.EarlyClassThreshold),
		"minimize_late_classes":     e.scoreTimePreference(c, "late", e.config.LateClassThreshold),
		"room_type_match":           e.scoreRoomTypeMatch(c),
		"minimize_building_changes": e.scoreBuildingChanges(c),
		"compact_schedule":          e.scoreCompactness(c),
		"room_utilization":          e.scoreRoomUtilization(c),
	}
}

func stddevMean(counts []int) (stddev, mean float64) {
	n := len(counts)
	if n == 0 {
		return 0, 0
	}
	sort.Ints(counts)
	sum := 0
	for _, c := range counts {
		sum += c
	}
	mean = float64(sum) / float64(n)
	var variance float64
	for _, c := range counts {
		d := float64(c) - mean
		variance += d * d
	}
	variance /= float64(n)
	return math.Sqrt(variance), mean
}

func (e *FitnessEvaluator) scoreEvenDistribution(c *Chromosome) float64 {
	perDay := map[string]int{}
	for _, day := range e.config.WorkingDays {
		perDay[day] = 0
	}
	for _, g := range c.Genes {
		perDay[g.Day]++
	}
	counts := make([]int, 0, len(perDay))
	for _, v := range perDay {
		counts = append(counts, v)
	}
	stddev, mean := stddevMean(counts)
	normalized := 0.0
	if mean > 0 {
		normalized = stddev / mean
	}
	score := 1 - normalized
	if score < 0 {
		score = 0
	}
	return score * e.config.WeightEvenDistribution
}

func (e *FitnessEvaluator) scoreMinimizeGaps(c *Chromosome, resourceType string) float64 {
	type key struct{ id, day string }
	groups := map[key][]*Gene{}
	resourceIDs := map[string]bool{}

	for _, g := range c.Genes {
		var id string
		if resourceType == "section" {
			id = g.SectionID
		} else {
			id = g.TeacherID
		}
		resourceIDs[id] = true
		k := key{id: id, day: g.Day}
		groups[k] = append(groups[k], g)
	}

	totalPenalty := 0.0
	for _, genes := range groups {
		sort.Slice(genes, func(i, j int) bool {
			return MustMinutes(genes[i].StartTime) < MustMinutes(genes[j].StartTime)
		})
		for i := 0; i+1 < len(genes); i++ {
			gap := MustMinutes(genes[i+1].StartTime) - MustMinutes(genes[i].EndTime)
			if gap > e.config.MaxAcceptableGapMin {
				totalPenalty += float64(gap-e.config.MaxAcceptableGapMin) / 60.0
			}
		}
	}

	resourceCount := len(resourceIDs)
	if resourceCount == 0 {
		resourceCount = 1
	}
	avgPenalty := totalPenalty / float64(resourceCount)
	normalized := math.Min(avgPenalty/3.0, 1.0)
	score := 1 - normalized

	weight := e.config.WeightMinimizeGapsTeachers
	if resourceType == "section" {
		weight = e.config.WeightMinimizeGapsStudents
	}
	return score * weight
}

func (e *FitnessEvaluator) scoreTimePreference(c *Chromosome, kind, threshold string) float64 {
	if len(c.Genes) == 0 {
		weight := e.config.WeightMinimizeEarlyClasses
		if kind == "late" {
			weight = e.config.WeightMinimizeLateClasses
		}
		return weight
	}
	thresholdMin := MustMinutes(threshold)
	violations := 0
	for _, g := range c.Genes {
		start := MustMinutes(g.StartTime)
		if kind == "early" && start < thresholdMin {
			violations++
		}
		if kind == "late" && start >= thresholdMin {
			violations++
		}
	}
	ratio := float64(violations) / float64(len(c.Genes))
	score := 1 - ratio

	weight := e.config.WeightMinimizeEarlyClasses
	if kind == "late" {
		weight = e.config.WeightMinimizeLateClasses
	}
	return score * weight
}

func (e *FitnessEvaluator) scoreRoomTypeMatch(c *Chromosome) float64 {
	if len(c.Genes) == 0 {
		return e.config.WeightRoomTypeMatch
	}
	matches := 0
	for _, g := range c.Genes {
		roomType := e.roomTypes[g.RoomID]
		isLabRoom := strings.Contains(strings.ToLower(roomType), "lab")
		if g.IsLab == isLabRoom {
			matches++
		}
	}
	score := float64(matches) / float64(len(c.Genes))
	return score * e.config.WeightRoomTypeMatch
}

func (e *FitnessEvaluator) scoreBuildingChanges(c *Chromosome) float64 {
	type key struct{ section, day string }
	groups := map[key][]*Gene{}
	sectionDays := map[key]bool{}

	for _, g := range c.Genes {
		k := key{section: g.SectionID, day: g.Day}
		groups[k] = append(groups[k], g)
		sectionDays[k] = true
	}

	totalChanges := 0
	for _, genes := range groups {
		sort.Slice(genes, func(i, j int) bool {
			return MustMinutes(genes[i].StartTime) < MustMinutes(genes[j].StartTime)
		})
		for i := 0; i+1 < len(genes); i++ {
			if e.roomBuildings[genes[i].RoomID] != e.roomBuildings[genes[i+1].RoomID] {
				totalChanges++
			}
		}
	}

	sectionDayCount := len(sectionDays)
	if sectionDayCount == 0 {
		return e.config.WeightMinimizeBuildings
	}
	avgChanges := float64(totalChanges) / float64(sectionDayCount)
	const maxChanges = 15.0
	normalized := math.Min(avgChanges/maxChanges, 1.0)
	score := 1 - normalized
	return score * e.config.WeightMinimizeBuildings
}

func (e *FitnessEvaluator) scoreCompactness(c *Chromosome) float64 {
	type key struct{ section, day string }
	groups := map[key][]*Gene{}
	for _, g := range c.Genes {
		k := key{section: g.SectionID, day: g.Day}
		groups[k] = append(groups[k], g)
	}

	if len(groups) == 0 {
		return e.config.WeightCompactSchedule
	}

	totalSpan := 0.0
	for _, genes := range groups {
		earliest, latest := math.MaxInt32, 0
		for _, g := range genes {
			start, end := MustMinutes(g.StartTime), MustMinutes(g.EndTime)
			if start < earliest {
				earliest = start
			}
			if end > latest {
				latest = end
			}
		}
		totalSpan += float64(latest - earliest)
	}

	avgSpan := totalSpan / float64(len(groups))
	const idealSpan = 180.0
	const maxSpan = 600.0
	if avgSpan <= idealSpan {
		return 1.0 * e.config.WeightCompactSchedule
	}
	score := 1 - (avgSpan-idealSpan)/(maxSpan-idealSpan)
	if score < 0 {
		score = 0
	}
	return score * e.config.WeightCompactSchedule
}

func (e *FitnessEvaluator) scoreRoomUtilization(c *Chromosome) float64 {
	usage := map[string]int{}
	for roomID := range e.rooms {
		usage[roomID] = 0
	}
	for _, g := range c.Genes {
		usage[g.RoomID]++
	}
	counts := make([]int, 0, len(usage))
	for _, v := range usage {
		counts = append(counts, v)
	}
	stddev, mean := stddevMean(counts)
	normalized := 0.0
	if mean > 0 {
		normalized = stddev / mean
	}
	score := 1 - normalized
	if score < 0 {
		score = 0
	}
	return score * e.config.WeightRoomUtilization
}
