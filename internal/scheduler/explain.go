package scheduler

import "sort"

// HardConstraintReport is one row of the explanation bundle's hard
// constraint section.
type HardConstraintReport struct {
	Category string
	Count    int
	Enforced bool
}

// SoftConstraintReport is one row of the soft constraint section, sorted
// by unclaimed penalty (MaxScore-Score) descending so the caller sees
// the biggest opportunity for improvement first.
type SoftConstraintReport struct {
	Category string
	Score    float64
	MaxScore float64
}

// FitnessBreakdown expresses the winning chromosome's fitness as a
// fraction of the theoretical maximum (the sum of all configured soft
// weights).
type FitnessBreakdown struct {
	Total       float64
	MaxPossible float64
	Percentage  float64
}

// ExplanationBundle is the full output: placements, why the run
// converged where it did, and the run's own bookkeeping.
type ExplanationBundle struct {
	Slots            []PersistedSlot
	HardConstraints  []HardConstraintReport
	SoftConstraints  []SoftConstraintReport
	Fitness          FitnessBreakdown
	Statistics       Statistics
	Generation       int
	IsFeasible       bool
}

// Explain builds the bundle from a completed run's best chromosome,
// without re-running evaluation.
func Explain(config GAConfig, result *GAResult, totalSessions int) ExplanationBundle {
	best := result.BestChromosome

	slots := make([]PersistedSlot, 0, len(best.Genes))
	for _, g := range best.Genes {
		slots = append(slots, g.PersistedRow())
	}

	hardToggle := map[string]bool{
		"teacher_overlap":       config.EnforceNoTeacherOverlap,
		"room_overlap":          config.EnforceNoRoomOverlap,
		"section_overlap":       config.EnforceNoSectionOverlap,
		"invalid_time_slots":    config.EnforceValidTimeSlots,
		"invalid_durations":     config.EnforceValidDurations,
		"blocked_windows":       config.EnforceBlockedWindows,
		"lab_contiguity":        config.EnforceLabContiguity,
		"missing_assignments":   config.EnforceFullCoverage,
		"teacher_blocked_slots": true,
		"teacher_day_offs":      true,
		"lock_violations":       true,
	}

	hardKeys := make([]string, 0, len(best.HardViolations))
	for k := range best.HardViolations {
		hardKeys = append(hardKeys, k)
	}
	sort.Strings(hardKeys)

	hardReports := make([]HardConstraintReport, 0, len(hardKeys))
	for _, k := range hardKeys {
		hardReports = append(hardReports, HardConstraintReport{
			Category: k,
			Count:    best.HardViolations[k],
			Enforced: hardToggle[k],
		})
	}

	weightByCategory := map[string]float64{
		"even_distribution":         config.WeightEvenDistribution,
		"minimize_student_gaps":     config.WeightMinimizeGapsStudents,
		"minimize_teacher_gaps":     config.WeightMinimizeGapsTeachers,
		"minimize_early_classes":    config.WeightMinimizeEarlyClasses,
		"minimize_late_classes":     config.WeightMinimizeLateClasses,
		"room_type_match":           config.WeightRoomTypeMatch,
		"minimize_building_changes": config.WeightMinimizeBuildings,
		"compact_schedule":          config.WeightCompactSchedule,
		"room_utilization":          config.WeightRoomUtilization,
	}

	softReports := make([]SoftConstraintReport, 0, len(best.SoftScores))
	for k, score := range best.SoftScores {
		softReports = append(softReports, SoftConstraintReport{
			Category: k,
			Score:    score,
			MaxScore: weightByCategory[k],
		})
	}
	sort.Slice(softReports, func(i, j int) bool {
		return (softReports[i].MaxScore - softReports[i].Score) > (softReports[j].MaxScore - softReports[j].Score)
	})

	maxPossible := 0.0
	for _, w := range weightByCategory {
		maxPossible += w
	}
	percentage := 0.0
	if maxPossible > 0 {
		percentage = 100.0 * best.Fitness / maxPossible
	}

	return ExplanationBundle{
		Slots:           slots,
		HardConstraints: hardReports,
		SoftConstraints: softReports,
		Fitness: FitnessBreakdown{
			Total:       best.Fitness,
			MaxPossible: maxPossible,
			Percentage:  percentage,
		},
		Statistics: best.Statistics(totalSessions),
		Generation: result.Generation,
		IsFeasible: result.IsFeasible,
	}
}
