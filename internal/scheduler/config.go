package scheduler

// BlockedWindow is a (start,end) clock-time pair during which a working
// day is unavailable, e.g. a lunch break.
type BlockedWindow struct {
	StartTime string
	EndTime   string
}

// GAConfig is the full set of tunables the GA engine and its
// collaborators read from.
type GAConfig struct {
	// GA hyperparameters.
	PopulationSize            int
	Generations               int
	ElitismRate               float64
	CrossoverRate             float64
	MutationRateInitial       float64
	MutationRateMid           float64
	MutationRateFinal         float64
	MutationDecayGeneration   int
	TournamentSize            int
	MaxStagnantGenerations    int
	MinAcceptableFitness      float64
	MaxRepairAttempts         int
	ParallelFitnessEvaluation bool
	MaxWorkers                int
	// RandomSeed, when non-nil, seeds every RNG used by the initializer,
	// operators and repair mechanism for bit-for-bit reproducibility.
	RandomSeed *int64

	// Time slot configuration.
	WorkingDays       []string
	AllowedStartTimes []string
	AllowedDurations  []int
	DayStartTime      string
	DayEndTime        string
	SlotDurationMin   int

	BlockedWindows map[string][]BlockedWindow

	// Hard constraint toggles. Explain reports each one as the Enforced
	// flag of its hard category; the evaluator counts every hard category
	// whatever their value.
	EnforceNoTeacherOverlap bool
	EnforceNoRoomOverlap    bool
	EnforceNoSectionOverlap bool
	EnforceValidTimeSlots   bool
	EnforceValidDurations   bool
	EnforceLabContiguity    bool
	EnforceBlockedWindows   bool
	EnforceFullCoverage     bool

	// Soft constraint weights.
	WeightEvenDistribution     float64
	WeightMinimizeGapsStudents float64
	WeightMinimizeGapsTeachers float64
	WeightMinimizeEarlyClasses float64
	WeightMinimizeLateClasses  float64
	WeightRoomTypeMatch        float64
	WeightMinimizeBuildings    float64
	WeightCompactSchedule      float64
	WeightRoomUtilization      float64

	// Thresholds.
	EarlyClassThreshold   string
	LateClassThreshold    string
	MaxAcceptableGapMin   int
	MaxTeacherWeeklyHours float64

	RepairOrder          []string
	DayBasedCrossoverPct float64

	LogInterval int
}

// DefaultGAConfig returns the baseline configuration used when no
// overrides are supplied.
func DefaultGAConfig() GAConfig {
	return GAConfig{
		PopulationSize:            50,
		Generations:               150,
		ElitismRate:               0.05,
		CrossoverRate:             0.80,
		MutationRateInitial:       0.15,
		MutationRateMid:           0.10,
		MutationRateFinal:         0.05,
		MutationDecayGeneration:   25,
		TournamentSize:            5,
		MaxStagnantGenerations:    30,
		MinAcceptableFitness:      850.0,
		MaxRepairAttempts:         10,
		ParallelFitnessEvaluation: true,
		MaxWorkers:                4,

		WorkingDays:       []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
		AllowedStartTimes: []string{"08:00", "09:30", "11:00", "12:30", "14:00", "15:30", "17:00"},
		AllowedDurations:  []int{90, 120, 180},
		DayStartTime:      "08:00",
		DayEndTime:        "18:30",
		SlotDurationMin:   30,

		BlockedWindows: map[string][]BlockedWindow{
			"Friday":  {{StartTime: "12:30", EndTime: "14:00"}},
			"Monday":  {{StartTime: "12:30", EndTime: "14:00"}},
			"Tuesday": {{StartTime: "12:30", EndTime: "14:00"}},
		},

		EnforceNoTeacherOverlap: true,
		EnforceNoRoomOverlap:    true,
		EnforceNoSectionOverlap: true,
		EnforceValidTimeSlots:   true,
		EnforceValidDurations:   true,
		EnforceLabContiguity:    true,
		EnforceBlockedWindows:   true,
		EnforceFullCoverage:     true,

		WeightEvenDistribution:     150.0,
		WeightMinimizeGapsStudents: 120.0,
		WeightMinimizeGapsTeachers: 100.0,
		WeightMinimizeEarlyClasses: 60.0,
		WeightMinimizeLateClasses:  60.0,
		WeightRoomTypeMatch:        80.0,
		WeightMinimizeBuildings:    50.0,
		WeightCompactSchedule:      100.0,
		WeightRoomUtilization:      40.0,

		EarlyClassThreshold:   "09:30",
		LateClassThreshold:    "15:30",
		MaxAcceptableGapMin:   90,
		MaxTeacherWeeklyHours: 40.0,

		RepairOrder: []string{
			"blocked_windows",
			"invalid_start_times",
			"lab_contiguity",
			"teacher_conflicts",
			"room_conflicts",
			"section_conflicts",
		},
		DayBasedCrossoverPct: 0.80,
		LogInterval:          10,
	}
}

// GetMutationRate implements the three-stage decay schedule: initial
// until MutationDecayGeneration, mid until 3x that, final afterwards.
func (c GAConfig) GetMutationRate(generation int) float64 {
	switch {
	case generation < c.MutationDecayGeneration:
		return c.MutationRateInitial
	case generation < c.MutationDecayGeneration*3:
		return c.MutationRateMid
	default:
		return c.MutationRateFinal
	}
}

// IsValidStartTime reports whether clock is one of the configured
// allowed start times.
func (c GAConfig) IsValidStartTime(clock string) bool {
	for _, t := range c.AllowedStartTimes {
		if t == clock {
			return true
		}
	}
	return false
}

// IsValidDuration reports whether minutes is one of the configured
// allowed durations.
func (c GAConfig) IsValidDuration(minutes int) bool {
	for _, d := range c.AllowedDurations {
		if d == minutes {
			return true
		}
	}
	return false
}

// IsBlocked reports whether [start,end) on day overlaps any configured
// blocked window for that day.
func (c GAConfig) IsBlocked(day, start, end string) bool {
	windows, ok := c.BlockedWindows[day]
	if !ok {
		return false
	}
	for _, w := range windows {
		if SlotsOverlapClock(start, end, w.StartTime, w.EndTime) {
			return true
		}
	}
	return false
}

// AllowedSlots enumerates every (day, start_time) pair that is not
// blocked for at least a minimal 30-minute probe window, applied as a
// fixed-probe pre-filter before per-session duration checks happen.
func (c GAConfig) AllowedSlots() []struct{ Day, StartTime string } {
	var out []struct{ Day, StartTime string }
	for _, day := range c.WorkingDays {
		for _, start := range c.AllowedStartTimes {
			probeEnd := AddMinutesToTime(start, c.SlotDurationMin)
			if c.IsBlocked(day, start, probeEnd) {
				continue
			}
			out = append(out, struct{ Day, StartTime string }{Day: day, StartTime: start})
		}
	}
	return out
}

// DayEndMinutes is a convenience accessor used throughout the
// initializer/operators/repair to bound-check candidate end times.
func (c GAConfig) DayEndMinutes() int {
	return MustMinutes(c.DayEndTime)
}
