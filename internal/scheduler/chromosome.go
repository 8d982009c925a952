package scheduler

// Gene is one session's mutable placement, plus enough of its fixed
// session attributes for the evaluator/operators to avoid a session
// lookup on every access.
type Gene struct {
	SessionKey      string
	CourseID        string
	CourseCode      string
	CourseName      string
	SectionID       string
	SectionCode     string
	TeacherID       string
	TeacherName     string
	DurationMinutes int
	IsLab           bool
	SessionNumber   int

	// Mutable placement.
	Day       string
	StartTime string
	RoomID    string
	RoomCode  string

	// Computed from Day/StartTime/DurationMinutes.
	EndTime        string
	DurationSlots  int

	// Lock shadow state.
	IsLocked       bool
	LockType       LockType
	LockedDay      string
	LockedStart    string
	LockedRoomID   string
}

// NewGene constructs a gene from a session and an initial placement,
// computing the derived EndTime/DurationSlots fields.
func NewGene(s Session, day, startTime, roomID, roomCode string) *Gene {
	g := &Gene{
		SessionKey:      s.SessionKey,
		CourseID:        s.CourseID,
		CourseCode:      s.CourseCode,
		CourseName:      s.CourseName,
		SectionID:       s.SectionID,
		SectionCode:     s.SectionCode,
		TeacherID:       s.TeacherID,
		TeacherName:     s.TeacherName,
		DurationMinutes: s.DurationMinutes,
		IsLab:           s.IsLab,
		SessionNumber:   s.SessionNumber,
		Day:             day,
		StartTime:       startTime,
		RoomID:          roomID,
		RoomCode:        roomCode,
	}
	g.recompute()
	return g
}

func (g *Gene) recompute() {
	if g.StartTime == "" {
		g.EndTime = ""
		g.DurationSlots = 0
		return
	}
	g.EndTime = AddMinutesToTime(g.StartTime, g.DurationMinutes)
	g.DurationSlots = g.DurationMinutes / 30
}

// UpdateTime relocates the gene to a new day/start-time, recomputing
// EndTime/DurationSlots.
func (g *Gene) UpdateTime(day, startTime string) {
	g.Day = day
	g.StartTime = startTime
	g.recompute()
}

// UpdateRoom relocates the gene to a new room.
func (g *Gene) UpdateRoom(roomID, roomCode string) {
	g.RoomID = roomID
	g.RoomCode = roomCode
}

// CanMutateTime reports whether the genetic operators may relocate this
// gene's day/start-time.
func (g *Gene) CanMutateTime() bool {
	return !g.IsLocked
}

// CanMutateRoom reports whether the genetic operators may relocate this
// gene's room. A time-only lock still permits room mutation; a full lock
// does not.
func (g *Gene) CanMutateRoom() bool {
	if !g.IsLocked {
		return true
	}
	return g.LockType != LockFull
}

// RestoreLock re-applies the gene's lock shadow, the way repair does at
// the top of every pass. A locked gene always has its day/start_time
// (and therefore end_time) restored; the room is only restored when the
// lock is a full lock and a room was recorded.
func (g *Gene) RestoreLock() {
	if !g.IsLocked {
		return
	}
	g.Day = g.LockedDay
	g.StartTime = g.LockedStart
	g.recompute()
	if g.LockType == LockFull && g.LockedRoomID != "" {
		g.RoomID = g.LockedRoomID
	}
}

// Clone returns a deep copy (genes contain no pointers/slices, so a
// value copy already suffices, but Clone documents the intent at call
// sites).
func (g Gene) Clone() *Gene {
	clone := g
	return &clone
}

// PersistedRow projects the gene into the flat tuple the persistence
// collaborator contract expects.
func (g Gene) PersistedRow() PersistedSlot {
	return PersistedSlot{
		CourseID:    g.CourseID,
		SectionID:   g.SectionID,
		TeacherID:   g.TeacherID,
		RoomID:      g.RoomID,
		Day:         g.Day,
		StartTime:   g.StartTime,
		EndTime:     g.EndTime,
		SessionKey:  g.SessionKey,
	}
}

// Chromosome is an ordered set of genes, one per session, plus the
// evaluator's most recent verdict.
type Chromosome struct {
	Genes      []*Gene
	Fitness    float64
	IsFeasible bool

	HardViolations  map[string]int
	SoftScores      map[string]float64
	ConflictDetails []string
}

// NewChromosome wraps a gene slice into a chromosome that has not been
// evaluated yet.
func NewChromosome(genes []*Gene) *Chromosome {
	return &Chromosome{Genes: genes}
}

// Copy deep-copies the gene list (including lock shadow fields) but does
// not carry over HardViolations/SoftScores/ConflictDetails from the
// evaluator — only Fitness and IsFeasible travel with the copy, since
// the gene contents are what the caller is actually duplicating and a
// stale violation report would be misleading once genes are mutated.
func (c *Chromosome) Copy() *Chromosome {
	genes := make([]*Gene, len(c.Genes))
	for i, g := range c.Genes {
		genes[i] = g.Clone()
	}
	return &Chromosome{
		Genes:      genes,
		Fitness:    c.Fitness,
		IsFeasible: c.IsFeasible,
	}
}

// GeneByIndex returns the gene at position i, or nil if out of range.
func (c *Chromosome) GeneByIndex(i int) *Gene {
	if i < 0 || i >= len(c.Genes) {
		return nil
	}
	return c.Genes[i]
}

// GenesBySection filters genes belonging to sectionID.
func (c *Chromosome) GenesBySection(sectionID string) []*Gene {
	var out []*Gene
	for _, g := range c.Genes {
		if g.SectionID == sectionID {
			out = append(out, g)
		}
	}
	return out
}

// GenesByTeacher filters genes belonging to teacherID.
func (c *Chromosome) GenesByTeacher(teacherID string) []*Gene {
	var out []*Gene
	for _, g := range c.Genes {
		if g.TeacherID == teacherID {
			out = append(out, g)
		}
	}
	return out
}

// GenesByDay filters genes scheduled on day.
func (c *Chromosome) GenesByDay(day string) []*Gene {
	var out []*Gene
	for _, g := range c.Genes {
		if g.Day == day {
			out = append(out, g)
		}
	}
	return out
}

// GenesByRoom filters genes placed in roomID.
func (c *Chromosome) GenesByRoom(roomID string) []*Gene {
	var out []*Gene
	for _, g := range c.Genes {
		if g.RoomID == roomID {
			out = append(out, g)
		}
	}
	return out
}

// Statistics summarizes the chromosome's placement: per-day counts,
// lab/theory split, and coverage.
type Statistics struct {
	TotalSessions   int
	ScheduledCount  int
	LabCount        int
	TheoryCount     int
	PerDayCounts    map[string]int
	CoveragePercent float64
}

// Statistics computes the snapshot described above. totalSessions is the
// number of sessions the run was asked to place, which may exceed
// len(Genes) if some sessions could not be represented at all.
func (c *Chromosome) Statistics(totalSessions int) Statistics {
	stats := Statistics{
		TotalSessions: totalSessions,
		PerDayCounts:  map[string]int{},
	}
	for _, g := range c.Genes {
		if g.Day == "" || g.StartTime == "" || g.RoomID == "" {
			continue
		}
		stats.ScheduledCount++
		stats.PerDayCounts[g.Day]++
		if g.IsLab {
			stats.LabCount++
		} else {
			stats.TheoryCount++
		}
	}
	if totalSessions > 0 {
		stats.CoveragePercent = 100.0 * float64(stats.ScheduledCount) / float64(totalSessions)
	}
	return stats
}
