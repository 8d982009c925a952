package scheduler

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	appErrors "github.com/classsync/scheduler-core/pkg/errors"
)

// ValidationIssue is one finding from the pre-run validator, carrying a
// stable error_type tag callers can branch on.
type ValidationIssue struct {
	ErrorType string
	Severity  string // "hard" or "warning"
	Message   string
	Details   map[string]any
}

// ValidationResult aggregates every issue the pre-run validator found.
type ValidationResult struct {
	IsValid  bool
	Errors   []ValidationIssue
	Warnings []ValidationIssue
}

func (r *ValidationResult) addError(issue ValidationIssue) {
	if issue.Severity == "warning" {
		r.Warnings = append(r.Warnings, issue)
		return
	}
	r.Errors = append(r.Errors, issue)
	r.IsValid = false
}

// PreRunValidator rejects infeasible locked input before a GA run is
// allowed to start.
type PreRunValidator struct {
	config GAConfig
	logger *zap.Logger

	sessions map[string]Session
	rooms    map[string]Room

	teacherDayOffs      map[string]map[string]bool
	teacherBlockedSlots map[string][]blockedInterval
	roomDayOffs         map[string]map[string]bool
	roomBlockedSlots    map[string][]blockedInterval
}

type blockedInterval struct {
	Day       string
	StartTime string
	EndTime   string
}

// NewPreRunValidator builds the constraint indexes once, up front.
func NewPreRunValidator(
	config GAConfig,
	sessions []Session,
	rooms []Room,
	teacherConstraints []TeacherConstraint,
	roomConstraints []RoomConstraint,
	logger *zap.Logger,
) *PreRunValidator {
	if logger == nil {
		logger = zap.NewNop()
	}

	v := &PreRunValidator{
		config:              config,
		logger:              logger,
		sessions:            map[string]Session{},
		rooms:               map[string]Room{},
		teacherDayOffs:      map[string]map[string]bool{},
		teacherBlockedSlots: map[string][]blockedInterval{},
		roomDayOffs:         map[string]map[string]bool{},
		roomBlockedSlots:    map[string][]blockedInterval{},
	}

	for _, s := range sessions {
		v.sessions[s.SessionKey] = s
	}
	for _, r := range rooms {
		v.rooms[r.RoomID] = r
	}

	for _, tc := range teacherConstraints {
		switch tc.Type {
		case ConstraintDayOff:
			days := tc.Days
			if len(days) == 0 && tc.Day != "" {
				days = []string{tc.Day}
			}
			set := v.teacherDayOffs[tc.TeacherID]
			if set == nil {
				set = map[string]bool{}
				v.teacherDayOffs[tc.TeacherID] = set
			}
			for _, d := range days {
				set[d] = true
			}
		case ConstraintBlockedSlot:
			v.teacherBlockedSlots[tc.TeacherID] = append(v.teacherBlockedSlots[tc.TeacherID], blockedInterval{
				Day: tc.Day, StartTime: tc.StartTime, EndTime: tc.EndTime,
			})
		}
	}

	for _, rc := range roomConstraints {
		switch rc.Type {
		case ConstraintDayOff:
			days := rc.Days
			if len(days) == 0 && rc.Day != "" {
				days = []string{rc.Day}
			}
			set := v.roomDayOffs[rc.RoomID]
			if set == nil {
				set = map[string]bool{}
				v.roomDayOffs[rc.RoomID] = set
			}
			for _, d := range days {
				set[d] = true
			}
		case ConstraintBlockedSlot:
			v.roomBlockedSlots[rc.RoomID] = append(v.roomBlockedSlots[rc.RoomID], blockedInterval{
				Day: rc.Day, StartTime: rc.StartTime, EndTime: rc.EndTime,
			})
		}
	}

	return v
}

// Validate runs all nine checks against the locked assignments and
// returns the aggregate result. It never mutates its inputs.
func (v *PreRunValidator) Validate(locked []LockedAssignment) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	v.checkSessionsNotEmpty(result)
	v.checkLockedTeacherConflicts(locked, result)
	v.checkLockedVsTeacherConstraints(locked, result)
	v.checkLockedTimesInBounds(locked, result)
	v.checkLockedRoomConflicts(locked, result)
	v.checkInstructorWeeklyLoad(locked, result)
	v.checkLockedNotInBlockedWindows(locked, result)
	v.checkLockedSessionReferences(locked, result)
	v.checkLockedVsRoomConstraints(locked, result)

	if !result.IsValid {
		v.logger.Warn("pre_run_validation_failed",
			zap.Int("errors", len(result.Errors)),
			zap.Int("warnings", len(result.Warnings)),
		)
	}

	return result
}

// ValidateOrError is the convenience entry point callers use before
// starting the engine: it returns a typed *errors.Error the caller can surface directly when
// the run cannot even start.
func (v *PreRunValidator) ValidateOrError(locked []LockedAssignment) (*ValidationResult, error) {
	result := v.Validate(locked)
	if !result.IsValid {
		return result, appErrors.Clone(appErrors.ErrInfeasible,
			fmt.Sprintf("pre-run validation found %d blocking issue(s)", len(result.Errors)))
	}
	return result, nil
}

func (v *PreRunValidator) sessionTeacher(sessionKey string) (string, bool) {
	s, ok := v.sessions[sessionKey]
	if !ok {
		return "", false
	}
	return s.TeacherID, true
}

// (0) the engine cannot evolve a population with nothing to place.
func (v *PreRunValidator) checkSessionsNotEmpty(result *ValidationResult) {
	if len(v.sessions) == 0 {
		result.addError(ValidationIssue{
			ErrorType: "no_sessions",
			Severity:  "hard",
			Message:   "no sessions were supplied; there is nothing to schedule",
		})
	}
}

// (1) overlapping locks for the same teacher.
func (v *PreRunValidator) checkLockedTeacherConflicts(locked []LockedAssignment, result *ValidationResult) {
	byTeacherDay := map[string][]LockedAssignment{}
	for _, l := range locked {
		teacherID, ok := v.sessionTeacher(l.SessionKey)
		if !ok {
			continue
		}
		key := teacherID + "|" + l.Day
		byTeacherDay[key] = append(byTeacherDay[key], l)
	}
	for key, group := range byTeacherDay {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				aEnd := AddMinutesToTime(a.StartTime, v.sessions[a.SessionKey].DurationMinutes)
				bEnd := AddMinutesToTime(b.StartTime, v.sessions[b.SessionKey].DurationMinutes)
				if SlotsOverlapClock(a.StartTime, aEnd, b.StartTime, bEnd) {
					result.addError(ValidationIssue{
						ErrorType: "locked_teacher_conflict",
						Severity:  "hard",
						Message:   fmt.Sprintf("locked sessions %s and %s conflict for the same teacher on %s", a.SessionKey, b.SessionKey, a.Day),
						Details:   map[string]any{"teacher_day": key, "session_a": a.SessionKey, "session_b": b.SessionKey},
					})
				}
			}
		}
	}
}

// (2) locked placements against teacher day-offs / blocked slots.
func (v *PreRunValidator) checkLockedVsTeacherConstraints(locked []LockedAssignment, result *ValidationResult) {
	for _, l := range locked {
		teacherID, ok := v.sessionTeacher(l.SessionKey)
		if !ok {
			continue
		}
		if v.teacherDayOffs[teacherID][l.Day] {
			result.addError(ValidationIssue{
				ErrorType: "locked_dayoff_conflict",
				Severity:  "hard",
				Message:   fmt.Sprintf("locked session %s falls on teacher %s's day off (%s)", l.SessionKey, teacherID, l.Day),
				Details:   map[string]any{"session_key": l.SessionKey, "teacher_id": teacherID, "day": l.Day},
			})
		}
		dur := v.sessions[l.SessionKey].DurationMinutes
		end := AddMinutesToTime(l.StartTime, dur)
		for _, b := range v.teacherBlockedSlots[teacherID] {
			if b.Day != l.Day {
				continue
			}
			if SlotsOverlapClock(l.StartTime, end, b.StartTime, b.EndTime) {
				result.addError(ValidationIssue{
					ErrorType: "locked_blocked_slot_conflict",
					Severity:  "hard",
					Message:   fmt.Sprintf("locked session %s overlaps a blocked slot for teacher %s", l.SessionKey, teacherID),
					Details:   map[string]any{"session_key": l.SessionKey, "teacher_id": teacherID},
				})
			}
		}
	}
}

// (3) locked times within working-day bounds and on an allowed start time.
func (v *PreRunValidator) checkLockedTimesInBounds(locked []LockedAssignment, result *ValidationResult) {
	for _, l := range locked {
		if !containsString(v.config.WorkingDays, l.Day) {
			result.addError(ValidationIssue{
				ErrorType: "locked_invalid_day",
				Severity:  "hard",
				Message:   fmt.Sprintf("locked session %s is pinned to a non-working day %q", l.SessionKey, l.Day),
				Details:   map[string]any{"session_key": l.SessionKey, "day": l.Day},
			})
		}

		startMin := MustMinutes(l.StartTime)
		if startMin < MustMinutes(v.config.DayStartTime) {
			result.addError(ValidationIssue{
				ErrorType: "locked_before_day_start",
				Severity:  "hard",
				Message:   fmt.Sprintf("locked session %s starts before the working day begins", l.SessionKey),
				Details:   map[string]any{"session_key": l.SessionKey, "start_time": l.StartTime},
			})
		}

		dur := v.sessions[l.SessionKey].DurationMinutes
		end := AddMinutesToTime(l.StartTime, dur)
		if MustMinutes(end) > v.config.DayEndMinutes() {
			result.addError(ValidationIssue{
				ErrorType: "locked_after_day_end",
				Severity:  "hard",
				Message:   fmt.Sprintf("locked session %s ends after the working day ends", l.SessionKey),
				Details:   map[string]any{"session_key": l.SessionKey, "end_time": end},
			})
		}

		if !v.config.IsValidStartTime(l.StartTime) {
			result.addError(ValidationIssue{
				ErrorType: "locked_invalid_start_time",
				Severity:  "hard",
				Message:   fmt.Sprintf("locked session %s uses a start time outside the allowed set", l.SessionKey),
				Details:   map[string]any{"session_key": l.SessionKey, "start_time": l.StartTime},
			})
		}
	}
}

// (4) overlapping locks for the same room (full-lock only; time-only
// locks never pin a room).
func (v *PreRunValidator) checkLockedRoomConflicts(locked []LockedAssignment, result *ValidationResult) {
	byRoomDay := map[string][]LockedAssignment{}
	for _, l := range locked {
		if l.LockType != LockFull || l.RoomID == "" {
			continue
		}
		key := l.RoomID + "|" + l.Day
		byRoomDay[key] = append(byRoomDay[key], l)
	}
	for key, group := range byRoomDay {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				aEnd := AddMinutesToTime(a.StartTime, v.sessions[a.SessionKey].DurationMinutes)
				bEnd := AddMinutesToTime(b.StartTime, v.sessions[b.SessionKey].DurationMinutes)
				if SlotsOverlapClock(a.StartTime, aEnd, b.StartTime, bEnd) {
					result.addError(ValidationIssue{
						ErrorType: "locked_room_conflict",
						Severity:  "hard",
						Message:   fmt.Sprintf("locked sessions %s and %s conflict for the same room on %s", a.SessionKey, b.SessionKey, a.Day),
						Details:   map[string]any{"room_day": key, "session_a": a.SessionKey, "session_b": b.SessionKey},
					})
				}
			}
		}
	}
}

// (5) aggregate locked hours per teacher against the weekly ceiling.
func (v *PreRunValidator) checkInstructorWeeklyLoad(locked []LockedAssignment, result *ValidationResult) {
	hoursByTeacher := map[string]float64{}
	for _, l := range locked {
		teacherID, ok := v.sessionTeacher(l.SessionKey)
		if !ok {
			continue
		}
		hoursByTeacher[teacherID] += float64(v.sessions[l.SessionKey].DurationMinutes) / 60.0
	}

	ceiling := v.config.MaxTeacherWeeklyHours
	if ceiling <= 0 {
		ceiling = 40
	}
	warnAt := ceiling * 0.8

	// Deterministic iteration order for stable test output.
	teacherIDs := make([]string, 0, len(hoursByTeacher))
	for id := range hoursByTeacher {
		teacherIDs = append(teacherIDs, id)
	}
	sort.Strings(teacherIDs)

	for _, teacherID := range teacherIDs {
		hours := hoursByTeacher[teacherID]
		switch {
		case hours > ceiling:
			result.addError(ValidationIssue{
				ErrorType: "locked_exceeds_weekly_load",
				Severity:  "hard",
				Message:   fmt.Sprintf("teacher %s's locked hours (%.1f) exceed the weekly ceiling (%.1f)", teacherID, hours, ceiling),
				Details:   map[string]any{"teacher_id": teacherID, "hours": hours, "ceiling": ceiling},
			})
		case hours > warnAt:
			result.addError(ValidationIssue{
				ErrorType: "locked_approaching_weekly_load",
				Severity:  "warning",
				Message:   fmt.Sprintf("teacher %s's locked hours (%.1f) are approaching the weekly ceiling (%.1f)", teacherID, hours, ceiling),
				Details:   map[string]any{"teacher_id": teacherID, "hours": hours, "ceiling": ceiling},
			})
		}
	}
}

// (6) locked placements inside a configured blocked window.
func (v *PreRunValidator) checkLockedNotInBlockedWindows(locked []LockedAssignment, result *ValidationResult) {
	for _, l := range locked {
		dur := v.sessions[l.SessionKey].DurationMinutes
		end := AddMinutesToTime(l.StartTime, dur)
		if v.config.IsBlocked(l.Day, l.StartTime, end) {
			result.addError(ValidationIssue{
				ErrorType: "locked_in_blocked_window",
				Severity:  "hard",
				Message:   fmt.Sprintf("locked session %s falls inside a blocked window on %s", l.SessionKey, l.Day),
				Details:   map[string]any{"session_key": l.SessionKey, "day": l.Day},
			})
		}
	}
}

// (7) locked assignments referencing a session that does not exist.
func (v *PreRunValidator) checkLockedSessionReferences(locked []LockedAssignment, result *ValidationResult) {
	if len(v.sessions) == 0 {
		return
	}
	available := make([]string, 0, len(v.sessions))
	for k := range v.sessions {
		available = append(available, k)
	}
	sort.Strings(available)
	if len(available) > 10 {
		available = available[:10]
	}

	for _, l := range locked {
		if _, ok := v.sessions[l.SessionKey]; ok {
			continue
		}
		result.addError(ValidationIssue{
			ErrorType: "locked_invalid_session",
			Severity:  "hard",
			Message:   fmt.Sprintf("locked assignment references unknown session %q", l.SessionKey),
			Details:   map[string]any{"session_key": l.SessionKey, "available_sample": available},
		})
	}
}

// (8) locked placements against room day-offs / blocked slots.
func (v *PreRunValidator) checkLockedVsRoomConstraints(locked []LockedAssignment, result *ValidationResult) {
	for _, l := range locked {
		if l.LockType != LockFull || l.RoomID == "" {
			continue
		}
		if v.roomDayOffs[l.RoomID][l.Day] {
			result.addError(ValidationIssue{
				ErrorType: "locked_room_dayoff_conflict",
				Severity:  "hard",
				Message:   fmt.Sprintf("locked session %s falls on room %s's day off", l.SessionKey, l.RoomID),
				Details:   map[string]any{"session_key": l.SessionKey, "room_id": l.RoomID},
			})
		}
		dur := v.sessions[l.SessionKey].DurationMinutes
		end := AddMinutesToTime(l.StartTime, dur)
		for _, b := range v.roomBlockedSlots[l.RoomID] {
			if b.Day != l.Day {
				continue
			}
			if SlotsOverlapClock(l.StartTime, end, b.StartTime, b.EndTime) {
				result.addError(ValidationIssue{
					ErrorType: "locked_room_blocked_slot_conflict",
					Severity:  "hard",
					Message:   fmt.Sprintf("locked session %s overlaps a blocked slot for room %s", l.SessionKey, l.RoomID),
					Details:   map[string]any{"session_key": l.SessionKey, "room_id": l.RoomID},
				})
			}
		}
	}
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
