package dto

import "github.com/classsync/scheduler-core/internal/scheduler"

// SessionRequest is the ingestion shape for a single teaching session:
// everything the GA core needs to place it, validated at the boundary
// before it is converted into a scheduler.Session.
type SessionRequest struct {
	SessionKey      string `json:"session_key" validate:"required"`
	CourseID        string `json:"course_id" validate:"required"`
	CourseCode      string `json:"course_code" validate:"required"`
	CourseName      string `json:"course_name"`
	SectionID       string `json:"section_id" validate:"required"`
	SectionCode     string `json:"section_code"`
	TeacherID       string `json:"teacher_id" validate:"required"`
	TeacherName     string `json:"teacher_name"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,oneof=90 120 180"`
	IsLab           bool   `json:"is_lab"`
	SessionNumber   int    `json:"session_number" validate:"min=1"`
}

// ToSession converts the validated request into the scheduler's domain
// type.
func (r SessionRequest) ToSession() scheduler.Session {
	return scheduler.Session{
		SessionKey:      r.SessionKey,
		CourseID:        r.CourseID,
		CourseCode:      r.CourseCode,
		CourseName:      r.CourseName,
		SectionID:       r.SectionID,
		SectionCode:     r.SectionCode,
		TeacherID:       r.TeacherID,
		TeacherName:     r.TeacherName,
		DurationMinutes: r.DurationMinutes,
		IsLab:           r.IsLab,
		SessionNumber:   r.SessionNumber,
	}
}

// RoomRequest is the ingestion shape for a room.
type RoomRequest struct {
	RoomID   string `json:"room_id" validate:"required"`
	RoomCode string `json:"room_code" validate:"required"`
	RoomType string `json:"room_type"`
	Capacity int    `json:"capacity" validate:"min=0"`
}

func (r RoomRequest) ToRoom() scheduler.Room {
	return scheduler.Room{RoomID: r.RoomID, RoomCode: r.RoomCode, RoomType: r.RoomType, Capacity: r.Capacity}
}

// TeacherConstraintRequest is the ingestion shape for a teacher
// constraint.
type TeacherConstraintRequest struct {
	TeacherID string   `json:"teacher_id" validate:"required"`
	Type      string   `json:"type" validate:"required,oneof=blocked_slot day_off"`
	Day       string   `json:"day"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Days      []string `json:"days"`
	IsHard    bool     `json:"is_hard"`
}

func (r TeacherConstraintRequest) ToConstraint() scheduler.TeacherConstraint {
	return scheduler.TeacherConstraint{
		TeacherID: r.TeacherID,
		Type:      scheduler.ConstraintType(r.Type),
		Day:       r.Day,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Days:      r.Days,
		IsHard:    r.IsHard,
	}
}

// RoomConstraintRequest is the ingestion shape for a room constraint.
type RoomConstraintRequest struct {
	RoomID    string   `json:"room_id" validate:"required"`
	Type      string   `json:"type" validate:"required,oneof=blocked_slot day_off"`
	Day       string   `json:"day"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Days      []string `json:"days"`
	IsHard    bool     `json:"is_hard"`
}

func (r RoomConstraintRequest) ToConstraint() scheduler.RoomConstraint {
	return scheduler.RoomConstraint{
		RoomID:    r.RoomID,
		Type:      scheduler.ConstraintType(r.Type),
		Day:       r.Day,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Days:      r.Days,
		IsHard:    r.IsHard,
	}
}

// LockedAssignmentRequest is the ingestion shape for a locked assignment.
type LockedAssignmentRequest struct {
	SessionKey string `json:"session_key" validate:"required"`
	Day        string `json:"day" validate:"required"`
	StartTime  string `json:"start_time" validate:"required"`
	LockType   string `json:"lock_type" validate:"required,oneof=time_only full_lock"`
	RoomID     string `json:"room_id"`
}

func (r LockedAssignmentRequest) ToLockedAssignment() scheduler.LockedAssignment {
	return scheduler.LockedAssignment{
		SessionKey: r.SessionKey,
		Day:        r.Day,
		StartTime:  r.StartTime,
		LockType:   scheduler.LockType(r.LockType),
		RoomID:     r.RoomID,
	}
}

// GenerateTimetableRequest bundles everything a single GA run needs,
// validated at the boundary via go-playground/validator.
type GenerateTimetableRequest struct {
	Sessions           []SessionRequest           `json:"sessions" validate:"required,min=1,dive"`
	Rooms              []RoomRequest              `json:"rooms" validate:"required,min=1,dive"`
	TeacherConstraints []TeacherConstraintRequest `json:"teacher_constraints" validate:"dive"`
	RoomConstraints    []RoomConstraintRequest    `json:"room_constraints" validate:"dive"`
	LockedAssignments  []LockedAssignmentRequest  `json:"locked_assignments" validate:"dive"`
}

// SlotResponse is one placed session in the output bundle.
type SlotResponse struct {
	CourseID   string `json:"course_id"`
	SectionID  string `json:"section_id"`
	TeacherID  string `json:"teacher_id"`
	RoomID     string `json:"room_id"`
	Day        string `json:"day"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	SessionKey string `json:"session_key"`
}

// GenerateTimetableResponse summarises a run's explanation bundle (slots,
// feasibility, fitness, hard-violation counts, coverage) under the uuid
// the service stamps on every generated proposal. It does not carry the
// per-category hard/soft reports; a persister's own identifier is
// returned separately by Save.
type GenerateTimetableResponse struct {
	TimetableID     string          `json:"timetable_id"`
	Slots           []SlotResponse  `json:"slots"`
	IsFeasible      bool            `json:"is_feasible"`
	FitnessTotal    float64         `json:"fitness_total"`
	FitnessPercent  float64         `json:"fitness_percent"`
	Generation      int             `json:"generation"`
	HardViolations  map[string]int  `json:"hard_violations"`
	CoveragePercent float64         `json:"coverage_percent"`
}
