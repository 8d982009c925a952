package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/classsync/scheduler-core/internal/scheduler"
	"github.com/classsync/scheduler-core/pkg/config"
	"github.com/classsync/scheduler-core/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	gaConfig := cfg.BuildGAConfig()

	sessions, rooms, teacherConstraints, roomConstraints, locked := sampleInput()
	if path := os.Getenv("SCHEDULER_INPUT_FILE"); path != "" {
		sessions, rooms, teacherConstraints, roomConstraints, locked, err = loadInputFile(path)
		if err != nil {
			logr.Sugar().Fatalw("failed to load scheduler input file", "path", path, "error", err)
		}
	}

	preValidator := scheduler.NewPreRunValidator(gaConfig, sessions, rooms, teacherConstraints, roomConstraints, logr)
	if _, err := preValidator.ValidateOrError(locked); err != nil {
		logr.Sugar().Fatalw("pre-run validation rejected the input", "error", err)
	}

	engine := scheduler.NewGAEngine(gaConfig, sessions, rooms, teacherConstraints, roomConstraints, locked, logr)

	ctx := context.Background()
	result := engine.Run(ctx)

	bundle := scheduler.Explain(gaConfig, result, len(sessions))

	logr.Info("ga_run_complete",
		zap.Int("generation", bundle.Generation),
		zap.Bool("is_feasible", bundle.IsFeasible),
		zap.Float64("fitness_percent", bundle.Fitness.Percentage),
		zap.Float64("coverage_percent", bundle.Statistics.CoveragePercent),
	)

	encoded, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		logr.Sugar().Fatalw("failed to encode explanation bundle", "error", err)
	}
	fmt.Println(string(encoded))
}

// sampleInput is a small, always-feasible fixture used when no
// SCHEDULER_INPUT_FILE is provided, so the binary runs end-to-end out of
// the box.
func sampleInput() ([]scheduler.Session, []scheduler.Room, []scheduler.TeacherConstraint, []scheduler.RoomConstraint, []scheduler.LockedAssignment) {
	sessions := []scheduler.Session{
		{SessionKey: "math-101-s1", CourseID: "math-101", CourseCode: "MATH101", SectionID: "section-a", TeacherID: "teacher-1", DurationMinutes: 90, SessionNumber: 1},
		{SessionKey: "math-101-s2", CourseID: "math-101", CourseCode: "MATH101", SectionID: "section-a", TeacherID: "teacher-1", DurationMinutes: 90, SessionNumber: 2},
		{SessionKey: "phys-201-s1", CourseID: "phys-201", CourseCode: "PHYS201", SectionID: "section-a", TeacherID: "teacher-2", DurationMinutes: 180, IsLab: true, SessionNumber: 1},
		{SessionKey: "chem-101-s1", CourseID: "chem-101", CourseCode: "CHEM101", SectionID: "section-b", TeacherID: "teacher-3", DurationMinutes: 120, SessionNumber: 1},
	}
	rooms := []scheduler.Room{
		{RoomID: "room-101", RoomCode: "A101", RoomType: "theory", Capacity: 40},
		{RoomID: "room-102", RoomCode: "A102", RoomType: "theory", Capacity: 40},
		{RoomID: "room-lab1", RoomCode: "LAB1", RoomType: "lab", Capacity: 25},
	}
	return sessions, rooms, nil, nil, nil
}

type inputFile struct {
	Sessions           []scheduler.Session           `json:"sessions"`
	Rooms              []scheduler.Room              `json:"rooms"`
	TeacherConstraints []scheduler.TeacherConstraint `json:"teacher_constraints"`
	RoomConstraints    []scheduler.RoomConstraint    `json:"room_constraints"`
	LockedAssignments  []scheduler.LockedAssignment  `json:"locked_assignments"`
}

func loadInputFile(path string) ([]scheduler.Session, []scheduler.Room, []scheduler.TeacherConstraint, []scheduler.RoomConstraint, []scheduler.LockedAssignment, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("read input file: %w", err)
	}
	var in inputFile
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("parse input file: %w", err)
	}
	return in.Sessions, in.Rooms, in.TeacherConstraints, in.RoomConstraints, in.LockedAssignments, nil
}
