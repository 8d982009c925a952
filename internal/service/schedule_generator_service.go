package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classsync/scheduler-core/internal/dto"
	"github.com/classsync/scheduler-core/internal/scheduler"
	appErrors "github.com/classsync/scheduler-core/pkg/errors"
)

// ScheduleGeneratorConfig governs generator behaviour: how long a
// generated proposal stays retrievable before it expires out of the
// in-memory store.
type ScheduleGeneratorConfig struct {
	ProposalTTL time.Duration
}

// ScheduleGeneratorService runs the GA engine end-to-end for a single
// request: validate, evolve, explain, optionally persist, and keep the
// result retrievable for a bounded time.
type ScheduleGeneratorService struct {
	gaConfig  scheduler.GAConfig
	persister scheduler.TimetablePersister

	validator *validator.Validate
	logger    *zap.Logger
	store     *proposalStore
}

// NewScheduleGeneratorService wires scheduler dependencies, nil-defaulting
// the validator/logger/TTL so callers can omit what they don't need.
func NewScheduleGeneratorService(
	gaConfig scheduler.GAConfig,
	persister scheduler.TimetablePersister,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ScheduleGeneratorConfig,
) *ScheduleGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}

	return &ScheduleGeneratorService{
		gaConfig:  gaConfig,
		persister: persister,
		validator: validate,
		logger:    logger,
		store:     newProposalStore(cfg.ProposalTTL),
	}
}

type scheduleProposal struct {
	response  dto.GenerateTimetableResponse
	result    *scheduler.GAResult
	requested time.Time
}

// Generate validates the request, runs the pre-run validator, evolves a
// population to convergence, and returns the explanation bundle. The
// proposal is cached under its timetable ID so a later Save can persist
// it without re-running the GA.
func (s *ScheduleGeneratorService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable generation payload")
	}

	sessions := make([]scheduler.Session, 0, len(req.Sessions))
	for _, sr := range req.Sessions {
		sessions = append(sessions, sr.ToSession())
	}
	rooms := make([]scheduler.Room, 0, len(req.Rooms))
	for _, rr := range req.Rooms {
		rooms = append(rooms, rr.ToRoom())
	}
	teacherConstraints := make([]scheduler.TeacherConstraint, 0, len(req.TeacherConstraints))
	for _, tc := range req.TeacherConstraints {
		teacherConstraints = append(teacherConstraints, tc.ToConstraint())
	}
	roomConstraints := make([]scheduler.RoomConstraint, 0, len(req.RoomConstraints))
	for _, rc := range req.RoomConstraints {
		roomConstraints = append(roomConstraints, rc.ToConstraint())
	}
	locked := make([]scheduler.LockedAssignment, 0, len(req.LockedAssignments))
	for _, la := range req.LockedAssignments {
		locked = append(locked, la.ToLockedAssignment())
	}

	preValidator := scheduler.NewPreRunValidator(s.gaConfig, sessions, rooms, teacherConstraints, roomConstraints, s.logger)
	validationResult, err := preValidator.ValidateOrError(locked)
	if err != nil {
		s.logger.Warn("schedule_generation_rejected", zap.Int("issues", len(validationResult.Errors)))
		return nil, err
	}

	engine := scheduler.NewGAEngine(s.gaConfig, sessions, rooms, teacherConstraints, roomConstraints, locked, s.logger)
	result := engine.Run(ctx)

	bundle := scheduler.Explain(s.gaConfig, result, len(sessions))

	timetableID := uuid.NewString()

	slots := make([]dto.SlotResponse, 0, len(bundle.Slots))
	for _, row := range bundle.Slots {
		slots = append(slots, dto.SlotResponse{
			CourseID:   row.CourseID,
			SectionID:  row.SectionID,
			TeacherID:  row.TeacherID,
			RoomID:     row.RoomID,
			Day:        row.Day,
			StartTime:  row.StartTime,
			EndTime:    row.EndTime,
			SessionKey: row.SessionKey,
		})
	}

	response := dto.GenerateTimetableResponse{
		TimetableID:     timetableID,
		Slots:           slots,
		IsFeasible:      bundle.IsFeasible,
		FitnessTotal:    bundle.Fitness.Total,
		FitnessPercent:  bundle.Fitness.Percentage,
		Generation:      bundle.Generation,
		HardViolations:  result.HardViolations,
		CoveragePercent: bundle.Statistics.CoveragePercent,
	}

	if !result.IsFeasible {
		s.logger.Warn("schedule_generation_infeasible",
			zap.String("timetable_id", timetableID),
			zap.Any("hard_violations", result.HardViolations),
		)
	}

	s.store.Save(timetableID, scheduleProposal{
		response:  response,
		result:    result,
		requested: time.Now(),
	})

	out := response
	return &out, nil
}

// Save persists a previously generated proposal through the caller's
// TimetablePersister, if one was wired in, and evicts it from the cache.
func (s *ScheduleGeneratorService) Save(ctx context.Context, timetableID string) (string, error) {
	proposal, ok := s.store.Get(timetableID)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrNotFound, "timetable proposal not found or expired")
	}
	if !proposal.response.IsFeasible {
		return "", appErrors.Clone(appErrors.ErrConflict, "proposal contains unresolved hard constraint violations")
	}
	if s.persister == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "persistence collaborator missing")
	}

	slots := make([]scheduler.PersistedSlot, 0, len(proposal.response.Slots))
	for _, sl := range proposal.response.Slots {
		slots = append(slots, scheduler.PersistedSlot{
			CourseID:   sl.CourseID,
			SectionID:  sl.SectionID,
			TeacherID:  sl.TeacherID,
			RoomID:     sl.RoomID,
			Day:        sl.Day,
			StartTime:  sl.StartTime,
			EndTime:    sl.EndTime,
			SessionKey: sl.SessionKey,
		})
	}

	id, err := s.persister.Persist(ctx, slots)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable")
	}

	s.store.Delete(timetableID)
	return id, nil
}

// Get returns a cached proposal by timetable ID.
func (s *ScheduleGeneratorService) Get(timetableID string) (*dto.GenerateTimetableResponse, error) {
	if timetableID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "timetable id is required")
	}
	proposal, ok := s.store.Get(timetableID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable proposal not found or expired")
	}
	resp := proposal.response
	return &resp, nil
}

// Delete removes a cached proposal.
func (s *ScheduleGeneratorService) Delete(timetableID string) error {
	if _, ok := s.store.Get(timetableID); !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "timetable proposal not found or expired")
	}
	s.store.Delete(timetableID)
	return nil
}

// proposalStore is a mutex-guarded, TTL-expiring in-memory cache.
type proposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]scheduleProposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{
		ttl:   ttl,
		items: make(map[string]scheduleProposal),
	}
}

func (s *proposalStore) Save(id string, proposal scheduleProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = proposal
}

func (s *proposalStore) Get(id string) (scheduleProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return scheduleProposal{}, false
	}
	if time.Since(proposal.requested) > s.ttl {
		s.Delete(id)
		return scheduleProposal{}, false
	}
	return proposal, true
}

func (s *proposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
