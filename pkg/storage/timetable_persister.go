package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/classsync/scheduler-core/internal/scheduler"
)

// FileTimetablePersister implements scheduler.TimetablePersister on top of
// LocalStorage: a completed run is written as one JSON snapshot per
// timetable, named by its own generated ID.
type FileTimetablePersister struct {
	storage *LocalStorage
}

// NewFileTimetablePersister wraps an existing LocalStorage handle.
func NewFileTimetablePersister(storage *LocalStorage) *FileTimetablePersister {
	return &FileTimetablePersister{storage: storage}
}

type timetableSnapshot struct {
	TimetableID string                    `json:"timetable_id"`
	SavedAt     time.Time                 `json:"saved_at"`
	Slots       []scheduler.PersistedSlot `json:"slots"`
}

// Persist writes slots to "<timetable-id>.json" under the storage's base
// directory and returns the generated ID.
func (p *FileTimetablePersister) Persist(_ context.Context, slots []scheduler.PersistedSlot) (string, error) {
	timetableID := uuid.NewString()

	snapshot := timetableSnapshot{
		TimetableID: timetableID,
		SavedAt:     time.Now().UTC(),
		Slots:       slots,
	}

	body, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode timetable snapshot: %w", err)
	}

	if _, err := p.storage.Save(timetableID+".json", body); err != nil {
		return "", fmt.Errorf("persist timetable snapshot: %w", err)
	}

	return timetableID, nil
}
