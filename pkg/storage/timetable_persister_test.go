package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classsync/scheduler-core/internal/scheduler"
)

func TestFileTimetablePersisterWritesSnapshot(t *testing.T) {
	dir := t.TempDir()
	local, err := NewLocalStorage(dir)
	require.NoError(t, err)

	persister := NewFileTimetablePersister(local)

	slots := []scheduler.PersistedSlot{
		{CourseID: "math-101", SectionID: "section-a", TeacherID: "teacher-1", RoomID: "room-1", Day: "Monday", StartTime: "08:00", EndTime: "09:30", SessionKey: "math-101-s1"},
	}

	id, err := persister.Persist(context.Background(), slots)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	raw, err := os.ReadFile(filepath.Join(dir, id+".json"))
	require.NoError(t, err)

	var snapshot timetableSnapshot
	require.NoError(t, json.Unmarshal(raw, &snapshot))
	require.Equal(t, id, snapshot.TimetableID)
	require.Len(t, snapshot.Slots, 1)
	require.Equal(t, "math-101-s1", snapshot.Slots[0].SessionKey)
}
