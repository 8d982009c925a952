package service

import (
	"github.com/classsync/scheduler-core/internal/dto"
	"github.com/classsync/scheduler-core/pkg/export"
)

var slotDatasetHeaders = []string{"day", "start_time", "end_time", "course_id", "section_id", "teacher_id", "room_id"}

// SlotsToDataset converts a generated timetable's slots into the
// teacher's tabular export.Dataset shape, so the existing CSV exporter
// can render a timetable the same way it renders any other report.
func SlotsToDataset(slots []dto.SlotResponse) export.Dataset {
	rows := make([]map[string]string, 0, len(slots))
	for _, s := range slots {
		rows = append(rows, map[string]string{
			"day":        s.Day,
			"start_time": s.StartTime,
			"end_time":   s.EndTime,
			"course_id":  s.CourseID,
			"section_id": s.SectionID,
			"teacher_id": s.TeacherID,
			"room_id":    s.RoomID,
		})
	}
	return export.Dataset{Headers: slotDatasetHeaders, Rows: rows}
}

// ExportCSV renders a cached proposal's slots as CSV bytes.
func (s *ScheduleGeneratorService) ExportCSV(timetableID string) ([]byte, error) {
	resp, err := s.Get(timetableID)
	if err != nil {
		return nil, err
	}
	return export.NewCSVExporter().Render(SlotsToDataset(resp.Slots))
}
