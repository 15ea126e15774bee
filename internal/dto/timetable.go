package dto

import (
	"time"

	"github.com/campusops/timetable-api/internal/models"
)

// CreateTimetableRequest opens a new draft timetable for authoring.
type CreateTimetableRequest struct {
	FormationID   string    `json:"formationId" validate:"required"`
	AcademicYear  int       `json:"academicYear" validate:"required,min=2000,max=2100"`
	Semester      string    `json:"semester" validate:"required,oneof=S1 S2"`
	SemesterStart time.Time `json:"semesterStart" validate:"required"`
}

// ScheduleEntryRequest is one weekly placement in an authoring payload.
type ScheduleEntryRequest struct {
	ModuleID            string  `json:"moduleId" validate:"required"`
	AtomKind            string  `json:"atomKind" validate:"required,oneof=LECTURE TUTORIAL LAB INTERNSHIP SEMINAR"`
	TeacherID           string  `json:"teacherId" validate:"required"`
	AudienceKind        string  `json:"audienceKind" validate:"required,oneof=SECTION GROUP"`
	AudienceID          string  `json:"audienceId" validate:"required"`
	AudienceSize        int     `json:"audienceSize" validate:"required,min=1"`
	DayOfWeek           int     `json:"dayOfWeek" validate:"required,min=1,max=7"`
	StartMinute         int     `json:"startMinute" validate:"min=0,max=1439"`
	EndMinute           int     `json:"endMinute" validate:"required,min=1,max=1440"`
	RoomID              *string `json:"roomId,omitempty"`
	Recurrence          string  `json:"recurrence" validate:"required,oneof=WEEKLY BIWEEKLY"`
	StartWeek           int     `json:"startWeek" validate:"required,min=1,max=52"`
	EndWeek             int     `json:"endWeek" validate:"required,min=1,max=52"`
	RequiresReservation bool    `json:"requiresReservation"`
}

// Entry converts the request into a model.
func (r ScheduleEntryRequest) Entry() models.ScheduleEntry {
	return models.ScheduleEntry{
		ModuleID:            r.ModuleID,
		AtomKind:            models.AtomKind(r.AtomKind),
		TeacherID:           r.TeacherID,
		AudienceKind:        models.AudienceKind(r.AudienceKind),
		AudienceID:          r.AudienceID,
		AudienceSize:        r.AudienceSize,
		DayOfWeek:           r.DayOfWeek,
		StartMinute:         r.StartMinute,
		EndMinute:           r.EndMinute,
		RoomID:              r.RoomID,
		Recurrence:          models.Recurrence(r.Recurrence),
		StartWeek:           r.StartWeek,
		EndWeek:             r.EndWeek,
		RequiresReservation: r.RequiresReservation,
	}
}

// ReplaceEntriesRequest swaps the full entry set of a draft or invalidated
// timetable.
type ReplaceEntriesRequest struct {
	Entries []ScheduleEntryRequest `json:"entries" validate:"required,dive"`
}

// TimetableDetail is the read model the dashboard renders.
type TimetableDetail struct {
	Timetable        models.Timetable       `json:"timetable"`
	Entries          []models.ScheduleEntry `json:"entries"`
	ReservationCount int                    `json:"reservation_count"`
}

// TransitionResult reports a successful lifecycle transition.
type TransitionResult struct {
	TimetableID      string                 `json:"timetable_id"`
	Status           models.TimetableStatus `json:"status"`
	ReservationCount int                    `json:"reservation_count"`
}

// ConflictReport is the detector's read-only output.
type ConflictReport struct {
	TimetableID string            `json:"timetable_id"`
	Conflicts   []models.Conflict `json:"conflicts"`
	Blocking    bool              `json:"blocking"`
}
