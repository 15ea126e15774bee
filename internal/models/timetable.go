package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TimetableStatus represents lifecycle phases for a timetable.
type TimetableStatus string

const (
	TimetableStatusDraft       TimetableStatus = "DRAFT"
	TimetableStatusValidated   TimetableStatus = "VALIDATED"
	TimetableStatusPublished   TimetableStatus = "PUBLISHED"
	TimetableStatusInvalidated TimetableStatus = "INVALIDATED"
)

// Semester identifies the teaching period within an academic year.
type Semester string

const (
	SemesterS1 Semester = "S1"
	SemesterS2 Semester = "S2"
)

// AtomKind is the teaching-delivery unit of a module.
type AtomKind string

const (
	AtomLecture    AtomKind = "LECTURE"
	AtomTutorial   AtomKind = "TUTORIAL"
	AtomLab        AtomKind = "LAB"
	AtomInternship AtomKind = "INTERNSHIP"
	AtomSeminar    AtomKind = "SEMINAR"
)

// AudienceKind distinguishes whole-section teaching from single-group teaching.
type AudienceKind string

const (
	AudienceSection AudienceKind = "SECTION"
	AudienceGroup   AudienceKind = "GROUP"
)

// Recurrence is the weekly repetition pattern of an entry.
type Recurrence string

const (
	RecurrenceWeekly   Recurrence = "WEEKLY"
	RecurrenceBiweekly Recurrence = "BIWEEKLY"
)

// ScheduleEntry is one recurring weekly placement inside a timetable.
// Start and end times are minutes from midnight; DayOfWeek is 1 (Monday)
// through 7 (Sunday).
type ScheduleEntry struct {
	ID                  string       `db:"id" json:"id"`
	TimetableID         string       `db:"timetable_id" json:"timetable_id"`
	ModuleID            string       `db:"module_id" json:"module_id"`
	AtomKind            AtomKind     `db:"atom_kind" json:"atom_kind"`
	TeacherID           string       `db:"teacher_id" json:"teacher_id"`
	AudienceKind        AudienceKind `db:"audience_kind" json:"audience_kind"`
	AudienceID          string       `db:"audience_id" json:"audience_id"`
	AudienceSize        int          `db:"audience_size" json:"audience_size"`
	DayOfWeek           int          `db:"day_of_week" json:"day_of_week"`
	StartMinute         int          `db:"start_minute" json:"start_minute"`
	EndMinute           int          `db:"end_minute" json:"end_minute"`
	RoomID              *string      `db:"room_id" json:"room_id,omitempty"`
	Recurrence          Recurrence   `db:"recurrence" json:"recurrence"`
	StartWeek           int          `db:"start_week" json:"start_week"`
	EndWeek             int          `db:"end_week" json:"end_week"`
	RequiresReservation bool         `db:"requires_reservation" json:"requires_reservation"`
	CreatedAt           time.Time    `db:"created_at" json:"created_at"`
}

// Weeks returns the week indices the entry actually occupies, honouring the
// recurrence pattern. Biweekly recurrence is anchored at StartWeek.
func (e ScheduleEntry) Weeks() []int {
	if e.EndWeek < e.StartWeek {
		return nil
	}
	step := 1
	if e.Recurrence == RecurrenceBiweekly {
		step = 2
	}
	weeks := make([]int, 0, (e.EndWeek-e.StartWeek)/step+1)
	for w := e.StartWeek; w <= e.EndWeek; w += step {
		weeks = append(weeks, w)
	}
	return weeks
}

// OccupiesWeek reports whether the entry meets on the given week index.
func (e ScheduleEntry) OccupiesWeek(week int) bool {
	if week < e.StartWeek || week > e.EndWeek {
		return false
	}
	if e.Recurrence == RecurrenceBiweekly {
		return (week-e.StartWeek)%2 == 0
	}
	return true
}

// Timetable is an ordered collection of schedule entries for one
// formation/academic-year/semester, with its lifecycle status and audit trail.
// Entries are owned exclusively by the timetable and have no lifecycle of
// their own.
type Timetable struct {
	ID            string          `db:"id" json:"id"`
	FormationID   string          `db:"formation_id" json:"formation_id"`
	AcademicYear  int             `db:"academic_year" json:"academic_year"`
	Semester      Semester        `db:"semester" json:"semester"`
	SemesterStart time.Time       `db:"semester_start" json:"semester_start"`
	Status        TimetableStatus `db:"status" json:"status"`
	CreatedBy     string          `db:"created_by" json:"created_by"`
	ValidatedBy   *string         `db:"validated_by" json:"validated_by,omitempty"`
	ValidatedAt   *time.Time      `db:"validated_at" json:"validated_at,omitempty"`
	Meta          types.JSONText  `db:"meta" json:"meta,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// SemesterEnd returns the last calendar day reservations may recur into.
// The mapping is a fixed institutional convention: S1 ends December 31 of the
// academic year's start year, S2 ends May 31 of the following year.
func (t Timetable) SemesterEnd() time.Time {
	switch t.Semester {
	case SemesterS2:
		return time.Date(t.AcademicYear+1, time.May, 31, 23, 59, 59, 0, time.UTC)
	default:
		return time.Date(t.AcademicYear, time.December, 31, 23, 59, 59, 0, time.UTC)
	}
}

// Editable reports whether entries may be mutated in the current status.
func (t Timetable) Editable() bool {
	return t.Status == TimetableStatusDraft || t.Status == TimetableStatusInvalidated
}

// EntryDate computes the calendar date of an entry occurrence for a week
// index, relative to the timetable's semester start. Week 1 day Monday is the
// semester start date itself.
func (t Timetable) EntryDate(week, dayOfWeek int) time.Time {
	return t.SemesterStart.AddDate(0, 0, (week-1)*7+(dayOfWeek-1))
}

// TimetableFilter describes query params for listing timetables.
type TimetableFilter struct {
	FormationID  string
	AcademicYear int
	Semester     string
	Status       string
	Page         int
	PageSize     int
}

// Pagination carries standard paging metadata in responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}
