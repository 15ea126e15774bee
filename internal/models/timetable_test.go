package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduleEntryWeeks(t *testing.T) {
	weekly := ScheduleEntry{Recurrence: RecurrenceWeekly, StartWeek: 1, EndWeek: 4}
	assert.Equal(t, []int{1, 2, 3, 4}, weekly.Weeks())

	biweekly := ScheduleEntry{Recurrence: RecurrenceBiweekly, StartWeek: 2, EndWeek: 9}
	assert.Equal(t, []int{2, 4, 6, 8}, biweekly.Weeks())
	assert.True(t, biweekly.OccupiesWeek(4))
	assert.False(t, biweekly.OccupiesWeek(5))
	assert.False(t, biweekly.OccupiesWeek(10))

	inverted := ScheduleEntry{Recurrence: RecurrenceWeekly, StartWeek: 5, EndWeek: 3}
	assert.Empty(t, inverted.Weeks())
}

func TestTimetableEntryDate(t *testing.T) {
	tt := Timetable{
		AcademicYear:  2025,
		Semester:      SemesterS1,
		SemesterStart: time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC), // Monday
	}

	// Week 1 Monday is the semester start itself.
	assert.Equal(t, tt.SemesterStart, tt.EntryDate(1, 1))
	// Week 1 Wednesday is two days later.
	assert.Equal(t, tt.SemesterStart.AddDate(0, 0, 2), tt.EntryDate(1, 3))
	// Week 7 Monday is six full weeks in.
	assert.Equal(t, tt.SemesterStart.AddDate(0, 0, 42), tt.EntryDate(7, 1))
}

func TestTimetableSemesterEnd(t *testing.T) {
	s1 := Timetable{AcademicYear: 2025, Semester: SemesterS1}
	assert.Equal(t, 2025, s1.SemesterEnd().Year())
	assert.Equal(t, time.December, s1.SemesterEnd().Month())

	s2 := Timetable{AcademicYear: 2025, Semester: SemesterS2}
	assert.Equal(t, 2026, s2.SemesterEnd().Year())
	assert.Equal(t, time.May, s2.SemesterEnd().Month())
}

func TestTimetableEditable(t *testing.T) {
	assert.True(t, Timetable{Status: TimetableStatusDraft}.Editable())
	assert.True(t, Timetable{Status: TimetableStatusInvalidated}.Editable())
	assert.False(t, Timetable{Status: TimetableStatusValidated}.Editable())
	assert.False(t, Timetable{Status: TimetableStatusPublished}.Editable())
}
