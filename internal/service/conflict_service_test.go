package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/timetable-api/internal/models"
)

func strPtr(s string) *string { return &s }

func testTimetable() models.Timetable {
	return models.Timetable{
		ID:            "tt-1",
		FormationID:   "cs-l3",
		AcademicYear:  2025,
		Semester:      models.SemesterS1,
		SemesterStart: time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC), // a Monday
		Status:        models.TimetableStatusDraft,
	}
}

func weeklyEntry(id, teacherID string, roomID *string, day, start, end int) models.ScheduleEntry {
	return models.ScheduleEntry{
		ID:           id,
		TimetableID:  "tt-1",
		ModuleID:     "mod-algo",
		AtomKind:     models.AtomLecture,
		TeacherID:    teacherID,
		AudienceKind: models.AudienceSection,
		AudienceID:   "sec-a",
		AudienceSize: 30,
		DayOfWeek:    day,
		StartMinute:  start,
		EndMinute:    end,
		RoomID:       roomID,
		Recurrence:   models.RecurrenceWeekly,
		StartWeek:    1,
		EndWeek:      14,
	}
}

func TestConflictServiceRoomDoubleBooked(t *testing.T) {
	detector := NewConflictService(nil)
	room := strPtr("amphi-1")

	conflicts := detector.Detect(DetectInput{
		Timetable: testTimetable(),
		Entries: []models.ScheduleEntry{
			weeklyEntry("e1", "t1", room, 1, 480, 570),
			weeklyEntry("e2", "t2", room, 1, 540, 630),
		},
	})
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictRoomDoubleBooked, conflicts[0].Type)
	assert.Equal(t, models.SeverityBlocking, conflicts[0].Severity)
	assert.ElementsMatch(t, []string{"e1", "e2"}, conflicts[0].EntryIDs)
}

func TestConflictServiceTeacherDoubleBooked(t *testing.T) {
	detector := NewConflictService(nil)

	conflicts := detector.Detect(DetectInput{
		Timetable: testTimetable(),
		Entries: []models.ScheduleEntry{
			weeklyEntry("e1", "t1", strPtr("r1"), 2, 480, 570),
			weeklyEntry("e2", "t1", strPtr("r2"), 2, 500, 590),
		},
	})
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictTeacherDoubleBooked, conflicts[0].Type)
	assert.Equal(t, "t1", conflicts[0].TeacherID)
}

func TestConflictServiceSymmetricAndOrderIndependent(t *testing.T) {
	detector := NewConflictService(nil)
	room := strPtr("amphi-1")
	a := weeklyEntry("e1", "t1", room, 1, 480, 570)
	b := weeklyEntry("e2", "t2", room, 1, 540, 630)

	forward := detector.Detect(DetectInput{Timetable: testTimetable(), Entries: []models.ScheduleEntry{a, b}})
	reversed := detector.Detect(DetectInput{Timetable: testTimetable(), Entries: []models.ScheduleEntry{b, a}})
	assert.Equal(t, forward, reversed)
}

func TestConflictServiceDisjointWindowsAndDays(t *testing.T) {
	detector := NewConflictService(nil)
	room := strPtr("amphi-1")

	// Adjacent windows share a boundary minute but do not overlap.
	conflicts := detector.Detect(DetectInput{
		Timetable: testTimetable(),
		Entries: []models.ScheduleEntry{
			weeklyEntry("e1", "t1", room, 1, 480, 570),
			weeklyEntry("e2", "t1", room, 1, 570, 660),
			weeklyEntry("e3", "t1", room, 2, 480, 570),
		},
	})
	assert.Empty(t, conflicts)
}

func TestConflictServiceBiweeklyParity(t *testing.T) {
	detector := NewConflictService(nil)
	room := strPtr("lab-1")

	odd := weeklyEntry("e1", "t1", room, 3, 480, 600)
	odd.Recurrence = models.RecurrenceBiweekly
	odd.StartWeek, odd.EndWeek = 1, 13

	even := weeklyEntry("e2", "t2", room, 3, 480, 600)
	even.Recurrence = models.RecurrenceBiweekly
	even.StartWeek, even.EndWeek = 2, 14

	// Opposite parities never meet.
	conflicts := detector.Detect(DetectInput{Timetable: testTimetable(), Entries: []models.ScheduleEntry{odd, even}})
	assert.Empty(t, conflicts)

	// Shift to the same parity and they collide.
	even.StartWeek = 3
	conflicts = detector.Detect(DetectInput{Timetable: testTimetable(), Entries: []models.ScheduleEntry{odd, even}})
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictRoomDoubleBooked, conflicts[0].Type)
}

func TestConflictServiceBiweeklyAgainstWeekly(t *testing.T) {
	detector := NewConflictService(nil)
	room := strPtr("lab-1")

	weekly := weeklyEntry("e1", "t1", room, 3, 480, 600)
	biweekly := weeklyEntry("e2", "t2", room, 3, 480, 600)
	biweekly.Recurrence = models.RecurrenceBiweekly
	biweekly.StartWeek, biweekly.EndWeek = 2, 14

	// A weekly entry meets every week, so it always co-occurs with an
	// overlapping biweekly one.
	conflicts := detector.Detect(DetectInput{Timetable: testTimetable(), Entries: []models.ScheduleEntry{weekly, biweekly}})
	require.Len(t, conflicts, 1)
}

func TestConflictServiceReservationClash(t *testing.T) {
	detector := NewConflictService(nil)
	tt := testTimetable()
	entry := weeklyEntry("e1", "t1", strPtr("amphi-1"), 1, 480, 570)
	entry.StartWeek, entry.EndWeek = 1, 2

	// Week 2 Monday is semester start + 7 days.
	clashDate := tt.SemesterStart.AddDate(0, 0, 7)
	conflicts := detector.Detect(DetectInput{
		Timetable: tt,
		Entries:   []models.ScheduleEntry{entry},
		Reservations: []models.Reservation{
			{ID: "res-1", RoomID: "amphi-1", Date: clashDate, StartMinute: 500, EndMinute: 560, Status: models.ReservationApproved},
			{ID: "res-2", RoomID: "amphi-1", Date: clashDate, StartMinute: 500, EndMinute: 560, Status: models.ReservationPending},
		},
	})
	require.Len(t, conflicts, 1, "pending reservations must not block")
	assert.Equal(t, []string{"res-1"}, conflicts[0].ReservationIDs)
}

func TestConflictServiceCapacityExceeded(t *testing.T) {
	detector := NewConflictService(nil)
	entry := weeklyEntry("e1", "t1", strPtr("room-small"), 1, 480, 570)
	entry.AudienceSize = 45

	conflicts := detector.Detect(DetectInput{
		Timetable: testTimetable(),
		Entries:   []models.ScheduleEntry{entry},
		Rooms:     map[string]models.Room{"room-small": {ID: "room-small", Capacity: 30}},
	})
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictCapacityExceeded, conflicts[0].Type)
}

func TestConflictServiceUnknownRoom(t *testing.T) {
	detector := NewConflictService(nil)
	entry := weeklyEntry("e1", "t1", strPtr("amphi-9"), 1, 480, 570)
	inventory := map[string]models.Room{"amphi-1": {ID: "amphi-1", Capacity: 200}}

	// A typo'd room id must not sail through validation.
	conflicts := detector.Detect(DetectInput{
		Timetable: testTimetable(),
		Entries:   []models.ScheduleEntry{entry},
		Rooms:     inventory,
	})
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictRoomUnknown, conflicts[0].Type)
	assert.Equal(t, "amphi-9", conflicts[0].RoomID)
	assert.True(t, detector.HasBlocking(conflicts))

	// Without an inventory, room checks are opted out of entirely.
	conflicts = detector.Detect(DetectInput{Timetable: testTimetable(), Entries: []models.ScheduleEntry{entry}})
	assert.Empty(t, conflicts)
}

func TestConflictServiceMandatoryConstraintBlocks(t *testing.T) {
	detector := NewConflictService(nil)
	params, err := json.Marshal(models.ConstraintParams{TeacherID: "t1", BlackoutDays: []int{5}})
	require.NoError(t, err)

	entries := []models.ScheduleEntry{weeklyEntry("e1", "t1", strPtr("r1"), 5, 480, 570)}
	constraints := []models.Constraint{{
		ID:          "c1",
		Description: "t1 unavailable on Fridays",
		Target:      models.TargetTeacher,
		Class:       models.ClassMandatory,
		Weight:      10,
		Active:      true,
		Params:      params,
	}}

	conflicts := detector.Detect(DetectInput{Timetable: testTimetable(), Entries: entries, Constraints: constraints})
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictConstraintViolated, conflicts[0].Type)
	assert.Equal(t, "c1", conflicts[0].ConstraintID)
	assert.True(t, detector.HasBlocking(conflicts))

	// The same rule as preferred never blocks; it only scores.
	constraints[0].Class = models.ClassPreferred
	conflicts = detector.Detect(DetectInput{Timetable: testTimetable(), Entries: entries, Constraints: constraints})
	assert.Empty(t, conflicts)
}

func TestConflictServiceInactiveConstraintIgnored(t *testing.T) {
	detector := NewConflictService(nil)
	params, _ := json.Marshal(models.ConstraintParams{TeacherID: "t1", BlackoutDays: []int{5}})

	conflicts := detector.Detect(DetectInput{
		Timetable: testTimetable(),
		Entries:   []models.ScheduleEntry{weeklyEntry("e1", "t1", strPtr("r1"), 5, 480, 570)},
		Constraints: []models.Constraint{{
			ID: "c1", Class: models.ClassMandatory, Weight: 10, Active: false, Params: params,
		}},
	})
	assert.Empty(t, conflicts)
}

func TestConflictServiceSoftScore(t *testing.T) {
	detector := NewConflictService(nil)
	blackout, _ := json.Marshal(models.ConstraintParams{TeacherID: "t1", BlackoutDays: []int{5}})
	early, _ := json.Marshal(models.ConstraintParams{TeacherID: "t1", EarliestStartMinute: 540})

	entries := []models.ScheduleEntry{weeklyEntry("e1", "t1", strPtr("r1"), 1, 600, 690)}
	constraints := []models.Constraint{
		{ID: "c1", Class: models.ClassPreferred, Weight: 3, Active: true, Params: blackout}, // satisfied: not on Friday
		{ID: "c2", Class: models.ClassOptional, Weight: 2, Active: true, Params: early},    // satisfied: starts at 600
		{ID: "c3", Class: models.ClassMandatory, Weight: 10, Active: true, Params: blackout},
	}

	// +3 +2, mandatory excluded from scoring.
	assert.Equal(t, 5.0, detector.SoftScore(entries, constraints))

	entries[0].DayOfWeek = 5
	entries[0].StartMinute = 480
	entries[0].EndMinute = 570
	// -3 -2 once both soft rules are violated.
	assert.Equal(t, -5.0, detector.SoftScore(entries, constraints))
}

func TestConflictServiceMinBreakAndDailyLoad(t *testing.T) {
	detector := NewConflictService(nil)
	params, _ := json.Marshal(models.ConstraintParams{TeacherID: "t1", MinBreakMinutes: 15})

	conflicts := detector.Detect(DetectInput{
		Timetable: testTimetable(),
		Entries: []models.ScheduleEntry{
			weeklyEntry("e1", "t1", strPtr("r1"), 1, 480, 570),
			weeklyEntry("e2", "t1", strPtr("r2"), 1, 575, 660), // 5 minute gap
		},
		Constraints: []models.Constraint{{
			ID: "c1", Description: "breaks", Class: models.ClassMandatory, Weight: 5, Active: true, Params: params,
		}},
	})
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictConstraintViolated, conflicts[0].Type)
	assert.ElementsMatch(t, []string{"e1", "e2"}, conflicts[0].EntryIDs)
}
