package service

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/campusops/timetable-api/internal/models"
)

// DetectInput is the full snapshot one detection pass runs over: the
// candidate entries of a single timetable, the approved reservations of
// everything else, the active constraints and the room inventory.
type DetectInput struct {
	Timetable    models.Timetable
	Entries      []models.ScheduleEntry
	Reservations []models.Reservation
	Constraints  []models.Constraint
	Rooms        map[string]models.Room
}

// ConflictService finds overlapping-resource violations. It is pure and
// read-only: it never touches lifecycle state and may run concurrently with
// anything.
type ConflictService struct {
	logger *zap.Logger
}

// NewConflictService creates the detector.
func NewConflictService(logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{logger: logger}
}

// Detect returns every conflict in the input, empty if none. Detection is
// symmetric and order-independent: the result does not depend on the order
// entries arrive in.
func (s *ConflictService) Detect(input DetectInput) []models.Conflict {
	entries := make([]models.ScheduleEntry, len(input.Entries))
	copy(entries, input.Entries)
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	var conflicts []models.Conflict
	conflicts = append(conflicts, s.pairwiseConflicts(entries)...)
	conflicts = append(conflicts, s.reservationConflicts(input.Timetable, entries, input.Reservations)...)
	conflicts = append(conflicts, s.capacityConflicts(entries, input.Rooms)...)
	conflicts = append(conflicts, s.constraintConflicts(entries, input.Constraints)...)

	sortConflicts(conflicts)
	return conflicts
}

// HasBlocking reports whether any conflict in the list must prevent
// validation.
func (s *ConflictService) HasBlocking(conflicts []models.Conflict) bool {
	for _, c := range conflicts {
		if c.Blocking() {
			return true
		}
	}
	return false
}

func (s *ConflictService) pairwiseConflicts(entries []models.ScheduleEntry) []models.Conflict {
	var conflicts []models.Conflict
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			a, b := entries[i], entries[j]
			if a.DayOfWeek != b.DayOfWeek {
				continue
			}
			if !minutesOverlap(a.StartMinute, a.EndMinute, b.StartMinute, b.EndMinute) {
				continue
			}
			if !entriesCoOccur(a, b) {
				continue
			}
			if a.RoomID != nil && b.RoomID != nil && *a.RoomID == *b.RoomID {
				conflicts = append(conflicts, models.Conflict{
					Type:      models.ConflictRoomDoubleBooked,
					Severity:  models.SeverityBlocking,
					EntryIDs:  []string{a.ID, b.ID},
					RoomID:    *a.RoomID,
					DayOfWeek: a.DayOfWeek,
					Message:   fmt.Sprintf("room %s double-booked on day %d", *a.RoomID, a.DayOfWeek),
				})
			}
			if a.TeacherID == b.TeacherID {
				conflicts = append(conflicts, models.Conflict{
					Type:      models.ConflictTeacherDoubleBooked,
					Severity:  models.SeverityBlocking,
					EntryIDs:  []string{a.ID, b.ID},
					TeacherID: a.TeacherID,
					DayOfWeek: a.DayOfWeek,
					Message:   fmt.Sprintf("teacher %s double-booked on day %d", a.TeacherID, a.DayOfWeek),
				})
			}
		}
	}
	return conflicts
}

func (s *ConflictService) reservationConflicts(t models.Timetable, entries []models.ScheduleEntry, reservations []models.Reservation) []models.Conflict {
	var conflicts []models.Conflict
	for _, entry := range entries {
		if entry.RoomID == nil {
			continue
		}
		for _, week := range entry.Weeks() {
			date := t.EntryDate(week, entry.DayOfWeek)
			for _, res := range reservations {
				if res.Status != models.ReservationApproved {
					continue
				}
				if res.RoomID != *entry.RoomID {
					continue
				}
				ry, rm, rd := res.Date.Date()
				dy, dm, dd := date.Date()
				if ry != dy || rm != dm || rd != dd {
					continue
				}
				if !minutesOverlap(entry.StartMinute, entry.EndMinute, res.StartMinute, res.EndMinute) {
					continue
				}
				conflicts = append(conflicts, models.Conflict{
					Type:           models.ConflictRoomDoubleBooked,
					Severity:       models.SeverityBlocking,
					EntryIDs:       []string{entry.ID},
					ReservationIDs: []string{res.ID},
					RoomID:         res.RoomID,
					DayOfWeek:      entry.DayOfWeek,
					Message:        fmt.Sprintf("room %s already reserved on %s", res.RoomID, date.Format("2006-01-02")),
				})
			}
		}
	}
	return conflicts
}

// capacityConflicts checks entries against the room inventory. An empty
// inventory means the caller opted out of room checks entirely; with one
// present, an entry naming a room outside it is blocking, since its
// reservations could never be honoured.
func (s *ConflictService) capacityConflicts(entries []models.ScheduleEntry, rooms map[string]models.Room) []models.Conflict {
	if len(rooms) == 0 {
		return nil
	}
	var conflicts []models.Conflict
	for _, entry := range entries {
		if entry.RoomID == nil {
			continue
		}
		room, ok := rooms[*entry.RoomID]
		if !ok {
			conflicts = append(conflicts, models.Conflict{
				Type:     models.ConflictRoomUnknown,
				Severity: models.SeverityBlocking,
				EntryIDs: []string{entry.ID},
				RoomID:   *entry.RoomID,
				Message:  fmt.Sprintf("room %s is not in the room inventory", *entry.RoomID),
			})
			continue
		}
		if entry.AudienceSize > room.Capacity {
			conflicts = append(conflicts, models.Conflict{
				Type:     models.ConflictCapacityExceeded,
				Severity: models.SeverityBlocking,
				EntryIDs: []string{entry.ID},
				RoomID:   room.ID,
				Message:  fmt.Sprintf("audience of %d exceeds capacity %d of room %s", entry.AudienceSize, room.Capacity, room.ID),
			})
		}
	}
	return conflicts
}

func (s *ConflictService) constraintConflicts(entries []models.ScheduleEntry, constraints []models.Constraint) []models.Conflict {
	var conflicts []models.Conflict
	for _, constraint := range constraints {
		if !constraint.Active || constraint.Class != models.ClassMandatory {
			continue
		}
		violating, err := violatingEntries(constraint, entries)
		if err != nil {
			s.logger.Sugar().Warnw("skipping unparseable constraint", "constraint_id", constraint.ID, "error", err)
			continue
		}
		if len(violating) == 0 {
			continue
		}
		conflicts = append(conflicts, models.Conflict{
			Type:         models.ConflictConstraintViolated,
			Severity:     models.SeverityBlocking,
			EntryIDs:     violating,
			ConstraintID: constraint.ID,
			Message:      fmt.Sprintf("mandatory constraint violated: %s", constraint.Description),
		})
	}
	return conflicts
}

// SoftScore computes the signed score contribution of preferred and optional
// rules over an entry set: each satisfied rule adds its weight, each violated
// rule subtracts it. Mandatory rules never score; they filter.
func (s *ConflictService) SoftScore(entries []models.ScheduleEntry, constraints []models.Constraint) float64 {
	var score float64
	for _, constraint := range constraints {
		if !constraint.Active || constraint.Class == models.ClassMandatory {
			continue
		}
		violating, err := violatingEntries(constraint, entries)
		if err != nil {
			continue
		}
		if len(violating) > 0 {
			score -= float64(constraint.Weight)
		} else {
			score += float64(constraint.Weight)
		}
	}
	return score
}

// violatingEntries evaluates one rule against the entry set and returns the
// ids of entries breaking it.
func violatingEntries(constraint models.Constraint, entries []models.ScheduleEntry) ([]string, error) {
	params, err := constraint.DecodeParams()
	if err != nil {
		return nil, err
	}

	scoped := make([]models.ScheduleEntry, 0, len(entries))
	for _, entry := range entries {
		if params.TeacherID != "" && entry.TeacherID != params.TeacherID {
			continue
		}
		if params.RoomID != "" && (entry.RoomID == nil || *entry.RoomID != params.RoomID) {
			continue
		}
		if params.ModuleID != "" && entry.ModuleID != params.ModuleID {
			continue
		}
		if params.AudienceID != "" && entry.AudienceID != params.AudienceID {
			continue
		}
		scoped = append(scoped, entry)
	}

	violating := make(map[string]struct{})

	for _, entry := range scoped {
		for _, day := range params.BlackoutDays {
			if entry.DayOfWeek == day {
				violating[entry.ID] = struct{}{}
			}
		}
		if params.EarliestStartMinute > 0 && entry.StartMinute < params.EarliestStartMinute {
			violating[entry.ID] = struct{}{}
		}
		if params.LatestEndMinute > 0 && entry.EndMinute > params.LatestEndMinute {
			violating[entry.ID] = struct{}{}
		}
	}

	if params.MinBreakMinutes > 0 || params.MaxDailyMinutes > 0 {
		markDailyViolations(scoped, params, violating)
	}

	ids := make([]string, 0, len(violating))
	for id := range violating {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// markDailyViolations flags break and daily-load violations per teacher per
// day.
func markDailyViolations(entries []models.ScheduleEntry, params models.ConstraintParams, violating map[string]struct{}) {
	type dayKey struct {
		teacher string
		day     int
	}
	byDay := make(map[dayKey][]models.ScheduleEntry)
	for _, entry := range entries {
		key := dayKey{teacher: entry.TeacherID, day: entry.DayOfWeek}
		byDay[key] = append(byDay[key], entry)
	}

	for _, dayEntries := range byDay {
		sort.Slice(dayEntries, func(i, j int) bool { return dayEntries[i].StartMinute < dayEntries[j].StartMinute })

		if params.MinBreakMinutes > 0 {
			for i := 0; i < len(dayEntries)-1; i++ {
				gap := dayEntries[i+1].StartMinute - dayEntries[i].EndMinute
				if gap >= 0 && gap < params.MinBreakMinutes {
					violating[dayEntries[i].ID] = struct{}{}
					violating[dayEntries[i+1].ID] = struct{}{}
				}
			}
		}

		if params.MaxDailyMinutes > 0 {
			total := 0
			for _, entry := range dayEntries {
				total += entry.EndMinute - entry.StartMinute
			}
			if total > params.MaxDailyMinutes {
				for _, entry := range dayEntries {
					violating[entry.ID] = struct{}{}
				}
			}
		}
	}
}

// minutesOverlap implements the half-open window test: two windows overlap
// iff startA < endB and startB < endA.
func minutesOverlap(startA, endA, startB, endB int) bool {
	return startA < endB && startB < endA
}

// entriesCoOccur reports whether two entries ever meet in the same calendar
// week. Range intersection is necessary but not sufficient: two biweekly
// entries on opposite parities never co-occur.
func entriesCoOccur(a, b models.ScheduleEntry) bool {
	if a.StartWeek > b.EndWeek || b.StartWeek > a.EndWeek {
		return false
	}
	lo := a.StartWeek
	if b.StartWeek > lo {
		lo = b.StartWeek
	}
	hi := a.EndWeek
	if b.EndWeek < hi {
		hi = b.EndWeek
	}
	for w := lo; w <= hi; w++ {
		if a.OccupiesWeek(w) && b.OccupiesWeek(w) {
			return true
		}
	}
	return false
}

func sortConflicts(conflicts []models.Conflict) {
	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].Type != conflicts[j].Type {
			return conflicts[i].Type < conflicts[j].Type
		}
		return strings.Join(conflicts[i].EntryIDs, ",") < strings.Join(conflicts[j].EntryIDs, ",")
	})
}
