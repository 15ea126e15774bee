package models

import (
	"errors"
	"fmt"
)

// ConflictType classifies a detected violation.
type ConflictType string

const (
	ConflictRoomDoubleBooked    ConflictType = "ROOM_DOUBLE_BOOKED"
	ConflictTeacherDoubleBooked ConflictType = "TEACHER_DOUBLE_BOOKED"
	ConflictCapacityExceeded    ConflictType = "CAPACITY_EXCEEDED"
	ConflictRoomUnknown         ConflictType = "ROOM_UNKNOWN"
	ConflictConstraintViolated  ConflictType = "CONSTRAINT_VIOLATED"
)

// ConflictSeverity separates violations that block validation from advisory
// findings surfaced for information only.
type ConflictSeverity string

const (
	SeverityBlocking ConflictSeverity = "BLOCKING"
	SeverityAdvisory ConflictSeverity = "ADVISORY"
)

// Conflict is an ephemeral detection result. Conflicts are recomputed on
// demand and never persisted as authoritative state.
type Conflict struct {
	Type           ConflictType     `json:"type"`
	Severity       ConflictSeverity `json:"severity"`
	EntryIDs       []string         `json:"entry_ids"`
	ReservationIDs []string         `json:"reservation_ids,omitempty"`
	RoomID         string           `json:"room_id,omitempty"`
	TeacherID      string           `json:"teacher_id,omitempty"`
	ConstraintID   string           `json:"constraint_id,omitempty"`
	DayOfWeek      int              `json:"day_of_week,omitempty"`
	Message        string           `json:"message"`
}

// Blocking reports whether the conflict must prevent validation.
func (c Conflict) Blocking() bool {
	return c.Severity == SeverityBlocking
}

// ConflictError carries the full conflict list alongside a lifecycle error so
// callers can act without re-running detection.
type ConflictError struct {
	Message   string     `json:"message"`
	Conflicts []Conflict `json:"conflicts"`
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s (%d conflicts)", e.Message, len(e.Conflicts))
}

// ConflictsFromError extracts an attached conflict list from anywhere in an
// error chain.
func ConflictsFromError(err error) []Conflict {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Conflicts
	}
	return nil
}
