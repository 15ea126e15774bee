package models

import "time"

// ReservationStatus mirrors the booking workflow of the space inventory.
type ReservationStatus string

const (
	ReservationApproved ReservationStatus = "APPROVED"
	ReservationPending  ReservationStatus = "PENDING"
	ReservationRejected ReservationStatus = "REJECTED"
)

// ReservationSource distinguishes system-generated bookings from manual ones.
type ReservationSource string

const (
	SourceSystem ReservationSource = "SYSTEM"
	SourceManual ReservationSource = "MANUAL"
)

// Reservation is a single dated booking of one room for one time interval.
// System-generated reservations carry a back-reference to the timetable,
// schedule entry and week index that produced them; they are owned by that
// pair and are only ever regenerated, never edited in place.
type Reservation struct {
	ID          string            `db:"id" json:"id"`
	RoomID      string            `db:"room_id" json:"room_id"`
	Date        time.Time         `db:"date" json:"date"`
	StartMinute int               `db:"start_minute" json:"start_minute"`
	EndMinute   int               `db:"end_minute" json:"end_minute"`
	Status      ReservationStatus `db:"status" json:"status"`
	Source      ReservationSource `db:"source" json:"source"`
	TimetableID *string           `db:"timetable_id" json:"timetable_id,omitempty"`
	EntryID     *string           `db:"entry_id" json:"entry_id,omitempty"`
	Week        *int              `db:"week" json:"week,omitempty"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
}

// Overlaps reports whether two reservations collide on the same room, date
// and time window.
func (r Reservation) Overlaps(other Reservation) bool {
	if r.RoomID != other.RoomID {
		return false
	}
	if !sameDay(r.Date, other.Date) {
		return false
	}
	return r.StartMinute < other.EndMinute && other.StartMinute < r.EndMinute
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
