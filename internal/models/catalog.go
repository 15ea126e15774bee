package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Room is a bookable teaching space from the faculty's space inventory.
// The inventory is read-only input to the engine.
type Room struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Building  string         `db:"building" json:"building"`
	Capacity  int            `db:"capacity" json:"capacity"`
	Equipment types.JSONText `db:"equipment" json:"equipment,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// Module is a taught unit from the formation catalog, with the contact hours
// each pedagogical atom requires per week.
type Module struct {
	ID            string    `db:"id" json:"id"`
	Code          string    `db:"code" json:"code"`
	Name          string    `db:"name" json:"name"`
	FormationID   string    `db:"formation_id" json:"formation_id"`
	Semester      Semester  `db:"semester" json:"semester"`
	LectureHours  int       `db:"lecture_hours" json:"lecture_hours"`
	TutorialHours int       `db:"tutorial_hours" json:"tutorial_hours"`
	LabHours      int       `db:"lab_hours" json:"lab_hours"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Teacher is a member of the teaching staff with optional availability
// windows encoded as free-form JSON from the HR system.
type Teacher struct {
	ID           string         `db:"id" json:"id"`
	FullName     string         `db:"full_name" json:"full_name"`
	Email        string         `db:"email" json:"email"`
	Department   string         `db:"department" json:"department"`
	Availability types.JSONText `db:"availability" json:"availability,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}
