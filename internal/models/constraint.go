package models

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ConstraintTarget narrows the resources a rule applies to.
type ConstraintTarget string

const (
	TargetTeacher ConstraintTarget = "TEACHER"
	TargetRoom    ConstraintTarget = "ROOM"
	TargetSubject ConstraintTarget = "SUBJECT"
	TargetTime    ConstraintTarget = "TIME"
	TargetGroup   ConstraintTarget = "GROUP"
)

// ConstraintClass determines how a rule is used downstream: mandatory rules
// are hard filters, preferred and optional rules contribute a signed score
// term proportional to their weight.
type ConstraintClass string

const (
	ClassMandatory ConstraintClass = "MANDATORY"
	ClassPreferred ConstraintClass = "PREFERRED"
	ClassOptional  ConstraintClass = "OPTIONAL"
)

// Constraint is a scheduling rule independent of any single timetable.
type Constraint struct {
	ID          string           `db:"id" json:"id"`
	Description string           `db:"description" json:"description"`
	Target      ConstraintTarget `db:"target" json:"target"`
	Class       ConstraintClass  `db:"class" json:"class"`
	Weight      int              `db:"weight" json:"weight"`
	Active      bool             `db:"active" json:"active"`
	Params      types.JSONText   `db:"params" json:"params,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

// ConstraintParams is the decoded free-form rule payload. Only the fields
// relevant to the rule's target are set.
type ConstraintParams struct {
	TeacherID           string `json:"teacher_id,omitempty"`
	RoomID              string `json:"room_id,omitempty"`
	ModuleID            string `json:"module_id,omitempty"`
	AudienceID          string `json:"audience_id,omitempty"`
	BlackoutDays        []int  `json:"blackout_days,omitempty"`
	EarliestStartMinute int    `json:"earliest_start_minute,omitempty"`
	LatestEndMinute     int    `json:"latest_end_minute,omitempty"`
	MinBreakMinutes     int    `json:"min_break_minutes,omitempty"`
	MaxDailyMinutes     int    `json:"max_daily_minutes,omitempty"`
}

// DecodeParams unmarshals the stored rule payload. An empty payload decodes
// to the zero value rather than an error.
func (c Constraint) DecodeParams() (ConstraintParams, error) {
	var params ConstraintParams
	if len(c.Params) == 0 {
		return params, nil
	}
	if err := json.Unmarshal(c.Params, &params); err != nil {
		return ConstraintParams{}, err
	}
	return params, nil
}
