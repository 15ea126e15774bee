package dto

import "encoding/json"

// CreateConstraintRequest registers a new scheduling rule. Weight is the
// priority weight used for soft scoring; mandatory rules ignore it for
// filtering but keep it for reporting order.
type CreateConstraintRequest struct {
	Description string          `json:"description" validate:"required"`
	Target      string          `json:"target" validate:"required,oneof=TEACHER ROOM SUBJECT TIME GROUP"`
	Class       string          `json:"class" validate:"required,oneof=MANDATORY PREFERRED OPTIONAL"`
	Weight      int             `json:"weight" validate:"required,min=1,max=10"`
	Params      json.RawMessage `json:"params,omitempty"`
}

// GenerateRequest triggers an optimizer run for a timetable.
type GenerateRequest struct {
	Loads         []ModuleLoadRequest `json:"loads" validate:"required,min=1,dive"`
	MaxIterations int                 `json:"maxIterations" validate:"omitempty,min=1"`
	TimeoutSecs   int                 `json:"timeoutSecs" validate:"omitempty,min=1,max=600"`
}

// ModuleLoadRequest is one atom demand handed to the optimization port.
type ModuleLoadRequest struct {
	ModuleID     string `json:"moduleId" validate:"required"`
	AtomKind     string `json:"atomKind" validate:"required,oneof=LECTURE TUTORIAL LAB INTERNSHIP SEMINAR"`
	TeacherID    string `json:"teacherId" validate:"required"`
	AudienceKind string `json:"audienceKind" validate:"required,oneof=SECTION GROUP"`
	AudienceID   string `json:"audienceId" validate:"required"`
	AudienceSize int    `json:"audienceSize" validate:"required,min=1"`
	WeeklyHours  int    `json:"weeklyHours" validate:"required,min=1"`
	NeedsRoom    bool   `json:"needsRoom"`
}
