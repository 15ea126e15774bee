package models

// ModuleLoad states the weekly placement demand for one pedagogical atom of a
// module, addressed to a specific audience.
type ModuleLoad struct {
	ModuleID     string       `json:"module_id"`
	AtomKind     AtomKind     `json:"atom_kind"`
	TeacherID    string       `json:"teacher_id"`
	AudienceKind AudienceKind `json:"audience_kind"`
	AudienceID   string       `json:"audience_id"`
	AudienceSize int          `json:"audience_size"`
	WeeklyHours  int          `json:"weekly_hours"`
	NeedsRoom    bool         `json:"needs_room"`
}

// OptimizationInput is everything a scheduling algorithm receives.
type OptimizationInput struct {
	Loads       []ModuleLoad `json:"loads"`
	Teachers    []Teacher    `json:"teachers"`
	Rooms       []Room       `json:"rooms"`
	Constraints []Constraint `json:"constraints"`
	StartWeek   int          `json:"start_week"`
	EndWeek     int          `json:"end_week"`
}

// OptimizationResult is what any scheduling algorithm must produce. The
// entries are candidates only: the caller always re-runs conflict detection
// before accepting them.
type OptimizationResult struct {
	Entries    []ScheduleEntry `json:"entries"`
	Score      float64         `json:"score"`
	Converged  bool            `json:"converged"`
	Iterations int             `json:"iterations"`
}
