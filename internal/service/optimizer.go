package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/campusops/timetable-api/internal/models"
	appErrors "github.com/campusops/timetable-api/pkg/errors"
)

// OptimizerPort is the contract a pluggable scheduling algorithm must
// satisfy. Implementations must be total within the budget: terminate when
// the context is cancelled or the iteration cap is reached, whichever comes
// first. The engine never trusts a port's output; every proposal is re-run
// through the conflict detector before it is surfaced.
type OptimizerPort interface {
	Optimize(ctx context.Context, input models.OptimizationInput, budget OptimizerBudget) (*models.OptimizationResult, error)
}

// OptimizerBudget caps a single optimizer run.
type OptimizerBudget struct {
	MaxIterations int
	Timeout       time.Duration
}

// ProposalOutcome is the re-validated result of an optimizer run.
type ProposalOutcome struct {
	Entries   []models.ScheduleEntry `json:"entries"`
	Score     float64                `json:"score"`
	SoftScore float64                `json:"soft_score"`
	Converged bool                   `json:"converged"`
	Conflicts []models.Conflict      `json:"conflicts"`
}

// OptimizerRunner drives a port under a hard budget and re-validates its
// output against a fresh occupancy snapshot.
type OptimizerRunner struct {
	port     OptimizerPort
	detector *ConflictService
	defaults OptimizerBudget
	logger   *zap.Logger
}

// NewOptimizerRunner wires a runner around a port. A nil port is allowed;
// runs then fail with a precondition error instead of a panic, since no real
// solver ships with this service.
func NewOptimizerRunner(port OptimizerPort, detector *ConflictService, defaults OptimizerBudget, logger *zap.Logger) *OptimizerRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OptimizerRunner{port: port, detector: detector, defaults: defaults, logger: logger}
}

// Run executes the port and re-validates the proposal. The timetable provides
// the calendar frame for reservation cross-checks; snapshot carries the
// approved reservations of other timetables.
func (r *OptimizerRunner) Run(
	ctx context.Context,
	t models.Timetable,
	input models.OptimizationInput,
	snapshot []models.Reservation,
	rooms map[string]models.Room,
	budget OptimizerBudget,
) (*ProposalOutcome, error) {
	if r.port == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no optimizer registered")
	}
	if budget.MaxIterations <= 0 {
		budget.MaxIterations = r.defaults.MaxIterations
	}
	if budget.Timeout <= 0 {
		budget.Timeout = r.defaults.Timeout
	}
	if budget.MaxIterations <= 0 {
		budget.MaxIterations = 1000
	}
	if budget.Timeout <= 0 {
		budget.Timeout = time.Minute
	}

	runCtx, cancel := context.WithTimeout(ctx, budget.Timeout)
	defer cancel()

	started := time.Now()
	result, err := r.port.Optimize(runCtx, input, budget)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "optimizer run failed")
	}
	r.logger.Sugar().Infow("optimizer run finished",
		"iterations", result.Iterations,
		"converged", result.Converged,
		"elapsed", time.Since(started),
		"entries", len(result.Entries),
	)

	conflicts := r.detector.Detect(DetectInput{
		Timetable:    t,
		Entries:      result.Entries,
		Reservations: snapshot,
		Constraints:  input.Constraints,
		Rooms:        rooms,
	})

	return &ProposalOutcome{
		Entries:   result.Entries,
		Score:     result.Score,
		SoftScore: r.detector.SoftScore(result.Entries, input.Constraints),
		Converged: result.Converged,
		Conflicts: conflicts,
	}, nil
}
