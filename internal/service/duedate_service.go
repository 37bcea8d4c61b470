package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/maktabhq/maktab-api/internal/dto"
	"github.com/maktabhq/maktab-api/internal/models"
	appErrors "github.com/maktabhq/maktab-api/pkg/errors"
	"github.com/maktabhq/maktab-api/pkg/jobs"
)

// SweepJobType identifies the monthly due-date sweep on the job queue.
const SweepJobType = "due_date_sweep"

type dueStore interface {
	MarkDue(ctx context.Context, month string, since time.Time) (int64, error)
	ListDue(ctx context.Context) ([]models.StudentProgress, error)
}

// DueDateService runs the monthly due-date lifecycle, independent of stage
// logic. Accepted submissions clear the markers through the progress
// pipeline; this service only ever sets them and lists who is waiting.
type DueDateService struct {
	repo   dueStore
	logger *zap.Logger
	now    func() time.Time
}

// NewDueDateService constructs the service.
func NewDueDateService(repo dueStore, logger *zap.Logger) *DueDateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DueDateService{repo: repo, logger: logger, now: time.Now}
}

// Sweep marks every assigned student without an update this month as due and
// returns how many records were stamped.
func (s *DueDateService) Sweep(ctx context.Context) (int64, error) {
	now := s.now().UTC()
	month := now.Format(monthLayout)
	stamped, err := s.repo.MarkDue(ctx, month, now)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to run due-date sweep")
	}
	s.logger.Info("due-date sweep complete", zap.String("month", month), zap.Int64("stamped", stamped))
	return stamped, nil
}

// HandleSweepJob adapts Sweep to the background queue.
func (s *DueDateService) HandleSweepJob(ctx context.Context, _ jobs.Job) error {
	_, err := s.Sweep(ctx)
	return err
}

// Due lists every student currently awaiting a progress update, oldest due
// date first.
func (s *DueDateService) Due(ctx context.Context) ([]models.StudentProgress, error) {
	records, err := s.repo.ListDue(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list due students")
	}
	return records, nil
}

// Skip defers the due prompt for a student or a whole class. Deliberately a
// no-op: skipping closes the prompt without touching the markers, so skipped
// students remain due.
func (s *DueDateService) Skip(req dto.DueSkipRequest) {
	s.logger.Debug("due prompt skipped",
		zap.String("student_id", req.StudentID),
		zap.String("group", req.Group))
}
