package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/maktabhq/maktab-api/internal/curriculum"
	"github.com/maktabhq/maktab-api/internal/dto"
	"github.com/maktabhq/maktab-api/internal/models"
	appErrors "github.com/maktabhq/maktab-api/pkg/errors"
)

const monthLayout = "2006-01"

type progressStore interface {
	FindByID(ctx context.Context, id string) (*models.StudentProgress, error)
	ApplyFieldSet(ctx context.Context, id string, fs curriculum.FieldSet) error
}

type auditStore interface {
	Append(ctx context.Context, entries []models.ProgressAudit) error
	ListByStudent(ctx context.Context, studentID string, limit int) ([]models.ProgressAudit, error)
}

type confirmationGate interface {
	Consume(ctx context.Context, token, studentID, action, flag string) error
}

// ProgressService runs the submission pipeline: fresh read, track derivation,
// validation, confirmation gate, diff, persist, audit. A rejection anywhere
// before persist leaves the record untouched.
type ProgressService struct {
	repo     progressStore
	audit    auditStore
	gate     confirmationGate
	logger   *zap.Logger
	validate *validator.Validate
	metrics  *MetricsService
	now      func() time.Time
}

// WithMetrics attaches a submission counter. Optional.
func (s *ProgressService) WithMetrics(m *MetricsService) *ProgressService {
	s.metrics = m
	return s
}

// NewProgressService constructs the service.
func NewProgressService(repo progressStore, audit auditStore, gate confirmationGate, logger *zap.Logger) *ProgressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressService{
		repo:     repo,
		audit:    audit,
		gate:     gate,
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Form returns everything needed to render the applicable data-entry form for
// a student: resolved track, current values, reference tables, eligibility.
func (s *ProgressService) Form(ctx context.Context, studentID string) (*dto.ProgressFormResponse, error) {
	rec, err := s.load(ctx, studentID)
	if err != nil {
		return nil, err
	}
	track := curriculum.ResolveTrack(*rec)

	resp := &dto.ProgressFormResponse{
		Student: *rec,
		Track:   track,
		Eligibility: dto.EligibilityResponse{
			Quran: curriculum.EligibleForQuran(*rec),
			Hifz:  curriculum.EligibleForHifz(*rec),
		},
		Reference: dto.FormReference{
			QaidahMax:       curriculum.QaidahMax,
			QuranJuzCount:   curriculum.QuranJuzCount,
			TajweedEntryMax: curriculum.TajweedEntryMax,
			HifzJuzCount:    curriculum.HifzJuzCount,
			DuasBooks:       duasBookReference(),
		},
	}
	if duas, err := curriculum.ParseDuasStatus(rec.DuasStatus); err == nil && duas.Set() {
		resp.Duas = &duas
	}
	if track.Stage == curriculum.StageHifz {
		resp.Reference.JuzAmmaSequence = curriculum.JuzAmmaSequence()
		if track.SubTrack == curriculum.SubTrackJuzAmma && rec.JuzAmmaSurah != nil {
			pct := curriculum.JuzAmmaPercent(*rec.JuzAmmaSurah, rec.JuzAmmaCompleted)
			resp.JuzAmmaPercent = &pct
		}
	}
	return resp, nil
}

// Submit validates a candidate update against the student's resolved track
// and, when accepted, persists the changed fields and audits each one.
// Raising a milestone flag requires a confirmed token. A resubmission that
// changes nothing is still accepted and refreshes the due-date bookkeeping.
func (s *ProgressService) Submit(ctx context.Context, studentID string, req dto.SubmitProgressRequest, actor models.Actor) (*dto.SubmitProgressResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid progress payload")
	}

	rec, err := s.load(ctx, studentID)
	if err != nil {
		return nil, err
	}
	track := curriculum.ResolveTrack(*rec)

	fs, err := curriculum.BuildUpdate(track, req.Update)
	if err != nil {
		s.recordSubmission(track, "rejected")
		return nil, err
	}

	if raised := curriculum.RaisedMilestones(*rec, fs); len(raised) > 0 {
		// One token covers one flag. A submission raising several flags at
		// once has to confirm them one at a time.
		if len(raised) > 1 {
			return nil, appErrors.Clone(appErrors.ErrConfirmationRequired, "each completion flag must be confirmed separately")
		}
		if err := s.gate.Consume(ctx, req.ConfirmationToken, studentID, ActionCompleteMilestone, raised[0]); err != nil {
			return nil, err
		}
	}

	changed, changes := curriculum.Diff(*rec, fs)
	changed.Merge(s.dueBookkeeping(*rec))

	if len(changed) > 0 {
		if err := s.repo.ApplyFieldSet(ctx, studentID, changed); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist progress update")
		}
	}
	s.emitAudit(ctx, *rec, changes, actor)
	s.recordSubmission(track, "accepted")

	fresh, err := s.load(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return &dto.SubmitProgressResponse{
		Student: *fresh,
		Track:   curriculum.ResolveTrack(*fresh),
		Changes: changes,
	}, nil
}

// Audit returns a student's change history, newest first.
func (s *ProgressService) Audit(ctx context.Context, studentID string, limit int) ([]models.ProgressAudit, error) {
	if _, err := s.load(ctx, studentID); err != nil {
		return nil, err
	}
	entries, err := s.audit.ListByStudent(ctx, studentID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit history")
	}
	return entries, nil
}

func (s *ProgressService) load(ctx context.Context, studentID string) (*models.StudentProgress, error) {
	rec, err := s.repo.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student record")
	}
	return rec, nil
}

// dueBookkeeping marks the current month as recorded and clears the due
// markers, pruned down to the fields that actually change. Bookkeeping is not
// part of the audit trail.
func (s *ProgressService) dueBookkeeping(rec models.StudentProgress) curriculum.FieldSet {
	month := s.now().UTC().Format(monthLayout)
	proposed := curriculum.FieldSet{
		curriculum.FieldLastProgressMonth: month,
		curriculum.FieldProgressDueMonth:  nil,
		curriculum.FieldProgressDueSince:  nil,
	}
	changed, _ := curriculum.Diff(rec, proposed)
	if rec.ProgressDueSince != nil {
		changed[curriculum.FieldProgressDueSince] = nil
	}
	return changed
}

func (s *ProgressService) emitAudit(ctx context.Context, rec models.StudentProgress, changes []curriculum.FieldChange, actor models.Actor) {
	if s.audit == nil || len(changes) == 0 {
		return
	}
	group := curriculum.RenderValue(curriculum.CurrentValue(rec, curriculum.FieldGroup))
	entries := make([]models.ProgressAudit, 0, len(changes))
	for _, change := range changes {
		entries = append(entries, models.ProgressAudit{
			StudentID:       rec.ID,
			StudentName:     rec.FullName,
			Field:           change.Field,
			OldValue:        change.Old,
			NewValue:        change.New,
			StudentGroup:    group,
			PerformedBy:     actor.ID,
			PerformedByName: actor.Name,
		})
	}
	if err := s.audit.Append(ctx, entries); err != nil {
		s.logger.Warn("failed to append progress audit", zap.Error(err), zap.String("student_id", rec.ID))
	}
}

func (s *ProgressService) recordSubmission(track curriculum.Track, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordSubmission(string(track.Stage), outcome)
	}
}

func duasBookReference() map[string]int {
	books := map[string]int{}
	for _, book := range curriculum.DuasBooks() {
		books[book] = curriculum.DuasLevelsFor(book)
	}
	return books
}
