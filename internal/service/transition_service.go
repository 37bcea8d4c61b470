package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/maktabhq/maktab-api/internal/curriculum"
	"github.com/maktabhq/maktab-api/internal/dto"
	"github.com/maktabhq/maktab-api/internal/models"
	appErrors "github.com/maktabhq/maktab-api/pkg/errors"
)

// TransitionService applies graduations and stage-C track switches. Each
// operation proposes a complete field set or nothing; preconditions are
// checked against a fresh read every time.
type TransitionService struct {
	repo    progressStore
	audit   auditStore
	gate    confirmationGate
	logger  *zap.Logger
	metrics *MetricsService
}

// NewTransitionService constructs the service.
func NewTransitionService(repo progressStore, audit auditStore, gate confirmationGate, logger *zap.Logger) *TransitionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransitionService{repo: repo, audit: audit, gate: gate, logger: logger}
}

// WithMetrics attaches a transition counter. Optional.
func (s *TransitionService) WithMetrics(m *MetricsService) *TransitionService {
	s.metrics = m
	return s
}

// GraduateToQuran moves an eligible stage-A student into stage B.
func (s *TransitionService) GraduateToQuran(ctx context.Context, studentID string, actor models.Actor) (*dto.SubmitProgressResponse, error) {
	rec, err := s.load(ctx, studentID)
	if err != nil {
		return nil, err
	}
	fs, err := curriculum.GraduateToQuran(*rec)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, *rec, fs, actor, "graduate_to_quran")
}

// GraduateToHifz moves an eligible stage-B student into stage C, landing on
// the Juz Amma sub-track.
func (s *TransitionService) GraduateToHifz(ctx context.Context, studentID string, actor models.Actor) (*dto.SubmitProgressResponse, error) {
	rec, err := s.load(ctx, studentID)
	if err != nil {
		return nil, err
	}
	fs, err := curriculum.GraduateToHifz(*rec)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, *rec, fs, actor, "graduate_to_hifz")
}

// SkipToHifz is the confirmed manual override onto the Hifz sub-track.
func (s *TransitionService) SkipToHifz(ctx context.Context, studentID, token string, actor models.Actor) (*dto.SubmitProgressResponse, error) {
	rec, err := s.load(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if track := curriculum.ResolveTrack(*rec); track.SubTrack != curriculum.SubTrackJuzAmma {
		return nil, appErrors.Clone(appErrors.ErrNotEligible, "student is not on the Juz Amma sub-track")
	}
	if err := s.gate.Consume(ctx, token, studentID, ActionSkipToHifz, ""); err != nil {
		return nil, err
	}
	return s.apply(ctx, *rec, curriculum.SkipToHifz(), actor, "skip_to_hifz")
}

// MoveBackToJuzAmma is the confirmed, destructive reverse switch: the three
// Hifz measures are cleared, not archived.
func (s *TransitionService) MoveBackToJuzAmma(ctx context.Context, studentID, token string, actor models.Actor) (*dto.SubmitProgressResponse, error) {
	rec, err := s.load(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if track := curriculum.ResolveTrack(*rec); track.SubTrack != curriculum.SubTrackHifz {
		return nil, appErrors.Clone(appErrors.ErrNotEligible, "student is not on the Hifz sub-track")
	}
	if err := s.gate.Consume(ctx, token, studentID, ActionMoveBackToJuzAmma, ""); err != nil {
		return nil, err
	}
	return s.apply(ctx, *rec, curriculum.MoveBackToJuzAmma(*rec), actor, "move_back_to_juz_amma")
}

// MarkHafiz sets the terminal Hifz milestone. Raising the flag needs a
// confirmed token; marking an already graduated student is a no-op.
func (s *TransitionService) MarkHafiz(ctx context.Context, studentID, token string, actor models.Actor) (*dto.SubmitProgressResponse, error) {
	rec, err := s.load(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if track := curriculum.ResolveTrack(*rec); track.SubTrack != curriculum.SubTrackHifz {
		return nil, appErrors.Clone(appErrors.ErrNotEligible, "student is not on the Hifz sub-track")
	}
	if !rec.HifzGraduated {
		if err := s.gate.Consume(ctx, token, studentID, ActionMarkHafiz, ""); err != nil {
			return nil, err
		}
	}
	return s.apply(ctx, *rec, curriculum.MarkHafiz(), actor, "mark_hafiz")
}

// UnmarkHafiz lowers the milestone flag. No confirmation: a false negative is
// cheap to correct.
func (s *TransitionService) UnmarkHafiz(ctx context.Context, studentID string, actor models.Actor) (*dto.SubmitProgressResponse, error) {
	rec, err := s.load(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, *rec, curriculum.UnmarkHafiz(), actor, "unmark_hafiz")
}

func (s *TransitionService) load(ctx context.Context, studentID string) (*models.StudentProgress, error) {
	rec, err := s.repo.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student record")
	}
	return rec, nil
}

func (s *TransitionService) apply(ctx context.Context, rec models.StudentProgress, fs curriculum.FieldSet, actor models.Actor, operation string) (*dto.SubmitProgressResponse, error) {
	changed, changes := curriculum.Diff(rec, fs)
	if len(changed) > 0 {
		if err := s.repo.ApplyFieldSet(ctx, rec.ID, changed); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist transition")
		}
		s.emitAudit(ctx, rec, changes, actor)
		if s.metrics != nil {
			s.metrics.RecordTransition(operation)
		}
	}

	fresh, err := s.load(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	return &dto.SubmitProgressResponse{
		Student: *fresh,
		Track:   curriculum.ResolveTrack(*fresh),
		Changes: changes,
	}, nil
}

func (s *TransitionService) emitAudit(ctx context.Context, rec models.StudentProgress, changes []curriculum.FieldChange, actor models.Actor) {
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
		s.logger.Warn("failed to append transition audit", zap.Error(err), zap.String("student_id", rec.ID))
	}
}
