package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/maktabhq/maktab-api/internal/curriculum"
	"github.com/maktabhq/maktab-api/internal/dto"
	"github.com/maktabhq/maktab-api/internal/models"
	appErrors "github.com/maktabhq/maktab-api/pkg/errors"
)

// Confirmable actions. Raising a milestone flag or running a destructive
// track switch requires one; lowering a flag never does.
const (
	ActionSkipToHifz        = "skip_to_hifz"
	ActionMoveBackToJuzAmma = "move_back_to_juz_amma"
	ActionMarkHafiz         = "mark_hafiz"
	ActionCompleteMilestone = "complete_milestone"
)

func validAction(action string) bool {
	switch action {
	case ActionSkipToHifz, ActionMoveBackToJuzAmma, ActionMarkHafiz, ActionCompleteMilestone:
		return true
	}
	return false
}

func validMilestoneFlag(flag string) bool {
	switch flag {
	case curriculum.FieldQaidahLevel, curriculum.FieldDuasStatus,
		curriculum.FieldQuranCompleted, curriculum.FieldTajweedCompleted,
		curriculum.FieldHifzGraduated, curriculum.FieldJuzAmmaCompleted:
		return true
	}
	return false
}

// PendingConfirmation is the state held between propose and confirm. Flag is
// set only for complete_milestone, naming the single field the token covers.
type PendingConfirmation struct {
	StudentID  string    `json:"student_id"`
	Action     string    `json:"action"`
	Flag       string    `json:"flag,omitempty"`
	ProposedBy string    `json:"proposed_by"`
	ProposedAt time.Time `json:"proposed_at"`
}

type confirmationStore interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetDel(ctx context.Context, key string, dest interface{}) error
}

// ConfirmationService implements the two-phase completion gate: Propose hands
// out a single-use token, Consume redeems it. Tokens expire on their own, so
// an abandoned dialog leaves no state behind.
type ConfirmationService struct {
	store  confirmationStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewConfirmationService constructs the gate.
func NewConfirmationService(store confirmationStore, ttl time.Duration, logger *zap.Logger) *ConfirmationService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfirmationService{store: store, ttl: ttl, logger: logger}
}

// Propose opens the gate for one action on one student and returns the token
// the caller must echo back to confirm. A complete_milestone proposal names
// the flag it covers; the token confirms that flag and no other.
func (s *ConfirmationService) Propose(ctx context.Context, studentID, action, flag string, actor models.Actor) (*dto.ProposeConfirmationResponse, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	if !validAction(action) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown confirmable action: %s", action))
	}
	if action == ActionCompleteMilestone {
		if !validMilestoneFlag(flag) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown completion flag: %s", flag))
		}
	} else if flag != "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "flag applies to complete_milestone only")
	}
	token := uuid.NewString()
	pending := PendingConfirmation{
		StudentID:  studentID,
		Action:     action,
		Flag:       flag,
		ProposedBy: actor.ID,
		ProposedAt: time.Now().UTC(),
	}
	if err := s.store.Set(ctx, confirmationKey(token), pending, s.ttl); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store pending confirmation")
	}
	s.logger.Debug("confirmation proposed",
		zap.String("student_id", studentID),
		zap.String("action", action),
		zap.String("flag", flag),
		zap.String("proposed_by", actor.ID))
	return &dto.ProposeConfirmationResponse{
		Token:     token,
		Action:    action,
		Flag:      flag,
		ExpiresAt: pending.ProposedAt.Add(s.ttl),
	}, nil
}

// Consume redeems a token for the given student, action, and flag. Tokens are
// single-use: a successful read removes them. A missing, expired, or
// mismatched token all surface as confirmation-required, so the caller simply
// re-proposes.
func (s *ConfirmationService) Consume(ctx context.Context, token, studentID, action, flag string) error {
	if token == "" {
		return appErrors.ErrConfirmationRequired
	}
	var pending PendingConfirmation
	if err := s.store.GetDel(ctx, confirmationKey(token), &pending); err != nil {
		if appErrors.Is(err, appErrors.ErrCacheMiss) {
			return appErrors.Clone(appErrors.ErrConfirmationRequired, "confirmation token is unknown or expired")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pending confirmation")
	}
	if pending.StudentID != studentID || pending.Action != action || pending.Flag != flag {
		return appErrors.Clone(appErrors.ErrConfirmationRequired, "confirmation token does not match this operation")
	}
	return nil
}

func confirmationKey(token string) string {
	return "confirm:" + token
}
