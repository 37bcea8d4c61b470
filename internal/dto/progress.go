package dto

import (
	"time"

	"github.com/maktabhq/maktab-api/internal/curriculum"
	"github.com/maktabhq/maktab-api/internal/models"
)

// SubmitProgressRequest is a candidate progress update for one student. The
// confirmation token is only needed when the submission raises a milestone
// flag (see the confirmation gate).
type SubmitProgressRequest struct {
	curriculum.Update
	ConfirmationToken string `json:"confirmation_token,omitempty" validate:"omitempty,uuid4"`
}

// SubmitProgressResponse reports what an accepted submission changed.
type SubmitProgressResponse struct {
	Student models.StudentProgress   `json:"student"`
	Track   curriculum.Track         `json:"track"`
	Changes []curriculum.FieldChange `json:"changes"`
}

// ProgressFormResponse carries everything the caller needs to render the
// applicable data-entry form: the resolved track, current values, reference
// tables, and which graduation offers may be shown.
type ProgressFormResponse struct {
	Student        models.StudentProgress `json:"student"`
	Track          curriculum.Track       `json:"track"`
	Duas           *curriculum.DuasStatus `json:"duas,omitempty"`
	JuzAmmaPercent *int                   `json:"juz_amma_percent,omitempty"`
	Eligibility    EligibilityResponse    `json:"eligibility"`
	Reference      FormReference          `json:"reference"`
}

// EligibilityResponse exposes the transition predicates so the caller can
// decide whether to offer a graduation at all.
type EligibilityResponse struct {
	Quran bool `json:"quran"`
	Hifz  bool `json:"hifz"`
}

// FormReference is the read-only lookup data entry forms are built from.
type FormReference struct {
	QaidahMax       int                `json:"qaidah_max"`
	DuasBooks       map[string]int     `json:"duas_books"`
	QuranJuzCount   int                `json:"quran_juz_count"`
	TajweedEntryMax int                `json:"tajweed_entry_max"`
	HifzJuzCount    int                `json:"hifz_juz_count"`
	JuzAmmaSequence []curriculum.Surah `json:"juz_amma_sequence,omitempty"`
}

// TransitionRequest carries the confirmation token for gated transitions.
type TransitionRequest struct {
	ConfirmationToken string `json:"confirmation_token,omitempty"`
}

// ProposeConfirmationRequest opens the two-phase confirmation protocol. Flag
// names the completion field a complete_milestone token covers.
type ProposeConfirmationRequest struct {
	Action string `json:"action" validate:"required"`
	Flag   string `json:"flag,omitempty"`
}

// ProposeConfirmationResponse returns the pending-confirmation token.
type ProposeConfirmationResponse struct {
	Token     string    `json:"token"`
	Action    string    `json:"action"`
	Flag      string    `json:"flag,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DueSkipRequest defers the due prompt for one student or a whole class. By
// design it changes nothing; skipped students remain due.
type DueSkipRequest struct {
	StudentID string `json:"student_id,omitempty"`
	Group     string `json:"group,omitempty"`
}
