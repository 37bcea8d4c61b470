package models

import "time"

// Gender values gate the Hifz graduation path.
const (
	GenderBoys  = "boys"
	GenderGirls = "girls"
)

// StudentProgress is the curriculum view over a student record. The engine
// reads it and proposes partial field updates; the student directory owns the
// row itself.
type StudentProgress struct {
	ID       string  `db:"id" json:"id"`
	FullName string  `db:"full_name" json:"full_name"`
	Gender   string  `db:"gender" json:"gender"`
	Group    *string `db:"student_group" json:"student_group,omitempty"`

	// Stage A
	QaidahLevel *int   `db:"qaidah_level" json:"qaidah_level,omitempty"`
	DuasStatus  string `db:"duas_status" json:"duas_status,omitempty"`

	// Stage B
	QuranJuz         *int `db:"quran_juz" json:"quran_juz,omitempty"`
	QuranCompleted   bool `db:"quran_completed" json:"quran_completed"`
	TajweedLevel     *int `db:"tajweed_level" json:"tajweed_level,omitempty"`
	TajweedCompleted bool `db:"tajweed_completed" json:"tajweed_completed"`

	// Stage C
	HifzSabak        *int `db:"hifz_sabak" json:"hifz_sabak,omitempty"`
	HifzSPara        *int `db:"hifz_s_para" json:"hifz_s_para,omitempty"`
	HifzDaur         *int `db:"hifz_daur" json:"hifz_daur,omitempty"`
	HifzGraduated    bool `db:"hifz_graduated" json:"hifz_graduated"`
	JuzAmmaSurah     *int `db:"juz_amma_surah" json:"juz_amma_surah,omitempty"`
	JuzAmmaCompleted bool `db:"juz_amma_completed" json:"juz_amma_completed"`

	// Monthly due-date lifecycle
	LastProgressMonth *string    `db:"last_progress_month" json:"last_progress_month,omitempty"`
	ProgressDueMonth  *string    `db:"progress_due_month" json:"progress_due_month,omitempty"`
	ProgressDueSince  *time.Time `db:"progress_due_since_date" json:"progress_due_since_date,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ProgressFilter encapsulates allowed search parameters for listing records.
type ProgressFilter struct {
	Group    string
	Gender   string
	DueOnly  bool
	Page     int
	PageSize int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
