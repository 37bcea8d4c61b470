package curriculum

import (
	"github.com/maktabhq/maktab-api/internal/models"
	appErrors "github.com/maktabhq/maktab-api/pkg/errors"
)

// Group values the graduation transitions assign.
const (
	GroupQuran = "B"
	GroupHifz  = "C"
)

// EligibleForQuran reports whether a stage-A student may graduate to the
// Quran stage: Qaidah finished and duas completed. Exposed as a predicate so
// callers can decide whether to offer the transition at all.
func EligibleForQuran(rec models.StudentProgress) bool {
	if ParentGroup(rec.Group) != StageQaidah {
		return false
	}
	if rec.QaidahLevel == nil || *rec.QaidahLevel != QaidahMax {
		return false
	}
	return DuasCompleted(rec.DuasStatus)
}

// GraduateToQuran builds the A to B transition. No stage-B fields are
// pre-populated; the next progress submission fills them in.
func GraduateToQuran(rec models.StudentProgress) (FieldSet, error) {
	if !EligibleForQuran(rec) {
		return nil, appErrors.Clone(appErrors.ErrNotEligible, "Qaidah and duas must both be completed before graduating")
	}
	return FieldSet{FieldGroup: GroupQuran}, nil
}

// EligibleForHifz reports whether a stage-B student may graduate to the Hifz
// stage. Only male students have a stage-C path; a female student's record
// never becomes eligible regardless of completion state.
func EligibleForHifz(rec models.StudentProgress) bool {
	if ParentGroup(rec.Group) != StageQuran {
		return false
	}
	if rec.Gender != models.GenderBoys {
		return false
	}
	return rec.QuranCompleted && rec.TajweedCompleted
}

// GraduateToHifz builds the B to C transition. The sabak is deliberately left
// unset, so the student lands on the Juz Amma sub-track by derivation; a new
// stage-C student always starts there unless explicitly skipped.
func GraduateToHifz(rec models.StudentProgress) (FieldSet, error) {
	if !EligibleForHifz(rec) {
		return nil, appErrors.Clone(appErrors.ErrNotEligible, "Quran and Tajweed must both be completed, and the Hifz stage is only open to boys")
	}
	return FieldSet{FieldGroup: GroupHifz}, nil
}

// SkipToHifz builds the manual Juz Amma override. It is the only way onto the
// Hifz sub-track without working through all 37 surahs.
func SkipToHifz() FieldSet {
	return FieldSet{
		FieldJuzAmmaCompleted: true,
		FieldHifzSabak:        1,
		FieldHifzSPara:        1,
	}
}

// CompleteJuzAmma builds the natural completion at surah 114. Apart from
// recording the final surah it is identical to the manual skip.
func CompleteJuzAmma() FieldSet {
	return SkipToHifz().Merge(FieldSet{FieldJuzAmmaSurah: JuzAmmaLastSurah})
}

// MoveBackToJuzAmma builds the reverse track switch. Destructive: the three
// Hifz measures are cleared, not archived; no other operation nulls them. The
// student resumes at the previously recorded surah, or at the start of the
// sequence when none was recorded.
func MoveBackToJuzAmma(rec models.StudentProgress) FieldSet {
	surah := JuzAmmaFirstSurah
	if rec.JuzAmmaSurah != nil && ValidJuzAmmaSurah(*rec.JuzAmmaSurah) {
		surah = *rec.JuzAmmaSurah
	}
	return FieldSet{
		FieldJuzAmmaSurah:     surah,
		FieldJuzAmmaCompleted: false,
		FieldHifzSabak:        nil,
		FieldHifzSPara:        nil,
		FieldHifzDaur:         nil,
	}
}

// MarkHafiz builds the terminal Hifz milestone. A Hafiz has no pending
// revision juz, so the daur is forced to null alongside the flag.
func MarkHafiz() FieldSet {
	return FieldSet{
		FieldHifzGraduated: true,
		FieldHifzDaur:      nil,
	}
}

// UnmarkHafiz clears the milestone flag only. Lowering a flag needs no
// confirmation; the daur stays null until the next submission supplies one.
func UnmarkHafiz() FieldSet {
	return FieldSet{FieldHifzGraduated: false}
}
