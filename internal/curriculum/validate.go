package curriculum

import (
	"fmt"

	"github.com/maktabhq/maktab-api/internal/models"
	appErrors "github.com/maktabhq/maktab-api/pkg/errors"
)

// Update is a candidate progress submission the teacher UI sends. Which
// fields matter depends on the resolved track; the rest are ignored.
type Update struct {
	QaidahLevel     *int        `json:"qaidah_level,omitempty"`
	QaidahCompleted bool        `json:"qaidah_completed"`
	Duas            *DuasStatus `json:"duas,omitempty"`

	QuranJuz         *int `json:"quran_juz,omitempty"`
	QuranCompleted   bool `json:"quran_completed"`
	TajweedLevel     *int `json:"tajweed_level,omitempty"`
	TajweedCompleted bool `json:"tajweed_completed"`

	JuzAmmaSurah     *int `json:"juz_amma_surah,omitempty"`
	JuzAmmaCompleted bool `json:"juz_amma_completed"`

	HifzSabak     *int `json:"hifz_sabak,omitempty"`
	HifzSPara     *int `json:"hifz_s_para,omitempty"`
	HifzDaur      *int `json:"hifz_daur,omitempty"`
	HifzGraduated bool `json:"hifz_graduated"`
}

func incomplete(format string, args ...interface{}) error {
	return appErrors.Clone(appErrors.ErrIncomplete, fmt.Sprintf(format, args...))
}

// BuildUpdate validates a candidate against the rules of the resolved track
// and, when accepted, returns the field set to propose. Rejection is local:
// nothing is contacted and the record is untouched. Completion flags
// normalise the numeric measure (Qaidah done stores level 13; Quran done
// stores a null juz, the canonical representation used throughout).
func BuildUpdate(track Track, u Update) (FieldSet, error) {
	switch track.Stage {
	case StageQaidah:
		return buildQaidahUpdate(u)
	case StageQuran:
		return buildQuranUpdate(u)
	case StageHifz:
		if track.SubTrack == SubTrackJuzAmma {
			return buildJuzAmmaUpdate(u)
		}
		return buildHifzUpdate(u)
	default:
		return nil, appErrors.ErrUnassigned
	}
}

func buildQaidahUpdate(u Update) (FieldSet, error) {
	fs := FieldSet{}
	switch {
	case u.QaidahCompleted:
		fs[FieldQaidahLevel] = QaidahMax
	case u.QaidahLevel != nil:
		if !ValidQaidahLevel(*u.QaidahLevel) {
			return nil, incomplete("qaidah level must be between 1 and %d", QaidahMax)
		}
		fs[FieldQaidahLevel] = *u.QaidahLevel
	default:
		return nil, incomplete("qaidah level or completion is required")
	}
	duas, err := requireDuas(u.Duas)
	if err != nil {
		return nil, err
	}
	fs[FieldDuasStatus] = duas.Encode()
	return fs, nil
}

func buildQuranUpdate(u Update) (FieldSet, error) {
	fs := FieldSet{}
	duas, err := requireDuas(u.Duas)
	if err != nil {
		return nil, err
	}
	fs[FieldDuasStatus] = duas.Encode()

	switch {
	case u.QuranCompleted:
		fs[FieldQuranJuz] = nil
		fs[FieldQuranCompleted] = true
	case u.QuranJuz != nil:
		if !ValidQuranJuz(*u.QuranJuz) {
			return nil, incomplete("quran juz must be between 1 and %d", QuranJuzCount)
		}
		fs[FieldQuranJuz] = *u.QuranJuz
		fs[FieldQuranCompleted] = false
	default:
		return nil, incomplete("quran juz or completion is required")
	}

	switch {
	case u.TajweedCompleted:
		fs[FieldTajweedCompleted] = true
		if u.TajweedLevel != nil && ValidTajweedLevel(*u.TajweedLevel) {
			fs[FieldTajweedLevel] = *u.TajweedLevel
		}
	case u.TajweedLevel != nil:
		if !ValidTajweedLevel(*u.TajweedLevel) {
			return nil, incomplete("tajweed level must be between 1 and %d", TajweedEntryMax)
		}
		fs[FieldTajweedLevel] = *u.TajweedLevel
		fs[FieldTajweedCompleted] = false
	default:
		return nil, incomplete("tajweed level or completion is required")
	}
	return fs, nil
}

func buildJuzAmmaUpdate(u Update) (FieldSet, error) {
	if u.JuzAmmaSurah == nil {
		return nil, incomplete("a surah selection is required")
	}
	surah := *u.JuzAmmaSurah
	if !ValidJuzAmmaSurah(surah) {
		return nil, incomplete("surah %d is not part of the Juz Amma sequence", surah)
	}
	if u.JuzAmmaCompleted {
		if surah != JuzAmmaLastSurah {
			return nil, incomplete("Juz Amma completion requires reaching surah %d", JuzAmmaLastSurah)
		}
		// Natural completion lands the student on the Hifz sub-track with
		// the same field set the manual skip produces.
		return CompleteJuzAmma(), nil
	}
	return FieldSet{FieldJuzAmmaSurah: surah}, nil
}

func buildHifzUpdate(u Update) (FieldSet, error) {
	if u.HifzSabak == nil {
		return nil, incomplete("sabak juz is required")
	}
	if !ValidHifzJuz(*u.HifzSabak) {
		return nil, incomplete("sabak juz must be between 1 and %d", HifzJuzCount)
	}
	if u.HifzSPara == nil {
		return nil, incomplete("sabak para juz is required")
	}
	if !ValidHifzJuz(*u.HifzSPara) {
		return nil, incomplete("sabak para juz must be between 1 and %d", HifzJuzCount)
	}

	fs := FieldSet{
		FieldHifzSabak: *u.HifzSabak,
		FieldHifzSPara: *u.HifzSPara,
	}
	switch {
	case u.HifzGraduated:
		// A graduated student carries no pending revision juz.
		fs[FieldHifzGraduated] = true
		fs[FieldHifzDaur] = nil
	case u.HifzDaur != nil:
		if !ValidHifzJuz(*u.HifzDaur) {
			return nil, incomplete("daur juz must be between 1 and %d", HifzJuzCount)
		}
		fs[FieldHifzDaur] = *u.HifzDaur
		fs[FieldHifzGraduated] = false
	default:
		return nil, incomplete("daur juz or Hafiz graduation is required")
	}
	return fs, nil
}

func requireDuas(d *DuasStatus) (DuasStatus, error) {
	if d == nil || !d.Set() {
		return DuasStatus{}, incomplete("duas book and level, or completion, is required")
	}
	if !d.Valid() {
		return DuasStatus{}, incomplete("duas level is not valid for %s", d.Book)
	}
	return *d, nil
}

// RaisedMilestones lists the milestone flags this field set would flip from
// false to true on the record. Raising any of them requires explicit
// confirmation; lowering never does.
func RaisedMilestones(rec models.StudentProgress, fs FieldSet) []string {
	var raised []string
	if lvl, ok := fs[FieldQaidahLevel].(int); ok && lvl == QaidahMax {
		if rec.QaidahLevel == nil || *rec.QaidahLevel != QaidahMax {
			raised = append(raised, FieldQaidahLevel)
		}
	}
	if enc, ok := fs[FieldDuasStatus].(string); ok && enc == duasCompletedToken && !DuasCompleted(rec.DuasStatus) {
		raised = append(raised, FieldDuasStatus)
	}
	for _, flag := range []struct {
		field   string
		current bool
	}{
		{FieldQuranCompleted, rec.QuranCompleted},
		{FieldTajweedCompleted, rec.TajweedCompleted},
		{FieldHifzGraduated, rec.HifzGraduated},
		{FieldJuzAmmaCompleted, rec.JuzAmmaCompleted},
	} {
		if v, ok := fs[flag.field].(bool); ok && v && !flag.current {
			raised = append(raised, flag.field)
		}
	}
	return raised
}
