package curriculum

import (
	"sort"
	"strconv"

	"github.com/maktabhq/maktab-api/internal/models"
)

// Column names the engine is allowed to propose changes to.
const (
	FieldGroup            = "student_group"
	FieldQaidahLevel      = "qaidah_level"
	FieldDuasStatus       = "duas_status"
	FieldQuranJuz         = "quran_juz"
	FieldQuranCompleted   = "quran_completed"
	FieldTajweedLevel     = "tajweed_level"
	FieldTajweedCompleted = "tajweed_completed"
	FieldHifzSabak        = "hifz_sabak"
	FieldHifzSPara        = "hifz_s_para"
	FieldHifzDaur         = "hifz_daur"
	FieldHifzGraduated    = "hifz_graduated"
	FieldJuzAmmaSurah     = "juz_amma_surah"
	FieldJuzAmmaCompleted = "juz_amma_completed"

	FieldLastProgressMonth = "last_progress_month"
	FieldProgressDueMonth  = "progress_due_month"
	FieldProgressDueSince  = "progress_due_since_date"
)

// FieldSet is a proposed partial mutation of a student record, keyed by
// column. Values are int, bool, string, or nil (SQL NULL). The engine always
// proposes a complete, internally consistent field set or nothing at all.
type FieldSet map[string]interface{}

// Fields returns the touched column names in deterministic order.
func (fs FieldSet) Fields() []string {
	fields := make([]string, 0, len(fs))
	for f := range fs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Merge copies every entry of other into fs, overwriting on conflict.
func (fs FieldSet) Merge(other FieldSet) FieldSet {
	for f, v := range other {
		fs[f] = v
	}
	return fs
}

// FieldChange is one before/after audit delta, rendered the way audit
// consumers display it.
type FieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old_value"`
	New   string `json:"new_value"`
}

// RenderValue renders a field value for audit display: booleans become
// Yes/No, NULL becomes None.
func RenderValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "None"
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case int:
		return strconv.Itoa(val)
	case *int:
		if val == nil {
			return "None"
		}
		return strconv.Itoa(*val)
	case string:
		if val == "" {
			return "None"
		}
		return val
	default:
		return "None"
	}
}

// CurrentValue extracts a record's present value for a column, normalised to
// the same domain FieldSet values use (int, bool, string, nil).
func CurrentValue(rec models.StudentProgress, field string) interface{} {
	switch field {
	case FieldGroup:
		return strOrNil(rec.Group)
	case FieldQaidahLevel:
		return intOrNil(rec.QaidahLevel)
	case FieldDuasStatus:
		if rec.DuasStatus == "" {
			return nil
		}
		return rec.DuasStatus
	case FieldQuranJuz:
		return intOrNil(rec.QuranJuz)
	case FieldQuranCompleted:
		return rec.QuranCompleted
	case FieldTajweedLevel:
		return intOrNil(rec.TajweedLevel)
	case FieldTajweedCompleted:
		return rec.TajweedCompleted
	case FieldHifzSabak:
		return intOrNil(rec.HifzSabak)
	case FieldHifzSPara:
		return intOrNil(rec.HifzSPara)
	case FieldHifzDaur:
		return intOrNil(rec.HifzDaur)
	case FieldHifzGraduated:
		return rec.HifzGraduated
	case FieldJuzAmmaSurah:
		return intOrNil(rec.JuzAmmaSurah)
	case FieldJuzAmmaCompleted:
		return rec.JuzAmmaCompleted
	case FieldLastProgressMonth:
		return strOrNil(rec.LastProgressMonth)
	case FieldProgressDueMonth:
		return strOrNil(rec.ProgressDueMonth)
	default:
		return nil
	}
}

// Diff prunes a proposed field set down to the fields that actually differ
// from the record and emits one audit delta per changed field.
func Diff(rec models.StudentProgress, proposed FieldSet) (FieldSet, []FieldChange) {
	changed := FieldSet{}
	var changes []FieldChange
	for _, field := range proposed.Fields() {
		oldVal := CurrentValue(rec, field)
		newVal := proposed[field]
		if valueEqual(oldVal, newVal) {
			continue
		}
		changed[field] = newVal
		changes = append(changes, FieldChange{
			Field: field,
			Old:   RenderValue(oldVal),
			New:   RenderValue(newVal),
		})
	}
	return changed, changes
}

func valueEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a == b
}

func intOrNil(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func strOrNil(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
