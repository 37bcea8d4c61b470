package curriculum

import "github.com/maktabhq/maktab-api/internal/models"

// Stage is the parent curriculum stage a student group maps to.
type Stage string

const (
	StageQaidah     Stage = "A"
	StageQuran      Stage = "B"
	StageHifz       Stage = "C"
	StageUnassigned Stage = "unassigned"
)

// SubTrack is the stage-C bifurcation between the short-surah syllabus and
// full memorisation.
type SubTrack string

const (
	SubTrackNone    SubTrack = ""
	SubTrackJuzAmma SubTrack = "juz_amma"
	SubTrackHifz    SubTrack = "hifz"
)

// Track is the resolved position of a student in the curriculum.
type Track struct {
	Stage    Stage    `json:"stage"`
	SubTrack SubTrack `json:"subtrack,omitempty"`
}

// ParentGroup normalises a stored student group to its parent stage. A1 and
// A2 are form-routing sub-labels of stage A; anything unrecognised, including
// an unassigned (nil) group, maps to StageUnassigned.
func ParentGroup(group *string) Stage {
	if group == nil {
		return StageUnassigned
	}
	switch *group {
	case "A", "A1", "A2":
		return StageQaidah
	case "B":
		return StageQuran
	case "C":
		return StageHifz
	default:
		return StageUnassigned
	}
}

// ResolveTrack derives the applicable stage and sub-track from a record. Pure
// and total: it never fails and re-deriving from an unchanged record always
// yields the same result. The stage-C sub-track is derived, never stored; a
// student is on the Juz Amma sub-track exactly while the completion flag is
// unset and no sabak has been assigned.
func ResolveTrack(rec models.StudentProgress) Track {
	stage := ParentGroup(rec.Group)
	if stage != StageHifz {
		return Track{Stage: stage}
	}
	if !rec.JuzAmmaCompleted && rec.HifzSabak == nil {
		return Track{Stage: StageHifz, SubTrack: SubTrackJuzAmma}
	}
	return Track{Stage: StageHifz, SubTrack: SubTrackHifz}
}
