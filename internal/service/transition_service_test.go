package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maktabhq/maktab-api/internal/curriculum"
	"github.com/maktabhq/maktab-api/internal/models"
	appErrors "github.com/maktabhq/maktab-api/pkg/errors"
)

func newTransitionFixture(records ...models.StudentProgress) (*TransitionService, *stubProgressRepo, *stubAuditRepo, *stubGate) {
	repo := &stubProgressRepo{records: map[string]models.StudentProgress{}}
	for _, rec := range records {
		repo.records[rec.ID] = rec
	}
	audit := &stubAuditRepo{}
	gate := &stubGate{}
	return NewTransitionService(repo, audit, gate, nil), repo, audit, gate
}

func TestGraduateToQuran(t *testing.T) {
	rec := qaidahStudent()
	rec.QaidahLevel = intPtr(13)
	rec.DuasStatus = "completed"
	svc, repo, audit, _ := newTransitionFixture(rec)

	resp, err := svc.GraduateToQuran(context.Background(), "std-1", models.Actor{ID: "t-1"})
	require.NoError(t, err)

	assert.Equal(t, curriculum.StageQuran, resp.Track.Stage)
	assert.Equal(t, strPtr("B"), repo.records["std-1"].Group)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, curriculum.FieldGroup, audit.entries[0].Field)
	assert.Equal(t, "A1", audit.entries[0].OldValue)
	assert.Equal(t, "B", audit.entries[0].NewValue)
}

func TestGraduateToQuranPersistenceFailure(t *testing.T) {
	rec := qaidahStudent()
	rec.QaidahLevel = intPtr(13)
	rec.DuasStatus = "completed"
	svc, repo, audit, _ := newTransitionFixture(rec)
	repo.applyErr = errors.New("connection reset by peer")

	_, err := svc.GraduateToQuran(context.Background(), "std-1", models.Actor{ID: "t-1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))

	// A failed persist discards the transition whole: no audit, stage kept.
	assert.Empty(t, audit.entries)
	assert.Equal(t, strPtr("A1"), repo.records["std-1"].Group)
}

func TestGraduateToQuranNotEligible(t *testing.T) {
	svc, repo, audit, _ := newTransitionFixture(qaidahStudent())

	_, err := svc.GraduateToQuran(context.Background(), "std-1", models.Actor{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotEligible))

	// A rejected transition leaves the record unchanged.
	assert.Empty(t, repo.applied)
	assert.Empty(t, audit.entries)
	assert.Equal(t, strPtr("A1"), repo.records["std-1"].Group)
}

func TestGraduateToHifz(t *testing.T) {
	rec := quranStudent()
	rec.QuranJuz = nil
	rec.QuranCompleted = true
	rec.TajweedCompleted = true
	svc, repo, _, _ := newTransitionFixture(rec)

	resp, err := svc.GraduateToHifz(context.Background(), "std-2", models.Actor{ID: "t-2"})
	require.NoError(t, err)

	assert.Equal(t, curriculum.StageHifz, resp.Track.Stage)
	assert.Equal(t, curriculum.SubTrackJuzAmma, resp.Track.SubTrack)
	assert.Equal(t, strPtr("C"), repo.records["std-2"].Group)
}

func TestGraduateToHifzGirlsStayInQuran(t *testing.T) {
	rec := quranStudent()
	rec.Gender = models.GenderGirls
	rec.QuranJuz = nil
	rec.QuranCompleted = true
	rec.TajweedCompleted = true
	svc, _, _, _ := newTransitionFixture(rec)

	_, err := svc.GraduateToHifz(context.Background(), "std-2", models.Actor{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotEligible))
}

func TestSkipToHifz(t *testing.T) {
	svc, repo, _, gate := newTransitionFixture(juzAmmaStudent())

	resp, err := svc.SkipToHifz(context.Background(), "std-3", uuid.NewString(), models.Actor{ID: "t-3"})
	require.NoError(t, err)

	assert.Equal(t, curriculum.SubTrackHifz, resp.Track.SubTrack)
	assert.Equal(t, []string{ActionSkipToHifz}, gate.consumed)
	updated := repo.records["std-3"]
	assert.True(t, updated.JuzAmmaCompleted)
	assert.Equal(t, intPtr(1), updated.HifzSabak)
	assert.Equal(t, intPtr(1), updated.HifzSPara)
	// The skip leaves the reached surah untouched.
	assert.Equal(t, intPtr(113), updated.JuzAmmaSurah)
}

func TestSkipToHifzWithoutToken(t *testing.T) {
	svc, repo, _, _ := newTransitionFixture(juzAmmaStudent())

	_, err := svc.SkipToHifz(context.Background(), "std-3", "", models.Actor{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConfirmationRequired))
	assert.Empty(t, repo.applied)
}

func TestSkipToHifzRejectedOffTrack(t *testing.T) {
	svc, _, _, gate := newTransitionFixture(hifzStudent())

	_, err := svc.SkipToHifz(context.Background(), "std-4", uuid.NewString(), models.Actor{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotEligible))
	// The precondition is checked before the token is spent.
	assert.Empty(t, gate.consumed)
}

func TestMoveBackToJuzAmma(t *testing.T) {
	svc, repo, audit, gate := newTransitionFixture(hifzStudent())

	resp, err := svc.MoveBackToJuzAmma(context.Background(), "std-4", uuid.NewString(), models.Actor{ID: "t-4"})
	require.NoError(t, err)

	assert.Equal(t, curriculum.SubTrackJuzAmma, resp.Track.SubTrack)
	assert.Equal(t, []string{ActionMoveBackToJuzAmma}, gate.consumed)

	updated := repo.records["std-4"]
	assert.False(t, updated.JuzAmmaCompleted)
	assert.Equal(t, intPtr(114), updated.JuzAmmaSurah)
	assert.Nil(t, updated.HifzSabak)
	assert.Nil(t, updated.HifzSPara)
	assert.Nil(t, updated.HifzDaur)

	fields := make([]string, 0, len(audit.entries))
	for _, entry := range audit.entries {
		fields = append(fields, entry.Field)
	}
	assert.Contains(t, fields, curriculum.FieldHifzSabak)
	assert.Contains(t, fields, curriculum.FieldJuzAmmaCompleted)
}

func TestMoveBackRequiresHifzSubTrack(t *testing.T) {
	svc, _, _, _ := newTransitionFixture(juzAmmaStudent())

	_, err := svc.MoveBackToJuzAmma(context.Background(), "std-3", uuid.NewString(), models.Actor{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotEligible))
}

func TestMarkHafiz(t *testing.T) {
	svc, repo, _, gate := newTransitionFixture(hifzStudent())

	resp, err := svc.MarkHafiz(context.Background(), "std-4", uuid.NewString(), models.Actor{ID: "t-4"})
	require.NoError(t, err)

	assert.True(t, resp.Student.HifzGraduated)
	assert.Nil(t, resp.Student.HifzDaur)
	assert.Equal(t, []string{ActionMarkHafiz}, gate.consumed)
	assert.True(t, repo.records["std-4"].HifzGraduated)
}

func TestMarkHafizWithoutToken(t *testing.T) {
	svc, repo, _, _ := newTransitionFixture(hifzStudent())

	_, err := svc.MarkHafiz(context.Background(), "std-4", "", models.Actor{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConfirmationRequired))
	assert.Empty(t, repo.applied)
}

func TestMarkHafizAlreadyGraduatedSkipsGate(t *testing.T) {
	rec := hifzStudent()
	rec.HifzGraduated = true
	rec.HifzDaur = nil
	svc, _, _, gate := newTransitionFixture(rec)

	_, err := svc.MarkHafiz(context.Background(), "std-4", "", models.Actor{})
	require.NoError(t, err)
	assert.Empty(t, gate.consumed)
}

func TestUnmarkHafiz(t *testing.T) {
	rec := hifzStudent()
	rec.HifzGraduated = true
	rec.HifzDaur = nil
	svc, repo, _, gate := newTransitionFixture(rec)

	resp, err := svc.UnmarkHafiz(context.Background(), "std-4", models.Actor{ID: "t-4"})
	require.NoError(t, err)

	assert.False(t, resp.Student.HifzGraduated)
	assert.Empty(t, gate.consumed)
	assert.False(t, repo.records["std-4"].HifzGraduated)
}

func TestTransitionUnknownStudent(t *testing.T) {
	svc, _, _, _ := newTransitionFixture()

	_, err := svc.GraduateToQuran(context.Background(), "missing", models.Actor{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
