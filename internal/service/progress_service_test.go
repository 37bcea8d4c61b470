package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maktabhq/maktab-api/internal/curriculum"
	"github.com/maktabhq/maktab-api/internal/dto"
	"github.com/maktabhq/maktab-api/internal/models"
	appErrors "github.com/maktabhq/maktab-api/pkg/errors"
)

type stubProgressRepo struct {
	records  map[string]models.StudentProgress
	applied  []curriculum.FieldSet
	applyErr error
}

func (m *stubProgressRepo) FindByID(ctx context.Context, id string) (*models.StudentProgress, error) {
	if rec, ok := m.records[id]; ok {
		return &rec, nil
	}
	return nil, sql.ErrNoRows
}

func (m *stubProgressRepo) ApplyFieldSet(ctx context.Context, id string, fs curriculum.FieldSet) error {
	if m.applyErr != nil {
		return m.applyErr
	}
	rec, ok := m.records[id]
	if !ok {
		return sql.ErrNoRows
	}
	applyFields(&rec, fs)
	m.records[id] = rec
	m.applied = append(m.applied, fs)
	return nil
}

// applyFields mirrors the UPDATE the real repository issues so stubbed
// records reflect accepted submissions on the reload.
func applyFields(rec *models.StudentProgress, fs curriculum.FieldSet) {
	for field, value := range fs {
		switch field {
		case curriculum.FieldGroup:
			rec.Group = strValue(value)
		case curriculum.FieldQaidahLevel:
			rec.QaidahLevel = intValue(value)
		case curriculum.FieldDuasStatus:
			if value == nil {
				rec.DuasStatus = ""
			} else {
				rec.DuasStatus = value.(string)
			}
		case curriculum.FieldQuranJuz:
			rec.QuranJuz = intValue(value)
		case curriculum.FieldQuranCompleted:
			rec.QuranCompleted = value.(bool)
		case curriculum.FieldTajweedLevel:
			rec.TajweedLevel = intValue(value)
		case curriculum.FieldTajweedCompleted:
			rec.TajweedCompleted = value.(bool)
		case curriculum.FieldHifzSabak:
			rec.HifzSabak = intValue(value)
		case curriculum.FieldHifzSPara:
			rec.HifzSPara = intValue(value)
		case curriculum.FieldHifzDaur:
			rec.HifzDaur = intValue(value)
		case curriculum.FieldHifzGraduated:
			rec.HifzGraduated = value.(bool)
		case curriculum.FieldJuzAmmaSurah:
			rec.JuzAmmaSurah = intValue(value)
		case curriculum.FieldJuzAmmaCompleted:
			rec.JuzAmmaCompleted = value.(bool)
		case curriculum.FieldLastProgressMonth:
			rec.LastProgressMonth = strValue(value)
		case curriculum.FieldProgressDueMonth:
			rec.ProgressDueMonth = strValue(value)
		case curriculum.FieldProgressDueSince:
			if value == nil {
				rec.ProgressDueSince = nil
			}
		}
	}
}

func intValue(v interface{}) *int {
	if v == nil {
		return nil
	}
	i := v.(int)
	return &i
}

func strValue(v interface{}) *string {
	if v == nil {
		return nil
	}
	s := v.(string)
	return &s
}

type stubAuditRepo struct {
	entries   []models.ProgressAudit
	appendErr error
	listed    []models.ProgressAudit
}

func (m *stubAuditRepo) Append(ctx context.Context, entries []models.ProgressAudit) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *stubAuditRepo) ListByStudent(ctx context.Context, studentID string, limit int) ([]models.ProgressAudit, error) {
	return m.listed, nil
}

type stubGate struct {
	consumed   []string
	flags      []string
	consumeErr error
}

func (m *stubGate) Consume(ctx context.Context, token, studentID, action, flag string) error {
	if m.consumeErr != nil {
		return m.consumeErr
	}
	if token == "" {
		return appErrors.ErrConfirmationRequired
	}
	m.consumed = append(m.consumed, action)
	m.flags = append(m.flags, flag)
	return nil
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func qaidahStudent() models.StudentProgress {
	return models.StudentProgress{
		ID:          "std-1",
		FullName:    "Bilal Ahmed",
		Gender:      models.GenderBoys,
		Group:       strPtr("A1"),
		QaidahLevel: intPtr(4),
		DuasStatus:  "Book 1|7",
	}
}

func quranStudent() models.StudentProgress {
	return models.StudentProgress{
		ID:           "std-2",
		FullName:     "Hamza Khan",
		Gender:       models.GenderBoys,
		Group:        strPtr("B"),
		QaidahLevel:  intPtr(13),
		DuasStatus:   "completed",
		QuranJuz:     intPtr(11),
		TajweedLevel: intPtr(3),
	}
}

func juzAmmaStudent() models.StudentProgress {
	return models.StudentProgress{
		ID:           "std-3",
		FullName:     "Yusuf Ali",
		Gender:       models.GenderBoys,
		Group:        strPtr("C"),
		DuasStatus:   "completed",
		JuzAmmaSurah: intPtr(113),
	}
}

func hifzStudent() models.StudentProgress {
	return models.StudentProgress{
		ID:               "std-4",
		FullName:         "Ibrahim Shah",
		Gender:           models.GenderBoys,
		Group:            strPtr("C"),
		DuasStatus:       "completed",
		JuzAmmaCompleted: true,
		JuzAmmaSurah:     intPtr(114),
		HifzSabak:        intPtr(5),
		HifzSPara:        intPtr(4),
		HifzDaur:         intPtr(2),
	}
}

func newProgressFixture(records ...models.StudentProgress) (*ProgressService, *stubProgressRepo, *stubAuditRepo, *stubGate) {
	repo := &stubProgressRepo{records: map[string]models.StudentProgress{}}
	for _, rec := range records {
		repo.records[rec.ID] = rec
	}
	audit := &stubAuditRepo{}
	gate := &stubGate{}
	svc := NewProgressService(repo, audit, gate, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	return svc, repo, audit, gate
}

func TestSubmitQaidahUpdate(t *testing.T) {
	svc, repo, audit, _ := newProgressFixture(qaidahStudent())

	req := dto.SubmitProgressRequest{Update: curriculum.Update{
		QaidahLevel: intPtr(5),
		Duas:        &curriculum.DuasStatus{Book: curriculum.DuasBook1, Level: 8},
	}}
	resp, err := svc.Submit(context.Background(), "std-1", req, models.Actor{ID: "t-1", Name: "Ustadh Kareem"})
	require.NoError(t, err)

	assert.Equal(t, intPtr(5), resp.Student.QaidahLevel)
	assert.Equal(t, "Book 1|8", resp.Student.DuasStatus)
	assert.Equal(t, curriculum.StageQaidah, resp.Track.Stage)
	assert.Len(t, resp.Changes, 2)

	require.Len(t, audit.entries, 2)
	for _, entry := range audit.entries {
		assert.Equal(t, "std-1", entry.StudentID)
		assert.Equal(t, "Bilal Ahmed", entry.StudentName)
		assert.Equal(t, "A1", entry.StudentGroup)
		assert.Equal(t, "t-1", entry.PerformedBy)
	}

	// Bookkeeping is persisted but never audited.
	require.Len(t, repo.applied, 1)
	assert.Contains(t, repo.applied[0], curriculum.FieldLastProgressMonth)
	assert.Equal(t, "2026-03", *repo.records["std-1"].LastProgressMonth)
}

func TestSubmitIncompleteLeavesRecordUntouched(t *testing.T) {
	svc, repo, audit, _ := newProgressFixture(qaidahStudent())

	req := dto.SubmitProgressRequest{Update: curriculum.Update{QaidahLevel: intPtr(5)}}
	_, err := svc.Submit(context.Background(), "std-1", req, models.Actor{ID: "t-1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrIncomplete))

	assert.Empty(t, repo.applied)
	assert.Empty(t, audit.entries)
	assert.Equal(t, intPtr(4), repo.records["std-1"].QaidahLevel)
}

func TestSubmitUnassignedStudent(t *testing.T) {
	rec := qaidahStudent()
	rec.Group = nil
	svc, _, _, _ := newProgressFixture(rec)

	req := dto.SubmitProgressRequest{Update: curriculum.Update{QaidahLevel: intPtr(5)}}
	_, err := svc.Submit(context.Background(), "std-1", req, models.Actor{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnassigned))
}

func TestSubmitQuranCompletionNormalisesJuz(t *testing.T) {
	svc, repo, _, gate := newProgressFixture(quranStudent())

	req := dto.SubmitProgressRequest{
		Update: curriculum.Update{
			QuranCompleted: true,
			TajweedLevel:   intPtr(4),
			Duas:           &curriculum.DuasStatus{Completed: true},
		},
		ConfirmationToken: uuid.NewString(),
	}
	resp, err := svc.Submit(context.Background(), "std-2", req, models.Actor{ID: "t-2"})
	require.NoError(t, err)

	// Completed Quran stores a null juz, the canonical representation.
	assert.Nil(t, resp.Student.QuranJuz)
	assert.True(t, resp.Student.QuranCompleted)
	assert.Equal(t, []string{ActionCompleteMilestone}, gate.consumed)
	assert.Equal(t, []string{curriculum.FieldQuranCompleted}, gate.flags)
	assert.Nil(t, repo.records["std-2"].QuranJuz)
}

func TestSubmitMilestoneWithoutToken(t *testing.T) {
	svc, repo, audit, _ := newProgressFixture(quranStudent())

	req := dto.SubmitProgressRequest{Update: curriculum.Update{
		QuranCompleted: true,
		TajweedLevel:   intPtr(4),
		Duas:           &curriculum.DuasStatus{Completed: true},
	}}
	_, err := svc.Submit(context.Background(), "std-2", req, models.Actor{ID: "t-2"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConfirmationRequired))

	assert.Empty(t, repo.applied)
	assert.Empty(t, audit.entries)
}

func TestSubmitJuzAmmaNaturalCompletion(t *testing.T) {
	rec := juzAmmaStudent()
	rec.JuzAmmaSurah = intPtr(114)
	svc, repo, _, gate := newProgressFixture(rec)

	req := dto.SubmitProgressRequest{
		Update: curriculum.Update{
			JuzAmmaSurah:     intPtr(114),
			JuzAmmaCompleted: true,
		},
		ConfirmationToken: uuid.NewString(),
	}
	resp, err := svc.Submit(context.Background(), "std-3", req, models.Actor{ID: "t-3"})
	require.NoError(t, err)

	// Completion lands the student on the Hifz sub-track with sabak started.
	assert.Equal(t, curriculum.SubTrackHifz, resp.Track.SubTrack)
	assert.True(t, resp.Student.JuzAmmaCompleted)
	assert.Equal(t, intPtr(1), resp.Student.HifzSabak)
	assert.Equal(t, intPtr(1), resp.Student.HifzSPara)
	assert.Equal(t, []string{ActionCompleteMilestone}, gate.consumed)
	assert.Equal(t, []string{curriculum.FieldJuzAmmaCompleted}, gate.flags)
	assert.True(t, repo.records["std-3"].JuzAmmaCompleted)
}

func TestSubmitHifzRequiresAllThreeMeasures(t *testing.T) {
	svc, _, _, _ := newProgressFixture(hifzStudent())

	req := dto.SubmitProgressRequest{Update: curriculum.Update{
		HifzSabak: intPtr(6),
	}}
	_, err := svc.Submit(context.Background(), "std-4", req, models.Actor{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrIncomplete))
}

func TestSubmitNoOpResubmissionRefreshesBookkeeping(t *testing.T) {
	rec := qaidahStudent()
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rec.ProgressDueMonth = strPtr("2026-03")
	rec.ProgressDueSince = &due
	svc, repo, audit, _ := newProgressFixture(rec)

	req := dto.SubmitProgressRequest{Update: curriculum.Update{
		QaidahLevel: intPtr(4),
		Duas:        &curriculum.DuasStatus{Book: curriculum.DuasBook1, Level: 7},
	}}
	resp, err := svc.Submit(context.Background(), "std-1", req, models.Actor{ID: "t-1"})
	require.NoError(t, err)

	assert.Empty(t, resp.Changes)
	assert.Empty(t, audit.entries)

	// The due markers still clear even though nothing else changed.
	require.Len(t, repo.applied, 1)
	updated := repo.records["std-1"]
	assert.Equal(t, strPtr("2026-03"), updated.LastProgressMonth)
	assert.Nil(t, updated.ProgressDueMonth)
	assert.Nil(t, updated.ProgressDueSince)
}

func TestSubmitPersistenceFailure(t *testing.T) {
	svc, repo, audit, _ := newProgressFixture(qaidahStudent())
	repo.applyErr = errors.New("connection reset by peer")

	req := dto.SubmitProgressRequest{Update: curriculum.Update{
		QaidahLevel: intPtr(5),
		Duas:        &curriculum.DuasStatus{Book: curriculum.DuasBook1, Level: 8},
	}}
	_, err := svc.Submit(context.Background(), "std-1", req, models.Actor{ID: "t-1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))

	// The candidate is discarded whole: nothing audited, record untouched.
	assert.Empty(t, audit.entries)
	assert.Equal(t, intPtr(4), repo.records["std-1"].QaidahLevel)
	assert.Nil(t, repo.records["std-1"].LastProgressMonth)
}

func TestSubmitAuditFailureDoesNotBlock(t *testing.T) {
	svc, repo, audit, _ := newProgressFixture(qaidahStudent())
	audit.appendErr = errors.New("audit table locked")

	req := dto.SubmitProgressRequest{Update: curriculum.Update{
		QaidahLevel: intPtr(5),
		Duas:        &curriculum.DuasStatus{Book: curriculum.DuasBook1, Level: 8},
	}}
	resp, err := svc.Submit(context.Background(), "std-1", req, models.Actor{ID: "t-1"})
	require.NoError(t, err)
	assert.Equal(t, intPtr(5), resp.Student.QaidahLevel)
	assert.Equal(t, intPtr(5), repo.records["std-1"].QaidahLevel)
}

func TestSubmitUnknownStudent(t *testing.T) {
	svc, _, _, _ := newProgressFixture()

	req := dto.SubmitProgressRequest{Update: curriculum.Update{QaidahLevel: intPtr(5)}}
	_, err := svc.Submit(context.Background(), "missing", req, models.Actor{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestFormQaidahStudent(t *testing.T) {
	svc, _, _, _ := newProgressFixture(qaidahStudent())

	form, err := svc.Form(context.Background(), "std-1")
	require.NoError(t, err)

	assert.Equal(t, curriculum.StageQaidah, form.Track.Stage)
	assert.Equal(t, curriculum.QaidahMax, form.Reference.QaidahMax)
	require.NotNil(t, form.Duas)
	assert.Equal(t, curriculum.DuasBook1, form.Duas.Book)
	assert.Empty(t, form.Reference.JuzAmmaSequence)
	assert.False(t, form.Eligibility.Quran)
}

func TestFormJuzAmmaStudentExposesProgress(t *testing.T) {
	svc, _, _, _ := newProgressFixture(juzAmmaStudent())

	form, err := svc.Form(context.Background(), "std-3")
	require.NoError(t, err)

	assert.Equal(t, curriculum.SubTrackJuzAmma, form.Track.SubTrack)
	assert.NotEmpty(t, form.Reference.JuzAmmaSequence)
	require.NotNil(t, form.JuzAmmaPercent)
	assert.Equal(t, 95, *form.JuzAmmaPercent)
}

func TestFormEligibilityOffers(t *testing.T) {
	rec := qaidahStudent()
	rec.QaidahLevel = intPtr(13)
	rec.DuasStatus = "completed"
	svc, _, _, _ := newProgressFixture(rec)

	form, err := svc.Form(context.Background(), "std-1")
	require.NoError(t, err)
	assert.True(t, form.Eligibility.Quran)
	assert.False(t, form.Eligibility.Hifz)
}

func TestAuditUnknownStudent(t *testing.T) {
	svc, _, _, _ := newProgressFixture()

	_, err := svc.Audit(context.Background(), "missing", 10)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
