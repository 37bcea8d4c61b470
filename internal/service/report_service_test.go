package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maktabhq/maktab-api/internal/models"
)

type stubReportRepo struct {
	records []models.StudentProgress
	filters []models.ProgressFilter
}

func (m *stubReportRepo) List(ctx context.Context, filter models.ProgressFilter) ([]models.StudentProgress, int, error) {
	m.filters = append(m.filters, filter)
	return m.records, len(m.records), nil
}

func TestClassOverviewRows(t *testing.T) {
	repo := &stubReportRepo{records: []models.StudentProgress{
		qaidahStudent(),
		quranStudent(),
		juzAmmaStudent(),
		hifzStudent(),
	}}
	svc := NewReportService(repo, nil, nil)

	rows, err := svc.ClassOverview(context.Background(), "A")
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "Qaidah level 4", rows[0].Measure)
	assert.Equal(t, "A", rows[0].Stage)

	assert.Equal(t, "Juz 11", rows[1].Measure)

	assert.Equal(t, "Surah Al-Falaq", rows[2].Measure)
	assert.Equal(t, "juz_amma", rows[2].SubTrack)
	require.NotNil(t, rows[2].Percent)

	assert.Equal(t, "Sabak 5 / S-Para 4 / Daur 2", rows[3].Measure)

	require.Len(t, repo.filters, 1)
	assert.Equal(t, "A", repo.filters[0].Group)
}

func TestClassOverviewHafizMeasure(t *testing.T) {
	rec := hifzStudent()
	rec.HifzGraduated = true
	rec.HifzDaur = nil
	repo := &stubReportRepo{records: []models.StudentProgress{rec}}
	svc := NewReportService(repo, nil, nil)

	rows, err := svc.ClassOverview(context.Background(), "C")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Hafiz", rows[0].Measure)
}

func TestExportCSV(t *testing.T) {
	repo := &stubReportRepo{records: []models.StudentProgress{qaidahStudent()}}
	svc := NewReportService(repo, nil, nil)

	data, err := svc.ExportCSV(context.Background(), "A")
	require.NoError(t, err)

	content := string(data)
	assert.True(t, strings.HasPrefix(content, "Student,Stage,Track,Measure,Progress,Due"))
	assert.Contains(t, content, "Bilal Ahmed")
	assert.Contains(t, content, "Qaidah level 4")
}

func TestExportPDF(t *testing.T) {
	repo := &stubReportRepo{records: []models.StudentProgress{hifzStudent()}}
	svc := NewReportService(repo, nil, nil)

	data, err := svc.ExportPDF(context.Background(), "C")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}
