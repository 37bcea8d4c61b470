package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/maktabhq/maktab-api/internal/curriculum"
	"github.com/maktabhq/maktab-api/internal/models"
	appErrors "github.com/maktabhq/maktab-api/pkg/errors"
	"github.com/maktabhq/maktab-api/pkg/export"
)

type reportLister interface {
	List(ctx context.Context, filter models.ProgressFilter) ([]models.StudentProgress, int, error)
}

// ClassProgressRow is one student's line in a class progress overview.
type ClassProgressRow struct {
	StudentID string `json:"student_id"`
	FullName  string `json:"full_name"`
	Stage     string `json:"stage"`
	SubTrack  string `json:"subtrack,omitempty"`
	Measure   string `json:"measure"`
	Percent   *int   `json:"percent,omitempty"`
	Due       bool   `json:"due"`
}

// ReportService renders class progress overviews and their CSV/PDF exports.
type ReportService struct {
	repo   reportLister
	cache  *CacheService
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewReportService constructs the service.
func NewReportService(repo reportLister, cache *CacheService, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		repo:   repo,
		cache:  cache,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// ClassOverview summarises every student in a group. Results are cached per
// group; submissions invalidate through the default TTL rather than
// eagerly, which is acceptable staleness for a reporting surface.
func (s *ReportService) ClassOverview(ctx context.Context, group string) ([]ClassProgressRow, error) {
	key := "report:progress:" + group
	var rows []ClassProgressRow
	if hit, _ := s.cache.Get(ctx, key, &rows); hit {
		return rows, nil
	}

	records, _, err := s.repo.List(ctx, models.ProgressFilter{Group: group, PageSize: 100})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class records")
	}

	rows = make([]ClassProgressRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, overviewRow(rec))
	}
	if err := s.cache.Set(ctx, key, rows, 0); err != nil {
		s.logger.Debug("overview cache write failed", zap.Error(err))
	}
	return rows, nil
}

// ExportCSV renders a class overview as CSV.
func (s *ReportService) ExportCSV(ctx context.Context, group string) ([]byte, error) {
	rows, err := s.ClassOverview(ctx, group)
	if err != nil {
		return nil, err
	}
	return s.csv.Render(overviewDataset(rows))
}

// ExportPDF renders a class overview as PDF.
func (s *ReportService) ExportPDF(ctx context.Context, group string) ([]byte, error) {
	rows, err := s.ClassOverview(ctx, group)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Class %s progress", group)
	return s.pdf.Render(overviewDataset(rows), title)
}

func overviewRow(rec models.StudentProgress) ClassProgressRow {
	track := curriculum.ResolveTrack(rec)
	row := ClassProgressRow{
		StudentID: rec.ID,
		FullName:  rec.FullName,
		Stage:     string(track.Stage),
		SubTrack:  string(track.SubTrack),
		Measure:   measureLabel(rec, track),
		Due:       rec.ProgressDueMonth != nil,
	}
	if track.SubTrack == curriculum.SubTrackJuzAmma && rec.JuzAmmaSurah != nil {
		pct := curriculum.JuzAmmaPercent(*rec.JuzAmmaSurah, rec.JuzAmmaCompleted)
		row.Percent = &pct
	}
	return row
}

func measureLabel(rec models.StudentProgress, track curriculum.Track) string {
	switch track.Stage {
	case curriculum.StageQaidah:
		if rec.QaidahLevel == nil {
			return "Not started"
		}
		if *rec.QaidahLevel == curriculum.QaidahMax {
			return "Qaidah completed"
		}
		return fmt.Sprintf("Qaidah level %d", *rec.QaidahLevel)
	case curriculum.StageQuran:
		if rec.QuranCompleted {
			return "Quran completed"
		}
		if rec.QuranJuz == nil {
			return "Not started"
		}
		return fmt.Sprintf("Juz %d", *rec.QuranJuz)
	case curriculum.StageHifz:
		if track.SubTrack == curriculum.SubTrackJuzAmma {
			if rec.JuzAmmaSurah == nil {
				return "Not started"
			}
			for _, surah := range curriculum.JuzAmmaSequence() {
				if surah.Number == *rec.JuzAmmaSurah {
					return fmt.Sprintf("Surah %s", surah.Name)
				}
			}
			return fmt.Sprintf("Surah %d", *rec.JuzAmmaSurah)
		}
		if rec.HifzGraduated {
			return "Hafiz"
		}
		if rec.HifzSabak == nil {
			return "Not started"
		}
		return fmt.Sprintf("Sabak %d / S-Para %s / Daur %s",
			*rec.HifzSabak,
			renderJuz(rec.HifzSPara),
			renderJuz(rec.HifzDaur))
	default:
		return "Unassigned"
	}
}

func renderJuz(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func overviewDataset(rows []ClassProgressRow) export.Dataset {
	headers := []string{"Student", "Stage", "Track", "Measure", "Progress", "Due"}
	data := export.Dataset{Headers: headers}
	for _, row := range rows {
		percent := ""
		if row.Percent != nil {
			percent = fmt.Sprintf("%d%%", *row.Percent)
		}
		due := "No"
		if row.Due {
			due = "Yes"
		}
		data.Rows = append(data.Rows, map[string]string{
			"Student":  row.FullName,
			"Stage":    row.Stage,
			"Track":    row.SubTrack,
			"Measure":  row.Measure,
			"Progress": percent,
			"Due":      due,
		})
	}
	return data
}
