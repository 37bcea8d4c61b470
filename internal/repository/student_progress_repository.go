package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/maktabhq/maktab-api/internal/curriculum"
	"github.com/maktabhq/maktab-api/internal/models"
)

const progressColumns = `id, full_name, gender, student_group, qaidah_level, duas_status,
	quran_juz, quran_completed, tajweed_level, tajweed_completed,
	hifz_sabak, hifz_s_para, hifz_daur, hifz_graduated, juz_amma_surah, juz_amma_completed,
	last_progress_month, progress_due_month, progress_due_since_date, created_at, updated_at`

// StudentProgressRepository manages persistence for curriculum records.
type StudentProgressRepository struct {
	db *sqlx.DB
}

// NewStudentProgressRepository constructs a StudentProgressRepository.
func NewStudentProgressRepository(db *sqlx.DB) *StudentProgressRepository {
	return &StudentProgressRepository{db: db}
}

// FindByID fetches a curriculum record by student ID.
func (r *StudentProgressRepository) FindByID(ctx context.Context, id string) (*models.StudentProgress, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", progressColumns)
	var rec models.StudentProgress
	if err := r.db.GetContext(ctx, &rec, query, id); err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns curriculum records matching the provided filters.
func (r *StudentProgressRepository) List(ctx context.Context, filter models.ProgressFilter) ([]models.StudentProgress, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Group != "" {
		// group filters match the parent stage, so A covers A1/A2
		if filter.Group == "A" {
			conditions = append(conditions, fmt.Sprintf("student_group IN ($%d, $%d, $%d)", len(args)+1, len(args)+2, len(args)+3))
			args = append(args, "A", "A1", "A2")
		} else {
			conditions = append(conditions, fmt.Sprintf("student_group = $%d", len(args)+1))
			args = append(args, filter.Group)
		}
	}
	if filter.Gender != "" {
		conditions = append(conditions, fmt.Sprintf("gender = $%d", len(args)+1))
		args = append(args, filter.Gender)
	}
	if filter.DueOnly {
		conditions = append(conditions, "progress_due_month IS NOT NULL")
	}

	where := strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM students WHERE %s ORDER BY full_name ASC LIMIT %d OFFSET %d",
		progressColumns, where, size, offset)

	var records []models.StudentProgress
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list progress records: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM students WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count progress records: %w", err)
	}
	return records, total, nil
}

// ApplyFieldSet proposes a partial update touching only the given columns,
// never a full-record overwrite. Columns are applied in deterministic order.
func (r *StudentProgressRepository) ApplyFieldSet(ctx context.Context, id string, fs curriculum.FieldSet) error {
	if len(fs) == 0 {
		return nil
	}
	fields := fs.Fields()
	assignments := make([]string, 0, len(fields)+1)
	args := make([]interface{}, 0, len(fields)+1)
	for i, field := range fields {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", field, i+1))
		args = append(args, fs[field])
	}
	assignments = append(assignments, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE students SET %s WHERE id = $%d", strings.Join(assignments, ", "), len(args))
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("apply field set: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkDue stamps the due markers on every assigned student without a progress
// update for the month. Already-due students keep their original due date.
func (r *StudentProgressRepository) MarkDue(ctx context.Context, month string, since time.Time) (int64, error) {
	const query = `UPDATE students
	SET progress_due_month = $1, progress_due_since_date = COALESCE(progress_due_since_date, $2)
	WHERE student_group IS NOT NULL
	  AND (last_progress_month IS NULL OR last_progress_month <> $1)
	  AND (progress_due_month IS NULL OR progress_due_month <> $1)`
	result, err := r.db.ExecContext(ctx, query, month, since)
	if err != nil {
		return 0, fmt.Errorf("mark due: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark due rows: %w", err)
	}
	return rows, nil
}

// ListDue returns every student currently awaiting a progress update.
func (r *StudentProgressRepository) ListDue(ctx context.Context) ([]models.StudentProgress, error) {
	query := fmt.Sprintf(`SELECT %s FROM students
	WHERE progress_due_month IS NOT NULL
	ORDER BY progress_due_since_date ASC, full_name ASC`, progressColumns)
	var records []models.StudentProgress
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list due students: %w", err)
	}
	return records, nil
}
