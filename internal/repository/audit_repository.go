package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/maktabhq/maktab-api/internal/models"
)

// AuditRepository appends immutable progress audit entries.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs an AuditRepository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append stores one row per field change. Entries are never updated or
// deleted afterwards.
func (r *AuditRepository) Append(ctx context.Context, entries []models.ProgressAudit) error {
	if len(entries) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		if entries[i].CreatedAt.IsZero() {
			entries[i].CreatedAt = now
		}
	}
	const query = `INSERT INTO progress_audit
	(id, student_id, student_name, field_changed, old_value, new_value, student_group, performed_by, performed_by_name, created_at)
	VALUES (:id, :student_id, :student_name, :field_changed, :old_value, :new_value, :student_group, :performed_by, :performed_by_name, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entries); err != nil {
		return fmt.Errorf("append progress audit: %w", err)
	}
	return nil
}

// ListByStudent returns a student's audit history, newest first.
func (r *AuditRepository) ListByStudent(ctx context.Context, studentID string, limit int) ([]models.ProgressAudit, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT id, student_id, student_name, field_changed, old_value, new_value, student_group, performed_by, performed_by_name, created_at
	FROM progress_audit WHERE student_id = $1 ORDER BY created_at DESC LIMIT %d`, limit)
	var entries []models.ProgressAudit
	if err := r.db.SelectContext(ctx, &entries, query, studentID); err != nil {
		return nil, fmt.Errorf("list progress audit: %w", err)
	}
	return entries, nil
}
