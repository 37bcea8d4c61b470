package models

import "time"

// ProgressAudit is one field-level change record. An accepted update that
// touches three fields appends three entries, not one.
type ProgressAudit struct {
	ID              string    `db:"id" json:"id"`
	StudentID       string    `db:"student_id" json:"student_id"`
	StudentName     string    `db:"student_name" json:"student_name"`
	Field           string    `db:"field_changed" json:"field_changed"`
	OldValue        string    `db:"old_value" json:"old_value"`
	NewValue        string    `db:"new_value" json:"new_value"`
	StudentGroup    string    `db:"student_group" json:"student_group"`
	PerformedBy     string    `db:"performed_by" json:"performed_by"`
	PerformedByName string    `db:"performed_by_name" json:"performed_by_name"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
