package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/healthsync/internal/model"
)

type AlertRepo struct{ DB *sql.DB }

func NewAlertRepo(db *sql.DB) *AlertRepo { return &AlertRepo{DB: db} }

func (r *AlertRepo) Create(ctx context.Context, a *model.HealthAlert) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = nowUTC(a.CreatedAt)
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO health_alerts (id, user_id, alert_type, severity, title, message, triggered_by, status,
		 contacts_notified, created_at) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		a.ID, a.UserID, a.AlertType, a.Severity, a.Title, a.Message, a.TriggeredBy, a.Status,
		a.ContactsNotified, a.CreatedAt)
	return err
}

func (r *AlertRepo) ListByUser(ctx context.Context, userID string, limit int) ([]model.HealthAlert, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, alert_type, severity, title, message, triggered_by, status, contacts_notified, created_at
		 FROM health_alerts WHERE user_id=? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.HealthAlert{}
	for rows.Next() {
		var a model.HealthAlert
		if err := rows.Scan(&a.ID, &a.UserID, &a.AlertType, &a.Severity, &a.Title, &a.Message, &a.TriggeredBy,
			&a.Status, &a.ContactsNotified, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
