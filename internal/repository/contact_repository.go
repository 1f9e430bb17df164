package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/healthsync/internal/model"
)

type ContactRepo struct{ DB *sql.DB }

func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{DB: db} }

func (r *ContactRepo) Create(ctx context.Context, c *model.EmergencyContact) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = nowUTC(c.CreatedAt)
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO emergency_contacts (id, user_id, name, relationship, phone, email, is_primary,
		 can_receive_alerts, preferred_contact_method, created_at) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		c.ID, c.UserID, c.Name, c.Relationship, c.Phone, c.Email, c.IsPrimary, c.CanReceiveAlerts,
		c.PreferredContactMethod, c.CreatedAt)
	return err
}

// ListByUser returns contacts with the primary contact first.
func (r *ContactRepo) ListByUser(ctx context.Context, userID string) ([]model.EmergencyContact, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, name, relationship, phone, email, is_primary, can_receive_alerts,
		 preferred_contact_method, created_at
		 FROM emergency_contacts WHERE user_id=? ORDER BY is_primary DESC, created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.EmergencyContact{}
	for rows.Next() {
		var c model.EmergencyContact
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Relationship, &c.Phone, &c.Email, &c.IsPrimary,
			&c.CanReceiveAlerts, &c.PreferredContactMethod, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
