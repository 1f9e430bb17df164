package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/iliyamo/healthsync/internal/model"
)

type PaperworkRepo struct{ DB *sql.DB }

func NewPaperworkRepo(db *sql.DB) *PaperworkRepo { return &PaperworkRepo{DB: db} }

// Create persists a generated form as a template and credits the reward.
func (r *PaperworkRepo) Create(ctx context.Context, p *model.PaperworkTemplate, reward int) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = nowUTC(p.CreatedAt)
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		if err := lockUserTx(ctx, tx, p.UserID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO paperwork_templates (id, user_id, form_type, hospital_name, doctor_name, content, degraded, created_at)
			 VALUES (?,?,?,?,?,?,?,?)`,
			p.ID, p.UserID, p.FormType, p.HospitalName, p.DoctorName, p.Content, p.Degraded, p.CreatedAt); err != nil {
			return err
		}
		if reward <= 0 {
			return nil
		}
		return appendTx(ctx, tx, &model.TokenTransaction{
			UserID:      p.UserID,
			Amount:      reward,
			Category:    model.CategoryPaperwork,
			Description: fmt.Sprintf("Generated %s paperwork", p.FormType),
			CreatedAt:   p.CreatedAt,
		})
	})
}

func (r *PaperworkRepo) ListByUser(ctx context.Context, userID string, limit int) ([]model.PaperworkTemplate, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, form_type, hospital_name, doctor_name, content, degraded, created_at
		 FROM paperwork_templates WHERE user_id=? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.PaperworkTemplate{}
	for rows.Next() {
		var p model.PaperworkTemplate
		if err := rows.Scan(&p.ID, &p.UserID, &p.FormType, &p.HospitalName, &p.DoctorName, &p.Content, &p.Degraded, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
