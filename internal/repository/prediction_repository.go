package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/healthsync/internal/model"
)

type PredictionRepo struct{ DB *sql.DB }

func NewPredictionRepo(db *sql.DB) *PredictionRepo { return &PredictionRepo{DB: db} }

func (r *PredictionRepo) Create(ctx context.Context, p *model.HealthPrediction) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = nowUTC(p.CreatedAt)
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO health_predictions (id, user_id, time_period_days, overall_health_score, payload, degraded, created_at)
		 VALUES (?,?,?,?,?,?,?)`,
		p.ID, p.UserID, p.TimePeriodDays, p.OverallHealthScore, p.Payload, p.Degraded, p.CreatedAt)
	return err
}

func (r *PredictionRepo) ListByUser(ctx context.Context, userID string, limit int) ([]model.HealthPrediction, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, time_period_days, overall_health_score, payload, degraded, created_at
		 FROM health_predictions WHERE user_id=? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.HealthPrediction{}
	for rows.Next() {
		var p model.HealthPrediction
		if err := rows.Scan(&p.ID, &p.UserID, &p.TimePeriodDays, &p.OverallHealthScore, &p.Payload, &p.Degraded, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
