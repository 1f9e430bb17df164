package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/iliyamo/healthsync/internal/model"
)

type RecordRepo struct{ DB *sql.DB }

func NewRecordRepo(db *sql.DB) *RecordRepo { return &RecordRepo{DB: db} }

// Create stores an analyzed medical record and credits reward tokens in the
// same transaction.
func (r *RecordRepo) Create(ctx context.Context, rec *model.MedicalRecord, reward int) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.UploadedAt = nowUTC(rec.UploadedAt)
	recs, err := jsonList(rec.Recommendations)
	if err != nil {
		return err
	}
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		if err := lockUserTx(ctx, tx, rec.UserID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO medical_records (id, user_id, filename, content, content_type, ai_summary,
			 risk_assessment, recommendations, urgency, analysis_degraded, uploaded_at)
			 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			rec.ID, rec.UserID, rec.Filename, rec.Content, rec.ContentType, rec.AISummary,
			rec.RiskAssessment, recs, rec.Urgency, rec.AnalysisDegraded, rec.UploadedAt); err != nil {
			return err
		}
		if reward <= 0 {
			return nil
		}
		return appendTx(ctx, tx, &model.TokenTransaction{
			UserID:      rec.UserID,
			Amount:      reward,
			Category:    model.CategoryMedicalRecord,
			Description: fmt.Sprintf("Medical record uploaded: %s", rec.Filename),
			CreatedAt:   rec.UploadedAt,
		})
	})
}

// ListByUser returns records newest first.
func (r *RecordRepo) ListByUser(ctx context.Context, userID string, limit int) ([]model.MedicalRecord, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, filename, content, content_type, ai_summary, risk_assessment,
		 recommendations, urgency, analysis_degraded, uploaded_at
		 FROM medical_records WHERE user_id=? ORDER BY uploaded_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.MedicalRecord{}
	for rows.Next() {
		var (
			m    model.MedicalRecord
			recs []byte
		)
		if err := rows.Scan(&m.ID, &m.UserID, &m.Filename, &m.Content, &m.ContentType, &m.AISummary,
			&m.RiskAssessment, &recs, &m.Urgency, &m.AnalysisDegraded, &m.UploadedAt); err != nil {
			return nil, err
		}
		if m.Recommendations, err = parseList("recommendations", recs); err != nil {
			return nil, fmt.Errorf("record %s: %w", m.ID, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
