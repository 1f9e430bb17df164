package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/iliyamo/healthsync/internal/model"
)

type MedicationRepo struct{ DB *sql.DB }

func NewMedicationRepo(db *sql.DB) *MedicationRepo { return &MedicationRepo{DB: db} }

func (r *MedicationRepo) Create(ctx context.Context, m *model.Medication) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = nowUTC(m.CreatedAt)
	times, err := jsonList(m.ScheduleTimes)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO medications (id, user_id, name, dosage, frequency, schedule_times, start_date, end_date, notes, created_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		m.ID, m.UserID, m.Name, m.Dosage, m.Frequency, times, m.StartDate, m.EndDate, m.Notes, m.CreatedAt)
	return err
}

// ListByUser returns medications in the order they were added.
func (r *MedicationRepo) ListByUser(ctx context.Context, userID string) ([]model.Medication, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, name, dosage, frequency, schedule_times, start_date, end_date, notes, created_at
		 FROM medications WHERE user_id=? ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Medication{}
	for rows.Next() {
		var (
			m          model.Medication
			times      []byte
			start, end sql.NullTime
		)
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &m.Dosage, &m.Frequency, &times, &start, &end, &m.Notes, &m.CreatedAt); err != nil {
			return nil, err
		}
		if m.ScheduleTimes, err = parseList("schedule_times", times); err != nil {
			return nil, fmt.Errorf("medication %s: %w", m.ID, err)
		}
		m.StartDate = formatDate(start)
		m.EndDate = formatDate(end)
		out = append(out, m)
	}
	return out, rows.Err()
}

func formatDate(t sql.NullTime) *string {
	if !t.Valid {
		return nil
	}
	s := t.Time.Format(model.DateLayout)
	return &s
}

