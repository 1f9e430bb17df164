package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/healthsync/internal/model"
)

// HabitRepo stores daily habit logs.  The (user_id, habit_date) unique key
// is the only guard against double logging: Create issues a single INSERT
// and maps the duplicate key error to ErrHabitExists.
type HabitRepo struct{ DB *sql.DB }

func NewHabitRepo(db *sql.DB) *HabitRepo { return &HabitRepo{DB: db} }

const habitColumns = `id, user_id, habit_date, sleep_hours, exercise_minutes, steps, water_glasses,
	fruit_veg_servings, mood_rating, stress_level, meditation_minutes, weight_kg, systolic, diastolic,
	heart_rate, notes, tokens_earned, health_score_impact, created_at`

// Create inserts h, overwrites the user's health score with
// h.HealthScoreImpact and, when h.TokensEarned is positive, credits the
// reward through the ledger.  All writes share one transaction.
func (r *HabitRepo) Create(ctx context.Context, h *model.HabitRecord) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	h.CreatedAt = nowUTC(h.CreatedAt)
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		if err := lockUserTx(ctx, tx, h.UserID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO habits ("+habitColumns+") VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)",
			h.ID, h.UserID, h.HabitDate, h.SleepHours, h.ExerciseMinutes, h.Steps, h.WaterGlasses,
			h.FruitVegServings, h.MoodRating, h.StressLevel, h.MeditationMinutes, h.WeightKg, h.Systolic,
			h.Diastolic, h.HeartRate, h.Notes, h.TokensEarned, h.HealthScoreImpact, h.CreatedAt)
		if err != nil {
			if isDuplicate(err) {
				return ErrHabitExists
			}
			return err
		}
		if _, err := tx.ExecContext(ctx, "UPDATE users SET health_score=? WHERE id=?", h.HealthScoreImpact, h.UserID); err != nil {
			return err
		}
		if h.TokensEarned <= 0 {
			return nil
		}
		return appendTx(ctx, tx, &model.TokenTransaction{
			UserID:      h.UserID,
			Amount:      h.TokensEarned,
			Category:    model.CategoryHabits,
			Description: fmt.Sprintf("Daily habits logged for %s", h.HabitDate),
			CreatedAt:   h.CreatedAt,
		})
	})
}

// ListByUser returns up to limit logs, newest day first.  A non-positive
// limit returns the full history.
func (r *HabitRepo) ListByUser(ctx context.Context, userID string, limit int) ([]model.HabitRecord, error) {
	q := "SELECT " + habitColumns + " FROM habits WHERE user_id=? ORDER BY habit_date DESC"
	args := []any{userID}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.HabitRecord{}
	for rows.Next() {
		var (
			h   model.HabitRecord
			day time.Time
		)
		if err := rows.Scan(&h.ID, &h.UserID, &day, &h.SleepHours, &h.ExerciseMinutes, &h.Steps,
			&h.WaterGlasses, &h.FruitVegServings, &h.MoodRating, &h.StressLevel, &h.MeditationMinutes,
			&h.WeightKg, &h.Systolic, &h.Diastolic, &h.HeartRate, &h.Notes, &h.TokensEarned,
			&h.HealthScoreImpact, &h.CreatedAt); err != nil {
			return nil, err
		}
		h.HabitDate = day.Format(model.DateLayout)
		out = append(out, h)
	}
	return out, rows.Err()
}
