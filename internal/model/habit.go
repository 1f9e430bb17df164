package model

import (
	"time"

	"github.com/iliyamo/healthsync/internal/scoring"
)

// DateLayout is the calendar-day format used for habit dates.
const DateLayout = "2006-01-02"

// Vitals are optional readings stored with a habit log.  They are not
// validated and do not affect score or reward.
type Vitals struct {
	WeightKg  *float64 `json:"weight_kg,omitempty"`
	Systolic  *int     `json:"systolic,omitempty"`
	Diastolic *int     `json:"diastolic,omitempty"`
	HeartRate *int     `json:"heart_rate,omitempty"`
}

// HabitRecord is one user's log for one calendar day (`habits` table,
// unique on user_id + habit_date).  TokensEarned and HealthScoreImpact are
// computed on insert and never change.
type HabitRecord struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	HabitDate string `json:"habit_date"` // YYYY-MM-DD
	scoring.Metrics
	Vitals
	Notes             *string   `json:"notes,omitempty"`
	TokensEarned      int       `json:"tokens_earned"`
	HealthScoreImpact float64   `json:"health_score_impact"`
	CreatedAt         time.Time `json:"created_at"`
}
