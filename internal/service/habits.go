package service

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/healthsync/internal/export"
	"github.com/iliyamo/healthsync/internal/model"
	"github.com/iliyamo/healthsync/internal/scoring"
)

// HabitHistoryLimit is how many logs List and Analytics look at.
const HabitHistoryLimit = 30

type HabitService struct {
	Users  UserStore
	Habits HabitStore
	Now    Clock
}

func NewHabitService(users UserStore, habits HabitStore) *HabitService {
	return &HabitService{Users: users, Habits: habits, Now: systemClock}
}

// HabitInput is one day's log.  Date is optional (YYYY-MM-DD) and defaults
// to today in UTC.
type HabitInput struct {
	UserID string `json:"user_id"`
	Date   string `json:"date,omitempty"`
	scoring.Metrics
	model.Vitals
	Notes *string `json:"notes,omitempty"`
}

// Log validates and scores the input, then stores the habit, the new health
// score and the reward atomically.  A second log for the same day fails with
// repository.ErrHabitExists.
func (s *HabitService) Log(ctx context.Context, in HabitInput) (model.HabitRecord, error) {
	if in.UserID == "" {
		return model.HabitRecord{}, invalid("user_id required")
	}
	if err := in.Metrics.Validate(); err != nil {
		return model.HabitRecord{}, invalid("%v", err)
	}
	today := s.Now().UTC()
	date := today.Format(model.DateLayout)
	if in.Date != "" {
		d, err := time.Parse(model.DateLayout, in.Date)
		if err != nil {
			return model.HabitRecord{}, invalid("date must be YYYY-MM-DD")
		}
		if d.Format(model.DateLayout) > date {
			return model.HabitRecord{}, invalid("date must not be in the future")
		}
		date = d.Format(model.DateLayout)
	}

	h := model.HabitRecord{
		UserID:            in.UserID,
		HabitDate:         date,
		Metrics:           in.Metrics,
		Vitals:            in.Vitals,
		Notes:             in.Notes,
		TokensEarned:      scoring.TokenReward(in.Metrics),
		HealthScoreImpact: scoring.HealthScore(in.Metrics),
		CreatedAt:         today,
	}
	if err := s.Habits.Create(ctx, &h); err != nil {
		return model.HabitRecord{}, fmt.Errorf("log habits: %w", err)
	}
	return h, nil
}

// List returns the most recent logs, newest first.
func (s *HabitService) List(ctx context.Context, userID string) ([]model.HabitRecord, error) {
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return s.Habits.ListByUser(ctx, userID, HabitHistoryLimit)
}

type HabitAnalytics struct {
	UserID          string                   `json:"user_id"`
	HealthScore     float64                  `json:"health_score"`
	DaysLogged      int                      `json:"days_logged"`
	Trends          map[string]scoring.Trend `json:"trends"`
	CurrentAverages map[string]float64       `json:"current_averages"`
}

// Analytics computes per-metric trends over the recent history.
func (s *HabitService) Analytics(ctx context.Context, userID string) (HabitAnalytics, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return HabitAnalytics{}, fmt.Errorf("get user: %w", err)
	}
	habits, err := s.Habits.ListByUser(ctx, userID, HabitHistoryLimit)
	if err != nil {
		return HabitAnalytics{}, fmt.Errorf("list habits: %w", err)
	}
	history := chronological(habits)
	return HabitAnalytics{
		UserID:          userID,
		HealthScore:     u.HealthScore,
		DaysLogged:      len(habits),
		Trends:          scoring.Trends(history),
		CurrentAverages: scoring.CurrentAverages(history),
	}, nil
}

// Export renders the full habit history, oldest first, as an xlsx file.
func (s *HabitService) Export(ctx context.Context, userID string) ([]byte, error) {
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	habits, err := s.Habits.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	for i, j := 0, len(habits)-1; i < j; i, j = i+1, j-1 {
		habits[i], habits[j] = habits[j], habits[i]
	}
	return export.HabitsWorkbook(habits)
}

// chronological turns a newest-first list into oldest-first metrics.
func chronological(habits []model.HabitRecord) []scoring.Metrics {
	out := make([]scoring.Metrics, len(habits))
	for i, h := range habits {
		out[len(habits)-1-i] = h.Metrics
	}
	return out
}
