package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iliyamo/healthsync/internal/analysis"
	"github.com/iliyamo/healthsync/internal/model"
	"github.com/iliyamo/healthsync/internal/scoring"
)

const (
	DefaultPredictionDays = 30
	maxPredictionDays     = 365
	predictionRecordLimit = 5
	predictionListLimit   = 20
)

type PredictionService struct {
	Users       UserStore
	Habits      HabitStore
	Records     RecordStore
	Predictions PredictionStore
	Analyzer    *analysis.Analyzer
	Now         Clock
}

func NewPredictionService(users UserStore, habits HabitStore, records RecordStore, preds PredictionStore, a *analysis.Analyzer) *PredictionService {
	return &PredictionService{Users: users, Habits: habits, Records: records, Predictions: preds, Analyzer: a, Now: systemClock}
}

type PredictionResult struct {
	ID             string              `json:"id"`
	UserID         string              `json:"user_id"`
	TimePeriodDays int                 `json:"time_period_days"`
	Prediction     analysis.Prediction `json:"prediction"`
	Degradation
}

// predictionContext is the health data sent along with the prompt.
type predictionContext struct {
	User struct {
		Age         *int    `json:"age,omitempty"`
		HealthScore float64 `json:"health_score"`
		Tokens      int     `json:"tokens"`
	} `json:"user_profile"`
	TimePeriodDays  int                      `json:"time_period_days"`
	DaysLogged      int                      `json:"days_logged"`
	Trends          map[string]scoring.Trend `json:"habit_trends"`
	CurrentAverages map[string]float64       `json:"current_averages"`
	RecordSummaries []string                 `json:"medical_history"`
}

// Analyze asks for a predictive analysis of the user's recent data.  When
// the model is unavailable the prediction is derived from the stored health
// score.  Every result is persisted.
func (s *PredictionService) Analyze(ctx context.Context, userID string, days int) (PredictionResult, error) {
	if days == 0 {
		days = DefaultPredictionDays
	}
	if days < 1 || days > maxPredictionDays {
		return PredictionResult{}, invalid("time_period_days must be between 1 and %d", maxPredictionDays)
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return PredictionResult{}, fmt.Errorf("get user: %w", err)
	}
	habits, err := s.Habits.ListByUser(ctx, userID, days)
	if err != nil {
		return PredictionResult{}, fmt.Errorf("list habits: %w", err)
	}
	records, err := s.Records.ListByUser(ctx, userID, predictionRecordLimit)
	if err != nil {
		return PredictionResult{}, fmt.Errorf("list records: %w", err)
	}

	var pc predictionContext
	pc.User.Age = u.Age
	pc.User.HealthScore = u.HealthScore
	pc.User.Tokens = u.Tokens
	pc.TimePeriodDays = days
	pc.DaysLogged = len(habits)
	history := chronological(habits)
	pc.Trends = scoring.Trends(history)
	pc.CurrentAverages = scoring.CurrentAverages(history)
	pc.RecordSummaries = make([]string, 0, len(records))
	for _, r := range records {
		pc.RecordSummaries = append(pc.RecordSummaries, r.AISummary)
	}

	res := analysis.TryExternal(ctx, s.Analyzer, analysis.PredictionPrompt(pc),
		func(analysis.DegradeReason) analysis.Prediction { return analysis.PredictionFallback(u.HealthScore) })

	payload, err := json.Marshal(res.Value)
	if err != nil {
		return PredictionResult{}, fmt.Errorf("encode prediction: %w", err)
	}
	p := model.HealthPrediction{
		UserID:             userID,
		TimePeriodDays:     days,
		OverallHealthScore: scoring.Clamp(res.Value.OverallHealthScore),
		Payload:            payload,
		Degraded:           res.Degraded,
		CreatedAt:          s.Now().UTC(),
	}
	if err := s.Predictions.Create(ctx, &p); err != nil {
		return PredictionResult{}, fmt.Errorf("store prediction: %w", err)
	}
	return PredictionResult{
		ID:             p.ID,
		UserID:         userID,
		TimePeriodDays: days,
		Prediction:     res.Value,
		Degradation:    degradation(res),
	}, nil
}

// StoredPrediction is a persisted prediction with its payload decoded.
type StoredPrediction struct {
	model.HealthPrediction
	Prediction json.RawMessage `json:"prediction"`
}

func (s *PredictionService) List(ctx context.Context, userID string) ([]StoredPrediction, error) {
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	list, err := s.Predictions.ListByUser(ctx, userID, predictionListLimit)
	if err != nil {
		return nil, err
	}
	out := make([]StoredPrediction, 0, len(list))
	for _, p := range list {
		payload := json.RawMessage(p.Payload)
		if len(payload) == 0 {
			payload = json.RawMessage("null")
		}
		out = append(out, StoredPrediction{HealthPrediction: p, Prediction: payload})
	}
	return out, nil
}
