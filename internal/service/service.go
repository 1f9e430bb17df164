// Package service orchestrates requests: it loads user context, calls the
// scoring engine or the LLM through the analysis layer, and persists the
// outcome.  Stores are declared here as small interfaces so the services
// can be exercised without a database.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/healthsync/internal/analysis"
	"github.com/iliyamo/healthsync/internal/model"
	"github.com/iliyamo/healthsync/internal/queue"
)

// ErrInvalidInput wraps every validation failure.  Handlers map it to 400.
var ErrInvalidInput = errors.New("invalid input")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Clock returns the current time.  Services call it instead of time.Now so
// tests can pin the calendar day.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// Token rewards outside the habit engine.
const (
	RecordUploadReward = 50
	PaperworkReward    = 25
)

// Degradation is embedded in every AI-backed response.
type Degradation struct {
	Degraded       bool                   `json:"degraded"`
	DegradedReason analysis.DegradeReason `json:"degraded_reason,omitempty"`
}

func degradation[T any](r analysis.Result[T]) Degradation {
	return Degradation{Degraded: r.Degraded, DegradedReason: r.Reason}
}

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

type HabitStore interface {
	Create(ctx context.Context, h *model.HabitRecord) error
	ListByUser(ctx context.Context, userID string, limit int) ([]model.HabitRecord, error)
}

type LedgerStore interface {
	Redeem(ctx context.Context, userID string, amount int, description string, at time.Time) (model.TokenTransaction, int, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]model.TokenTransaction, error)
	TotalsByCategory(ctx context.Context, userID string) (map[string]int, error)
	TotalEarned(ctx context.Context, userID string) (int, error)
}

type RecordStore interface {
	Create(ctx context.Context, rec *model.MedicalRecord, reward int) error
	ListByUser(ctx context.Context, userID string, limit int) ([]model.MedicalRecord, error)
}

type PaperworkStore interface {
	Create(ctx context.Context, p *model.PaperworkTemplate, reward int) error
	ListByUser(ctx context.Context, userID string, limit int) ([]model.PaperworkTemplate, error)
}

type PredictionStore interface {
	Create(ctx context.Context, p *model.HealthPrediction) error
	ListByUser(ctx context.Context, userID string, limit int) ([]model.HealthPrediction, error)
}

type MedicationStore interface {
	Create(ctx context.Context, m *model.Medication) error
	ListByUser(ctx context.Context, userID string) ([]model.Medication, error)
}

type ContactStore interface {
	Create(ctx context.Context, c *model.EmergencyContact) error
	ListByUser(ctx context.Context, userID string) ([]model.EmergencyContact, error)
}

type AlertStore interface {
	Create(ctx context.Context, a *model.HealthAlert) error
	ListByUser(ctx context.Context, userID string, limit int) ([]model.HealthAlert, error)
}

type ChatStore interface {
	CreateSession(ctx context.Context, s *model.ChatSession) error
	GetSession(ctx context.Context, id, userID string) (model.ChatSession, error)
	AppendMessages(ctx context.Context, sessionID string, msgs ...*model.ChatMessage) error
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]model.ChatMessage, error)
}

// AlertPublisher delivers alert events to the notification pipeline.
type AlertPublisher interface {
	PublishHealthAlert(ctx context.Context, ev queue.HealthAlertEvent) error
}
