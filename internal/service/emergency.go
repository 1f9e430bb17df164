package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/healthsync/internal/analysis"
	"github.com/iliyamo/healthsync/internal/model"
	"github.com/iliyamo/healthsync/internal/queue"
	"github.com/iliyamo/healthsync/internal/scoring"
)

const (
	emergencyHabitLimit = 3
	alertListLimit      = 50
	alertStatusActive   = "active"
	alertTypeEmergency  = "emergency"
)

type EmergencyService struct {
	Users     UserStore
	Habits    HabitStore
	Contacts  ContactStore
	Alerts    AlertStore
	Analyzer  *analysis.Analyzer
	Publisher AlertPublisher
	Log       *zap.Logger
	Now       Clock
}

func NewEmergencyService(users UserStore, habits HabitStore, contacts ContactStore, alerts AlertStore,
	a *analysis.Analyzer, pub AlertPublisher, log *zap.Logger) *EmergencyService {
	if log == nil {
		log = zap.NewNop()
	}
	return &EmergencyService{Users: users, Habits: habits, Contacts: contacts, Alerts: alerts,
		Analyzer: a, Publisher: pub, Log: log, Now: systemClock}
}

type EmergencyInput struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type EmergencyResult struct {
	EmergencyDetected bool                         `json:"emergency_detected"`
	Alert             *model.HealthAlert           `json:"alert,omitempty"`
	Assessment        analysis.EmergencyAssessment `json:"assessment"`
	Degradation
}

type emergencyVitals struct {
	Date      string   `json:"date"`
	WeightKg  *float64 `json:"weight_kg,omitempty"`
	Systolic  *int     `json:"systolic,omitempty"`
	Diastolic *int     `json:"diastolic,omitempty"`
	HeartRate *int     `json:"heart_rate,omitempty"`
}

type emergencyHabit struct {
	Date string `json:"date"`
	scoring.Metrics
	Notes *string `json:"notes,omitempty"`
}

type emergencyContext struct {
	Profile struct {
		Age         *int    `json:"age,omitempty"`
		HealthScore float64 `json:"health_score"`
	} `json:"user_profile"`
	RecentHabits   []emergencyHabit  `json:"recent_habits"`
	RecentVitals   []emergencyVitals `json:"recent_vitals"`
	RecentMessages []string          `json:"recent_messages"`
}

// Check runs AI detection and the keyword classifier over the message.
// Either one firing persists an alert and publishes it to the alert queue.
func (s *EmergencyService) Check(ctx context.Context, in EmergencyInput) (EmergencyResult, error) {
	if in.UserID == "" {
		return EmergencyResult{}, invalid("user_id required")
	}
	u, err := s.Users.GetByID(ctx, in.UserID)
	if err != nil {
		return EmergencyResult{}, fmt.Errorf("get user: %w", err)
	}
	habits, err := s.Habits.ListByUser(ctx, in.UserID, emergencyHabitLimit)
	if err != nil {
		return EmergencyResult{}, fmt.Errorf("list habits: %w", err)
	}

	ec := emergencyContext{RecentHabits: []emergencyHabit{}, RecentVitals: []emergencyVitals{}, RecentMessages: []string{}}
	ec.Profile.Age = u.Age
	ec.Profile.HealthScore = u.HealthScore
	for _, h := range habits {
		ec.RecentHabits = append(ec.RecentHabits, emergencyHabit{Date: h.HabitDate, Metrics: h.Metrics, Notes: h.Notes})
		if h.WeightKg != nil || h.Systolic != nil || h.Diastolic != nil || h.HeartRate != nil {
			ec.RecentVitals = append(ec.RecentVitals, emergencyVitals{
				Date: h.HabitDate, WeightKg: h.WeightKg, Systolic: h.Systolic,
				Diastolic: h.Diastolic, HeartRate: h.HeartRate,
			})
		}
	}
	msg := strings.TrimSpace(in.Message)
	if msg != "" {
		ec.RecentMessages = append(ec.RecentMessages, msg)
	}

	res := analysis.TryExternal(ctx, s.Analyzer, analysis.EmergencyPrompt(ec), analysis.Static(analysis.EmergencyFallback()))
	assessment := res.Value
	out := EmergencyResult{Assessment: assessment, Degradation: degradation(res)}

	var triggeredBy string
	switch {
	case assessment.EmergencyDetected:
		triggeredBy = model.TriggeredByAI
	case msg != "" && analysis.ClassifyUrgency(msg) == analysis.UrgencyEmergency:
		triggeredBy = model.TriggeredByKeyword
	default:
		return out, nil
	}
	out.EmergencyDetected = true

	contacts, err := s.Contacts.ListByUser(ctx, in.UserID)
	if err != nil {
		return EmergencyResult{}, fmt.Errorf("list contacts: %w", err)
	}
	var notify []queue.AlertContact
	for _, c := range contacts {
		if !c.CanReceiveAlerts {
			continue
		}
		notify = append(notify, queue.AlertContact{
			Name: c.Name, Relationship: c.Relationship, Phone: c.Phone,
			Email: c.Email, PreferredContactMethod: c.PreferredContactMethod,
		})
	}

	alert := newAlert(u, assessment, triggeredBy, msg, s.Now().UTC())
	alert.ContactsNotified = len(notify)
	if err := s.Alerts.Create(ctx, &alert); err != nil {
		return EmergencyResult{}, fmt.Errorf("store alert: %w", err)
	}
	out.Alert = &alert
	s.publish(ctx, u, alert, notify)
	return out, nil
}

func newAlert(u model.User, a analysis.EmergencyAssessment, triggeredBy, msg string, at time.Time) model.HealthAlert {
	severity := "critical"
	if triggeredBy == model.TriggeredByAI && a.Severity == "high" {
		severity = "high"
	}
	message := a.Message
	if triggeredBy == model.TriggeredByKeyword || message == "" {
		message = "Emergency keywords detected in message: " + msg
	}
	title := "Emergency detected"
	if a.Type != "" && triggeredBy == model.TriggeredByAI {
		title = fmt.Sprintf("Emergency detected (%s)", a.Type)
	}
	return model.HealthAlert{
		UserID:      u.ID,
		AlertType:   alertTypeEmergency,
		Severity:    severity,
		Title:       title,
		Message:     message,
		TriggeredBy: triggeredBy,
		Status:      alertStatusActive,
		CreatedAt:   at,
	}
}

// publish hands the alert to the notification pipeline.  The alert is
// already stored, so a broker failure is logged and otherwise ignored.
func (s *EmergencyService) publish(ctx context.Context, u model.User, a model.HealthAlert, contacts []queue.AlertContact) {
	if s.Publisher == nil {
		return
	}
	if contacts == nil {
		contacts = []queue.AlertContact{}
	}
	ev := queue.HealthAlertEvent{
		AlertID:     a.ID,
		UserID:      u.ID,
		UserName:    u.Name,
		Severity:    a.Severity,
		Title:       a.Title,
		Message:     a.Message,
		TriggeredBy: a.TriggeredBy,
		Contacts:    contacts,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
	if err := s.Publisher.PublishHealthAlert(ctx, ev); err != nil {
		s.Log.Warn("publish health alert failed",
			zap.String("alert_id", a.ID),
			zap.String("user_id", u.ID),
			zap.Error(err))
	}
}

func (s *EmergencyService) ListAlerts(ctx context.Context, userID string) ([]model.HealthAlert, error) {
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return s.Alerts.ListByUser(ctx, userID, alertListLimit)
}
