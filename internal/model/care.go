package model

import "time"

// Medication is a row of the `medications` table.
type Medication struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	Dosage        string    `json:"dosage"`
	Frequency     string    `json:"frequency"`
	ScheduleTimes []string  `json:"schedule_times"`
	StartDate     *string   `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate       *string   `json:"end_date,omitempty"`
	Notes         *string   `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// EmergencyContact is someone notified when a health alert fires.
type EmergencyContact struct {
	ID                     string    `json:"id"`
	UserID                 string    `json:"user_id"`
	Name                   string    `json:"name"`
	Relationship           string    `json:"relationship"`
	Phone                  string    `json:"phone"`
	Email                  *string   `json:"email,omitempty"`
	IsPrimary              bool      `json:"is_primary"`
	CanReceiveAlerts       bool      `json:"can_receive_alerts"`
	PreferredContactMethod string    `json:"preferred_contact_method"` // phone, sms, email or both
	CreatedAt              time.Time `json:"created_at"`
}

// Alert triggers.
const (
	TriggeredByAI      = "ai_analysis"
	TriggeredByKeyword = "keyword"
)

// HealthAlert records a detected emergency.
type HealthAlert struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	AlertType        string    `json:"alert_type"`
	Severity         string    `json:"severity"` // high | critical
	Title            string    `json:"title"`
	Message          string    `json:"message"`
	TriggeredBy      string    `json:"triggered_by"`
	Status           string    `json:"status"`
	ContactsNotified int       `json:"contacts_notified"`
	CreatedAt        time.Time `json:"created_at"`
}
