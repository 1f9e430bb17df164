// Package queue carries health alerts over RabbitMQ: the API publishes an
// event when an emergency is detected and a background consumer appends it
// to the alert log.
package queue

// HealthAlertQueue is the durable queue alert events are routed to.
const HealthAlertQueue = "health.alert"

// AlertContact is an emergency contact allowed to receive the alert.
type AlertContact struct {
	Name                   string  `json:"name"`
	Relationship           string  `json:"relationship"`
	Phone                  string  `json:"phone"`
	Email                  *string `json:"email,omitempty"`
	PreferredContactMethod string  `json:"preferred_contact_method"`
}

// HealthAlertEvent is published when an emergency is detected.  It carries
// enough for a notifier to act without querying the primary database.
type HealthAlertEvent struct {
	AlertID     string         `json:"alert_id"`
	UserID      string         `json:"user_id"`
	UserName    string         `json:"user_name"`
	Severity    string         `json:"severity"`
	Title       string         `json:"title"`
	Message     string         `json:"message"`
	TriggeredBy string         `json:"triggered_by"`
	Contacts    []AlertContact `json:"contacts"`
	CreatedAt   string         `json:"created_at"` // RFC3339
}
