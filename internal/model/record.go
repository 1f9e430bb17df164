package model

import "time"

// MedicalRecord is an uploaded document with the analysis attached at
// creation time (`medical_records` table).
type MedicalRecord struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Filename         string    `json:"filename"`
	Content          string    `json:"content"`
	ContentType      string    `json:"content_type"`
	AISummary        string    `json:"ai_summary"`
	RiskAssessment   string    `json:"risk_assessment"`
	Recommendations  []string  `json:"recommendations"`
	Urgency          string    `json:"urgency"`
	AnalysisDegraded bool      `json:"analysis_degraded"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// PaperworkTemplate is a generated form kept for reuse.
type PaperworkTemplate struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	FormType     string    `json:"form_type"` // admission | discharge | referral
	HospitalName string    `json:"hospital_name"`
	DoctorName   string    `json:"doctor_name"`
	Content      string    `json:"content"`
	Degraded     bool      `json:"degraded"`
	CreatedAt    time.Time `json:"created_at"`
}

// HealthPrediction stores a normalized prediction payload as JSON.
type HealthPrediction struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	TimePeriodDays     int       `json:"time_period_days"`
	OverallHealthScore float64   `json:"overall_health_score"`
	Payload            []byte    `json:"-"`
	Degraded           bool      `json:"degraded"`
	CreatedAt          time.Time `json:"created_at"`
}
