package analysis

import (
	"bytes"
	"encoding/json"
	"strings"
)

// StringList decodes a JSON array or a single value into strings.  Strings
// are kept as they are; any other element becomes its compact JSON text,
// so a model that answers with objects still yields a usable list.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		items = []json.RawMessage{b}
	}
	out := StringList{}
	for _, it := range items {
		if s := listItem(it); s != "" {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}

func listItem(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return strings.TrimSpace(string(raw))
	}
	return buf.String()
}

// MedicalAnalysis is the annotation attached to an uploaded medical record.
// RiskAssessment may be free text or a structured object.
type MedicalAnalysis struct {
	Summary         string          `json:"summary"`
	RiskAssessment  json.RawMessage `json:"risk_assessment"`
	Recommendations StringList      `json:"recommendations"`
}

// RiskText returns the risk assessment as plain text when it is a JSON
// string and as compact JSON otherwise.
func (m MedicalAnalysis) RiskText() string {
	if len(m.RiskAssessment) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(m.RiskAssessment, &s); err == nil {
		return s
	}
	return string(m.RiskAssessment)
}

// MedicalAnalysisFallback is returned when a record cannot be analyzed.
func MedicalAnalysisFallback() MedicalAnalysis {
	return MedicalAnalysis{
		Summary:         "Medical record uploaded successfully. AI analysis temporarily unavailable.",
		RiskAssessment:  json.RawMessage(`"Please consult healthcare provider for assessment."`),
		Recommendations: StringList{"Follow prescribed treatment plan."},
	}
}

// maxTextSummary caps the summary taken from a free-text completion.
const maxTextSummary = 200

// MedicalAnalysisFromText keeps the model's prose as the summary when the
// completion was not JSON.  Blank text and JSON of the wrong shape give
// MedicalAnalysisFallback.
func MedicalAnalysisFromText(raw string) MedicalAnalysis {
	text := strings.TrimSpace(raw)
	if text == "" || json.Valid([]byte(text)) {
		return MedicalAnalysisFallback()
	}
	if r := []rune(text); len(r) > maxTextSummary {
		text = string(r[:maxTextSummary]) + "..."
	}
	return MedicalAnalysis{
		Summary:         text,
		RiskAssessment:  json.RawMessage(`"AI analysis completed. Please consult with healthcare provider for detailed assessment."`),
		Recommendations: StringList{"Maintain regular checkups and follow medical advice."},
	}
}

type RiskPrediction struct {
	Condition      string     `json:"condition"`
	RiskLevel      string     `json:"risk_level"`
	RiskPercentage float64    `json:"risk_percentage"`
	Confidence     float64    `json:"confidence"`
	Factors        StringList `json:"factors"`
	Timeline       string     `json:"timeline"`
}

type TrendSummary struct {
	Improving StringList `json:"improving"`
	Declining StringList `json:"declining"`
	Stable    StringList `json:"stable"`
}

// Prediction is the predictive trend analysis payload.
type Prediction struct {
	OverallHealthScore float64          `json:"overall_health_score"`
	RiskPredictions    []RiskPrediction `json:"risk_predictions"`
	TrendAnalysis      TrendSummary     `json:"trend_analysis"`
	Recommendations    StringList       `json:"recommendations"`
	PredictedOutcomes  StringList       `json:"predicted_outcomes"`
}

// PredictionFallback derives a conservative prediction from the stored
// health score alone.
func PredictionFallback(healthScore float64) Prediction {
	level, pct := "high", 65.0
	switch {
	case healthScore >= 90:
		level, pct = "low", 15
	case healthScore >= 75:
		level, pct = "medium", 35
	}
	return Prediction{
		OverallHealthScore: healthScore,
		RiskPredictions: []RiskPrediction{{
			Condition:      "General Health Decline",
			RiskLevel:      level,
			RiskPercentage: pct,
			Confidence:     75,
			Factors:        StringList{"Health score", "Habit consistency"},
			Timeline:       "6-12 months",
		}},
		TrendAnalysis: TrendSummary{
			Improving: StringList{"Overall wellness tracking"},
			Declining: StringList{},
			Stable:    StringList{"Health score maintenance"},
		},
		Recommendations: StringList{
			"Maintain consistent health habits",
			"Regular health monitoring",
			"Consult healthcare provider annually",
		},
		PredictedOutcomes: StringList{"Continued health improvement with consistent habits"},
	}
}

type Interaction struct {
	Drug1          string `json:"drug1"`
	Drug2          string `json:"drug2"`
	Severity       string `json:"severity"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

// InteractionReport is the medication safety check payload.
type InteractionReport struct {
	InteractionLevel string        `json:"interaction_level"`
	Interactions     []Interaction `json:"interactions"`
	Warnings         StringList    `json:"warnings"`
	Recommendations  StringList    `json:"recommendations"`
	SafeToTake       bool          `json:"safe_to_take"`
}

// InteractionFallback never reports a combination as safe.
func InteractionFallback(reason DegradeReason) InteractionReport {
	if reason == ReasonCallFailed {
		return InteractionReport{
			InteractionLevel: "error",
			Interactions:     []Interaction{},
			Warnings:         StringList{"System error. Consult healthcare provider immediately."},
			Recommendations:  StringList{"Contact pharmacist for interaction check"},
			SafeToTake:       false,
		}
	}
	return InteractionReport{
		InteractionLevel: "unknown",
		Interactions:     []Interaction{},
		Warnings:         StringList{"Unable to analyze interactions. Consult pharmacist."},
		Recommendations:  StringList{"Verify with healthcare provider"},
		SafeToTake:       false,
	}
}

// EmergencyAssessment is the emergency detection payload.
type EmergencyAssessment struct {
	EmergencyDetected bool       `json:"emergency_detected"`
	Severity          string     `json:"severity,omitempty"`
	Type              string     `json:"type,omitempty"`
	Indicators        StringList `json:"indicators,omitempty"`
	RecommendedAction string     `json:"recommended_action,omitempty"`
	Message           string     `json:"message,omitempty"`
}

// EmergencyFallback reports no AI-detected emergency.  The keyword
// classifier still runs independently of this value.
func EmergencyFallback() EmergencyAssessment {
	return EmergencyAssessment{EmergencyDetected: false}
}
