package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

const medicalSystem = "You are a medical AI assistant. Analyze medical records and provide health summaries and risk assessments in a professional manner."

// MedicalRecordPrompt asks for a JSON summary of a record's content.
func MedicalRecordPrompt(content string) Prompt {
	return Prompt{
		Name:   "medical_record",
		System: medicalSystem,
		User: fmt.Sprintf(`Analyze this medical record and provide:
1. A clear, patient-friendly summary (2-3 sentences)
2. Risk assessment for common conditions (diabetes, heart disease, hypertension)
3. Recommendations for lifestyle improvements

Medical Record Content:
%s

Please format your response as JSON with keys: summary, risk_assessment, recommendations`, content),
	}
}

const predictionSystem = `You are an expert AI health analyst specializing in predictive analytics. Analyze user health data to:

1. IDENTIFY health trends and patterns
2. PREDICT potential health risks
3. CALCULATE risk percentages with confidence levels
4. PROVIDE specific preventive recommendations
5. SUGGEST optimal health goals

Return analysis as JSON with:
- overall_health_score: 0-100
- risk_predictions: [{"condition": "name", "risk_level": "low/medium/high", "risk_percentage": 0-100, "confidence": 0-100, "factors": [], "timeline": "months"}]
- trend_analysis: {"improving": [], "declining": [], "stable": []}
- recommendations: []
- predicted_outcomes: []

Be scientific, accurate, and actionable.`

// PredictionPrompt embeds the assembled health data as indented JSON.
func PredictionPrompt(data any) Prompt {
	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		body = []byte("{}")
	}
	return Prompt{
		Name:   "prediction",
		System: predictionSystem,
		User: fmt.Sprintf(`Analyze this comprehensive health data for predictive insights:

%s

Provide detailed health predictions, risk analysis, and actionable recommendations in JSON format.`, body),
	}
}

const interactionSystem = `You are an expert pharmaceutical AI assistant. Analyze medication lists for:

1. DRUG INTERACTIONS (major, moderate, minor)
2. SAFETY WARNINGS and contraindications
3. DOSAGE CONCERNS
4. TIMING RECOMMENDATIONS
5. FOOD/LIFESTYLE interactions

Return JSON with:
- interaction_level: "none/minor/moderate/major/severe"
- interactions: [{"drug1": "name", "drug2": "name", "severity": "level", "description": "text", "recommendation": "text"}]
- warnings: []
- recommendations: []
- safe_to_take: boolean

Be extremely cautious and always recommend consulting healthcare providers for medication decisions.`

// InteractionPrompt lists the medications to check.
func InteractionPrompt(medications any) Prompt {
	body, err := json.MarshalIndent(medications, "", "  ")
	if err != nil {
		body = []byte("[]")
	}
	return Prompt{
		Name:   "medication_interaction",
		System: interactionSystem,
		User: fmt.Sprintf(`Analyze these medications for interactions and safety:

Medications: %s

Provide comprehensive interaction analysis in JSON format.`, body),
	}
}

const emergencySystem = `You are an emergency health detection AI. Analyze user data for signs of medical emergencies:

DETECT:
- Severe symptom patterns
- Dangerous vital signs
- Emergency keywords in messages
- Sudden health deterioration
- Mental health crises

Return JSON ONLY if emergency detected:
{
  "emergency_detected": true,
  "severity": "high/critical",
  "type": "medical/mental_health/medication",
  "indicators": [],
  "recommended_action": "call_911/urgent_care/doctor",
  "message": "Clear emergency description"
}

Return {"emergency_detected": false} if no emergency.`

// EmergencyPrompt sends the analysis context as compact JSON.
func EmergencyPrompt(data any) Prompt {
	body, err := json.Marshal(data)
	if err != nil {
		body = []byte("{}")
	}
	return Prompt{
		Name:   "emergency_detection",
		System: emergencySystem,
		User:   "Analyze for health emergencies: " + string(body),
	}
}

const paperworkSystem = "You are a medical administrative assistant. Generate professional medical forms and documents."

// PaperworkRequest carries the fields pre-filled into a generated form.
type PaperworkRequest struct {
	FormType     string
	HospitalName string
	DoctorName   string
	PatientName  string
	PatientAge   *int
}

// PaperworkPrompt asks for a plain-text form.
func PaperworkPrompt(r PaperworkRequest) Prompt {
	doctor := r.DoctorName
	if strings.TrimSpace(doctor) == "" {
		doctor = "Staff Doctor"
	}
	age := "Not specified"
	if r.PatientAge != nil {
		age = fmt.Sprint(*r.PatientAge)
	}
	return Prompt{
		Name:   "paperwork",
		System: paperworkSystem,
		User: fmt.Sprintf(`Generate a %s form for:
Hospital: %s
Doctor: %s
Patient: %s
Age: %s

Please create a professional medical %s form with standard fields and patient information pre-filled where available.`,
			r.FormType, r.HospitalName, doctor, r.PatientName, age, r.FormType),
	}
}

// PaperworkFallback is the placeholder document used when generation fails.
func PaperworkFallback(r PaperworkRequest) string {
	return fmt.Sprintf("Generated %s form for %s at %s. Please complete additional details as needed.",
		r.FormType, r.PatientName, r.HospitalName)
}

const assistantSystem = `You are Dr. HealthSync, an expert AI health assistant. You provide:

1. PERSONALIZED health advice based on user data
2. EVIDENCE-BASED medical information
3. ACTIONABLE recommendations
4. EMERGENCY recognition (when to seek immediate care)
5. SUPPORTIVE and empathetic responses

ALWAYS:
- Start responses with a personalized greeting using their health context
- Provide specific, actionable advice
- Include relevant health metrics/goals
- Recommend when to consult healthcare professionals
- Be encouraging and supportive

NEVER:
- Provide specific medical diagnoses
- Recommend prescription medications
- Replace professional medical advice
- Give advice outside your competence

Format responses as friendly, conversational advice with clear action items.`

// AssistantFallback is the reply used when the assistant is unavailable.
const AssistantFallback = "I'm experiencing technical difficulties right now. For urgent health concerns, please contact your healthcare provider or emergency services immediately."

// AssistantPrompt combines the prepared user context with the question.
func AssistantPrompt(context, message string) Prompt {
	return Prompt{
		Name:   "assistant",
		System: assistantSystem,
		User: fmt.Sprintf("User Context: %s\n\nUser Question: %s\n\nProvide personalized health advice considering their current health status, habits, and goals.",
			context, message),
	}
}
