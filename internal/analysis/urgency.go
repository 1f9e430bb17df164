package analysis

import "strings"

// Urgency is the priority tag attached to AI-derived answers.
type Urgency string

const (
	UrgencyLow       Urgency = "low"
	UrgencyMedium    Urgency = "medium"
	UrgencyHigh      Urgency = "high"
	UrgencyEmergency Urgency = "emergency"
)

var (
	emergencyKeywords = []string{"emergency", "urgent", "severe", "critical", "immediately", "hospital", "911", "chest pain", "breathing", "unconscious"}
	highKeywords      = []string{"pain", "fever", "bleeding", "dizzy", "nausea", "doctor"}
)

// ClassifyUrgency checks the keyword tiers in priority order and returns the
// first tier with a match.  Text matching no tier is medium.
func ClassifyUrgency(texts ...string) Urgency {
	s := strings.ToLower(strings.Join(texts, " "))
	if containsAny(s, emergencyKeywords) {
		return UrgencyEmergency
	}
	if containsAny(s, highKeywords) {
		return UrgencyHigh
	}
	return UrgencyMedium
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

const maxRecommendations = 3

// ExtractRecommendations derives up to three generic action items from
// keywords in an assistant reply.
func ExtractRecommendations(text string) []string {
	s := strings.ToLower(text)
	var out []string
	if strings.Contains(s, "drink") && strings.Contains(s, "water") {
		out = append(out, "Increase water intake")
	}
	if strings.Contains(s, "exercise") {
		out = append(out, "Regular physical activity")
	}
	if strings.Contains(s, "sleep") {
		out = append(out, "Improve sleep habits")
	}
	if strings.Contains(s, "doctor") || strings.Contains(s, "medical") {
		out = append(out, "Consult healthcare provider")
	}
	if strings.Contains(s, "medication") {
		out = append(out, "Review medication schedule")
	}
	if len(out) > maxRecommendations {
		out = out[:maxRecommendations]
	}
	return out
}

// SuggestsFollowUp reports whether a reply points the user at a clinician.
func SuggestsFollowUp(reply string) bool {
	s := strings.ToLower(reply)
	return strings.Contains(s, "doctor") || strings.Contains(s, "medical")
}
