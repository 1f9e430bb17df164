package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/healthsync/internal/analysis"
	"github.com/iliyamo/healthsync/internal/model"
)

type MedicationService struct {
	Users       UserStore
	Medications MedicationStore
	Analyzer    *analysis.Analyzer
	Now         Clock
}

func NewMedicationService(users UserStore, meds MedicationStore, a *analysis.Analyzer) *MedicationService {
	return &MedicationService{Users: users, Medications: meds, Analyzer: a, Now: systemClock}
}

type MedicationInput struct {
	UserID        string   `json:"user_id"`
	Name          string   `json:"name"`
	Dosage        string   `json:"dosage"`
	Frequency     string   `json:"frequency"`
	ScheduleTimes []string `json:"schedule_times"`
	StartDate     *string  `json:"start_date,omitempty"`
	EndDate       *string  `json:"end_date,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
}

func (in MedicationInput) validate() error {
	if in.UserID == "" {
		return invalid("user_id required")
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Dosage) == "" || strings.TrimSpace(in.Frequency) == "" {
		return invalid("name, dosage and frequency required")
	}
	for _, t := range in.ScheduleTimes {
		if _, err := time.Parse("15:04", t); err != nil {
			return invalid("schedule_times must be HH:MM, got %q", t)
		}
	}
	for _, d := range []*string{in.StartDate, in.EndDate} {
		if d == nil {
			continue
		}
		if _, err := time.Parse(model.DateLayout, *d); err != nil {
			return invalid("dates must be YYYY-MM-DD")
		}
	}
	if in.StartDate != nil && in.EndDate != nil && *in.EndDate < *in.StartDate {
		return invalid("end_date must not precede start_date")
	}
	return nil
}

func (s *MedicationService) Add(ctx context.Context, in MedicationInput) (model.Medication, error) {
	if err := in.validate(); err != nil {
		return model.Medication{}, err
	}
	if _, err := s.Users.GetByID(ctx, in.UserID); err != nil {
		return model.Medication{}, fmt.Errorf("get user: %w", err)
	}
	times := in.ScheduleTimes
	if times == nil {
		times = []string{}
	}
	m := model.Medication{
		UserID:        in.UserID,
		Name:          strings.TrimSpace(in.Name),
		Dosage:        strings.TrimSpace(in.Dosage),
		Frequency:     strings.TrimSpace(in.Frequency),
		ScheduleTimes: times,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Notes:         in.Notes,
		CreatedAt:     s.Now().UTC(),
	}
	if err := s.Medications.Create(ctx, &m); err != nil {
		return model.Medication{}, fmt.Errorf("store medication: %w", err)
	}
	return m, nil
}

func (s *MedicationService) List(ctx context.Context, userID string) ([]model.Medication, error) {
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return s.Medications.ListByUser(ctx, userID)
}

// InteractionInput checks the user's stored medications, plus an optional
// candidate not yet added.
type InteractionInput struct {
	UserID        string           `json:"user_id"`
	NewMedication *MedicationInput `json:"new_medication,omitempty"`
}

type InteractionResult struct {
	analysis.InteractionReport
	Degradation
}

// medicationSummary is what the prompt sees of each medication.
type medicationSummary struct {
	Name          string   `json:"name"`
	Dosage        string   `json:"dosage"`
	Frequency     string   `json:"frequency"`
	ScheduleTimes []string `json:"schedule_times,omitempty"`
}

// CheckInteractions asks for an interaction analysis.  Neither fallback
// marks the combination as safe.
func (s *MedicationService) CheckInteractions(ctx context.Context, in InteractionInput) (InteractionResult, error) {
	meds, err := s.List(ctx, in.UserID)
	if err != nil {
		return InteractionResult{}, err
	}
	list := make([]medicationSummary, 0, len(meds)+1)
	for _, m := range meds {
		list = append(list, medicationSummary{Name: m.Name, Dosage: m.Dosage, Frequency: m.Frequency, ScheduleTimes: m.ScheduleTimes})
	}
	if n := in.NewMedication; n != nil {
		if strings.TrimSpace(n.Name) == "" {
			return InteractionResult{}, invalid("new_medication.name required")
		}
		list = append(list, medicationSummary{Name: n.Name, Dosage: n.Dosage, Frequency: n.Frequency, ScheduleTimes: n.ScheduleTimes})
	}
	if len(list) == 0 {
		return InteractionResult{}, invalid("no medications to check")
	}

	res := analysis.TryExternal(ctx, s.Analyzer, analysis.InteractionPrompt(list), analysis.InteractionFallback)
	return InteractionResult{InteractionReport: res.Value, Degradation: degradation(res)}, nil
}

type ContactService struct {
	Users    UserStore
	Contacts ContactStore
	Now      Clock
}

func NewContactService(users UserStore, contacts ContactStore) *ContactService {
	return &ContactService{Users: users, Contacts: contacts, Now: systemClock}
}

type ContactInput struct {
	UserID                 string  `json:"user_id"`
	Name                   string  `json:"name"`
	Relationship           string  `json:"relationship"`
	Phone                  string  `json:"phone"`
	Email                  *string `json:"email,omitempty"`
	IsPrimary              bool    `json:"is_primary"`
	CanReceiveAlerts       *bool   `json:"can_receive_alerts,omitempty"`
	PreferredContactMethod string  `json:"preferred_contact_method,omitempty"`
}

var contactMethods = map[string]bool{"phone": true, "sms": true, "email": true, "both": true}

func (s *ContactService) Add(ctx context.Context, in ContactInput) (model.EmergencyContact, error) {
	if in.UserID == "" {
		return model.EmergencyContact{}, invalid("user_id required")
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Phone) == "" {
		return model.EmergencyContact{}, invalid("name and phone required")
	}
	method := strings.ToLower(strings.TrimSpace(in.PreferredContactMethod))
	if method == "" {
		method = "phone"
	}
	if !contactMethods[method] {
		return model.EmergencyContact{}, invalid("preferred_contact_method must be phone, sms, email or both")
	}
	if (method == "email" || method == "both") && (in.Email == nil || strings.TrimSpace(*in.Email) == "") {
		return model.EmergencyContact{}, invalid("email required for preferred_contact_method %s", method)
	}
	if _, err := s.Users.GetByID(ctx, in.UserID); err != nil {
		return model.EmergencyContact{}, fmt.Errorf("get user: %w", err)
	}
	canAlert := true
	if in.CanReceiveAlerts != nil {
		canAlert = *in.CanReceiveAlerts
	}
	relationship := strings.TrimSpace(in.Relationship)
	if relationship == "" {
		relationship = "other"
	}
	c := model.EmergencyContact{
		UserID:                 in.UserID,
		Name:                   strings.TrimSpace(in.Name),
		Relationship:           relationship,
		Phone:                  strings.TrimSpace(in.Phone),
		Email:                  in.Email,
		IsPrimary:              in.IsPrimary,
		CanReceiveAlerts:       canAlert,
		PreferredContactMethod: method,
		CreatedAt:              s.Now().UTC(),
	}
	if err := s.Contacts.Create(ctx, &c); err != nil {
		return model.EmergencyContact{}, fmt.Errorf("store contact: %w", err)
	}
	return c, nil
}

func (s *ContactService) List(ctx context.Context, userID string) ([]model.EmergencyContact, error) {
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return s.Contacts.ListByUser(ctx, userID)
}
