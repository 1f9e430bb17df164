package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/healthsync/internal/analysis"
	"github.com/iliyamo/healthsync/internal/model"
)

const paperworkListLimit = 50

var formTypes = map[string]bool{"admission": true, "discharge": true, "referral": true}

type PaperworkService struct {
	Users     UserStore
	Paperwork PaperworkStore
	Analyzer  *analysis.Analyzer
	Now       Clock
}

func NewPaperworkService(users UserStore, p PaperworkStore, a *analysis.Analyzer) *PaperworkService {
	return &PaperworkService{Users: users, Paperwork: p, Analyzer: a, Now: systemClock}
}

type PaperworkInput struct {
	UserID       string `json:"user_id"`
	FormType     string `json:"form_type"`
	HospitalName string `json:"hospital_name"`
	DoctorName   string `json:"doctor_name,omitempty"`
}

type PaperworkResult struct {
	Template     model.PaperworkTemplate `json:"template"`
	TokensEarned int                     `json:"tokens_earned"`
	Degradation
}

// Generate drafts the form with the user's profile pre-filled and keeps it
// as a template.  The reward is paid even when the placeholder is used.
func (s *PaperworkService) Generate(ctx context.Context, in PaperworkInput) (PaperworkResult, error) {
	if in.UserID == "" {
		return PaperworkResult{}, invalid("user_id required")
	}
	form := strings.ToLower(strings.TrimSpace(in.FormType))
	if !formTypes[form] {
		return PaperworkResult{}, invalid("form_type must be admission, discharge or referral")
	}
	hospital := strings.TrimSpace(in.HospitalName)
	if hospital == "" {
		return PaperworkResult{}, invalid("hospital_name required")
	}
	u, err := s.Users.GetByID(ctx, in.UserID)
	if err != nil {
		return PaperworkResult{}, fmt.Errorf("get user: %w", err)
	}

	req := analysis.PaperworkRequest{
		FormType:     form,
		HospitalName: hospital,
		DoctorName:   strings.TrimSpace(in.DoctorName),
		PatientName:  u.Name,
		PatientAge:   u.Age,
	}
	res := analysis.TryExternalText(ctx, s.Analyzer, analysis.PaperworkPrompt(req), analysis.PaperworkFallback(req))

	p := model.PaperworkTemplate{
		UserID:       u.ID,
		FormType:     form,
		HospitalName: hospital,
		DoctorName:   req.DoctorName,
		Content:      res.Value,
		Degraded:     res.Degraded,
		CreatedAt:    s.Now().UTC(),
	}
	if err := s.Paperwork.Create(ctx, &p, PaperworkReward); err != nil {
		return PaperworkResult{}, fmt.Errorf("store paperwork: %w", err)
	}
	return PaperworkResult{Template: p, TokensEarned: PaperworkReward, Degradation: degradation(res)}, nil
}

func (s *PaperworkService) List(ctx context.Context, userID string) ([]model.PaperworkTemplate, error) {
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return s.Paperwork.ListByUser(ctx, userID, paperworkListLimit)
}
