package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/healthsync/internal/analysis"
	"github.com/iliyamo/healthsync/internal/model"
)

type RecordService struct {
	Users    UserStore
	Records  RecordStore
	Analyzer *analysis.Analyzer
	Now      Clock
}

func NewRecordService(users UserStore, records RecordStore, a *analysis.Analyzer) *RecordService {
	return &RecordService{Users: users, Records: records, Analyzer: a, Now: systemClock}
}

type RecordInput struct {
	UserID      string `json:"user_id"`
	Filename    string `json:"filename"`
	Content     string `json:"content"`
	ContentType string `json:"content_type,omitempty"`
}

type RecordResult struct {
	Record       model.MedicalRecord `json:"record"`
	TokensEarned int                 `json:"tokens_earned"`
	Degradation
}

// Upload analyzes the record, tags its urgency from the content and the
// summary, and stores it together with the upload reward.
func (s *RecordService) Upload(ctx context.Context, in RecordInput) (RecordResult, error) {
	if in.UserID == "" {
		return RecordResult{}, invalid("user_id required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return RecordResult{}, invalid("content required")
	}
	if _, err := s.Users.GetByID(ctx, in.UserID); err != nil {
		return RecordResult{}, fmt.Errorf("get user: %w", err)
	}
	filename := strings.TrimSpace(in.Filename)
	if filename == "" {
		filename = "medical-record.txt"
	}
	contentType := in.ContentType
	if contentType == "" {
		contentType = "text/plain"
	}

	res := analysis.TryExternal(ctx, s.Analyzer, analysis.MedicalRecordPrompt(in.Content),
		analysis.Static(analysis.MedicalAnalysisFallback()))
	a := res.Value
	if res.Reason == analysis.ReasonMalformedResponse {
		a = analysis.MedicalAnalysisFromText(res.Raw)
	}
	recs := []string(a.Recommendations)
	if recs == nil {
		recs = []string{}
	}

	rec := model.MedicalRecord{
		UserID:           in.UserID,
		Filename:         filename,
		Content:          in.Content,
		ContentType:      contentType,
		AISummary:        a.Summary,
		RiskAssessment:   a.RiskText(),
		Recommendations:  recs,
		Urgency:          string(analysis.ClassifyUrgency(in.Content, a.Summary)),
		AnalysisDegraded: res.Degraded,
		UploadedAt:       s.Now().UTC(),
	}
	if err := s.Records.Create(ctx, &rec, RecordUploadReward); err != nil {
		return RecordResult{}, fmt.Errorf("store record: %w", err)
	}
	return RecordResult{Record: rec, TokensEarned: RecordUploadReward, Degradation: degradation(res)}, nil
}

// RecordListLimit caps List.
const RecordListLimit = 50

func (s *RecordService) List(ctx context.Context, userID string) ([]model.MedicalRecord, error) {
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return s.Records.ListByUser(ctx, userID, RecordListLimit)
}
