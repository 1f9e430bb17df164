package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/healthsync/internal/model"
)

const (
	dashboardRecordLimit = 5
	dashboardHabitLimit  = 7
)

type DashboardService struct {
	Users   UserStore
	Habits  HabitStore
	Records RecordStore
	Ledger  LedgerStore
}

func NewDashboardService(users UserStore, habits HabitStore, records RecordStore, ledger LedgerStore) *DashboardService {
	return &DashboardService{Users: users, Habits: habits, Records: records, Ledger: ledger}
}

type Dashboard struct {
	User          model.User            `json:"user"`
	RecentRecords []model.MedicalRecord `json:"recent_records"`
	RecentHabits  []model.HabitRecord   `json:"recent_habits"`
	TotalEarned   int                   `json:"total_tokens_earned"`
}

func (s *DashboardService) Get(ctx context.Context, userID string) (Dashboard, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("get user: %w", err)
	}
	records, err := s.Records.ListByUser(ctx, userID, dashboardRecordLimit)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list records: %w", err)
	}
	habits, err := s.Habits.ListByUser(ctx, userID, dashboardHabitLimit)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list habits: %w", err)
	}
	earned, err := s.Ledger.TotalEarned(ctx, userID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("ledger earned: %w", err)
	}
	if records == nil {
		records = []model.MedicalRecord{}
	}
	if habits == nil {
		habits = []model.HabitRecord{}
	}
	return Dashboard{User: u, RecentRecords: records, RecentHabits: habits, TotalEarned: earned}, nil
}
