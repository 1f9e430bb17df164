package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/healthsync/internal/model"
)

// LedgerPageSize is how many ledger entries Summary returns.
const LedgerPageSize = 50

type TokenService struct {
	Users  UserStore
	Ledger LedgerStore
	Now    Clock
}

func NewTokenService(users UserStore, ledger LedgerStore) *TokenService {
	return &TokenService{Users: users, Ledger: ledger, Now: systemClock}
}

type TokenSummary struct {
	UserID       string                   `json:"user_id"`
	Balance      int                      `json:"balance"`
	TotalEarned  int                      `json:"total_earned"`
	ByCategory   map[string]int           `json:"by_category"`
	Transactions []model.TokenTransaction `json:"transactions"`
}

func (s *TokenService) Summary(ctx context.Context, userID string) (TokenSummary, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return TokenSummary{}, fmt.Errorf("get user: %w", err)
	}
	txs, err := s.Ledger.ListByUser(ctx, userID, LedgerPageSize)
	if err != nil {
		return TokenSummary{}, fmt.Errorf("list ledger: %w", err)
	}
	totals, err := s.Ledger.TotalsByCategory(ctx, userID)
	if err != nil {
		return TokenSummary{}, fmt.Errorf("ledger totals: %w", err)
	}
	earned, err := s.Ledger.TotalEarned(ctx, userID)
	if err != nil {
		return TokenSummary{}, fmt.Errorf("ledger earned: %w", err)
	}
	if txs == nil {
		txs = []model.TokenTransaction{}
	}
	if totals == nil {
		totals = map[string]int{}
	}
	return TokenSummary{UserID: u.ID, Balance: u.Tokens, TotalEarned: earned, ByCategory: totals, Transactions: txs}, nil
}

type RedeemInput struct {
	Amount      int    `json:"amount"`
	Description string `json:"description"`
}

type RedeemResult struct {
	Transaction model.TokenTransaction `json:"transaction"`
	Balance     int                    `json:"balance"`
}

// Redeem spends tokens.  The balance check and the debit happen in one
// statement, so a balance can never go negative.
func (s *TokenService) Redeem(ctx context.Context, userID string, in RedeemInput) (RedeemResult, error) {
	if in.Amount <= 0 {
		return RedeemResult{}, invalid("amount must be positive")
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return RedeemResult{}, invalid("description required")
	}
	tx, balance, err := s.Ledger.Redeem(ctx, userID, in.Amount, desc, s.Now().UTC())
	if err != nil {
		return RedeemResult{}, fmt.Errorf("redeem: %w", err)
	}
	return RedeemResult{Transaction: tx, Balance: balance}, nil
}
