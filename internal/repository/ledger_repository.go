package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/healthsync/internal/model"
)

// LedgerRepo reads and writes token_transactions.  Every write moves
// users.tokens in the same transaction as the ledger row, so the
// materialized balance always equals the ledger sum.
type LedgerRepo struct{ DB *sql.DB }

func NewLedgerRepo(db *sql.DB) *LedgerRepo { return &LedgerRepo{DB: db} }

// appendTx inserts a ledger row and applies its amount to the user's
// balance.  Callers have already locked or verified the user row.
func appendTx(ctx context.Context, tx *sql.Tx, t *model.TokenTransaction) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = nowUTC(t.CreatedAt)
	t.TransactionType = model.TransactionType(t.Amount)
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO token_transactions (id, user_id, amount, category, transaction_type, description, created_at) VALUES (?,?,?,?,?,?,?)",
		t.ID, t.UserID, t.Amount, t.Category, t.TransactionType, t.Description, t.CreatedAt); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, "UPDATE users SET tokens = tokens + ? WHERE id=?", t.Amount, t.UserID)
	return err
}

// Redeem spends amount tokens.  The conditional decrement is the check:
// when it matches no row the balance was too small (or the user is gone)
// and nothing is written.
func (r *LedgerRepo) Redeem(ctx context.Context, userID string, amount int, description string, at time.Time) (model.TokenTransaction, int, error) {
	t := model.TokenTransaction{
		ID:              uuid.NewString(),
		UserID:          userID,
		Amount:          -amount,
		Category:        model.CategoryRedemption,
		TransactionType: model.TransactionRedeemed,
		Description:     description,
		CreatedAt:       nowUTC(at),
	}
	var balance int
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		if err := lockUserTx(ctx, tx, userID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			"UPDATE users SET tokens = tokens - ? WHERE id=? AND tokens >= ?", amount, userID, amount)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrInsufficientTokens
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO token_transactions (id, user_id, amount, category, transaction_type, description, created_at) VALUES (?,?,?,?,?,?,?)",
			t.ID, t.UserID, t.Amount, t.Category, t.TransactionType, t.Description, t.CreatedAt); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx, "SELECT tokens FROM users WHERE id=?", userID).Scan(&balance)
	})
	if err != nil {
		return model.TokenTransaction{}, 0, err
	}
	return t, balance, nil
}

// ListByUser returns the newest ledger entries first.
func (r *LedgerRepo) ListByUser(ctx context.Context, userID string, limit int) ([]model.TokenTransaction, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, amount, category, transaction_type, description, created_at
		 FROM token_transactions WHERE user_id=? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.TokenTransaction{}
	for rows.Next() {
		var t model.TokenTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Category, &t.TransactionType, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TotalsByCategory sums signed amounts per category.
func (r *LedgerRepo) TotalsByCategory(ctx context.Context, userID string) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT category, COALESCE(SUM(amount),0) FROM token_transactions WHERE user_id=? GROUP BY category", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var (
			cat string
			sum int
		)
		if err := rows.Scan(&cat, &sum); err != nil {
			return nil, err
		}
		out[cat] = sum
	}
	return out, rows.Err()
}

// TotalEarned sums every positive entry.
func (r *LedgerRepo) TotalEarned(ctx context.Context, userID string) (int, error) {
	var sum int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount),0) FROM token_transactions WHERE user_id=? AND transaction_type=?",
		userID, model.TransactionEarned).Scan(&sum)
	return sum, err
}
