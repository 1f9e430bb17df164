package model

import "time"

// Ledger categories.
const (
	CategoryHabits        = "habits"
	CategoryMedicalRecord = "medical_record"
	CategoryPaperwork     = "paperwork"
	CategoryRedemption    = "redemption"
)

// Transaction types, derived from the sign of the amount.
const (
	TransactionEarned   = "earned"
	TransactionRedeemed = "redeemed"
)

// TokenTransaction is an append-only row of `token_transactions`.
type TokenTransaction struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Amount          int       `json:"amount"` // signed
	Category        string    `json:"category"`
	TransactionType string    `json:"transaction_type"`
	Description     string    `json:"description"`
	CreatedAt       time.Time `json:"created_at"`
}

// TransactionType returns "earned" for positive amounts and "redeemed"
// otherwise.
func TransactionType(amount int) string {
	if amount > 0 {
		return TransactionEarned
	}
	return TransactionRedeemed
}
