package model

import "time"

// User is a row of the `users` table.  Tokens and HealthScore are the only
// columns updated after creation: Tokens moves with every ledger entry and
// HealthScore is overwritten by each habit log.
type User struct {
	ID           string    `json:"id"`            // users.id (uuid)
	Email        string    `json:"email"`         // users.email, unique
	Name         string    `json:"name"`          // users.name
	Age          *int      `json:"age,omitempty"` // users.age
	PasswordHash string    `json:"-"`             // users.password_hash (bcrypt)
	Tokens       int       `json:"tokens"`        // users.tokens
	HealthScore  float64   `json:"health_score"`  // users.health_score, 0..100
	CreatedAt    time.Time `json:"created_at"`    // users.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the raw token is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    string     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nil while active)
	CreatedAt time.Time  // refresh_tokens.created_at
}
