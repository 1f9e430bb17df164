package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// withTx runs fn inside a transaction.  The transaction is committed when fn
// returns nil and rolled back otherwise.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()
	return fn(tx)
}

// lockUserTx checks that the user exists and locks its row for the rest of
// the transaction.
func lockUserTx(ctx context.Context, tx *sql.Tx, userID string) error {
	var one int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id=? FOR UPDATE", userID).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrUserNotFound
	}
	return err
}

func nowUTC(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC().Truncate(time.Second)
	}
	return t.UTC()
}

// jsonList encodes a string list for a JSON column.  A nil list is stored
// as an empty array.
func jsonList(l []string) ([]byte, error) {
	if l == nil {
		l = []string{}
	}
	return json.Marshal(l)
}

// parseList decodes a JSON list column.  NULL reads as an empty list.
func parseList(column string, b []byte) ([]string, error) {
	out := []string{}
	if len(b) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", column, err)
	}
	return out, nil
}
