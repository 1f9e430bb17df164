// Package repository holds the MySQL data access layer.  The sentinel
// errors below let services and handlers tell failure scenarios apart
// with errors.Is; anything else is an infrastructure error.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrUserNotFound is returned when the referenced user does not exist.
	// Handlers translate it into HTTP 404.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists is returned when registering an email that is taken.
	ErrEmailExists = errors.New("email already exists")

	// ErrHabitExists is returned when the user already logged habits for
	// that calendar day.  Handlers translate it into HTTP 409.
	ErrHabitExists = errors.New("habits already logged for this date")

	// ErrInsufficientTokens is returned when a redemption exceeds the
	// current balance.
	ErrInsufficientTokens = errors.New("insufficient tokens")

	// ErrNotFound is the generic missing-row error for everything but users.
	ErrNotFound = errors.New("not found")
)

// mysqlDuplicateEntry is the server error number for unique key violations.
const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
