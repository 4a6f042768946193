// Package repository holds the MySQL data access layer and an in-memory
// store with the same behaviour.  The sentinel errors below are shared by
// both so that higher layers can tell failure scenarios apart.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrEmailExists is returned when registering an email that is taken.
	ErrEmailExists = errors.New("email already exists")
	// ErrUserNotFound is returned when no app_users row matches.
	ErrUserNotFound = errors.New("user not found")
	// ErrTokenUnavailable is returned by the ledger when no api_tokens row
	// for the token is both unexpired and still has budget.
	ErrTokenUnavailable = errors.New("expired or exhausted")
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
