// Package repository implements the credential store: users, delivery
// partners, addresses and one-time codes on top of database/sql.  The
// sentinel errors below let services and handlers tell a missing row or a
// duplicate email apart from an infrastructure failure.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the addressed user, partner or address does
// not exist.  Handlers translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert or update violates the unique
// email constraint.  Handlers translate it into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
