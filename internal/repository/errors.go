package repository

import "errors"

// ErrNotFound is wrapped by lookups that match no row
var ErrNotFound = errors.New("not found")

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}
