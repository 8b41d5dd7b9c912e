package db

import (
	"errors"

	"modernc.org/sqlite"
)

// sqliteBusy is the primary result code SQLITE_BUSY.
const sqliteBusy = 5

// IsBusy checks if the error is an SQLite "database is locked" failure (SQLITE_BUSY or an extended variant).
func IsBusy(err error) bool {
	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code()&0xff == sqliteBusy
	}
	return false
}
