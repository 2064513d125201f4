package storagedb

import (
	"database/sql"
	"fmt"

	"github.com/shuttlecourt/tournament-engine/errs"
)

// CheckAffectedRows turns a zero-rows-affected result into the given
// not-found sentinel error.
func CheckAffectedRows(result sql.Result, notFoundErr error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("storagedb: check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundErr
	}
	return nil
}

// LastInsertID wraps sql.Result.LastInsertId with the engine's integrity
// error sentinel instead of a bare driver error.
func LastInsertID(result sql.Result) (int64, error) {
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	return id, nil
}
