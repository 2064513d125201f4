package domain

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shuttlecourt/tournament-engine/errs"
	"github.com/shuttlecourt/tournament-engine/storagedb"
)

// Team is pure grouping; it carries no state of its own.
type Team struct {
	ID   int64
	Name string
}

// CreateTeam inserts a new team, rejecting duplicate names. One function
// per CRUD verb, operating through storagedb.Tx so every call happens
// inside the caller's transaction.
func CreateTeam(ctx context.Context, tx *storagedb.Tx, name string) (*Team, error) {
	if name == "" {
		return nil, errs.ErrInvalidName
	}
	var exists int
	if err := tx.SQL().QueryRowContext(ctx, `SELECT COUNT(1) FROM team WHERE name = ?`, name).Scan(&exists); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	if exists > 0 {
		return nil, errs.ErrNameExists
	}
	seq, err := tx.NextSeq(ctx, "team")
	if err != nil {
		return nil, err
	}
	res, err := tx.SQL().ExecContext(ctx, `INSERT INTO team (name, seq_num) VALUES (?, ?)`, name, seq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	id, err := storagedb.LastInsertID(res)
	if err != nil {
		return nil, err
	}
	tx.LogInsert("team", id)
	return &Team{ID: id, Name: name}, nil
}

// GetTeam fetches a team by id.
func GetTeam(ctx context.Context, db Querier, id int64) (*Team, error) {
	var t Team
	err := db.QueryRowContext(ctx, `SELECT id, name FROM team WHERE id = ?`, id).Scan(&t.ID, &t.Name)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	return &t, nil
}

// DeleteTeam removes a team; legal at any time since no entity stores a
// hard reference requiring cascading cleanup beyond Player.TeamID, which
// the caller is expected to clear first.
func DeleteTeam(ctx context.Context, tx *storagedb.Tx, id int64) error {
	res, err := tx.SQL().ExecContext(ctx, `DELETE FROM team WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	if err := storagedb.CheckAffectedRows(res, errs.ErrNotFound); err != nil {
		return err
	}
	tx.LogDelete("team", id)
	return nil
}
