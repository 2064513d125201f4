package domain

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shuttlecourt/tournament-engine/errs"
	"github.com/shuttlecourt/tournament-engine/storagedb"
)

// MatchGroup is all matches of one round (and, for round-robin, one
// pool) of a category.
type MatchGroup struct {
	ID         int64
	CategoryID int64
	Round      int
	GroupNum   int
	State      GroupState
}

// CreateMatchGroup inserts a new group in Config state.
func CreateMatchGroup(ctx context.Context, tx *storagedb.Tx, categoryID int64, round, groupNum int) (*MatchGroup, error) {
	seq, err := tx.NextSeq(ctx, "match_group")
	if err != nil {
		return nil, err
	}
	res, err := tx.SQL().ExecContext(ctx,
		`INSERT INTO match_group (category_id, round, group_num, state, seq_num) VALUES (?, ?, ?, ?, ?)`,
		categoryID, round, groupNum, string(GroupConfig), seq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	id, err := storagedb.LastInsertID(res)
	if err != nil {
		return nil, err
	}
	tx.LogInsert("match_group", id)
	return &MatchGroup{ID: id, CategoryID: categoryID, Round: round, GroupNum: groupNum, State: GroupConfig}, nil
}

// GetMatchGroup fetches a group by id.
func GetMatchGroup(ctx context.Context, db Querier, id int64) (*MatchGroup, error) {
	return scanMatchGroup(db.QueryRowContext(ctx,
		`SELECT id, category_id, round, group_num, state FROM match_group WHERE id = ?`, id))
}

func scanMatchGroup(row *sql.Row) (*MatchGroup, error) {
	var g MatchGroup
	var state string
	err := row.Scan(&g.ID, &g.CategoryID, &g.Round, &g.GroupNum, &state)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	g.State = GroupState(state)
	return &g, nil
}

// ListMatchGroupsByRound returns every group of a category's round, in
// group-number order.
func ListMatchGroupsByRound(ctx context.Context, db Querier, categoryID int64, round int) ([]*MatchGroup, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, category_id, round, group_num, state FROM match_group
		 WHERE category_id = ? AND round = ? ORDER BY group_num ASC`, categoryID, round)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	defer rows.Close()
	var out []*MatchGroup
	for rows.Next() {
		var g MatchGroup
		var state string
		if err := rows.Scan(&g.ID, &g.CategoryID, &g.Round, &g.GroupNum, &state); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
		}
		g.State = GroupState(state)
		out = append(out, &g)
	}
	return out, rows.Err()
}

// MaxRoundForCategory returns the highest round number any MatchGroup of
// categoryID has been created for, or 0 if none exist yet.
func MaxRoundForCategory(ctx context.Context, db Querier, categoryID int64) (int, error) {
	var max sql.NullInt64
	err := db.QueryRowContext(ctx, `SELECT MAX(round) FROM match_group WHERE category_id = ?`, categoryID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64), nil
}

// SetMatchGroupState is the match engine's single write path to
// MatchGroup.state.
func SetMatchGroupState(ctx context.Context, tx *storagedb.Tx, id int64, state GroupState) error {
	res, err := tx.SQL().ExecContext(ctx, `UPDATE match_group SET state = ? WHERE id = ?`, string(state), id)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	if err := storagedb.CheckAffectedRows(res, errs.ErrNotFound); err != nil {
		return err
	}
	tx.LogUpdate("match_group", id)
	return nil
}
