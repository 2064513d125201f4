package domain

import (
	"context"
	"fmt"

	"github.com/shuttlecourt/tournament-engine/errs"
	"github.com/shuttlecourt/tournament-engine/storagedb"
)

// RankingEntry is one pair's standing in a (category, round).
type RankingEntry struct {
	ID           int64
	CategoryID   int64
	Round        int
	PairID       int64
	GroupNum     *int // nil means "all" (elimination categories have no sub-groups)
	MatchesWon   int
	MatchesDrawn int
	MatchesLost  int
	GamesWon     int
	GamesLost    int
	PointsWon    int
	PointsLost   int
	Rank         *int
}

// CreateRankingEntry inserts one entry; Rank is set later by
// SetRankingEntryRank once the round's entries are all sorted.
func CreateRankingEntry(ctx context.Context, tx *storagedb.Tx, e RankingEntry) (*RankingEntry, error) {
	seq, err := tx.NextSeq(ctx, "ranking")
	if err != nil {
		return nil, err
	}
	res, err := tx.SQL().ExecContext(ctx,
		`INSERT INTO ranking (category_id, round, pair_id, group_num, matches_won, matches_drawn, matches_lost,
		 games_won, games_lost, points_won, points_lost, rank, seq_num) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		e.CategoryID, e.Round, e.PairID, e.GroupNum, e.MatchesWon, e.MatchesDrawn, e.MatchesLost,
		e.GamesWon, e.GamesLost, e.PointsWon, e.PointsLost, e.Rank, seq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	id, err := storagedb.LastInsertID(res)
	if err != nil {
		return nil, err
	}
	tx.LogInsert("ranking", id)
	e.ID = id
	return &e, nil
}

// ListRankingEntries returns every entry for (category, round), in
// insertion order; the ranking engine sorts and assigns Rank on top.
func ListRankingEntries(ctx context.Context, db Querier, categoryID int64, round int) ([]*RankingEntry, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, category_id, round, pair_id, group_num, matches_won, matches_drawn, matches_lost,
		 games_won, games_lost, points_won, points_lost, rank FROM ranking
		 WHERE category_id = ? AND round = ? ORDER BY seq_num ASC`, categoryID, round)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	defer rows.Close()
	var out []*RankingEntry
	for rows.Next() {
		var e RankingEntry
		if err := rows.Scan(&e.ID, &e.CategoryID, &e.Round, &e.PairID, &e.GroupNum, &e.MatchesWon, &e.MatchesDrawn,
			&e.MatchesLost, &e.GamesWon, &e.GamesLost, &e.PointsWon, &e.PointsLost, &e.Rank); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// DeleteRankingEntriesForRound removes every entry for (category,
// round), used before a rebuild following a score edit.
func DeleteRankingEntriesForRound(ctx context.Context, tx *storagedb.Tx, categoryID int64, round int) error {
	rows, err := tx.SQL().QueryContext(ctx, `SELECT id FROM ranking WHERE category_id = ? AND round = ?`, categoryID, round)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}

	if _, err := tx.SQL().ExecContext(ctx, `DELETE FROM ranking WHERE category_id = ? AND round = ?`, categoryID, round); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	for _, id := range ids {
		tx.LogDelete("ranking", id)
	}
	return nil
}

// SetRankingEntryRank writes the rank assigned after sorting.
func SetRankingEntryRank(ctx context.Context, tx *storagedb.Tx, id int64, rank int) error {
	res, err := tx.SQL().ExecContext(ctx, `UPDATE ranking SET rank = ? WHERE id = ?`, rank, id)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	if err := storagedb.CheckAffectedRows(res, errs.ErrNotFound); err != nil {
		return err
	}
	tx.LogUpdate("ranking", id)
	return nil
}
