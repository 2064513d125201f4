package domain

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shuttlecourt/tournament-engine/errs"
	"github.com/shuttlecourt/tournament-engine/storagedb"
)

// PlayerPair is the competing unit inside a category. Player2ID is nil
// for singles/unpaired participants.
type PlayerPair struct {
	ID          int64
	CategoryID  int64
	Player1ID   int64
	Player2ID   *int64
	GroupNum    *int
	InitialRank *int
}

// CreatePair validates that both players are registered in the category,
// that non-mixed doubles have matching sex with the category, and that
// player1 != player2.
func CreatePair(ctx context.Context, tx *storagedb.Tx, cat *Category, player1ID int64, player2ID *int64) (*PlayerPair, error) {
	if player2ID != nil && *player2ID == player1ID {
		return nil, errs.ErrPlayersIdentical
	}

	p1, err := GetPlayer(ctx, tx.SQL(), player1ID)
	if err != nil {
		return nil, err
	}
	if ok, err := IsRegisteredInCategory(ctx, tx.SQL(), player1ID, cat.ID); err != nil {
		return nil, err
	} else if !ok {
		return nil, errs.ErrPlayerNotInCategory
	}
	if cat.MatchType != MatchTypeMixed && cat.Sex != SexDontCare && p1.Sex != cat.Sex {
		return nil, errs.ErrInvalidSex
	}

	if player2ID != nil {
		p2, err := GetPlayer(ctx, tx.SQL(), *player2ID)
		if err != nil {
			return nil, err
		}
		if ok, err := IsRegisteredInCategory(ctx, tx.SQL(), *player2ID, cat.ID); err != nil {
			return nil, err
		} else if !ok {
			return nil, errs.ErrPlayerNotInCategory
		}
		if cat.MatchType != MatchTypeMixed && cat.Sex != SexDontCare && p2.Sex != cat.Sex {
			return nil, errs.ErrInvalidSex
		}
		if cat.MatchType == MatchTypeMixed && p1.Sex == p2.Sex {
			return nil, errs.ErrInvalidSex
		}
	}

	seq, err := tx.NextSeq(ctx, "pairs")
	if err != nil {
		return nil, err
	}
	res, err := tx.SQL().ExecContext(ctx,
		`INSERT INTO pairs (category_id, player1_id, player2_id, seq_num) VALUES (?, ?, ?, ?)`,
		cat.ID, player1ID, player2ID, seq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	id, err := storagedb.LastInsertID(res)
	if err != nil {
		return nil, err
	}
	tx.LogInsert("pairs", id)
	return &PlayerPair{ID: id, CategoryID: cat.ID, Player1ID: player1ID, Player2ID: player2ID}, nil
}

// GetPair fetches a pair by id.
func GetPair(ctx context.Context, db Querier, id int64) (*PlayerPair, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, category_id, player1_id, player2_id, group_num, initial_rank FROM pairs WHERE id = ?`, id)
	return scanPair(row)
}

func scanPair(row *sql.Row) (*PlayerPair, error) {
	var p PlayerPair
	err := row.Scan(&p.ID, &p.CategoryID, &p.Player1ID, &p.Player2ID, &p.GroupNum, &p.InitialRank)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	return &p, nil
}

// ListPairsByCategory returns every pair registered for a category,
// ordered by insertion (seq_num), the order generators consume for
// default seeding when no external seeding is supplied.
func ListPairsByCategory(ctx context.Context, db Querier, categoryID int64) ([]*PlayerPair, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, category_id, player1_id, player2_id, group_num, initial_rank
		 FROM pairs WHERE category_id = ? ORDER BY seq_num ASC`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	defer rows.Close()
	var out []*PlayerPair
	for rows.Next() {
		var p PlayerPair
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Player1ID, &p.Player2ID, &p.GroupNum, &p.InitialRank); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// SetPairGroupAndRank records the result of applying an external seeding
// or group assignment to a pair.
func SetPairGroupAndRank(ctx context.Context, tx *storagedb.Tx, id int64, groupNum, initialRank *int) error {
	res, err := tx.SQL().ExecContext(ctx,
		`UPDATE pairs SET group_num = ?, initial_rank = ? WHERE id = ?`, groupNum, initialRank, id)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	if err := storagedb.CheckAffectedRows(res, errs.ErrNotFound); err != nil {
		return err
	}
	tx.LogUpdate("pairs", id)
	return nil
}

