package domain

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shuttlecourt/tournament-engine/errs"
	"github.com/shuttlecourt/tournament-engine/storagedb"
)

// CategoryParams are the per-category scoring/format overrides.
type CategoryParams struct {
	AllowDraw            bool
	WinScore             int
	DrawScore            int
	GroupConfig          string
	RoundRobinIterations int
}

// Category is a competition within a tournament.
type Category struct {
	ID          int64
	Name        string
	MatchType   MatchType
	Sex         Sex
	MatchSystem MatchSystem
	Params      CategoryParams
	State       CategoryState
}

// CreateCategory validates the Mixed/DontCare invariant (sex must be
// DontCare when the match type is Mixed) and inserts the row in Config
// state.
func CreateCategory(ctx context.Context, tx *storagedb.Tx, name string, mt MatchType, sex Sex, system MatchSystem, params CategoryParams) (*Category, error) {
	if name == "" {
		return nil, errs.ErrInvalidName
	}
	if mt == MatchTypeMixed && sex != SexDontCare {
		return nil, errs.ErrInvalidSex
	}
	if params.WinScore <= 0 {
		return nil, errs.ErrInvalidReconfig
	}
	var exists int
	if err := tx.SQL().QueryRowContext(ctx, `SELECT COUNT(1) FROM category WHERE name = ?`, name).Scan(&exists); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	if exists > 0 {
		return nil, errs.ErrNameExists
	}
	seq, err := tx.NextSeq(ctx, "category")
	if err != nil {
		return nil, err
	}
	res, err := tx.SQL().ExecContext(ctx,
		`INSERT INTO category (name, match_type, sex, match_system, allow_draw, win_score, draw_score, group_config, rr_iterations, state, seq_num)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		name, string(mt), string(sex), string(system), boolToInt(params.AllowDraw), params.WinScore, params.DrawScore,
		params.GroupConfig, params.RoundRobinIterations, string(CategoryConfig), seq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	id, err := storagedb.LastInsertID(res)
	if err != nil {
		return nil, err
	}
	tx.LogInsert("category", id)
	return &Category{ID: id, Name: name, MatchType: mt, Sex: sex, MatchSystem: system, Params: params, State: CategoryConfig}, nil
}

// GetCategory fetches a category by id.
func GetCategory(ctx context.Context, db Querier, id int64) (*Category, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, name, match_type, sex, match_system, allow_draw, win_score, draw_score, group_config, rr_iterations, state
		 FROM category WHERE id = ?`, id)
	return scanCategory(row)
}

func scanCategory(row *sql.Row) (*Category, error) {
	var c Category
	var mt, sex, system, state string
	var allowDraw int
	err := row.Scan(&c.ID, &c.Name, &mt, &sex, &system, &allowDraw, &c.Params.WinScore, &c.Params.DrawScore,
		&c.Params.GroupConfig, &c.Params.RoundRobinIterations, &state)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	c.MatchType = MatchType(mt)
	c.Sex = Sex(sex)
	c.MatchSystem = MatchSystem(system)
	c.Params.AllowDraw = allowDraw != 0
	c.State = CategoryState(state)
	return &c, nil
}

// SetCategoryState is the lifecycle controller's single write path to
// Category.state.
func SetCategoryState(ctx context.Context, tx *storagedb.Tx, id int64, state CategoryState) error {
	res, err := tx.SQL().ExecContext(ctx, `UPDATE category SET state = ? WHERE id = ?`, string(state), id)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	if err := storagedb.CheckAffectedRows(res, errs.ErrNotFound); err != nil {
		return err
	}
	tx.LogUpdate("category", id)
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
