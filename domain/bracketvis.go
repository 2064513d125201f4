package domain

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shuttlecourt/tournament-engine/errs"
	"github.com/shuttlecourt/tournament-engine/storagedb"
)

// BracketVisRow is one persisted placeholder of a category's bracket
// visualisation model; the renderer that turns these into SVG is
// external.
type BracketVisRow struct {
	ID         int64
	CategoryID int64
	MatchID    *int64 // nil for fast-forward placeholders
	NodeUID    string
	Depth      int
	X, Y       float64
	Label      string
}

// CreateBracketVisRow inserts one row of a category's bracket
// visualisation model, generated alongside its bracket matches.
func CreateBracketVisRow(ctx context.Context, tx *storagedb.Tx, categoryID int64, matchID *int64, nodeUID string, depth int, x, y float64, label string) error {
	seq, err := tx.NextSeq(ctx, "bracket_vis")
	if err != nil {
		return err
	}
	res, err := tx.SQL().ExecContext(ctx,
		`INSERT INTO bracket_vis (category_id, match_id, node_uid, depth, x, y, label, seq_num) VALUES (?,?,?,?,?,?,?,?)`,
		categoryID, matchID, nodeUID, depth, x, y, label, seq)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	id, err := storagedb.LastInsertID(res)
	if err != nil {
		return err
	}
	tx.LogInsert("bracket_vis", id)
	return nil
}

// ListBracketVisByCategory returns a category's whole visualisation
// model, in generation order.
func ListBracketVisByCategory(ctx context.Context, db Querier, categoryID int64) ([]*BracketVisRow, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, category_id, match_id, node_uid, depth, x, y, label FROM bracket_vis
		 WHERE category_id = ? ORDER BY seq_num ASC`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	defer rows.Close()
	var out []*BracketVisRow
	for rows.Next() {
		var r BracketVisRow
		var label sql.NullString
		if err := rows.Scan(&r.ID, &r.CategoryID, &r.MatchID, &r.NodeUID, &r.Depth, &r.X, &r.Y, &label); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
		}
		r.Label = label.String
		out = append(out, &r)
	}
	return out, rows.Err()
}
