package domain

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shuttlecourt/tournament-engine/errs"
	"github.com/shuttlecourt/tournament-engine/storagedb"
)

// GameScore is one game's point count.
type GameScore struct {
	P1 int `json:"p1"`
	P2 int `json:"p2"`
}

// Slot is one of a Match's two pair references: a resolved PlayerPair
// id, a symbolic reference to another match's winner (positive match
// id) or loser (negative match id), or both. A slot fed by another
// match keeps its symbolic reference after the match engine resolves
// it into a pair. Both are nil on a slot that has not been wired yet.
type Slot struct {
	PairID *int64
	Sym    *int64 // signed match id; positive = winner, negative = loser
}

// Resolved reports whether the slot already holds a real pair.
func (s Slot) Resolved() bool { return s.PairID != nil }

// Match is one scheduled contest, possibly still waiting on symbolic
// references to resolve.
type Match struct {
	ID             int64
	GroupID        int64
	MatchNumber    *int
	Pair1          Slot
	Pair2          Slot
	RefereeID      *int64
	Score          []GameScore
	IsWalkover     bool
	WalkoverWinner *int64 // pair id
	WinnerRank     *int
	LoserRank      *int
	WinnerNext     *int64 // match id the winner feeds, nil for terminal
	WinnerSlotNum  *int
	LoserNext      *int64
	LoserSlotNum   *int
	State          MatchState
}

// CreateMatch inserts a new match in Incomplete state; pair/symbolic
// slots and successor wiring are set by the caller afterward via
// UpdateMatchSlots/UpdateMatchSuccessors, since the bracket graph wires
// successors before all predecessors exist.
func CreateMatch(ctx context.Context, tx *storagedb.Tx, groupID int64) (*Match, error) {
	seq, err := tx.NextSeq(ctx, "match")
	if err != nil {
		return nil, err
	}
	res, err := tx.SQL().ExecContext(ctx,
		`INSERT INTO match (group_id, state, seq_num) VALUES (?, ?, ?)`,
		groupID, string(MatchIncomplete), seq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	id, err := storagedb.LastInsertID(res)
	if err != nil {
		return nil, err
	}
	tx.LogInsert("match", id)
	return &Match{ID: id, GroupID: groupID, State: MatchIncomplete}, nil
}

// GetMatch fetches a match by id.
func GetMatch(ctx context.Context, db Querier, id int64) (*Match, error) {
	return scanMatch(db.QueryRowContext(ctx, matchSelectCols+` WHERE id = ?`, id))
}

const matchSelectCols = `SELECT id, group_id, match_number, pair1_id, pair1_sym, pair2_id, pair2_sym,
	referee_id, score_json, is_walkover, walkover_winner, winner_rank, loser_rank,
	winner_next, winner_slot, loser_next, loser_slot, state FROM match`

func scanMatch(row *sql.Row) (*Match, error) {
	var m Match
	var scoreJSON sql.NullString
	var state string
	err := row.Scan(&m.ID, &m.GroupID, &m.MatchNumber, &m.Pair1.PairID, &m.Pair1.Sym,
		&m.Pair2.PairID, &m.Pair2.Sym, &m.RefereeID, &scoreJSON, &m.IsWalkover, &m.WalkoverWinner,
		&m.WinnerRank, &m.LoserRank, &m.WinnerNext, &m.WinnerSlotNum, &m.LoserNext, &m.LoserSlotNum, &state)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	m.State = MatchState(state)
	if scoreJSON.Valid && scoreJSON.String != "" {
		if err := json.Unmarshal([]byte(scoreJSON.String), &m.Score); err != nil {
			return nil, fmt.Errorf("%w: decode score: %v", errs.ErrDatabaseError, err)
		}
	}
	return &m, nil
}

// ListMatchesByGroup returns every match of a group, ordered by insert
// sequence (the order later renumbered by CloseMatchGroup).
func ListMatchesByGroup(ctx context.Context, db Querier, groupID int64) ([]*Match, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, group_id, match_number, pair1_id, pair1_sym, pair2_id, pair2_sym,
		 referee_id, score_json, is_walkover, walkover_winner, winner_rank, loser_rank,
		 winner_next, winner_slot, loser_next, loser_slot, state
		 FROM match WHERE group_id = ? ORDER BY seq_num ASC`, groupID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	defer rows.Close()
	var out []*Match
	for rows.Next() {
		var m Match
		var scoreJSON sql.NullString
		var state string
		if err := rows.Scan(&m.ID, &m.GroupID, &m.MatchNumber, &m.Pair1.PairID, &m.Pair1.Sym,
			&m.Pair2.PairID, &m.Pair2.Sym, &m.RefereeID, &scoreJSON, &m.IsWalkover, &m.WalkoverWinner,
			&m.WinnerRank, &m.LoserRank, &m.WinnerNext, &m.WinnerSlotNum, &m.LoserNext, &m.LoserSlotNum, &state); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
		}
		m.State = MatchState(state)
		if scoreJSON.Valid && scoreJSON.String != "" {
			if err := json.Unmarshal([]byte(scoreJSON.String), &m.Score); err != nil {
				return nil, fmt.Errorf("%w: decode score: %v", errs.ErrDatabaseError, err)
			}
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// ListReadyMatchesForCategory returns every Ready match belonging to
// categoryID, across whichever groups currently hold one; the façade
// polls this right after a committing call that may have promoted
// matches out of Waiting, to decide what to publish over notify.
func ListReadyMatchesForCategory(ctx context.Context, db Querier, categoryID int64) ([]*Match, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT m.id, m.group_id, m.match_number, m.pair1_id, m.pair1_sym, m.pair2_id, m.pair2_sym,
		 m.referee_id, m.score_json, m.is_walkover, m.walkover_winner, m.winner_rank, m.loser_rank,
		 m.winner_next, m.winner_slot, m.loser_next, m.loser_slot, m.state
		 FROM match m JOIN match_group g ON g.id = m.group_id
		 WHERE g.category_id = ? AND m.state = ?`, categoryID, string(MatchReady))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	defer rows.Close()
	var out []*Match
	for rows.Next() {
		var m Match
		var scoreJSON sql.NullString
		var state string
		if err := rows.Scan(&m.ID, &m.GroupID, &m.MatchNumber, &m.Pair1.PairID, &m.Pair1.Sym,
			&m.Pair2.PairID, &m.Pair2.Sym, &m.RefereeID, &scoreJSON, &m.IsWalkover, &m.WalkoverWinner,
			&m.WinnerRank, &m.LoserRank, &m.WinnerNext, &m.WinnerSlotNum, &m.LoserNext, &m.LoserSlotNum, &state); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
		}
		m.State = MatchState(state)
		if scoreJSON.Valid && scoreJSON.String != "" {
			if err := json.Unmarshal([]byte(scoreJSON.String), &m.Score); err != nil {
				return nil, fmt.Errorf("%w: decode score: %v", errs.ErrDatabaseError, err)
			}
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// FindMatchesBySymRef returns every match with a pair slot
// symbolically referencing matchID, as either its winner (positive) or
// loser (negative), whether or not the match engine has already
// resolved that slot into a pair.
func FindMatchesBySymRef(ctx context.Context, db Querier, matchID int64) ([]*Match, error) {
	winner := matchID
	loser := -matchID
	rows, err := db.QueryContext(ctx,
		matchSelectCols+` WHERE pair1_sym IN (?, ?) OR pair2_sym IN (?, ?)`,
		winner, loser, winner, loser)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	defer rows.Close()
	var out []*Match
	for rows.Next() {
		var m Match
		var scoreJSON sql.NullString
		var state string
		if err := rows.Scan(&m.ID, &m.GroupID, &m.MatchNumber, &m.Pair1.PairID, &m.Pair1.Sym,
			&m.Pair2.PairID, &m.Pair2.Sym, &m.RefereeID, &scoreJSON, &m.IsWalkover, &m.WalkoverWinner,
			&m.WinnerRank, &m.LoserRank, &m.WinnerNext, &m.WinnerSlotNum, &m.LoserNext, &m.LoserSlotNum, &state); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
		}
		m.State = MatchState(state)
		if scoreJSON.Valid && scoreJSON.String != "" {
			if err := json.Unmarshal([]byte(scoreJSON.String), &m.Score); err != nil {
				return nil, fmt.Errorf("%w: decode score: %v", errs.ErrDatabaseError, err)
			}
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// UpdateMatchSlots writes pair1/pair2 (resolved or symbolic) and
// recomputes Incomplete -> Waiting if both are now resolved.
func UpdateMatchSlots(ctx context.Context, tx *storagedb.Tx, id int64, p1, p2 Slot) error {
	state := string(MatchIncomplete)
	if p1.Resolved() && p2.Resolved() {
		state = string(MatchWaiting)
	}
	res, err := tx.SQL().ExecContext(ctx,
		`UPDATE match SET pair1_id = ?, pair1_sym = ?, pair2_id = ?, pair2_sym = ?, state = ? WHERE id = ?`,
		p1.PairID, p1.Sym, p2.PairID, p2.Sym, state, id)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	if err := storagedb.CheckAffectedRows(res, errs.ErrNotFound); err != nil {
		return err
	}
	tx.LogUpdate("match", id)
	return nil
}

// UpdateMatchSuccessors wires the winner-path/loser-path references and
// any final ranks produced by the bracket generator.
func UpdateMatchSuccessors(ctx context.Context, tx *storagedb.Tx, id int64, winnerNext, loserNext *int64, winnerSlot, loserSlot, winnerRank, loserRank *int) error {
	res, err := tx.SQL().ExecContext(ctx,
		`UPDATE match SET winner_next = ?, winner_slot = ?, loser_next = ?, loser_slot = ?, winner_rank = ?, loser_rank = ? WHERE id = ?`,
		winnerNext, winnerSlot, loserNext, loserSlot, winnerRank, loserRank, id)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	if err := storagedb.CheckAffectedRows(res, errs.ErrNotFound); err != nil {
		return err
	}
	tx.LogUpdate("match", id)
	return nil
}

// SetMatchNumber stamps the final match-number assigned at group close.
func SetMatchNumber(ctx context.Context, tx *storagedb.Tx, id int64, number int) error {
	res, err := tx.SQL().ExecContext(ctx, `UPDATE match SET match_number = ? WHERE id = ?`, number, id)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	if err := storagedb.CheckAffectedRows(res, errs.ErrNotFound); err != nil {
		return err
	}
	tx.LogUpdate("match", id)
	return nil
}

// SetMatchState transitions a match's per-match FSM field directly.
func SetMatchState(ctx context.Context, tx *storagedb.Tx, id int64, state MatchState) error {
	res, err := tx.SQL().ExecContext(ctx, `UPDATE match SET state = ? WHERE id = ?`, string(state), id)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	if err := storagedb.CheckAffectedRows(res, errs.ErrNotFound); err != nil {
		return err
	}
	tx.LogUpdate("match", id)
	return nil
}

// SetMatchReferee assigns or clears the referee slot.
func SetMatchReferee(ctx context.Context, tx *storagedb.Tx, id int64, refereeID *int64) error {
	res, err := tx.SQL().ExecContext(ctx, `UPDATE match SET referee_id = ? WHERE id = ?`, refereeID, id)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	if err := storagedb.CheckAffectedRows(res, errs.ErrNotFound); err != nil {
		return err
	}
	tx.LogUpdate("match", id)
	return nil
}

// RecordMatchScore persists a finished score (or walkover) and the
// derived winner/loser ranks, transitioning the match to Finished.
func RecordMatchScore(ctx context.Context, tx *storagedb.Tx, id int64, score []GameScore, isWalkover bool, walkoverWinner *int64) error {
	var scoreJSON []byte
	if len(score) > 0 {
		var err error
		scoreJSON, err = json.Marshal(score)
		if err != nil {
			return fmt.Errorf("%w: encode score: %v", errs.ErrDatabaseError, err)
		}
	}
	res, err := tx.SQL().ExecContext(ctx,
		`UPDATE match SET score_json = ?, is_walkover = ?, walkover_winner = ?, state = ? WHERE id = ?`,
		string(scoreJSON), isWalkover, walkoverWinner, string(MatchFinished), id)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	if err := storagedb.CheckAffectedRows(res, errs.ErrNotFound); err != nil {
		return err
	}
	tx.LogUpdate("match", id)
	return nil
}
