package domain

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shuttlecourt/tournament-engine/errs"
	"github.com/shuttlecourt/tournament-engine/storagedb"
)

// Player is a stable-id participant. TeamID is nil when the player is
// not on a team; team display is a presentation concern, so the engine
// always carries the field regardless of whether a caller uses it.
type Player struct {
	ID        int64
	FirstName string
	LastName  string
	Sex       Sex
	TeamID    *int64
	State     PlayerState
}

// CreatePlayer registers a new player in WaitForRegistration state.
func CreatePlayer(ctx context.Context, tx *storagedb.Tx, firstName, lastName string, sex Sex, teamID *int64) (*Player, error) {
	if firstName == "" || lastName == "" {
		return nil, errs.ErrInvalidName
	}
	if sex != SexMale && sex != SexFemale {
		return nil, errs.ErrInvalidSex
	}
	seq, err := tx.NextSeq(ctx, "player")
	if err != nil {
		return nil, err
	}
	res, err := tx.SQL().ExecContext(ctx,
		`INSERT INTO player (first_name, last_name, sex, team_id, state, seq_num) VALUES (?, ?, ?, ?, ?, ?)`,
		firstName, lastName, string(sex), teamID, string(PlayerWaitForRegistration), seq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	id, err := storagedb.LastInsertID(res)
	if err != nil {
		return nil, err
	}
	tx.LogInsert("player", id)
	return &Player{ID: id, FirstName: firstName, LastName: lastName, Sex: sex, TeamID: teamID, State: PlayerWaitForRegistration}, nil
}

// GetPlayer fetches a player by id.
func GetPlayer(ctx context.Context, db Querier, id int64) (*Player, error) {
	return scanPlayer(db.QueryRowContext(ctx, `SELECT id, first_name, last_name, sex, team_id, state FROM player WHERE id = ?`, id))
}

func scanPlayer(row *sql.Row) (*Player, error) {
	var p Player
	var sex, state string
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &sex, &p.TeamID, &state)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	p.Sex = Sex(sex)
	p.State = PlayerState(state)
	return &p, nil
}

// SetPlayerState transitions a player between Idle/Playing/Referee, the
// only mutation the match engine makes on Player directly.
func SetPlayerState(ctx context.Context, tx *storagedb.Tx, id int64, state PlayerState) error {
	res, err := tx.SQL().ExecContext(ctx, `UPDATE player SET state = ? WHERE id = ?`, string(state), id)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	if err := storagedb.CheckAffectedRows(res, errs.ErrNotFound); err != nil {
		return err
	}
	tx.LogUpdate("player", id)
	return nil
}

// RegisterInCategory adds a player to a category's eligible pool (the
// player_category table) and moves a player still in
// WaitForRegistration to Idle; it does not create a PlayerPair.
func RegisterInCategory(ctx context.Context, tx *storagedb.Tx, playerID, categoryID int64) error {
	seq, err := tx.NextSeq(ctx, "player_category")
	if err != nil {
		return err
	}
	_, err = tx.SQL().ExecContext(ctx,
		`INSERT INTO player_category (player_id, category_id, seq_num) VALUES (?, ?, ?)`, playerID, categoryID, seq)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	tx.LogInsert("player_category", playerID)
	p, err := GetPlayer(ctx, tx.SQL(), playerID)
	if err != nil {
		return err
	}
	if p.State == PlayerWaitForRegistration {
		return SetPlayerState(ctx, tx, playerID, PlayerIdle)
	}
	return nil
}

// UnregisterFromCategory reverses RegisterInCategory; it fails if the
// player is still referenced by a PlayerPair in that category.
func UnregisterFromCategory(ctx context.Context, tx *storagedb.Tx, playerID, categoryID int64) error {
	var count int
	err := tx.SQL().QueryRowContext(ctx,
		`SELECT COUNT(1) FROM pairs WHERE category_id = ? AND (player1_id = ? OR player2_id = ?)`,
		categoryID, playerID, playerID).Scan(&count)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	if count > 0 {
		return errs.ErrPlayerAlreadyPaired
	}
	res, err := tx.SQL().ExecContext(ctx,
		`DELETE FROM player_category WHERE player_id = ? AND category_id = ?`, playerID, categoryID)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	if err := storagedb.CheckAffectedRows(res, errs.ErrPlayerNotInCategory); err != nil {
		return err
	}
	tx.LogDelete("player_category", playerID)
	return nil
}

// IsRegisteredInCategory reports whether a player belongs to a category's
// eligible pool.
func IsRegisteredInCategory(ctx context.Context, db Querier, playerID, categoryID int64) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM player_category WHERE player_id = ? AND category_id = ?`, playerID, categoryID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	return count > 0, nil
}

// HasUnpairedPlayers reports whether any player registered in categoryID
// is not yet referenced by a PlayerPair there — a freeze precondition
// every match system rejects.
func HasUnpairedPlayers(ctx context.Context, db Querier, categoryID int64) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM player_category pc
		WHERE pc.category_id = ? AND NOT EXISTS (
			SELECT 1 FROM pairs p
			WHERE p.category_id = pc.category_id
			  AND (p.player1_id = pc.player_id OR p.player2_id = pc.player_id)
		)`, categoryID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	return count > 0, nil
}
