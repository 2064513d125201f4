package domain

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shuttlecourt/tournament-engine/errs"
	"github.com/shuttlecourt/tournament-engine/storagedb"
)

// TournamentInfo is the subset of the configuration key/value table that
// names the event itself, set once at bootstrap ("register tournament").
type TournamentInfo struct {
	Name      string
	Organizer string
	Date      string
	UsesTeams bool
}

// SetTournamentInfo writes the TnmtName/TnmtOrga/TnmtDate/UseTeams keys,
// overwriting whatever was there before.
func SetTournamentInfo(ctx context.Context, tx *storagedb.Tx, info TournamentInfo) error {
	uses := "0"
	if info.UsesTeams {
		uses = "1"
	}
	for key, value := range map[string]string{
		"TnmtName": info.Name,
		"TnmtOrga": info.Organizer,
		"TnmtDate": info.Date,
		"UseTeams": uses,
	} {
		if err := setConfigValue(ctx, tx, key, value); err != nil {
			return err
		}
	}
	return nil
}

// GetTournamentInfo reads back what SetTournamentInfo wrote; zero values
// for any key never set.
func GetTournamentInfo(ctx context.Context, db Querier, _ int64) (TournamentInfo, error) {
	name, err := getConfigValue(ctx, db, "TnmtName")
	if err != nil {
		return TournamentInfo{}, err
	}
	orga, err := getConfigValue(ctx, db, "TnmtOrga")
	if err != nil {
		return TournamentInfo{}, err
	}
	date, err := getConfigValue(ctx, db, "TnmtDate")
	if err != nil {
		return TournamentInfo{}, err
	}
	uses, err := getConfigValue(ctx, db, "UseTeams")
	if err != nil {
		return TournamentInfo{}, err
	}
	return TournamentInfo{Name: name, Organizer: orga, Date: date, UsesTeams: uses == "1"}, nil
}

func setConfigValue(ctx context.Context, tx *storagedb.Tx, key, value string) error {
	_, err := tx.SQL().ExecContext(ctx,
		`INSERT INTO config_kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	return nil
}

func getConfigValue(ctx context.Context, db Querier, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM config_kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrDatabaseError, err)
	}
	return value, nil
}
