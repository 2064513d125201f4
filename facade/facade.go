// Package facade is the engine's single public entry point: one
// transactional method per external command, each one
// storagedb.Store.WithTx call, each reporting its outcome through
// metrics.ObserveCommand and, where it may have promoted matches to
// Ready, publishing over notify.Hub afterward.
package facade

import (
	"context"
	"fmt"

	"github.com/golobby/container/v3"

	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/engine"
	"github.com/shuttlecourt/tournament-engine/lifecycle"
	"github.com/shuttlecourt/tournament-engine/metrics"
	"github.com/shuttlecourt/tournament-engine/notify"
	"github.com/shuttlecourt/tournament-engine/storagedb"
	"github.com/shuttlecourt/tournament-engine/strategy"
)

// Facade is the engine's command surface. It holds no state of its own
// beyond what it resolves from the container at construction time.
type Facade struct {
	store *storagedb.Store
	hub   *notify.Hub
}

// New resolves a *storagedb.Store and *notify.Hub singleton from c. Both
// must already be registered, typically in cmd/demo/main.go's bootstrap.
func New(c *container.Container) (*Facade, error) {
	var store *storagedb.Store
	if err := c.Resolve(&store); err != nil {
		return nil, fmt.Errorf("resolve *storagedb.Store: %w", err)
	}
	var hub *notify.Hub
	if err := c.Resolve(&hub); err != nil {
		return nil, fmt.Errorf("resolve *notify.Hub: %w", err)
	}
	return &Facade{store: store, hub: hub}, nil
}

// RegisterTournamentRequest names the event once, at bootstrap.
type RegisterTournamentRequest struct {
	Name      string
	Organizer string
	Date      string
	UsesTeams bool
}

// RegisterTournament writes the tournament-wide configuration keys.
// Idempotent: calling it again overwrites the prior values.
func (f *Facade) RegisterTournament(ctx context.Context, req RegisterTournamentRequest) (err error) {
	defer func() { metrics.ObserveCommand("register_tournament", err) }()
	err = f.store.WithTx(ctx, func(tx *storagedb.Tx) error {
		return domain.SetTournamentInfo(ctx, tx, domain.TournamentInfo{
			Name: req.Name, Organizer: req.Organizer, Date: req.Date, UsesTeams: req.UsesTeams,
		})
	})
	return err
}

// CreateCategoryRequest describes a new category's shape before any
// pairs are registered.
type CreateCategoryRequest struct {
	Name        string
	MatchType   domain.MatchType
	Sex         domain.Sex
	MatchSystem domain.MatchSystem
	Params      domain.CategoryParams
}

// CreateCategory inserts the category in Config state.
func (f *Facade) CreateCategory(ctx context.Context, req CreateCategoryRequest) (categoryID int64, err error) {
	defer func() { metrics.ObserveCommand("create_category", err) }()
	err = f.store.WithTx(ctx, func(tx *storagedb.Tx) error {
		cat, err := domain.CreateCategory(ctx, tx, req.Name, req.MatchType, req.Sex, req.MatchSystem, req.Params)
		if err != nil {
			return err
		}
		categoryID = cat.ID
		return nil
	})
	return categoryID, err
}

// FreezeCategory locks a category's pair list and validates its
// match-system preconditions, transitioning Config -> Frozen.
func (f *Facade) FreezeCategory(ctx context.Context, categoryID int64) (err error) {
	defer func() { metrics.ObserveCommand("freeze_category", err) }()
	return f.store.WithTx(ctx, func(tx *storagedb.Tx) error {
		return lifecycle.Freeze(ctx, tx, categoryID)
	})
}

// ApplyGroupAssignment supplies a GroupsThenKO category's round-robin
// pool split; groups[i] lists the pair ids assigned to pool i+1.
func (f *Facade) ApplyGroupAssignment(ctx context.Context, categoryID int64, groups [][]int64) (err error) {
	defer func() { metrics.ObserveCommand("apply_group_assignment", err) }()
	return f.store.WithTx(ctx, func(tx *storagedb.Tx) error {
		return lifecycle.ApplyGroupAssignment(ctx, tx, categoryID, groups)
	})
}

// ApplySeeding supplies a category's initial seeding order for match
// systems that need one (SingleElim, Ranking1, SwissLadder).
func (f *Facade) ApplySeeding(ctx context.Context, categoryID int64, seeding []int64) (err error) {
	defer func() { metrics.ObserveCommand("apply_seeding", err) }()
	return f.store.WithTx(ctx, func(tx *storagedb.Tx) error {
		return lifecycle.ApplySeeding(ctx, tx, categoryID, seeding)
	})
}

// ApplyIntermediateSeeding supplies a GroupsThenKO category's knock-out
// entry order once its group phase has finished.
func (f *Facade) ApplyIntermediateSeeding(ctx context.Context, categoryID int64, seeding []int64, start strategy.StartLevel) (err error) {
	defer func() { metrics.ObserveCommand("apply_intermediate_seeding", err) }()
	err = f.store.WithTx(ctx, func(tx *storagedb.Tx) error {
		return lifecycle.ApplyIntermediateSeeding(ctx, tx, categoryID, seeding, start)
	})
	if err == nil {
		f.publishReady(ctx, categoryID)
	}
	return err
}

// StartFirstRound materializes round 1's matches per the category's
// match system and advances the category to Playing: from Idle once a
// seeding or group assignment has been applied, or straight from
// Frozen for a match system that needs neither.
func (f *Facade) StartFirstRound(ctx context.Context, categoryID int64) (err error) {
	defer func() { metrics.ObserveCommand("start_first_round", err) }()
	err = f.store.WithTx(ctx, func(tx *storagedb.Tx) error {
		return lifecycle.StartFirstRound(ctx, tx, categoryID)
	})
	if err == nil {
		f.publishReady(ctx, categoryID)
	}
	return err
}

// RecordMatchScoreRequest is one finished (or walkover) match result.
type RecordMatchScoreRequest struct {
	MatchID        int64
	Score          []domain.GameScore
	IsWalkover     bool
	WalkoverWinner *int64
	AllowFlip      bool
}

// RecordMatchScore stages the match if needed, records its result, and
// tries to complete the round it belongs to; completion failing because
// other matches in the round are still open is not an error.
func (f *Facade) RecordMatchScore(ctx context.Context, categoryID int64, req RecordMatchScoreRequest) (err error) {
	defer func() { metrics.ObserveCommand("record_match_score", err) }()
	err = f.store.WithTx(ctx, func(tx *storagedb.Tx) error {
		m, err := domain.GetMatch(ctx, tx.SQL(), req.MatchID)
		if err != nil {
			return err
		}
		if m.State == domain.MatchReady {
			if err := engine.StageMatch(ctx, tx, req.MatchID); err != nil {
				return err
			}
		}
		if err := engine.SetMatchScore(ctx, tx, req.MatchID, req.Score, req.IsWalkover, req.WalkoverWinner, req.AllowFlip); err != nil {
			return err
		}
		group, err := domain.GetMatchGroup(ctx, tx.SQL(), m.GroupID)
		if err != nil {
			return err
		}
		status, err := lifecycle.DeriveRoundStatus(ctx, tx.SQL(), categoryID, group.Round)
		if err != nil {
			return err
		}
		if status == lifecycle.RoundFinished {
			return lifecycle.CompleteRound(ctx, tx, categoryID, group.Round)
		}
		return nil
	})
	if err == nil {
		f.publishReady(ctx, categoryID)
	}
	return err
}

// AssignReferee puts an Idle player into a match's referee slot,
// moving them to Referee; a player in any other state is refused.
func (f *Facade) AssignReferee(ctx context.Context, matchID, playerID int64) (err error) {
	defer func() { metrics.ObserveCommand("assign_referee", err) }()
	return f.store.WithTx(ctx, func(tx *storagedb.Tx) error {
		return engine.AssignReferee(ctx, tx, matchID, playerID)
	})
}

// ReleaseReferee clears a match's referee slot, returning the player to Idle.
func (f *Facade) ReleaseReferee(ctx context.Context, matchID int64) (err error) {
	defer func() { metrics.ObserveCommand("release_referee", err) }()
	return f.store.WithTx(ctx, func(tx *storagedb.Tx) error {
		return engine.ReleaseReferee(ctx, tx, matchID)
	})
}

// UndoLastRound reverts every Finished match in the deepest round the
// category has materialized back to Ready, clearing its score and
// releasing its referee. It fails with ErrWrongState if that round has
// no Finished match or a successor match has already taken up one of
// their results; earlier rounds are never reverted.
func (f *Facade) UndoLastRound(ctx context.Context, categoryID int64) (err error) {
	defer func() { metrics.ObserveCommand("undo_last_round", err) }()
	return f.store.WithTx(ctx, func(tx *storagedb.Tx) error {
		return lifecycle.UndoRound(ctx, tx, categoryID)
	})
}

// publishReady re-queries a category's Ready matches and broadcasts one
// MatchReadyEvent per match. Built this way, as a post-commit query,
// rather than threading Ready-match ids out through engine/lifecycle's
// return values, since several call paths (round completion, KO-phase
// promotion) can each produce a different number of newly-Ready
// matches and a single extra SELECT is cheaper than generalizing every
// signature to carry that list back up.
func (f *Facade) publishReady(ctx context.Context, categoryID int64) {
	ready, err := domain.ListReadyMatchesForCategory(ctx, f.store.DB(), categoryID)
	if err != nil {
		return
	}
	for _, m := range ready {
		group, err := domain.GetMatchGroup(ctx, f.store.DB(), m.GroupID)
		if err != nil {
			continue
		}
		f.hub.PublishMatchReady(categoryID, m.ID, group.Round)
	}
}
