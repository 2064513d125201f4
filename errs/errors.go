// Package errs enumerates the engine's flat error taxonomy. Every engine
// operation returns either nil or one of these sentinels, usually
// wrapped with fmt.Errorf("...: %w", err) for context.
package errs

import "errors"

// Validation errors: a request the caller must correct before retrying.
var (
	ErrNameExists        = errors.New("name already exists")
	ErrInvalidName       = errors.New("invalid name")
	ErrInvalidSex        = errors.New("invalid sex")
	ErrInvalidMatchType  = errors.New("invalid match type")
	ErrInvalidPlayerCount = errors.New("invalid player count")
	ErrInvalidGroupNum   = errors.New("invalid group number")
	ErrInvalidRound      = errors.New("invalid round")
	ErrInvalidKoConfig   = errors.New("invalid KO configuration")
	ErrInvalidReconfig   = errors.New("invalid reconfiguration")
	ErrInvalidScore      = errors.New("score does not fit the category's scoring rules")
	ErrScoreFlipRejected = errors.New("new score changes the match winner but flipping was not allowed")
)

// State errors: the command is refused given the entity's current state.
var (
	ErrWrongState                     = errors.New("entity is in the wrong state for this operation")
	ErrCategoryNotYetFrozen           = errors.New("category is not yet frozen")
	ErrCategoryNotConfigurable        = errors.New("category is no longer configurable")
	ErrCategoryNeedsNoSeeding         = errors.New("category does not need seeding")
	ErrCategoryNeedsNoGroupAssignments = errors.New("category does not need group assignments")
)

// Reference errors: the request names an entity relationship that does
// not hold.
var (
	ErrPlayerNotInCategory = errors.New("player is not registered in this category")
	ErrPlayerAlreadyPaired = errors.New("player is already part of a pair in this category")
	ErrPlayersIdentical    = errors.New("a pair cannot reference the same player twice")
	ErrPlayersNotAPair     = errors.New("players do not form a pair in this category")
	ErrNotUsingTeams       = errors.New("this tournament is not configured to use teams")
)

// Integrity errors: the current command failed for reasons outside
// caller control; the engine remains usable afterwards.
var (
	ErrDatabaseError = errors.New("database error")
	ErrNotFound      = errors.New("requested resource not found")
)
