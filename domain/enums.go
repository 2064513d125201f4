// Package domain holds the engine's entity handles: cheap (store, id)
// value types with typed getters/setters, one cohesive package per
// entity. Equality is by id within a table; a stale id surfaces
// errs.ErrNotFound rather than a silent zero value.
package domain

// Sex is shared by Player and Category.
type Sex string

const (
	SexMale     Sex = "Male"
	SexFemale   Sex = "Female"
	SexDontCare Sex = "DontCare"
)

// PlayerState is a player's global state.
type PlayerState string

const (
	PlayerWaitForRegistration PlayerState = "WaitForRegistration"
	PlayerIdle                PlayerState = "Idle"
	PlayerPlaying             PlayerState = "Playing"
	PlayerReferee             PlayerState = "Referee"
)

// MatchType is a category's participant shape.
type MatchType string

const (
	MatchTypeSingles MatchType = "Singles"
	MatchTypeDoubles MatchType = "Doubles"
	MatchTypeMixed   MatchType = "Mixed"
)

// MatchSystem selects the category's pairing/bracket strategy.
type MatchSystem string

const (
	MatchSystemRoundRobin   MatchSystem = "RoundRobin"
	MatchSystemSwissLadder  MatchSystem = "SwissLadder"
	MatchSystemSingleElim   MatchSystem = "SingleElim"
	MatchSystemRanking1     MatchSystem = "Ranking1"
	MatchSystemGroupsThenKO MatchSystem = "GroupsThenKO"
	// MatchSystemRandom is declared in the enum but has no generator;
	// strategy.Random rejects it at CanFreeze.
	MatchSystemRandom MatchSystem = "Random"
)

// CategoryState drives the category lifecycle controller.
type CategoryState string

const (
	CategoryConfig                     CategoryState = "Config"
	CategoryFrozen                     CategoryState = "Frozen"
	CategoryIdle                       CategoryState = "Idle"
	CategoryPlaying                    CategoryState = "Playing"
	CategoryWaitForIntermediateSeeding CategoryState = "WaitForIntermediateSeeding"
	CategoryFinalized                  CategoryState = "Finalized"
)

// GroupState drives MatchGroup's FSM.
type GroupState string

const (
	GroupConfig   GroupState = "Config"
	GroupFrozen   GroupState = "Frozen"
	GroupIdle     GroupState = "Idle"
	GroupSched    GroupState = "Scheduled"
	GroupPlaying  GroupState = "Playing"
	GroupFinished GroupState = "Finished"
)

// MatchState drives Match's FSM.
type MatchState string

const (
	MatchIncomplete MatchState = "Incomplete"
	MatchWaiting    MatchState = "Waiting"
	MatchReady      MatchState = "Ready"
	MatchBusy       MatchState = "Busy"
	MatchFinished   MatchState = "Finished"
	MatchPostponed  MatchState = "Postponed"
)

// Special negative group numbers tagging elimination rounds.
const (
	GroupTagIteration  = -1
	GroupTagFinal      = -2
	GroupTagSemifinal  = -3
	GroupTagQuarter    = -4
	GroupTagL16        = -5
	GroupTagThirdPlace = -6
)
