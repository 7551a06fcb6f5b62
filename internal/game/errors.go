package game

import "errors"

var (
	// ErrLobbyFull rejects a join because the lobby is at capacity.
	ErrLobbyFull = errors.New("lobby is full")
	// ErrLobbyAlreadyStarted rejects a join because the lobby left the
	// waiting phase.
	ErrLobbyAlreadyStarted = errors.New("lobby already started")
	// ErrNotSeated means the connection is not a member of the lobby.
	ErrNotSeated = errors.New("connection is not seated in this lobby")

	// Internal control-flow sentinels for aborting store mutations.
	errAlreadySeated = errors.New("connection already seated")
	errWrongPhase    = errors.New("unexpected lobby phase")
	errStillPlaying  = errors.New("not all members finished")
)
