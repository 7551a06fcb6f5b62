package game

// Event types pushed to clients over the hub.
const (
	EventConnected      = "connected"
	EventJoinedLobby    = "joinedLobby"
	EventPlayerUpdate   = "playerUpdate"
	EventGameCountdown  = "gameCountdown"
	EventGameStart      = "gameStart"
	EventTournamentOver = "tournamentOver"
)
