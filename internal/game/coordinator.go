// Package game holds the matchmaking coordinator and the session state
// machine that drives each lobby from waiting through countdown, active
// play, final ranking and teardown.
package game

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"quizmatch/backend/internal/hub"
	"quizmatch/backend/internal/models"
	"quizmatch/backend/internal/quiz"
	"quizmatch/backend/internal/store"
)

// createAttempts bounds retries when a freshly generated lobby id collides.
const createAttempts = 3

// Options configures a Coordinator. Tests shrink the timer settings.
type Options struct {
	Capacity      int           // members required to start a session
	Rounds        int           // quiz rounds generated per lobby
	CountdownFrom int           // first gameCountdown value, ticks down to 0
	TickInterval  time.Duration // delay between countdown ticks
	CleanupDelay  time.Duration // grace between final ranking and deletion
}

// DefaultOptions mirrors the production settings: two-player lobbies,
// ten rounds, a five-second countdown and a fifteen-second grace delay.
func DefaultOptions() Options {
	return Options{
		Capacity:      2,
		Rounds:        10,
		CountdownFrom: 5,
		TickInterval:  time.Second,
		CleanupDelay:  15 * time.Second,
	}
}

// Coordinator owns the control flow for every participant event: it
// mutates lobby records through the store, drives phase transitions and
// notifies members through the hub only after each mutation committed.
type Coordinator struct {
	store store.Store
	hub   *hub.Hub
	opts  Options

	mu    sync.Mutex
	tasks map[string]func() // cancel funcs for scheduled per-lobby work
}

// NewCoordinator creates a Coordinator on top of the given store and hub.
func NewCoordinator(st store.Store, h *hub.Hub, opts Options) *Coordinator {
	return &Coordinator{
		store: st,
		hub:   h,
		opts:  opts,
		tasks: make(map[string]func()),
	}
}

// FindOrCreate seats a participant in the first open lobby, or creates a
// new one when no candidate accepts. It is idempotent: a connection that
// is already seated gets its current lobby back instead of a second seat.
// Candidate order is whatever the registry listing yields; it is
// arbitrary and carries no fairness guarantee.
func (c *Coordinator) FindOrCreate(connectionID, displayName string) (*models.Lobby, error) {
	ids, err := c.store.ListIDs()
	if err != nil {
		return nil, err
	}

	participant := models.Participant{
		ConnectionID: connectionID,
		DisplayName:  displayName,
	}

	for _, id := range ids {
		lobby, err := c.store.Mutate(id, func(l *models.Lobby) error {
			if l.MemberIndex(connectionID) >= 0 {
				return errAlreadySeated
			}
			if l.Phase != models.PhaseWaiting {
				return ErrLobbyAlreadyStarted
			}
			if len(l.Members) >= l.Capacity {
				return ErrLobbyFull
			}
			l.Members = append(l.Members, participant)
			if len(l.Members) == l.Capacity {
				l.Phase = models.PhaseFull
			}
			return nil
		})
		switch {
		case err == nil:
			c.seat(lobby, connectionID)
			c.hub.Broadcast(lobby.ID, hub.Event{Type: EventPlayerUpdate, Payload: lobby.Members})
			if lobby.Phase == models.PhaseFull {
				c.startCountdown(lobby.ID)
			}
			return lobby, nil
		case errors.Is(err, errAlreadySeated):
			current, getErr := c.store.Get(id)
			if getErr != nil {
				continue
			}
			c.seat(current, connectionID)
			return current, nil
		case errors.Is(err, ErrLobbyFull),
			errors.Is(err, ErrLobbyAlreadyStarted),
			errors.Is(err, store.ErrNotFound):
			continue
		default:
			// One bad candidate must not abort matchmaking.
			log.Printf("matchmaking: skipping lobby %s: %v", id, err)
			continue
		}
	}

	return c.create(participant)
}

func (c *Coordinator) create(participant models.Participant) (*models.Lobby, error) {
	lobby := &models.Lobby{
		Phase:    models.PhaseWaiting,
		Capacity: c.opts.Capacity,
		Members:  []models.Participant{participant},
		Rounds:   quiz.GenerateRounds(c.opts.Rounds),
	}
	if len(lobby.Members) == lobby.Capacity {
		lobby.Phase = models.PhaseFull
	}

	created := false
	for attempt := 0; attempt < createAttempts && !created; attempt++ {
		lobby.ID = uuid.NewString()
		switch err := c.store.CreateIfAbsent(lobby); {
		case err == nil:
			created = true
		case errors.Is(err, store.ErrAlreadyExists):
			// id collision, roll a fresh one
		default:
			return nil, err
		}
	}
	if !created {
		return nil, store.ErrTransient
	}

	// Register only after the record exists, so the registry never
	// references a lobby the coordinator cannot read.
	if err := c.store.AddID(lobby.ID); err != nil {
		return nil, err
	}
	log.Printf("matchmaking: created lobby %s for %s", lobby.ID, participant.ConnectionID)

	c.seat(lobby, participant.ConnectionID)
	if lobby.Phase == models.PhaseFull {
		c.startCountdown(lobby.ID)
	}
	return lobby, nil
}

// seat joins the connection to the lobby's broadcast group and acks it.
func (c *Coordinator) seat(lobby *models.Lobby, connectionID string) {
	c.hub.Join(lobby.ID, connectionID)
	c.hub.Send(connectionID, hub.Event{
		Type: EventJoinedLobby,
		Payload: map[string]interface{}{
			"lobby_id": lobby.ID,
			"members":  lobby.Members,
		},
	})
}

// HandleAnswer credits a correct answer to the submitting participant
// and broadcasts the updated roster.
func (c *Coordinator) HandleAnswer(lobbyID, connectionID string, correct bool) error {
	lobby, err := c.store.Mutate(lobbyID, func(l *models.Lobby) error {
		idx := l.MemberIndex(connectionID)
		if idx < 0 {
			return ErrNotSeated
		}
		if correct {
			l.Members[idx].Score += 10
		}
		return nil
	})
	if err != nil {
		return err
	}
	c.hub.Broadcast(lobbyID, hub.Event{Type: EventPlayerUpdate, Payload: lobby.Members})
	return nil
}

// HandleFinish marks the participant as finished and completes the
// session when it was the last one still playing.
func (c *Coordinator) HandleFinish(lobbyID, connectionID string) error {
	_, err := c.store.Mutate(lobbyID, func(l *models.Lobby) error {
		idx := l.MemberIndex(connectionID)
		if idx < 0 {
			return ErrNotSeated
		}
		l.Members[idx].Finished = true
		return nil
	})
	if err != nil {
		return err
	}
	c.checkFinished(lobbyID)
	return nil
}

// HandleDisconnect removes an abruptly departed connection from the
// lobby holding it. Membership is not indexed by connection, so the
// registry is scanned. An empty lobby is torn down immediately;
// otherwise the shrunk roster may itself complete the session.
func (c *Coordinator) HandleDisconnect(connectionID string) {
	ids, err := c.store.ListIDs()
	if err != nil {
		log.Printf("disconnect: cannot list lobbies for %s: %v", connectionID, err)
		return
	}

	for _, id := range ids {
		lobby, err := c.store.Mutate(id, func(l *models.Lobby) error {
			idx := l.MemberIndex(connectionID)
			if idx < 0 {
				return ErrNotSeated
			}
			l.Members = append(l.Members[:idx], l.Members[idx+1:]...)
			return nil
		})
		if errors.Is(err, ErrNotSeated) || errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			log.Printf("disconnect: removing %s from lobby %s: %v", connectionID, id, err)
			continue
		}

		c.hub.Leave(id, connectionID)
		if len(lobby.Members) == 0 {
			c.teardown(id)
		} else {
			c.hub.Broadcast(id, hub.Event{Type: EventPlayerUpdate, Payload: lobby.Members})
			c.checkFinished(id)
		}
		return
	}
}

// GetLobby returns the current stored state of a lobby.
func (c *Coordinator) GetLobby(id string) (*models.Lobby, error) {
	return c.store.Get(id)
}
