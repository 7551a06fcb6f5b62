package game

import (
	"log"
	"sync"
	"time"

	"quizmatch/backend/internal/hub"
	"quizmatch/backend/internal/models"
)

// setTask records the cancel func for a lobby's scheduled work,
// cancelling whatever was scheduled before. At most one task (countdown,
// then cleanup) is pending per lobby.
func (c *Coordinator) setTask(lobbyID string, cancel func()) {
	c.mu.Lock()
	prev := c.tasks[lobbyID]
	c.tasks[lobbyID] = cancel
	c.mu.Unlock()
	if prev != nil {
		prev()
	}
}

// cancelTask abandons a lobby's pending scheduled work, if any.
func (c *Coordinator) cancelTask(lobbyID string) {
	c.mu.Lock()
	cancel := c.tasks[lobbyID]
	delete(c.tasks, lobbyID)
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// clearTask forgets a completed task without cancelling it.
func (c *Coordinator) clearTask(lobbyID string) {
	c.mu.Lock()
	delete(c.tasks, lobbyID)
	c.mu.Unlock()
}

// startCountdown moves a full lobby into the counting phase and starts
// the tick loop. The phase guard makes sure only one racer starts it.
func (c *Coordinator) startCountdown(lobbyID string) {
	_, err := c.store.Mutate(lobbyID, func(l *models.Lobby) error {
		if l.Phase != models.PhaseFull {
			return errWrongPhase
		}
		l.Phase = models.PhaseCounting
		return nil
	})
	if err != nil {
		return
	}

	done := make(chan struct{})
	var once sync.Once
	c.setTask(lobbyID, func() { once.Do(func() { close(done) }) })
	go c.runCountdown(lobbyID, done)
}

func (c *Coordinator) runCountdown(lobbyID string, done <-chan struct{}) {
	remaining := c.opts.CountdownFrom
	ticker := time.NewTicker(c.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			c.hub.Broadcast(lobbyID, hub.Event{Type: EventGameCountdown, Payload: remaining})
			remaining--
			if remaining < 0 {
				c.releaseRounds(lobbyID)
				return
			}
		}
	}
}

// releaseRounds commits counting -> active and hands the round content
// to the members. The phase guard makes the gameStart broadcast
// exactly-once even if the lobby was concurrently completed or deleted.
func (c *Coordinator) releaseRounds(lobbyID string) {
	lobby, err := c.store.Mutate(lobbyID, func(l *models.Lobby) error {
		if l.Phase != models.PhaseCounting {
			return errWrongPhase
		}
		l.Phase = models.PhaseActive
		return nil
	})
	if err != nil {
		return
	}
	c.clearTask(lobbyID)
	c.hub.Broadcast(lobbyID, hub.Event{Type: EventGameStart, Payload: lobby.Rounds})
	log.Printf("session: lobby %s is live", lobbyID)
}

// checkFinished completes the session once every current member has
// finished. The decision is taken inside the mutation, against the
// authoritative roster, so a disconnect that removed the last unfinished
// member still completes the session. Only the mutation that commits the
// transition broadcasts the ranking.
func (c *Coordinator) checkFinished(lobbyID string) {
	lobby, err := c.store.Mutate(lobbyID, func(l *models.Lobby) error {
		if l.Phase != models.PhaseCounting && l.Phase != models.PhaseActive {
			return errWrongPhase
		}
		if !l.AllFinished() {
			return errStillPlaying
		}
		l.Phase = models.PhaseFinished
		return nil
	})
	if err != nil {
		return
	}

	// A countdown may still be ticking if play collapsed early.
	c.cancelTask(lobbyID)
	c.hub.Broadcast(lobbyID, hub.Event{Type: EventTournamentOver, Payload: lobby.Ranked()})
	log.Printf("session: lobby %s finished, cleanup in %s", lobbyID, c.opts.CleanupDelay)

	timer := time.AfterFunc(c.opts.CleanupDelay, func() {
		c.clearTask(lobbyID)
		c.teardown(lobbyID)
	})
	c.setTask(lobbyID, func() { timer.Stop() })
}

// teardown deletes a lobby and everything attached to it. The id leaves
// the registry first, so no scan can discover a record mid-deletion.
func (c *Coordinator) teardown(lobbyID string) {
	c.cancelTask(lobbyID)

	if _, err := c.store.Mutate(lobbyID, func(l *models.Lobby) error {
		l.Phase = models.PhaseClosing
		return nil
	}); err != nil {
		log.Printf("teardown: marking lobby %s closing: %v", lobbyID, err)
	}

	if err := c.store.RemoveID(lobbyID); err != nil {
		log.Printf("teardown: deregistering lobby %s: %v", lobbyID, err)
	}
	if err := c.store.Delete(lobbyID); err != nil {
		log.Printf("teardown: deleting lobby %s: %v", lobbyID, err)
	}
	c.hub.CloseGroup(lobbyID)
	log.Printf("teardown: lobby %s removed", lobbyID)
}
