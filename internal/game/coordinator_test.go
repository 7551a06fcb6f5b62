package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"quizmatch/backend/internal/hub"
	"quizmatch/backend/internal/models"
	"quizmatch/backend/internal/store"
)

func testOptions() Options {
	return Options{
		Capacity:      2,
		Rounds:        3,
		CountdownFrom: 5,
		TickInterval:  5 * time.Millisecond,
		CleanupDelay:  30 * time.Millisecond,
	}
}

func newTestCoordinator(opts Options) (*Coordinator, *store.MemoryStore, *hub.Hub) {
	st := store.NewMemoryStore()
	h := hub.NewHub()
	return NewCoordinator(st, h, opts), st, h
}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// nextEvent blocks for the client's next hub event.
func nextEvent(t *testing.T, client hub.Client) envelope {
	t.Helper()
	select {
	case raw, ok := <-client:
		if !ok {
			t.Fatal("client channel closed while waiting for event")
		}
		var ev envelope
		if err := json.Unmarshal(raw, &ev); err != nil {
			t.Fatalf("bad event payload %q: %v", raw, err)
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return envelope{}
	}
}

// drainUntil discards events until one of the wanted type arrives.
func drainUntil(t *testing.T, client hub.Client, eventType string) envelope {
	t.Helper()
	for {
		ev := nextEvent(t, client)
		if ev.Type == eventType {
			return ev
		}
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestFindOrCreateCreatesFirstLobby(t *testing.T) {
	c, st, h := newTestCoordinator(testOptions())
	h.Register("conn-a")

	lobby, err := c.FindOrCreate("conn-a", "Alice")
	if err != nil {
		t.Fatalf("FindOrCreate failed: %v", err)
	}
	if lobby.Phase != models.PhaseWaiting {
		t.Errorf("phase = %s, want waiting", lobby.Phase)
	}
	if len(lobby.Members) != 1 || lobby.Members[0].DisplayName != "Alice" {
		t.Errorf("unexpected roster: %+v", lobby.Members)
	}
	if len(lobby.Rounds) != 3 {
		t.Errorf("got %d rounds, want 3", len(lobby.Rounds))
	}

	ids, _ := st.ListIDs()
	if len(ids) != 1 || ids[0] != lobby.ID {
		t.Errorf("registry = %v, want [%s]", ids, lobby.ID)
	}
}

func TestFindOrCreateIsIdempotent(t *testing.T) {
	c, _, h := newTestCoordinator(testOptions())
	h.Register("conn-a")

	first, err := c.FindOrCreate("conn-a", "Alice")
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.FindOrCreate("conn-a", "Alice")
	if err != nil {
		t.Fatalf("repeated FindOrCreate failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("retry landed in lobby %s, want %s", second.ID, first.ID)
	}
	if len(second.Members) != 1 {
		t.Errorf("retry created a second seat: %+v", second.Members)
	}
}

func TestSecondJoinFillsLobby(t *testing.T) {
	c, _, h := newTestCoordinator(testOptions())
	h.Register("conn-a")
	h.Register("conn-b")

	first, err := c.FindOrCreate("conn-a", "Alice")
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.FindOrCreate("conn-b", "Bob")
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Fatalf("Bob got lobby %s, want to fill %s", second.ID, first.ID)
	}
	if second.Phase != models.PhaseFull {
		t.Errorf("phase after fill = %s, want full", second.Phase)
	}
	if len(second.Members) != 2 {
		t.Errorf("roster size = %d, want 2", len(second.Members))
	}
}

func TestStartedLobbyRejectsJoins(t *testing.T) {
	opts := testOptions()
	opts.TickInterval = time.Hour // countdown never completes during the test
	c, _, h := newTestCoordinator(opts)
	h.Register("conn-a")
	h.Register("conn-b")
	h.Register("conn-c")

	first, _ := c.FindOrCreate("conn-a", "Alice")
	c.FindOrCreate("conn-b", "Bob")

	third, err := c.FindOrCreate("conn-c", "Cara")
	if err != nil {
		t.Fatal(err)
	}
	if third.ID == first.ID {
		t.Errorf("joined a lobby that already started counting")
	}
	if len(third.Members) != 1 {
		t.Errorf("new lobby roster = %+v, want just Cara", third.Members)
	}
}

func TestCapacityNeverExceededUnderConcurrentJoins(t *testing.T) {
	opts := testOptions()
	opts.TickInterval = time.Hour
	c, st, h := newTestCoordinator(opts)

	const joiners = 12
	var wg sync.WaitGroup
	for i := 0; i < joiners; i++ {
		connID := fmt.Sprintf("conn-%d", i)
		h.Register(connID)
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := c.FindOrCreate(id, id); err != nil {
				t.Errorf("join %s: %v", id, err)
			}
		}(connID)
	}
	wg.Wait()

	ids, _ := st.ListIDs()
	seats := 0
	for _, id := range ids {
		lobby, err := st.Get(id)
		if err != nil {
			t.Fatalf("registry references missing lobby %s", id)
		}
		if len(lobby.Members) > lobby.Capacity {
			t.Errorf("lobby %s overfilled: %d members, capacity %d", id, len(lobby.Members), lobby.Capacity)
		}
		seats += len(lobby.Members)
	}
	if seats != joiners {
		t.Errorf("%d seats across lobbies, want %d", seats, joiners)
	}
}

func TestConcurrentCreationsGetDistinctIDs(t *testing.T) {
	opts := testOptions()
	opts.Capacity = 1
	opts.TickInterval = time.Hour
	c, st, h := newTestCoordinator(opts)

	const creators = 16
	var wg sync.WaitGroup
	for i := 0; i < creators; i++ {
		connID := fmt.Sprintf("conn-%d", i)
		h.Register(connID)
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := c.FindOrCreate(id, id); err != nil {
				t.Errorf("create %s: %v", id, err)
			}
		}(connID)
	}
	wg.Wait()

	ids, _ := st.ListIDs()
	if len(ids) != creators {
		t.Fatalf("registry has %d lobbies, want %d distinct ones", len(ids), creators)
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate lobby id %s", id)
		}
		seen[id] = true
	}
}

func TestConcurrentAnswersNoLostUpdate(t *testing.T) {
	opts := testOptions()
	opts.TickInterval = time.Hour
	c, st, h := newTestCoordinator(opts)
	h.Register("conn-a")
	h.Register("conn-b")

	lobby, _ := c.FindOrCreate("conn-a", "Alice")
	c.FindOrCreate("conn-b", "Bob")

	const answers = 10
	var wg sync.WaitGroup
	for _, conn := range []string{"conn-a", "conn-b"} {
		for i := 0; i < answers; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				for {
					err := c.HandleAnswer(lobby.ID, id, true)
					if err == nil {
						return
					}
					if !errors.Is(err, store.ErrTransient) {
						t.Errorf("answer for %s: %v", id, err)
						return
					}
				}
			}(conn)
		}
	}
	wg.Wait()

	final, err := st.Get(lobby.ID)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range final.Members {
		if m.Score != answers*10 {
			t.Errorf("member %s score = %d, want %d", m.ConnectionID, m.Score, answers*10)
		}
	}
}

func TestWrongAnswerScoresNothing(t *testing.T) {
	opts := testOptions()
	opts.TickInterval = time.Hour
	c, st, h := newTestCoordinator(opts)
	h.Register("conn-a")

	lobby, _ := c.FindOrCreate("conn-a", "Alice")
	if err := c.HandleAnswer(lobby.ID, "conn-a", false); err != nil {
		t.Fatal(err)
	}

	final, _ := st.Get(lobby.ID)
	if final.Members[0].Score != 0 {
		t.Errorf("score = %d after wrong answer, want 0", final.Members[0].Score)
	}
}

func TestAnswerFromStrangerRejected(t *testing.T) {
	opts := testOptions()
	opts.TickInterval = time.Hour
	c, _, h := newTestCoordinator(opts)
	h.Register("conn-a")

	lobby, _ := c.FindOrCreate("conn-a", "Alice")
	if err := c.HandleAnswer(lobby.ID, "conn-x", true); !errors.Is(err, ErrNotSeated) {
		t.Errorf("got %v, want ErrNotSeated", err)
	}
	if err := c.HandleAnswer("ghost", "conn-a", true); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestFullSessionScenario(t *testing.T) {
	c, st, h := newTestCoordinator(testOptions())
	alice := h.Register("conn-a")
	bob := h.Register("conn-b")

	lobby, err := c.FindOrCreate("conn-a", "Alice")
	if err != nil {
		t.Fatal(err)
	}

	ev := drainUntil(t, alice, EventJoinedLobby)
	var joined struct {
		LobbyID string               `json:"lobby_id"`
		Members []models.Participant `json:"members"`
	}
	if err := json.Unmarshal(ev.Payload, &joined); err != nil {
		t.Fatal(err)
	}
	if joined.LobbyID != lobby.ID || len(joined.Members) != 1 {
		t.Fatalf("joinedLobby ack = %+v", joined)
	}

	if _, err := c.FindOrCreate("conn-b", "Bob"); err != nil {
		t.Fatal(err)
	}

	// Both observe the two-member roster.
	for name, client := range map[string]hub.Client{"alice": alice, "bob": bob} {
		ev := drainUntil(t, client, EventPlayerUpdate)
		var members []models.Participant
		if err := json.Unmarshal(ev.Payload, &members); err != nil {
			t.Fatal(err)
		}
		if len(members) != 2 {
			t.Fatalf("%s saw roster of %d, want 2", name, len(members))
		}
	}

	// Countdown ticks arrive descending, then the content is released.
	want := []int{5, 4, 3, 2, 1, 0}
	for _, expect := range want {
		ev := drainUntil(t, alice, EventGameCountdown)
		var remaining int
		if err := json.Unmarshal(ev.Payload, &remaining); err != nil {
			t.Fatal(err)
		}
		if remaining != expect {
			t.Fatalf("countdown tick = %d, want %d", remaining, expect)
		}
	}

	ev = drainUntil(t, alice, EventGameStart)
	var rounds []models.RoundItem
	if err := json.Unmarshal(ev.Payload, &rounds); err != nil {
		t.Fatal(err)
	}
	if len(rounds) != 3 {
		t.Fatalf("gameStart carried %d rounds, want 3", len(rounds))
	}
	drainUntil(t, bob, EventGameStart)

	// Alice scores once; both see her at 10.
	if err := c.HandleAnswer(lobby.ID, "conn-a", true); err != nil {
		t.Fatal(err)
	}
	ev = drainUntil(t, bob, EventPlayerUpdate)
	var members []models.Participant
	if err := json.Unmarshal(ev.Payload, &members); err != nil {
		t.Fatal(err)
	}
	if members[0].Score != 10 {
		t.Fatalf("Alice's broadcast score = %d, want 10", members[0].Score)
	}

	// Both finish; tournamentOver ranks Alice first on score.
	if err := c.HandleFinish(lobby.ID, "conn-a"); err != nil {
		t.Fatal(err)
	}
	if err := c.HandleFinish(lobby.ID, "conn-b"); err != nil {
		t.Fatal(err)
	}
	for name, client := range map[string]hub.Client{"alice": alice, "bob": bob} {
		ev := drainUntil(t, client, EventTournamentOver)
		var ranked []models.Participant
		if err := json.Unmarshal(ev.Payload, &ranked); err != nil {
			t.Fatal(err)
		}
		if len(ranked) != 2 || ranked[0].DisplayName != "Alice" || ranked[0].Score != 10 || ranked[1].Score != 0 {
			t.Fatalf("%s saw ranking %+v", name, ranked)
		}
	}

	// After the grace delay the lobby is gone, registry included.
	waitFor(t, time.Second, func() bool {
		if _, err := st.Get(lobby.ID); !errors.Is(err, store.ErrNotFound) {
			return false
		}
		ids, _ := st.ListIDs()
		return len(ids) == 0
	})
}

func TestGameStartEmittedExactlyOnce(t *testing.T) {
	c, _, h := newTestCoordinator(testOptions())
	alice := h.Register("conn-a")
	h.Register("conn-b")

	c.FindOrCreate("conn-a", "Alice")
	c.FindOrCreate("conn-b", "Bob")

	drainUntil(t, alice, EventGameStart)

	// Nothing further should release content again.
	deadline := time.After(100 * time.Millisecond)
	for {
		select {
		case raw, ok := <-alice:
			if !ok {
				t.Fatal("client closed unexpectedly")
			}
			var ev envelope
			if err := json.Unmarshal(raw, &ev); err != nil {
				t.Fatal(err)
			}
			if ev.Type == EventGameStart {
				t.Fatal("gameStart emitted twice")
			}
		case <-deadline:
			return
		}
	}
}

func TestTournamentTieKeepsJoinOrder(t *testing.T) {
	opts := testOptions()
	opts.TickInterval = time.Millisecond
	c, _, h := newTestCoordinator(opts)
	alice := h.Register("conn-a")
	h.Register("conn-b")

	lobby, _ := c.FindOrCreate("conn-a", "Alice")
	c.FindOrCreate("conn-b", "Bob")
	drainUntil(t, alice, EventGameStart)

	// Equal scores: join order must decide.
	c.HandleFinish(lobby.ID, "conn-b")
	c.HandleFinish(lobby.ID, "conn-a")

	ev := drainUntil(t, alice, EventTournamentOver)
	var ranked []models.Participant
	if err := json.Unmarshal(ev.Payload, &ranked); err != nil {
		t.Fatal(err)
	}
	if ranked[0].DisplayName != "Alice" || ranked[1].DisplayName != "Bob" {
		t.Errorf("tie broke join order: %+v", ranked)
	}
}

func TestDisconnectLastMemberDeletesLobby(t *testing.T) {
	c, st, h := newTestCoordinator(testOptions())
	h.Register("conn-a")

	lobby, _ := c.FindOrCreate("conn-a", "Alice")
	c.HandleDisconnect("conn-a")

	if _, err := st.Get(lobby.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("lobby record survived the last disconnect: %v", err)
	}
	ids, _ := st.ListIDs()
	if len(ids) != 0 {
		t.Errorf("registry still lists %v", ids)
	}
}

func TestDisconnectShrinksRoster(t *testing.T) {
	opts := testOptions()
	opts.Capacity = 3
	opts.TickInterval = time.Hour
	c, st, h := newTestCoordinator(opts)
	alice := h.Register("conn-a")
	h.Register("conn-b")

	lobby, _ := c.FindOrCreate("conn-a", "Alice")
	c.FindOrCreate("conn-b", "Bob")
	drainUntil(t, alice, EventPlayerUpdate)

	c.HandleDisconnect("conn-b")

	ev := drainUntil(t, alice, EventPlayerUpdate)
	var members []models.Participant
	if err := json.Unmarshal(ev.Payload, &members); err != nil {
		t.Fatal(err)
	}
	if len(members) != 1 || members[0].DisplayName != "Alice" {
		t.Errorf("roster after disconnect = %+v", members)
	}

	current, _ := st.Get(lobby.ID)
	if current.Phase != models.PhaseWaiting {
		t.Errorf("phase = %s, want waiting (lobby never filled)", current.Phase)
	}
}

func TestDisconnectOfUnfinishedMemberCompletesSession(t *testing.T) {
	opts := testOptions()
	opts.TickInterval = time.Millisecond
	c, _, h := newTestCoordinator(opts)
	alice := h.Register("conn-a")
	h.Register("conn-b")

	lobby, _ := c.FindOrCreate("conn-a", "Alice")
	c.FindOrCreate("conn-b", "Bob")
	drainUntil(t, alice, EventGameStart)

	// Alice finishes; Bob walks away while still playing.
	if err := c.HandleFinish(lobby.ID, "conn-a"); err != nil {
		t.Fatal(err)
	}
	c.HandleDisconnect("conn-b")

	ev := drainUntil(t, alice, EventTournamentOver)
	var ranked []models.Participant
	if err := json.Unmarshal(ev.Payload, &ranked); err != nil {
		t.Fatal(err)
	}
	if len(ranked) != 1 || ranked[0].DisplayName != "Alice" {
		t.Errorf("ranking after disconnect = %+v", ranked)
	}
}
