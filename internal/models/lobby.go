package models

import "sort"

// Phase is a lobby's position in its lifecycle.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhaseFull     Phase = "full"
	PhaseCounting Phase = "counting"
	PhaseActive   Phase = "active"
	PhaseFinished Phase = "finished"
	PhaseClosing  Phase = "closing"
)

// Participant is a seated player, embedded in a Lobby.
type Participant struct {
	ConnectionID string `json:"connection_id"`
	DisplayName  string `json:"display_name"`
	Score        int    `json:"score"`
	Finished     bool   `json:"finished"`
}

// RoundItem is one quiz round. The coordinator treats it as an opaque
// payload; only the generator and the clients interpret it.
type RoundItem struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Answer  int      `json:"answer"`
}

// Lobby is the unit of coordination: a capacity-bounded group of
// participants sharing one quiz session.
type Lobby struct {
	ID       string        `json:"id"`
	Phase    Phase         `json:"phase"`
	Capacity int           `json:"capacity"`
	Members  []Participant `json:"members"` // join order
	Rounds   []RoundItem   `json:"rounds"`
	Version  int64         `json:"version"`
}

// MemberIndex returns the position of the given connection in the member
// list, or -1 if it is not seated.
func (l *Lobby) MemberIndex(connectionID string) int {
	for i, m := range l.Members {
		if m.ConnectionID == connectionID {
			return i
		}
	}
	return -1
}

// AllFinished reports whether every current member has finished.
// An empty roster never counts as finished.
func (l *Lobby) AllFinished() bool {
	if len(l.Members) == 0 {
		return false
	}
	for _, m := range l.Members {
		if !m.Finished {
			return false
		}
	}
	return true
}

// Ranked returns the members ordered by descending score. The sort is
// stable, so equal scores keep join order.
func (l *Lobby) Ranked() []Participant {
	ranked := make([]Participant, len(l.Members))
	copy(ranked, l.Members)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// Clone returns a deep copy, so stores can hand out records without
// sharing slices with callers.
func (l *Lobby) Clone() *Lobby {
	c := *l
	c.Members = make([]Participant, len(l.Members))
	copy(c.Members, l.Members)
	c.Rounds = make([]RoundItem, len(l.Rounds))
	copy(c.Rounds, l.Rounds)
	return &c
}
