package store

import (
	"errors"

	"quizmatch/backend/internal/models"
)

var (
	// ErrNotFound means the lobby record no longer exists. Callers treat
	// it as a benign no-op: the lobby may have been cleaned up concurrently.
	ErrNotFound = errors.New("lobby not found")

	// ErrAlreadyExists means CreateIfAbsent lost to another creator.
	ErrAlreadyExists = errors.New("lobby already exists")

	// ErrConflict means a Mutate attempt lost an optimistic-concurrency
	// race. It is retried internally and never escapes a Store method.
	ErrConflict = errors.New("version conflict")

	// ErrTransient means the store is unavailable or Mutate exhausted its
	// retries. It is surfaced to the event's originator only.
	ErrTransient = errors.New("transient store failure")
)

// maxMutateAttempts bounds the internal retry loop on version conflicts.
const maxMutateAttempts = 5

// Store is the shared lobby store: versioned lobby records plus the
// registry of live lobby ids. The record may live outside the process and
// be written by more than one server instance, so every read-modify-write
// goes through Mutate, which commits only if the record's version is
// unchanged since the read.
type Store interface {
	Get(id string) (*models.Lobby, error)
	CreateIfAbsent(lobby *models.Lobby) error

	// Mutate reads the current record, applies fn to a private copy and
	// commits it with an incremented version, retrying on conflict. If fn
	// returns an error the mutation is abandoned without commit and that
	// error is returned unchanged.
	Mutate(id string, fn func(*models.Lobby) error) (*models.Lobby, error)

	Delete(id string) error

	AddID(id string) error
	RemoveID(id string) error
	ListIDs() ([]string, error)
}
