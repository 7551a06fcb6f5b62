package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"quizmatch/backend/internal/models"
)

// LobbyRecord is the row shape for a lobby document. The lobby itself is
// stored as a JSON document; Version is the optimistic-concurrency guard.
type LobbyRecord struct {
	ID      string `gorm:"primaryKey;size:64"`
	Version int64  `gorm:"not null"`
	Data    []byte `gorm:"type:jsonb;not null"`
}

// RegistryEntry is one live lobby id. The table plays the role of the
// shared "lobbies" set the coordinator scans for open lobbies.
type RegistryEntry struct {
	LobbyID string `gorm:"primaryKey;size:64"`
}

// PostgresStore persists lobby records in a shared Postgres database so
// several server instances can coordinate on the same lobbies.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore connects to the database and runs migrations.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	customLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: customLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&LobbyRecord{}, &RegistryEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Println("Database connection established.")
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Get(id string) (*models.Lobby, error) {
	var record LobbyRecord
	if err := s.db.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return decodeRecord(&record)
}

func (s *PostgresStore) CreateIfAbsent(lobby *models.Lobby) error {
	stored := lobby.Clone()
	stored.Version = 1
	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}

	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&LobbyRecord{
		ID:      stored.ID,
		Version: stored.Version,
		Data:    data,
	})
	if res.Error != nil {
		return fmt.Errorf("%w: %v", ErrTransient, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (s *PostgresStore) Mutate(id string, fn func(*models.Lobby) error) (*models.Lobby, error) {
	for attempt := 0; attempt < maxMutateAttempts; attempt++ {
		lobby, readVersion, err := s.read(id)
		if err != nil {
			return nil, err
		}

		if err := fn(lobby); err != nil {
			return nil, err
		}
		lobby.Version = readVersion + 1

		data, err := json.Marshal(lobby)
		if err != nil {
			return nil, err
		}

		// Commit only if nobody else bumped the version since the read.
		res := s.db.Model(&LobbyRecord{}).
			Where("id = ? AND version = ?", id, readVersion).
			Updates(map[string]interface{}{"version": lobby.Version, "data": data})
		if res.Error != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransient, res.Error)
		}
		if res.RowsAffected == 0 {
			continue // lost the race, re-read and retry
		}
		return lobby, nil
	}
	return nil, ErrTransient
}

func (s *PostgresStore) read(id string) (*models.Lobby, int64, error) {
	var record LobbyRecord
	if err := s.db.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	lobby, err := decodeRecord(&record)
	if err != nil {
		return nil, 0, err
	}
	return lobby, record.Version, nil
}

func (s *PostgresStore) Delete(id string) error {
	res := s.db.Delete(&LobbyRecord{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("%w: %v", ErrTransient, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) AddID(id string) error {
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&RegistryEntry{LobbyID: id})
	if res.Error != nil {
		return fmt.Errorf("%w: %v", ErrTransient, res.Error)
	}
	return nil
}

func (s *PostgresStore) RemoveID(id string) error {
	if err := s.db.Delete(&RegistryEntry{}, "lobby_id = ?", id).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return nil
}

func (s *PostgresStore) ListIDs() ([]string, error) {
	var ids []string
	if err := s.db.Model(&RegistryEntry{}).Pluck("lobby_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return ids, nil
}

func decodeRecord(record *LobbyRecord) (*models.Lobby, error) {
	var lobby models.Lobby
	if err := json.Unmarshal(record.Data, &lobby); err != nil {
		return nil, err
	}
	lobby.Version = record.Version
	return &lobby, nil
}
