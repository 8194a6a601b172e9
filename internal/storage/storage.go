package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/dgraph-io/badger/v4"
)

const gamePrefix = "game:"

var ErrNotFound = errors.New("game record not found")

// GameRecord is the archived form of a game: who played, how it ended and
// every ply with its board snapshot.
type GameRecord struct {
	ID        string               `json:"id"`
	Round     int                  `json:"round"`
	Players   model.Players        `json:"players"`
	Status    model.GameStatus     `json:"status"`
	Winner    model.Color          `json:"winner,omitempty"`
	History   []model.Ply          `json:"moveHistory"`
	Captured  model.CapturedPieces `json:"capturedPieces"`
	Board     *model.Board         `json:"board"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// NewGameRecord builds the archive entry for a game state. The winner is set
// only for checkmate: the side that just moved delivered it.
func NewGameRecord(id string, state model.GameState) GameRecord {
	rec := GameRecord{
		ID:       id,
		Round:    state.Round,
		Players:  state.Players,
		Status:   state.Status,
		History:  state.MoveHistory,
		Captured: state.CapturedPieces,
		Board:    state.Board,
	}
	if state.Status == model.StatusCheckmate {
		rec.Winner = state.ToMove.Opponent()
	}
	return rec
}

// Storage wraps BadgerDB for the game archive
type Storage struct {
	db *badger.DB
}

// Open opens the archive in dir. An empty dir keeps everything in memory.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// gameKeyPrefix covers every round of one game.
func gameKeyPrefix(id string) []byte {
	return []byte(gamePrefix + id + ":")
}

func gameKey(id string, round int) []byte {
	return fmt.Appendf(gameKeyPrefix(id), "%06d", round)
}

// SaveGame writes rec, replacing any earlier record for the same game round.
func (s *Storage) SaveGame(rec GameRecord) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gameKey(rec.ID, rec.Round), data)
	})
}

// LoadGame returns the record of the latest finished round of id, or
// ErrNotFound.
func (s *Storage) LoadGame(id string) (GameRecord, error) {
	var rec GameRecord

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = gameKeyPrefix(id)
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration has to seek past the last key under the prefix
		it.Seek(append(gameKeyPrefix(id), 0xff))
		if !it.Valid() {
			return ErrNotFound
		}
		return it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})

	return rec, err
}

// ListGames returns every archived game, most recently updated first.
func (s *Storage) ListGames() ([]GameRecord, error) {
	records := []GameRecord{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(gamePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec GameRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})
	return records, nil
}
