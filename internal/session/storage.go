package session

import (
	"database/sql"
	"sync"

	"github.com/truccaai/trucca/internal/db"
)

// Storage is a string key/value store for client-side state.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// SQLiteStorage persists values in the local_storage table.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a SQLiteStorage on an open database.
func NewSQLiteStorage(database *sql.DB) *SQLiteStorage {
	return &SQLiteStorage{db: database}
}

// Get returns the value stored under key.
func (s *SQLiteStorage) Get(key string) (string, bool, error) {
	return db.GetValue(s.db, key)
}

// Set stores value under key.
func (s *SQLiteStorage) Set(key, value string) error {
	return db.SetValue(s.db, key, value)
}

// Delete removes key.
func (s *SQLiteStorage) Delete(key string) error {
	return db.DeleteValue(s.db, key)
}

// MemoryStorage keeps values in process memory.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (s *MemoryStorage) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *MemoryStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Delete removes key.
func (s *MemoryStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
