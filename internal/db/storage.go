package db

import (
	"database/sql"
	"errors"
	"time"
)

// GetValue returns the stored value for key. ok is false when the key is absent.
func GetValue(d *sql.DB, key string) (value string, ok bool, err error) {
	err = d.QueryRow("SELECT value FROM local_storage WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetValue inserts or replaces the value stored under key.
func SetValue(d *sql.DB, key, value string) error {
	_, err := d.Exec(`
		INSERT INTO local_storage (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().Unix())
	return err
}

// DeleteValue removes key. Deleting an absent key is not an error.
func DeleteValue(d *sql.DB, key string) error {
	_, err := d.Exec("DELETE FROM local_storage WHERE key = ?", key)
	return err
}
