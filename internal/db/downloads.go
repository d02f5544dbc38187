package db

import (
	"database/sql"
	"time"

	"github.com/truccaai/trucca/internal/models"
)

// RecordDownload stores a row describing a file written by an export or template download.
func RecordDownload(d *sql.DB, resource, kind, filename string, size int64) (int64, error) {
	result, err := d.Exec(
		"INSERT INTO downloads (resource, kind, filename, size, created_at) VALUES (?, ?, ?, ?, ?)",
		resource, kind, filename, size, time.Now().Unix(),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ListDownloads returns the most recent downloads, newest first. An empty
// resource lists every resource.
func ListDownloads(d *sql.DB, resource string, limit int) ([]models.Download, error) {
	if limit <= 0 {
		limit = 50
	}

	query := "SELECT id, resource, kind, filename, size, created_at FROM downloads"
	args := []any{}
	if resource != "" {
		query += " WHERE resource = ?"
		args = append(args, resource)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := d.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var downloads []models.Download
	for rows.Next() {
		var dl models.Download
		if err := rows.Scan(&dl.ID, &dl.Resource, &dl.Kind, &dl.Filename, &dl.Size, &dl.CreatedAt); err != nil {
			return nil, err
		}
		downloads = append(downloads, dl)
	}
	return downloads, rows.Err()
}

// DownloadLog records downloads into a database.
type DownloadLog struct {
	DB *sql.DB
}

// Record stores one download.
func (l DownloadLog) Record(resource, kind, filename string, size int64) error {
	_, err := RecordDownload(l.DB, resource, kind, filename, size)
	return err
}
