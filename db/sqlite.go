package db

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var database *sql.DB

// InitDB initializes the SQLite database holding the upload audit log.
// No per-row predictions are persisted here; the log records outcomes
// only, so the dashboard can show recent activity across restarts.
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS uploads (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        filename TEXT NOT NULL,
        total_rows INTEGER DEFAULT 0,
        fraud_count INTEGER DEFAULT 0,
        legit_count INTEGER DEFAULT 0,
        status TEXT NOT NULL,
        message TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    `

	_, err = database.Exec(query)
	return err
}

// Close releases the database handle.
func Close() error {
	if database == nil {
		return nil
	}
	return database.Close()
}

// UploadLog is one audit entry for a processed (or rejected) upload.
type UploadLog struct {
	Filename   string    `json:"filename"`
	TotalRows  int       `json:"total_rows"`
	FraudCount int       `json:"fraud_count"`
	LegitCount int       `json:"legit_count"`
	Status     string    `json:"status"` // ok, rejected, failed
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

// LogUpload appends an audit entry.
func LogUpload(entry UploadLog) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := database.Exec(`
        INSERT INTO uploads (filename, total_rows, fraud_count, legit_count, status, message, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.Filename, entry.TotalRows, entry.FraudCount, entry.LegitCount,
		entry.Status, entry.Message, entry.CreatedAt)
	return err
}

// RecentUploads returns the newest audit entries, newest first.
func RecentUploads(limit int) ([]UploadLog, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := database.Query(`
        SELECT filename, total_rows, fraud_count, legit_count, status, message, created_at
        FROM uploads
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]UploadLog, 0, limit)
	for rows.Next() {
		var entry UploadLog
		if err := rows.Scan(&entry.Filename, &entry.TotalRows, &entry.FraudCount,
			&entry.LegitCount, &entry.Status, &entry.Message, &entry.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
