package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS saves (
		id TEXT PRIMARY KEY,
		audioPath TEXT NOT NULL DEFAULT '',
		lrcPath TEXT NOT NULL,
		trackTitle TEXT NOT NULL DEFAULT '',
		trackArtist TEXT NOT NULL DEFAULT '',
		player TEXT NOT NULL DEFAULT '',
		linesTotal INTEGER NOT NULL,
		linesSynced INTEGER NOT NULL,
		savedAt REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS saves_lrcPath ON saves(lrcPath);
	CREATE INDEX IF NOT EXISTS saves_savedAt ON saves(savedAt);
`

// Store is a read-write handle on the save log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path with WAL enabled.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one save. A missing ID or timestamp is filled in.
func (s *Store) Record(save Save) error {
	if save.LrcPath == "" {
		return fmt.Errorf("save has no lrc path")
	}
	if save.ID == "" {
		save.ID = uuid.NewString()
	}
	if save.SavedAt.IsZero() {
		save.SavedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO saves (id, audioPath, lrcPath, trackTitle, trackArtist, player, linesTotal, linesSynced, savedAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, save.ID, save.AudioPath, save.LrcPath, save.TrackTitle, save.TrackArtist,
		save.Player, save.LinesTotal, save.LinesSynced, unixFloat(save.SavedAt))
	if err != nil {
		return fmt.Errorf("insert save: %w", err)
	}
	return nil
}

// Recent returns the newest saves first, at most limit of them.
func (s *Store) Recent(limit int) ([]Save, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, audioPath, lrcPath, trackTitle, trackArtist, player, linesTotal, linesSynced, savedAt
		FROM saves
		ORDER BY savedAt DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query saves: %w", err)
	}
	defer rows.Close()
	return scanSaves(rows)
}

// ForPath returns every save of one LRC file, newest first.
func (s *Store) ForPath(lrcPath string) ([]Save, error) {
	rows, err := s.db.Query(`
		SELECT id, audioPath, lrcPath, trackTitle, trackArtist, player, linesTotal, linesSynced, savedAt
		FROM saves
		WHERE lrcPath = ?
		ORDER BY savedAt DESC
	`, lrcPath)
	if err != nil {
		return nil, fmt.Errorf("query saves: %w", err)
	}
	defer rows.Close()
	return scanSaves(rows)
}

// Latest returns the most recent save, or nil when the log is empty.
func (s *Store) Latest() (*Save, error) {
	saves, err := s.Recent(1)
	if err != nil {
		return nil, err
	}
	if len(saves) == 0 {
		return nil, nil
	}
	return &saves[0], nil
}

func scanSaves(rows *sql.Rows) ([]Save, error) {
	var saves []Save
	for rows.Next() {
		var save Save
		var savedAt float64
		if err := rows.Scan(&save.ID, &save.AudioPath, &save.LrcPath, &save.TrackTitle,
			&save.TrackArtist, &save.Player, &save.LinesTotal, &save.LinesSynced, &savedAt); err != nil {
			return nil, fmt.Errorf("scan save: %w", err)
		}
		save.SavedAt = timeFromUnix(savedAt)
		saves = append(saves, save)
	}
	return saves, rows.Err()
}

func unixFloat(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
