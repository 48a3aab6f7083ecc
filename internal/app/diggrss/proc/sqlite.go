package proc

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // sqlite driver

	"github.com/pixelnated/digg-daily-rss/internal/app/diggrss/podcast"
)

// SQLiteStore keeps the episode list in a sqlite table, one row per episode
// with an explicit position column.
type SQLiteStore struct {
	DB *sql.DB
}

// NewSQLiteStore opens (or creates) the sqlite db file and its schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("can't open sqlite db %s: %w", path, err)
	}

	s := &SQLiteStore{DB: db}
	if err := s.init(); err != nil {
		return nil, fmt.Errorf("can't init sqlite db %s: %w", path, err)
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.DB.Exec(`CREATE TABLE IF NOT EXISTS episodes (
		position         INTEGER PRIMARY KEY,
		episode_id       TEXT NOT NULL,
		episode_number   INTEGER NOT NULL DEFAULT 0,
		title            TEXT NOT NULL DEFAULT '',
		date             TEXT NOT NULL DEFAULT '',
		published_date   TEXT NOT NULL DEFAULT '',
		published_state  TEXT NOT NULL DEFAULT '',
		file_name        TEXT NOT NULL DEFAULT '',
		description      TEXT NOT NULL DEFAULT '',
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		size_bytes       INTEGER NOT NULL DEFAULT 0
	)`)
	return err
}

// Load episodes ordered by position.
func (s *SQLiteStore) Load() ([]podcast.Episode, error) {
	rows, err := s.DB.Query(`SELECT episode_id, episode_number, title, date, published_date,
		published_state, file_name, description, duration_seconds, size_bytes
		FROM episodes ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("can't query episodes: %w", err)
	}
	defer rows.Close() // nolint

	result := []podcast.Episode{}
	for rows.Next() {
		var e podcast.Episode
		if err := rows.Scan(&e.EpisodeID, &e.EpisodeNumber, &e.Title, &e.Date, &e.PublishedDate,
			&e.PublishedState, &e.FileName, &e.Description, &e.DurationSeconds, &e.SizeBytes); err != nil {
			return nil, fmt.Errorf("can't scan episode: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Save replaces the table contents in a single transaction.
func (s *SQLiteStore) Save(episodes []podcast.Episode) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return fmt.Errorf("can't begin tx: %w", err)
	}
	defer tx.Rollback() // nolint

	if _, err := tx.Exec(`DELETE FROM episodes`); err != nil {
		return fmt.Errorf("can't clear episodes: %w", err)
	}

	for i, e := range episodes {
		_, err := tx.Exec(`INSERT INTO episodes (position, episode_id, episode_number, title, date,
			published_date, published_state, file_name, description, duration_seconds, size_bytes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, e.EpisodeID, e.EpisodeNumber, e.Title, e.Date,
			e.PublishedDate, e.PublishedState, e.FileName, e.Description, e.DurationSeconds, e.SizeBytes)
		if err != nil {
			return fmt.Errorf("can't insert episode %s: %w", e.EpisodeID, err)
		}
	}

	return tx.Commit()
}
