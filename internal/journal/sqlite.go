package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS weather_journal (
	id                TEXT PRIMARY KEY,
	created_at        TIMESTAMP NOT NULL,
	city              TEXT NOT NULL,
	country           TEXT,
	temperature       REAL NOT NULL,
	feels_like        REAL,
	humidity          REAL,
	wind_speed        REAL,
	weather_condition TEXT NOT NULL,
	weather_icon      TEXT,
	note              TEXT,
	mood_tag          TEXT,
	device_id         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS weather_journal_device_created_idx
	ON weather_journal (device_id, created_at DESC);`

// SQLiteStore keeps journal entries in a local SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the database at path and initializes the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s, err := NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore wraps an open database and initializes the schema.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if err := initSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func initSchema(db *sql.DB) error {
	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, deviceID string, in Input) (*Entry, error) {
	e, err := newEntry(deviceID, in, s.now())
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO weather_journal (` + entryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		e.ID, e.CreatedAt, e.City, e.Country, e.Temperature, e.FeelsLike,
		e.Humidity, e.WindSpeed, e.WeatherCondition, e.WeatherIcon, e.Note, e.MoodTag, e.DeviceID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert journal entry: %w", err)
	}
	return e, nil
}

func (s *SQLiteStore) ListByDevice(ctx context.Context, deviceID string, limit int) ([]*Entry, error) {
	if deviceID == "" {
		return nil, ErrMissingDevice
	}

	query := `SELECT ` + entryColumns + ` FROM weather_journal
		WHERE device_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, deviceID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query journal entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		var (
			e                            Entry
			country, icon, note, moodTag sql.NullString
			feelsLike, humidity, windSpd sql.NullFloat64
		)
		err := rows.Scan(
			&e.ID, &e.CreatedAt, &e.City, &country, &e.Temperature, &feelsLike,
			&humidity, &windSpd, &e.WeatherCondition, &icon, &note, &moodTag, &e.DeviceID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}

		e.CreatedAt = e.CreatedAt.UTC()
		e.Country = nullString(country)
		e.WeatherIcon = nullString(icon)
		e.Note = nullString(note)
		e.MoodTag = nullString(moodTag)
		e.FeelsLike = nullFloat(feelsLike)
		e.Humidity = nullFloat(humidity)
		e.WindSpeed = nullFloat(windSpd)

		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entries: %w", err)
	}
	return entries, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, deviceID, id string) error {
	if deviceID == "" {
		return ErrMissingDevice
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM weather_journal WHERE id = ? AND device_id = ?`, id, deviceID)
	if err != nil {
		return fmt.Errorf("delete journal entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete journal entry: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}
