package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/stressease/crisisline/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS contact_cache (
	id         TEXT PRIMARY KEY,
	country    TEXT NOT NULL UNIQUE,
	contacts   TEXT NOT NULL,
	fetched_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contact_cache_fetched_at ON contact_cache(fetched_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetContacts(ctx context.Context, countryKey string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT country, contacts, fetched_at FROM contact_cache WHERE country = ?`,
		countryKey,
	)

	var e Entry
	var contactsJSON string
	err := row.Scan(&e.Country, &contactsJSON, &e.FetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get contacts %s", countryKey)
	}
	if err := json.Unmarshal([]byte(contactsJSON), &e.Set); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal contacts %s", countryKey)
	}
	return &e, nil
}

func (s *SQLiteStore) PutContacts(ctx context.Context, countryKey string, set model.ContactSet) error {
	contactsJSON, err := json.Marshal(set)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal contacts")
	}

	fetchedAt := set.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO contact_cache (id, country, contacts, fetched_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(country) DO UPDATE SET contacts = excluded.contacts, fetched_at = excluded.fetched_at`,
		uuid.New().String(), countryKey, string(contactsJSON), fetchedAt,
	)
	return eris.Wrapf(err, "sqlite: put contacts %s", countryKey)
}

func (s *SQLiteStore) ListCountries(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT country, contacts, fetched_at FROM contact_cache ORDER BY country`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list countries")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var contactsJSON string
		if err := rows.Scan(&e.Country, &contactsJSON, &e.FetchedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan entry")
		}
		if err := json.Unmarshal([]byte(contactsJSON), &e.Set); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal contacts %s", e.Country)
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: list countries iterate")
}
