// Package dealstore persists dealt boards in a local sqlite database so a
// hand can be replayed or reviewed in a later session.
package dealstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/cardsoft/bridgetutor/card"
)

var ErrNotFound = errors.New("deal not found")

const schema = `
CREATE TABLE IF NOT EXISTS deals (
	id TEXT PRIMARY KEY,
	fingerprint TEXT NOT NULL,
	layout TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS deals_created_at ON deals(created_at);
`

// Record is one saved deal as listed, without rebuilding the hands.
type Record struct {
	ID        string
	Layout    string
	CreatedAt time.Time
}

type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	log.Debug().Str("path", path).Msg("deal-store-opened")
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes the deal under its ID. Saving the same deal twice is not an
// error; the layout is immutable so the row is simply kept.
func (s *Store) Save(ctx context.Context, deal *card.Deal) error {
	layout := deal.Compact()
	fp := fmt.Sprintf("%x", xxhash.Sum64String(layout))
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deals (id, fingerprint, layout, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		deal.ID(), fp, layout, time.Now().UTC())
	return err
}

// Get rebuilds a saved deal. The stored fingerprint is checked against the
// layout to catch rows edited outside this program.
func (s *Store) Get(ctx context.Context, id string) (*card.Deal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT fingerprint, layout FROM deals WHERE id = ?`, id)
	var fp, layout string
	if err := row.Scan(&fp, &layout); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if got := fmt.Sprintf("%x", xxhash.Sum64String(layout)); got != fp {
		return nil, fmt.Errorf("deal %s: layout does not match stored fingerprint", id)
	}
	return card.ParseDeal(id, layout)
}

// Recent lists the newest n saved deals.
func (s *Store) Recent(ctx context.Context, n int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, layout, created_at FROM deals ORDER BY created_at DESC, id LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Layout, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
