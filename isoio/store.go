/*
Copyright © 2019 the Adsorb authors.
This file is part of Adsorb.

Adsorb is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Adsorb is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Adsorb.  If not, see <http://www.gnu.org/licenses/>.
*/

package isoio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spatialmodel/adsorb"
)

// ErrNotFound is returned when the store has no isotherm with the
// requested ID.
var ErrNotFound = errors.New("isoio: isotherm not found")

// Store keeps isotherms in a PostgreSQL table, keyed by isotherm ID.
// Each isotherm is stored as its JSON document.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a store that uses an existing connection pool.
func NewStore(pool *pgxpool.Pool) *Store { return &Store{pool: pool} }

// OpenStore connects to the database at url, retrying with
// exponential backoff while the server starts up.
func OpenStore(ctx context.Context, url string) (*Store, error) {
	var pool *pgxpool.Pool
	err := backoff.Retry(func() error {
		var err error
		pool, err = pgxpool.New(ctx, url)
		if err != nil {
			return backoff.Permanent(err)
		}
		if err = pool.Ping(ctx); err != nil {
			pool.Close()
			return err
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 10), ctx))
	if err != nil {
		return nil, fmt.Errorf("isoio: connecting to isotherm store: %v", err)
	}
	return NewStore(pool), nil
}

// Close closes the connection pool.
func (s *Store) Close() { s.pool.Close() }

// Migrate creates the isotherm table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS isotherms (
	id          text PRIMARY KEY,
	material    text NOT NULL,
	adsorbate   text NOT NULL,
	temperature double precision NOT NULL,
	doc         jsonb NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("isoio: creating isotherm table: %w", err)
	}
	return nil
}

// Put stores iso, replacing any isotherm with the same ID, and returns
// the ID.
func (s *Store) Put(ctx context.Context, iso adsorb.Isotherm) (string, error) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, iso); err != nil {
		return "", err
	}
	id := iso.ID()
	m := iso.Meta()
	_, err := s.pool.Exec(ctx, `INSERT INTO isotherms (id, material, adsorbate, temperature, doc)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET material = $2, adsorbate = $3, temperature = $4, doc = $5`,
		id, m.Material, m.Adsorbate, m.Temperature, buf.String())
	if err != nil {
		return "", fmt.Errorf("isoio: storing isotherm %s: %w", id, err)
	}
	return id, nil
}

// Get returns the isotherm with the given ID.
func (s *Store) Get(ctx context.Context, id string) (adsorb.Isotherm, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM isotherms WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	} else if err != nil {
		return nil, fmt.Errorf("isoio: retrieving isotherm %s: %w", id, err)
	}
	return ReadJSON(bytes.NewReader(doc), FormatAdsorb)
}

// Delete removes the isotherm with the given ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM isotherms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("isoio: deleting isotherm %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Filter selects stored isotherms. Empty fields match everything.
// Names match case-insensitively.
type Filter struct {
	Material, Adsorbate string

	// MinTemperature and MaxTemperature bound the temperature in K
	// when they are non-zero.
	MinTemperature, MaxTemperature float64
}

// where returns the SQL condition and arguments of f.
func (f Filter) where() (string, []interface{}) {
	var cond []string
	var args []interface{}
	add := func(c string, v interface{}) {
		args = append(args, v)
		cond = append(cond, fmt.Sprintf(c, len(args)))
	}
	if f.Material != "" {
		add("lower(material) = lower($%d)", f.Material)
	}
	if f.Adsorbate != "" {
		add("lower(adsorbate) = lower($%d)", f.Adsorbate)
	}
	if f.MinTemperature != 0 {
		add("temperature >= $%d", f.MinTemperature)
	}
	if f.MaxTemperature != 0 {
		add("temperature <= $%d", f.MaxTemperature)
	}
	if len(cond) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(cond, " AND "), args
}

// Summary describes a stored isotherm.
type Summary struct {
	ID          string  `json:"id"`
	Material    string  `json:"material"`
	Adsorbate   string  `json:"adsorbate"`
	Temperature float64 `json:"temperature"`
}

// List returns the isotherms that match f, ordered by material,
// adsorbate and temperature.
func (s *Store) List(ctx context.Context, f Filter) ([]Summary, error) {
	where, args := f.where()
	rows, err := s.pool.Query(ctx, `SELECT id, material, adsorbate, temperature FROM isotherms`+where+
		` ORDER BY material, adsorbate, temperature, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("isoio: listing isotherms: %w", err)
	}
	defer rows.Close()
	var o []Summary
	for rows.Next() {
		var r Summary
		if err := rows.Scan(&r.ID, &r.Material, &r.Adsorbate, &r.Temperature); err != nil {
			return nil, fmt.Errorf("isoio: listing isotherms: %w", err)
		}
		o = append(o, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("isoio: listing isotherms: %w", err)
	}
	return o, nil
}
