// Package storage persists shelter snapshots in a SQL database. PostgreSQL is
// used for postgres:// DSNs; anything else is treated as a SQLite file path.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/shelter-data-etl-service/internal/domain"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
  id BIGSERIAL PRIMARY KEY,
  payload_hash TEXT NOT NULL UNIQUE,
  source_url TEXT NOT NULL,
  built_at BIGINT NOT NULL,
  shelter_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS shelters (
  snapshot_id BIGINT NOT NULL REFERENCES snapshots(id),
  position INTEGER NOT NULL,
  shelter_id TEXT NOT NULL,
  name TEXT NOT NULL,
  community TEXT NOT NULL,
  settlement TEXT NOT NULL,
  district TEXT NOT NULL,
  area DOUBLE PRECISION,
  capacity DOUBLE PRECISION,
  building_kind TEXT NOT NULL,
  shelter_type TEXT NOT NULL,
  accessible BOOLEAN NOT NULL,
  accessible_known BOOLEAN NOT NULL,
  address TEXT NOT NULL,
  longitude DOUBLE PRECISION,
  latitude DOUBLE PRECISION,
  PRIMARY KEY (snapshot_id, position)
);
CREATE INDEX IF NOT EXISTS idx_snapshots_built_at ON snapshots(built_at);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  payload_hash TEXT NOT NULL UNIQUE,
  source_url TEXT NOT NULL,
  built_at INTEGER NOT NULL,
  shelter_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS shelters (
  snapshot_id INTEGER NOT NULL REFERENCES snapshots(id),
  position INTEGER NOT NULL,
  shelter_id TEXT NOT NULL,
  name TEXT NOT NULL,
  community TEXT NOT NULL,
  settlement TEXT NOT NULL,
  district TEXT NOT NULL,
  area REAL,
  capacity REAL,
  building_kind TEXT NOT NULL,
  shelter_type TEXT NOT NULL,
  accessible INTEGER NOT NULL,
  accessible_known INTEGER NOT NULL,
  address TEXT NOT NULL,
  longitude REAL,
  latitude REAL,
  PRIMARY KEY (snapshot_id, position)
);
CREATE INDEX IF NOT EXISTS idx_snapshots_built_at ON snapshots(built_at);
`

type snapshotRow struct {
	ID           int64  `db:"id"`
	PayloadHash  string `db:"payload_hash"`
	SourceURL    string `db:"source_url"`
	BuiltAt      int64  `db:"built_at"`
	ShelterCount int    `db:"shelter_count"`
}

type shelterRow struct {
	SnapshotID      int64    `db:"snapshot_id"`
	Position        int      `db:"position"`
	ShelterID       string   `db:"shelter_id"`
	Name            string   `db:"name"`
	Community       string   `db:"community"`
	Settlement      string   `db:"settlement"`
	District        string   `db:"district"`
	Area            *float64 `db:"area"`
	Capacity        *float64 `db:"capacity"`
	BuildingKind    string   `db:"building_kind"`
	ShelterType     string   `db:"shelter_type"`
	Accessible      bool     `db:"accessible"`
	AccessibleKnown bool     `db:"accessible_known"`
	Address         string   `db:"address"`
	Longitude       *float64 `db:"longitude"`
	Latitude        *float64 `db:"latitude"`
}

func toRow(snapshotID int64, position int, s domain.Shelter) shelterRow {
	return shelterRow{
		SnapshotID:      snapshotID,
		Position:        position,
		ShelterID:       domain.ShelterID(s),
		Name:            s.Name,
		Community:       s.Community,
		Settlement:      s.Settlement,
		District:        s.District,
		Area:            s.Area,
		Capacity:        s.Capacity,
		BuildingKind:    s.BuildingKind,
		ShelterType:     s.ShelterType,
		Accessible:      s.Accessible,
		AccessibleKnown: s.AccessibleKnown,
		Address:         s.Address,
		Longitude:       s.Longitude,
		Latitude:        s.Latitude,
	}
}

func (r shelterRow) shelter() domain.Shelter {
	return domain.Shelter{
		Name:            r.Name,
		Community:       r.Community,
		Settlement:      r.Settlement,
		District:        r.District,
		Area:            r.Area,
		Capacity:        r.Capacity,
		BuildingKind:    r.BuildingKind,
		ShelterType:     r.ShelterType,
		Accessible:      r.Accessible,
		AccessibleKnown: r.AccessibleKnown,
		Address:         r.Address,
		Longitude:       r.Longitude,
		Latitude:        r.Latitude,
	}
}

// Store keeps one row per snapshot and one row per shelter in it.
// It implements pipeline.SnapshotLoader.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// DriverFor picks the database driver for a DSN.
func DriverFor(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return driverPostgres
	}
	return driverSQLite
}

// Open connects to the database and creates the schema if needed.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	driver := DriverFor(dsn)
	schema := postgresSchema
	if driver == driverSQLite {
		schema = sqliteSchema
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	if driver == driverSQLite {
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, `PRAGMA journal_mode = WAL;`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	logger.Info("snapshot store ready", "driver", driver)
	return &Store{db: db, logger: logger}, nil
}

// Name identifies the loader in logs and metrics.
func (s *Store) Name() string { return "sql" }

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const insertShelter = `
INSERT INTO shelters (
  snapshot_id, position, shelter_id, name, community, settlement, district,
  area, capacity, building_kind, shelter_type, accessible, accessible_known,
  address, longitude, latitude
) VALUES (
  :snapshot_id, :position, :shelter_id, :name, :community, :settlement, :district,
  :area, :capacity, :building_kind, :shelter_type, :accessible, :accessible_known,
  :address, :longitude, :latitude
)`

// LoadSnapshot stores a snapshot and its shelters in one transaction. A
// snapshot whose payload hash is already stored is skipped.
func (s *Store) LoadSnapshot(ctx context.Context, snap domain.Snapshot) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var existing int
	if err = tx.GetContext(ctx, &existing,
		tx.Rebind(`SELECT COUNT(*) FROM snapshots WHERE payload_hash = ?`), snap.PayloadHash); err != nil {
		return fmt.Errorf("check snapshot: %w", err)
	}
	if existing > 0 {
		s.logger.Debug("snapshot already stored", "payload_hash", snap.PayloadHash)
		return tx.Rollback()
	}

	var id int64
	if err = tx.QueryRowxContext(ctx,
		tx.Rebind(`INSERT INTO snapshots (payload_hash, source_url, built_at, shelter_count) VALUES (?, ?, ?, ?) RETURNING id`),
		snap.PayloadHash, snap.SourceURL, snap.BuiltAt.Unix(), len(snap.Shelters),
	).Scan(&id); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	stmt, err := tx.PrepareNamedContext(ctx, insertShelter)
	if err != nil {
		return fmt.Errorf("prepare shelter insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, sh := range snap.Shelters {
		if _, err = stmt.ExecContext(ctx, toRow(id, i, sh)); err != nil {
			return fmt.Errorf("insert shelter %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Info("snapshot stored", "snapshot_id", id, "shelters", len(snap.Shelters))
	return nil
}

// Latest rebuilds the most recently stored snapshot. It returns
// domain.ErrNoData when nothing is stored yet.
func (s *Store) Latest(ctx context.Context) (domain.Snapshot, error) {
	var snapRow snapshotRow
	err := s.db.GetContext(ctx, &snapRow,
		`SELECT id, payload_hash, source_url, built_at, shelter_count FROM snapshots ORDER BY id DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Snapshot{}, domain.ErrNoData
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("latest snapshot: %w", err)
	}

	var rows []shelterRow
	if err := s.db.SelectContext(ctx, &rows,
		s.db.Rebind(`SELECT * FROM shelters WHERE snapshot_id = ? ORDER BY position`), snapRow.ID); err != nil {
		return domain.Snapshot{}, fmt.Errorf("load shelters of snapshot %d: %w", snapRow.ID, err)
	}

	shelters := make([]domain.Shelter, len(rows))
	for i, r := range rows {
		shelters[i] = r.shelter()
	}
	return domain.Snapshot{
		Shelters:    shelters,
		Display:     domain.BuildDisplay(shelters),
		Stats:       domain.NormalizeStats{Rows: len(shelters)},
		PayloadHash: snapRow.PayloadHash,
		SourceURL:   snapRow.SourceURL,
		BuiltAt:     time.Unix(snapRow.BuiltAt, 0).UTC(),
	}, nil
}

// DeleteOlderThan removes snapshots built before cutoff together with their
// shelters. The newest snapshot is always kept.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (deleted int64, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const expired = `SELECT id FROM snapshots WHERE built_at < ? AND id <> (SELECT MAX(id) FROM snapshots)`
	if _, err = tx.ExecContext(ctx,
		tx.Rebind(`DELETE FROM shelters WHERE snapshot_id IN (`+expired+`)`), cutoff.Unix()); err != nil {
		return 0, fmt.Errorf("delete shelters: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		tx.Rebind(`DELETE FROM snapshots WHERE id IN (`+expired+`)`), cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("delete snapshots: %w", err)
	}
	if deleted, err = res.RowsAffected(); err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return deleted, nil
}
