// Package trajdb persists odometry runs and per-frame poses in sqlite so
// trajectories can be inspected and compared after the fact.
package trajdb

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps the trajectory database connection.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the trajectory database at path and applies any
// pending schema migrations.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open trajectory db: %w", err)
	}

	db := &DB{conn}
	if err := db.migrateUp(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Run identifies one odometry session.
type Run struct {
	ID        string
	Label     string
	StartedAt time.Time
}

// PoseRecord is one successful tick: the accumulated global pose, the
// incremental transform that produced it, and the solver diagnostics.
type PoseRecord struct {
	RunID string
	Frame int

	RotX, RotY, RotZ float64
	PosX, PosY, PosZ float64

	IncRotX, IncRotY, IncRotZ float64
	IncPosX, IncPosY, IncPosZ float64

	Converged  bool
	Degenerate bool
}

// StartRun creates a run row and returns its UUID.
func (db *DB) StartRun(label string) (string, error) {
	id := uuid.NewString()
	_, err := db.Exec(
		`INSERT INTO runs (id, label, started_at) VALUES (?, ?, UNIXEPOCH('subsec'))`,
		id, label)
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	return id, nil
}

// RecordPose stores one tick's pose under its run.
func (db *DB) RecordPose(rec PoseRecord) error {
	_, err := db.Exec(`
		INSERT INTO poses (
			run_id, frame,
			rot_x, rot_y, rot_z, pos_x, pos_y, pos_z,
			inc_rot_x, inc_rot_y, inc_rot_z, inc_pos_x, inc_pos_y, inc_pos_z,
			converged, degenerate
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Frame,
		rec.RotX, rec.RotY, rec.RotZ, rec.PosX, rec.PosY, rec.PosZ,
		rec.IncRotX, rec.IncRotY, rec.IncRotZ, rec.IncPosX, rec.IncPosY, rec.IncPosZ,
		rec.Converged, rec.Degenerate)
	if err != nil {
		return fmt.Errorf("record pose for run %s frame %d: %w", rec.RunID, rec.Frame, err)
	}
	return nil
}

// RunPoses returns all poses of a run in frame order.
func (db *DB) RunPoses(runID string) ([]PoseRecord, error) {
	rows, err := db.Query(`
		SELECT run_id, frame,
			rot_x, rot_y, rot_z, pos_x, pos_y, pos_z,
			inc_rot_x, inc_rot_y, inc_rot_z, inc_pos_x, inc_pos_y, inc_pos_z,
			converged, degenerate
		FROM poses WHERE run_id = ? ORDER BY frame`, runID)
	if err != nil {
		return nil, fmt.Errorf("query poses for run %s: %w", runID, err)
	}
	defer rows.Close()

	var poses []PoseRecord
	for rows.Next() {
		var rec PoseRecord
		if err := rows.Scan(
			&rec.RunID, &rec.Frame,
			&rec.RotX, &rec.RotY, &rec.RotZ, &rec.PosX, &rec.PosY, &rec.PosZ,
			&rec.IncRotX, &rec.IncRotY, &rec.IncRotZ, &rec.IncPosX, &rec.IncPosY, &rec.IncPosZ,
			&rec.Converged, &rec.Degenerate); err != nil {
			return nil, fmt.Errorf("scan pose row: %w", err)
		}
		poses = append(poses, rec)
	}
	return poses, rows.Err()
}

// Runs lists all runs, most recent first.
func (db *DB) Runs() ([]Run, error) {
	rows, err := db.Query(`SELECT id, label, started_at FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAt float64
		if err := rows.Scan(&r.ID, &r.Label, &startedAt); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		sec := int64(startedAt)
		nsec := int64((startedAt - float64(sec)) * 1e9)
		r.StartedAt = time.Unix(sec, nsec).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
