// Package archive keeps played runs in a SQLite database: one row per run
// and one row per played frame.
package archive

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/san-kum/ridersim/internal/geom"
	"github.com/san-kum/ridersim/internal/sim"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

var ErrNotFound = errors.New("archive: run not found")

type Archive struct {
	db *sql.DB
}

// Run is a row of the runs table.
type Run struct {
	ID         string
	Scene      string
	CreatedAt  time.Time
	From       int
	Frames     int
	Lines      int
	CrashFrame int
	PeakSpeed  float64
}

type FrameRow struct {
	Frame   int
	Center  geom.Vec2
	Speed   float64
	Crashed bool
}

// Open creates or opens the database at path and applies the schema.
// Opening an existing archive is safe.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect archive: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		db.Close()
		return nil, fmt.Errorf("set schema version: %w", err)
	}

	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Record stores a played result in one transaction and returns the new run
// ID. The result must have been run with Keep set.
func (a *Archive) Record(ctx context.Context, scene string, lines, from int, result *sim.Result) (string, error) {
	id := uuid.NewString()

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	peak := 0.0
	for _, r := range result.Riders {
		peak = max(peak, r.Speed())
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, scene, created_at, first_frame, frames, lines, crash_frame, peak_speed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, scene, time.Now().UnixNano(), from, len(result.Riders), lines, result.CrashFrame, peak)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO frames (run_id, frame, center_x, center_y, speed, crashed) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i, r := range result.Riders {
		c := r.Center()
		if _, err := stmt.ExecContext(ctx, id, from+i, c.X, c.Y, r.Speed(), r.Crashed()); err != nil {
			return "", fmt.Errorf("insert frame %d: %w", from+i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// Runs lists archived runs, newest first. An empty scene lists every scene.
func (a *Archive) Runs(ctx context.Context, scene string) ([]Run, error) {
	query := `SELECT id, scene, created_at, first_frame, frames, lines, crash_frame, peak_speed FROM runs`
	var args []any
	if scene != "" {
		query += ` WHERE scene = ?`
		args = append(args, scene)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (a *Archive) Run(ctx context.Context, id string) (Run, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT id, scene, created_at, first_frame, frames, lines, crash_frame, peak_speed FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

func (a *Archive) Frames(ctx context.Context, id string) ([]FrameRow, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT frame, center_x, center_y, speed, crashed FROM frames WHERE run_id = ? ORDER BY frame`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []FrameRow
	for rows.Next() {
		var f FrameRow
		if err := rows.Scan(&f.Frame, &f.Center.X, &f.Center.Y, &f.Speed, &f.Crashed); err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, rows.Err()
}

// Delete removes a run and its frames.
func (a *Archive) Delete(ctx context.Context, id string) error {
	res, err := a.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var run Run
	var created int64
	err := s.Scan(&run.ID, &run.Scene, &created, &run.From, &run.Frames, &run.Lines, &run.CrashFrame, &run.PeakSpeed)
	if err != nil {
		return Run{}, err
	}
	run.CreatedAt = time.Unix(0, created)
	return run, nil
}
