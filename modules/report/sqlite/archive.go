package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/flemzord/junction/internal/intersection"
	"github.com/flemzord/junction/internal/report"
)

// timeLayout has a fixed width so that started_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when a run ID is not in the archive.
var ErrRunNotFound = errors.New("sqlite: run not found")

// Archive stores finished runs and their vehicles.
type Archive struct {
	db *sql.DB
}

// Compile-time interface check.
var _ report.Sink = (*Archive)(nil)

// RunSummary is one archived run.
type RunSummary struct {
	RunID      string
	Seed       uint64
	Cars       int
	Started    time.Time
	Duration   time.Duration
	Rotations  int
	Passed     int
	Congested  int
	BrokenDown int
	MeanWait   float64
	MaxWait    float64
	CPUPercent float64
	MemoryMB   float64
}

// Name implements report.Sink.
func (a *Archive) Name() string { return "sqlite" }

// WriteReport implements report.Sink. The run and its vehicles are stored
// in one transaction; writing the same run twice replaces it.
func (a *Archive) WriteReport(ctx context.Context, r *report.Report) (err error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM vehicles WHERE run_id = ?`, r.RunID); err != nil {
		return fmt.Errorf("sqlite: clear vehicles: %w", err)
	}

	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO runs
		(run_id, seed, cars, started_at, duration_ms, rotations, passed, congested, broken_down,
		 mean_wait, max_wait, cpu_percent, memory_mb)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, int64(r.Seed), r.Cars, r.Started.UTC().Format(timeLayout), r.Duration.Milliseconds(),
		r.Rotations, r.Stats.Passed, r.Stats.Congested, r.Stats.BrokenDown,
		r.Stats.MeanWait, r.Stats.MaxWait, r.CPUPercent, r.MemoryMB,
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO vehicles
		(run_id, seq, vehicle_id, arrival, departure, waited_seconds, light_wait_ms, penalty_ms,
		 broken_down, congested, passed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare vehicle insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, v := range r.Vehicles {
		if _, err = stmt.ExecContext(ctx,
			r.RunID, v.Seq, v.ID, v.Arrival.String(), v.Departure.String(), v.WaitedSeconds,
			v.LightWait.Milliseconds(), v.Penalty.Milliseconds(),
			boolToInt(v.BrokenDown), boolToInt(v.Congested), boolToInt(v.Passed),
		); err != nil {
			return fmt.Errorf("sqlite: insert vehicle %d: %w", v.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// ListRuns returns up to limit archived runs, most recent first. A limit
// of zero or less returns every run.
func (a *Archive) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := a.db.QueryContext(ctx, `SELECT run_id, seed, cars, started_at, duration_ms, rotations,
		passed, congested, broken_down, mean_wait, max_wait, cpu_percent, memory_mb
		FROM runs ORDER BY started_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []RunSummary
	for rows.Next() {
		var (
			s          RunSummary
			seed       int64
			started    string
			durationMS int64
		)
		if err := rows.Scan(&s.RunID, &seed, &s.Cars, &started, &durationMS, &s.Rotations,
			&s.Passed, &s.Congested, &s.BrokenDown, &s.MeanWait, &s.MaxWait, &s.CPUPercent, &s.MemoryMB); err != nil {
			return nil, fmt.Errorf("sqlite: scan run: %w", err)
		}
		s.Seed = uint64(seed)
		s.Duration = time.Duration(durationMS) * time.Millisecond
		if s.Started, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("sqlite: run %s: parse started_at: %w", s.RunID, err)
		}
		runs = append(runs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list runs: %w", err)
	}
	return runs, nil
}

// Vehicles returns the archived vehicle records of runID in sequence order.
func (a *Archive) Vehicles(ctx context.Context, runID string) ([]intersection.Record, error) {
	var exists int
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE run_id = ?`, runID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("sqlite: lookup run: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	rows, err := a.db.QueryContext(ctx, `SELECT seq, vehicle_id, arrival, departure, waited_seconds,
		light_wait_ms, penalty_ms, broken_down, congested, passed
		FROM vehicles WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list vehicles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []intersection.Record
	for rows.Next() {
		var (
			r                       intersection.Record
			arrival, departure      string
			lightWaitMS, penaltyMS  int64
			broken, congested, pass int
		)
		if err := rows.Scan(&r.Seq, &r.ID, &arrival, &departure, &r.WaitedSeconds,
			&lightWaitMS, &penaltyMS, &broken, &congested, &pass); err != nil {
			return nil, fmt.Errorf("sqlite: scan vehicle: %w", err)
		}
		if r.Arrival, err = parseDirection(arrival); err != nil {
			return nil, err
		}
		if r.Departure, err = parseDirection(departure); err != nil {
			return nil, err
		}
		r.LightWait = time.Duration(lightWaitMS) * time.Millisecond
		r.Penalty = time.Duration(penaltyMS) * time.Millisecond
		r.BrokenDown, r.Congested, r.Passed = broken != 0, congested != 0, pass != 0
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list vehicles: %w", err)
	}
	return records, nil
}

// Close closes the database.
func (a *Archive) Close() error {
	return a.db.Close()
}

func parseDirection(s string) (intersection.Direction, error) {
	var d intersection.Direction
	if s == "none" {
		return d, nil
	}
	if err := d.UnmarshalText([]byte(s)); err != nil {
		return d, fmt.Errorf("sqlite: %w", err)
	}
	return d, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
