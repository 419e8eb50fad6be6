package recordlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/baysim/core/model"
)

// SQLiteStore persists records to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS bay_records (
        run_id TEXT NOT NULL,
        time_index INTEGER NOT NULL,
        timestep_type TEXT NOT NULL,
        total_trucks INTEGER,
        total_cars INTEGER,
        total_power_mw REAL,
        bays TEXT,
        PRIMARY KEY (run_id, time_index)
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Append inserts the records in a single transaction. Re-appending a time
// index of the same run replaces the previous row.
func (s *SQLiteStore) Append(ctx context.Context, runID string, recs []model.OutputRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO bay_records
        (run_id, time_index, timestep_type, total_trucks, total_cars, total_power_mw, bays)
        VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = stmt.Close() }()
	for _, r := range recs {
		bays, err := json.Marshal(r.Bays)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := stmt.ExecContext(ctx, runID, r.TimeIndex, r.TimestepType,
			r.TotalTrucks, r.TotalCars, r.TotalPowerMW, string(bays)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert t=%d: %w", r.TimeIndex, err)
		}
	}
	return tx.Commit()
}

// Query returns records matching q ordered by run and time index.
func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]Entry, error) {
	var args []any
	query := `SELECT run_id, time_index, timestep_type, total_trucks, total_cars, total_power_mw, bays
        FROM bay_records WHERE 1=1`
	if q.RunID != "" {
		query += ` AND run_id = ?`
		args = append(args, q.RunID)
	}
	if q.From > 0 {
		query += ` AND time_index >= ?`
		args = append(args, q.From)
	}
	if q.To > 0 {
		query += ` AND time_index <= ?`
		args = append(args, q.To)
	}
	if q.TimestepType != "" {
		query += ` AND timestep_type = ?`
		args = append(args, q.TimestepType)
	}
	query += ` ORDER BY run_id, time_index`
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []Entry
	for rows.Next() {
		var e Entry
		var bays string
		if err := rows.Scan(&e.RunID, &e.TimeIndex, &e.TimestepType,
			&e.TotalTrucks, &e.TotalCars, &e.TotalPowerMW, &bays); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(bays), &e.Bays); err != nil {
			return nil, fmt.Errorf("unmarshal bays: %w", err)
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
