// Package postgres stores output records in PostgreSQL using a pgx pool and
// bulk COPY.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kilianp07/baysim/core/factory"
	"github.com/kilianp07/baysim/core/model"
	"github.com/kilianp07/baysim/core/recordlog"
)

const schema = `CREATE TABLE IF NOT EXISTS %s (
    run_id TEXT NOT NULL,
    time_index INTEGER NOT NULL,
    timestep_type TEXT NOT NULL,
    total_trucks INTEGER NOT NULL,
    total_cars INTEGER NOT NULL,
    total_power_mw DOUBLE PRECISION NOT NULL,
    bays SMALLINT[] NOT NULL,
    PRIMARY KEY (run_id, time_index)
)`

var columns = []string{
	"run_id", "time_index", "timestep_type",
	"total_trucks", "total_cars", "total_power_mw", "bays",
}

// Pool is the subset of *pgxpool.Pool used by the store.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
	Close()
}

// Config holds the connection settings.
type Config struct {
	DSN   string `json:"dsn"`
	Table string `json:"table"`
}

// Store implements recordlog.Store on PostgreSQL.
type Store struct {
	pool  Pool
	table string
}

// New connects to the database and ensures the table exists.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres dsn required")
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	s, err := NewWithPool(ctx, pool, cfg.Table)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewWithPool uses an existing pool.
func NewWithPool(ctx context.Context, pool Pool, table string) (*Store, error) {
	if table == "" {
		table = "bay_records"
	}
	s := &Store{pool: pool, table: table}
	if _, err := pool.Exec(ctx, fmt.Sprintf(schema, s.ident())); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return s, nil
}

func (s *Store) ident() string {
	return pgx.Identifier{s.table}.Sanitize()
}

// Append copies the records in one COPY statement.
func (s *Store) Append(ctx context.Context, runID string, recs []model.OutputRecord) error {
	if len(recs) == 0 {
		return nil
	}
	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{s.table}, columns,
		pgx.CopyFromSlice(len(recs), func(i int) ([]any, error) {
			r := recs[i]
			bays := make([]int16, len(r.Bays))
			for j, c := range r.Bays {
				bays[j] = int16(c)
			}
			return []any{runID, r.TimeIndex, r.TimestepType,
				r.TotalTrucks, r.TotalCars, r.TotalPowerMW, bays}, nil
		}))
	if err != nil {
		return fmt.Errorf("copy records: %w", err)
	}
	if n != int64(len(recs)) {
		return fmt.Errorf("copy records: wrote %d of %d rows", n, len(recs))
	}
	return nil
}

// Query returns matching records ordered by run and time index.
func (s *Store) Query(ctx context.Context, q recordlog.Query) ([]recordlog.Entry, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if q.RunID != "" {
		add("run_id = $%d", q.RunID)
	}
	if q.From > 0 {
		add("time_index >= $%d", q.From)
	}
	if q.To > 0 {
		add("time_index <= $%d", q.To)
	}
	if q.TimestepType != "" {
		add("timestep_type = $%d", q.TimestepType)
	}
	sql := "SELECT " + strings.Join(columns, ", ") + " FROM " + s.ident()
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += " ORDER BY run_id, time_index"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []recordlog.Entry
	for rows.Next() {
		var (
			e    recordlog.Entry
			bays []int16
		)
		if err := rows.Scan(&e.RunID, &e.TimeIndex, &e.TimestepType,
			&e.TotalTrucks, &e.TotalCars, &e.TotalPowerMW, &bays); err != nil {
			return nil, err
		}
		e.Bays = make([]model.VehicleClass, len(bays))
		for i, b := range bays {
			e.Bays[i] = model.VehicleClass(b)
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func init() {
	_ = recordlog.RegisterWriter("postgres", func(conf map[string]any) (recordlog.Writer, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return New(context.Background(), c)
	})
}
