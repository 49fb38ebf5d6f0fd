package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/chequeflow/internal/approval/entity"
	"github.com/shandysiswandi/chequeflow/internal/pkg/goerror"
	"github.com/shandysiswandi/chequeflow/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{
		conn: conn,
		ins:  ins,
	}
}

// Migrate applies the embedded migrations that are not recorded yet, in
// file name order.
func (s *DB) Migrate(ctx context.Context) error {
	_, err := s.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS approval_migrations (
			filename   TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("approval/db: create migrations table: %w", err)
	}

	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("approval/db: read migrations: %w", err)
	}
	slices.SortFunc(entries, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		var applied bool
		err = s.conn.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM approval_migrations WHERE filename = $1)`, entry.Name(),
		).Scan(&applied)
		if err != nil {
			return fmt.Errorf("approval/db: check migration %s: %w", entry.Name(), err)
		}
		if applied {
			continue
		}

		data, err := fs.ReadFile(migrationsFS, "migrations/"+entry.Name())
		if err != nil {
			return fmt.Errorf("approval/db: read migration %s: %w", entry.Name(), err)
		}

		err = pgx.BeginFunc(ctx, s.conn, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(data)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO approval_migrations (filename) VALUES ($1)`, entry.Name())
			return err
		})
		if err != nil {
			return fmt.Errorf("approval/db: apply migration %s: %w", entry.Name(), err)
		}

		slog.InfoContext(ctx, "applied migration", "file", entry.Name())
	}

	return nil
}

// - 23505 unique violation → goerror.ErrConflict
// - 40001 serialization_failure, 40P01 deadlock_detected → returned as is, the caller retries
func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("approval.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, entity.ErrDecisionAlreadyRecorded) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
