package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schema = `
CREATE TABLE IF NOT EXISTS drawings (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	name       TEXT NOT NULL,
	version    INTEGER NOT NULL DEFAULT 1,
	document   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS drawings_owner_idx ON drawings (owner_id, updated_at DESC);
`

const drawingColumns = `id, owner_id, name, version, document, created_at, updated_at`

type Postgres struct {
	db DBTX
}

func NewPostgres(db DBTX) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the drawings table if needed.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (p *Postgres) Create(ctx context.Context, d *Drawing) error {
	row := p.db.QueryRow(ctx, `
		INSERT INTO drawings (id, owner_id, name, version, document)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		d.ID, d.OwnerID, d.Name, d.Version, d.Document)

	if err := row.Scan(&d.CreatedAt, &d.UpdatedAt); err != nil {
		if isDuplicateKeyError(err) {
			return ErrExists
		}
		return fmt.Errorf("insert drawing: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, id string) (*Drawing, error) {
	rows, err := p.db.Query(ctx, `SELECT `+drawingColumns+` FROM drawings WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get drawing: %w", err)
	}

	d, err := pgx.CollectExactlyOneRow(rows, scanDrawing)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get drawing: %w", err)
	}
	return &d, nil
}

func (p *Postgres) List(ctx context.Context, ownerID string) ([]Drawing, error) {
	rows, err := p.db.Query(ctx, `
		SELECT `+drawingColumns+` FROM drawings
		WHERE owner_id = $1
		ORDER BY updated_at DESC, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list drawings: %w", err)
	}

	drawings, err := pgx.CollectRows(rows, scanDrawing)
	if err != nil {
		return nil, fmt.Errorf("list drawings: %w", err)
	}
	return drawings, nil
}

func (p *Postgres) Update(ctx context.Context, d *Drawing, prevVersion int) error {
	row := p.db.QueryRow(ctx, `
		UPDATE drawings
		SET name = $3, version = $4, document = $5, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING created_at, updated_at`,
		d.ID, prevVersion, d.Name, d.Version, d.Document)

	err := row.Scan(&d.CreatedAt, &d.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("update drawing: %w", err)
	}

	// Nothing matched: either the drawing is gone or its version moved on
	var exists bool
	if err := p.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM drawings WHERE id = $1)`, d.ID).Scan(&exists); err != nil {
		return fmt.Errorf("update drawing: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrConflict
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM drawings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete drawing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDrawing(row pgx.CollectableRow) (Drawing, error) {
	var d Drawing
	err := row.Scan(&d.ID, &d.OwnerID, &d.Name, &d.Version, &d.Document, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
