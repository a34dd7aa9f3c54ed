// Package store persists drawings as JSON documents.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("drawing not found")
	ErrExists   = errors.New("drawing already exists")
	ErrConflict = errors.New("drawing version conflict")
)

// Drawing is a stored drawing. Document holds the encoded document.Drawing.
type Drawing struct {
	ID        string
	OwnerID   string
	Name      string
	Version   int
	Document  json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Store interface {
	Create(ctx context.Context, d *Drawing) error
	Get(ctx context.Context, id string) (*Drawing, error)
	// List returns the owner's drawings, most recently updated first.
	List(ctx context.Context, ownerID string) ([]Drawing, error)
	// Update replaces the stored drawing if its version is still prevVersion.
	Update(ctx context.Context, d *Drawing, prevVersion int) error
	Delete(ctx context.Context, id string) error
}
