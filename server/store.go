package server

import (
	"context"
	"errors"
	"time"

	"github.com/existflow/ironbill/internal/model"
)

// Store errors
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// Store persists accounts, sessions and encrypted snapshots
type Store interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (model.User, error)
	UserByUsername(ctx context.Context, username string) (model.User, error)
	UserByID(ctx context.Context, id string) (model.User, error)

	CreateSession(ctx context.Context, userID, token string, expiresAt time.Time) error
	SessionByToken(ctx context.Context, token string) (model.Session, error)
	DeleteSession(ctx context.Context, token string) error

	// ListSnapshots returns snapshot metadata only; Data is left empty
	ListSnapshots(ctx context.Context, userID string) ([]model.Snapshot, error)
	GetSnapshot(ctx context.Context, userID, collection string) (model.Snapshot, error)
	PutSnapshot(ctx context.Context, userID, collection, data string) (model.Snapshot, error)
	ClearSnapshots(ctx context.Context, userID string) (int64, error)

	Close() error
}
