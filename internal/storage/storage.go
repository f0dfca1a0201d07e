package storage

import (
	"context"
	"errors"

	"github.com/narralabs/narramancer/pkg/state"
)

// ErrStoreFailure marks persistence failures. A turn that hits one must
// not silently lose the session's pending roll; the engine surfaces it
// and leaves retry to the caller.
var ErrStoreFailure = errors.New("session store failure")

// Storage persists sessions keyed by their externally supplied id.
// LoadSession returns (nil, nil) for an unknown id.
type Storage interface {
	Ping(ctx context.Context) error
	Close() error

	SaveSession(ctx context.Context, s *state.Session) error
	LoadSession(ctx context.Context, id string) (*state.Session, error)
	DeleteSession(ctx context.Context, id string) error
}
