// Package session tracks which refresh-token ids are currently redeemable.
//
// A session is the pair (user id, token id). It lives until it is removed or
// until its TTL, which callers set to the remaining lifetime of the refresh
// token, runs out.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrStorageUnavailable wraps every failure of the backing store, timeouts included.
var ErrStorageUnavailable = errors.New("session storage unavailable")

type Store interface {
	// Save registers tokenID for userID. A non-positive ttl stores nothing.
	Save(ctx context.Context, userID, tokenID string, ttl time.Duration) error
	Exists(ctx context.Context, userID, tokenID string) (bool, error)
	// Remove deletes the session and reports whether it existed. When several
	// callers race on the same session exactly one of them gets true.
	Remove(ctx context.Context, userID, tokenID string) (bool, error)
	// RemoveAll deletes every session of userID and returns how many were live.
	RemoveAll(ctx context.Context, userID string) (int, error)
	// Active lists the live token ids of userID.
	Active(ctx context.Context, userID string) ([]string, error)
	Close() error
}
