package session

import (
	"context"
	"time"
)

// Store defines how session records are persisted and retrieved.
// Implementations (SQL, Redis) must remain stateless and opaque: the payload
// is serialized by a Codec and never interpreted by the store itself.
type Store interface {
	// Set creates or refreshes the record for key. The payload is stored with
	// an absolute expiration of now+ttl, computed from a single clock read.
	Set(ctx context.Context, key string, value map[string]any, ttl time.Duration) error

	// Get returns the payload stored under key, or (nil, nil) when the key is
	// absent or expired. Absence is not an error.
	Get(ctx context.Context, key string) (map[string]any, error)

	// Delete removes the record for key, live or expired. Deleting a key that
	// was never set succeeds.
	Delete(ctx context.Context, key string) error
}
