package usermeta

import "context"

// Repository stores free-form per-user key/value pairs.
type Repository interface {
	Get(ctx context.Context, userID, key string) (value string, ok bool, err error)
	// Set creates or overwrites the value.
	Set(ctx context.Context, userID, key, value string) error
	// Add writes the value only if the key is absent and reports whether it did.
	Add(ctx context.Context, userID, key, value string) (bool, error)
	// Delete removes the key and reports whether it existed.
	Delete(ctx context.Context, userID, key string) (bool, error)
}
