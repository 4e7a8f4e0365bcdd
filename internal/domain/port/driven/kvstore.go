package driven

import "context"

// KVStore defines the driven port for durable key/value persistence.
// Values are opaque byte payloads replaced wholesale on every Save; there are
// no partial updates. Load returns (nil, nil) when the key does not exist.
type KVStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
