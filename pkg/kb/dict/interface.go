package dict

// Dictionary maps term keys to compact uint64 IDs and back.
type Dictionary interface {
	// GetOrCreateID gets the ID for a key, creating a new ID if it doesn't exist.
	GetOrCreateID(key string) (uint64, error)

	// GetIDs resolves many keys at once, creating IDs as needed.
	GetIDs(keys []string) ([]uint64, error)

	// GetID gets the ID for a key without creating one.
	GetID(key string) (uint64, error)

	// GetString gets the key for an ID.
	GetString(id uint64) (string, error)

	// Close releases resources.
	Close() error
}
