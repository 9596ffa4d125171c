package kvstore

import (
	"errors"
	"fmt"
)

// Storage errors.
var (
	ErrNotFound      = errors.New("key not found")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// Store is a byte-oriented key-value store.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) ([]byte, error)

	// Set replaces the value for key.
	Set(key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Close releases backend resources.
	Close() error
}

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Config selects and configures a backend.
type Config struct {
	// Driver is one of DriverMemory, DriverFile or DriverSQLite.
	Driver string `yaml:"driver"`

	// Path is the directory (file) or database path (sqlite).
	Path string `yaml:"path"`

	// Quota limits the size of a single value in bytes. Zero means unlimited.
	Quota int `yaml:"quota"`
}

// DefaultConfig returns an unlimited in-memory configuration.
func DefaultConfig() Config {
	return Config{Driver: DriverMemory}
}

// Open creates the backend described by cfg.
func Open(cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)

	switch cfg.Driver {
	case "", DriverMemory:
		s = NewMemory()
	case DriverFile:
		s, err = NewFile(cfg.Path)
	case DriverSQLite:
		s, err = NewSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Quota > 0 {
		s = NewLimited(s, cfg.Quota)
	}
	return s, nil
}
