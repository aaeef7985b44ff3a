package enums

import "fmt"

// StoreBackend selects where the state snapshot is persisted.
type StoreBackend string

const (
	StoreBackendFile     StoreBackend = "file"
	StoreBackendSQLite   StoreBackend = "sqlite"
	StoreBackendPostgres StoreBackend = "postgres"
	StoreBackendRedis    StoreBackend = "redis"
)

var validStoreBackends = []StoreBackend{
	StoreBackendFile,
	StoreBackendSQLite,
	StoreBackendPostgres,
	StoreBackendRedis,
}

// String implements fmt.Stringer.
func (b StoreBackend) String() string {
	return string(b)
}

// IsValid reports whether the value is a known StoreBackend.
func (b StoreBackend) IsValid() bool {
	for _, candidate := range validStoreBackends {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseStoreBackend converts raw input into a StoreBackend.
func ParseStoreBackend(value string) (StoreBackend, error) {
	for _, candidate := range validStoreBackends {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid store backend %q", value)
}
