package kvstore

import "fmt"

// Limited rejects values larger than a fixed quota.
type Limited struct {
	Store
	quota int
}

// NewLimited wraps s so that Set fails with ErrQuotaExceeded for values
// larger than quota bytes.
func NewLimited(s Store, quota int) *Limited {
	return &Limited{Store: s, quota: quota}
}

// Quota returns the configured limit in bytes.
func (l *Limited) Quota() int {
	return l.quota
}

// Set stores value if it fits within the quota.
func (l *Limited) Set(key string, value []byte) error {
	if len(value) > l.quota {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrQuotaExceeded, len(value), l.quota)
	}
	return l.Store.Set(key, value)
}

var _ Store = (*Limited)(nil)
