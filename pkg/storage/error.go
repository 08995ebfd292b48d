package storage

import (
	"fmt"

	"github.com/papercomputeco/forumsearch/pkg/forum"
)

// QueryError wraps a failed lookup as a forum.ErrStorage error naming the
// operation that failed.
func QueryError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", forum.ErrStorage, op, err)
}

// ConfigError reports a missing or invalid driver setting.
func ConfigError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", forum.ErrConfiguration, fmt.Sprintf(format, args...))
}
