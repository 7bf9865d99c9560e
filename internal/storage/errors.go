package storage

import (
	"errors"
	"fmt"

	"github.com/mcoot/quickquack/internal/model"
)

// ErrEmailTaken is returned when registering an email that already exists
var ErrEmailTaken = errors.New("email already registered")

// Unavailable marks an infrastructure failure as retryable
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", model.ErrStorageUnavailable, err)
}

// WatchBuffer is the channel capacity used by change feeds
const WatchBuffer = 64
