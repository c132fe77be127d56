package repository

import (
	"errors"
	"fmt"

	"github.com/vdsasi/NoteSharingApp/internal/domain"
)

// withRetry runs op and retries it once when it fails with something other
// than a domain error. Domain errors are deterministic, so repeating the
// operation cannot change the outcome; transient storage failures get one
// more chance before being surfaced wrapped in ErrStorage.
func withRetry(op func() error) error {
	err := op()
	if err == nil || isDomainErr(err) {
		return err
	}
	if err = op(); err == nil || isDomainErr(err) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrStorage, err)
}

func isDomainErr(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrForbidden) ||
		errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrAnonymous)
}
