package handlers

import (
	"errors"

	apierrors "lyre-server/internal/api/errors"
	"lyre-server/internal/app/repository"
)

// mapStoreError converts repository errors to API errors, naming the
// resource in the 404 body.
func mapStoreError(err error, resource string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apierrors.NewNotFoundError(resource)
	}
	return err
}
