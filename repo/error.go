package repo

import (
	"errors"

	"github.com/ardnew/mustache"
)

// ErrRepository is the class of all errors raised by this package.
var ErrRepository = mustache.NewError("repository error")

var (
	// ErrNotFound reports that no loader has a template with the requested
	// name. It matches [mustache.ErrPartialNotFound] with errors.Is.
	ErrNotFound = mustache.ErrPartialNotFound.Variant("template not found")

	ErrInvalidName = ErrRepository.Variant("invalid template name")
	ErrLoad        = ErrRepository.Variant("load failed")
	ErrStore       = ErrRepository.Variant("store failed")
)

func isNotFound(err error) bool {
	return errors.Is(err, mustache.ErrPartialNotFound)
}
