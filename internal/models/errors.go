package models

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError represents a validation error with field and message.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e ValidationError) Is(target error) bool {
	return target == ErrValidation
}

var (
	// ErrProfileNotFound indicates no settings have been stored for a profile.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrLocalImageNotFound indicates an unknown local image id.
	ErrLocalImageNotFound = errors.New("local image not found")

	// ErrImageTooLarge indicates an upload above the configured size limit.
	ErrImageTooLarge = errors.New("image exceeds maximum upload size")

	// ErrUnsupportedImageType indicates an upload that is not png, jpeg, gif or webp.
	ErrUnsupportedImageType = errors.New("unsupported image type")

	// ErrNoValidImage indicates a provider returned nothing usable as a background.
	ErrNoValidImage = errors.New("no valid background image available")
)
