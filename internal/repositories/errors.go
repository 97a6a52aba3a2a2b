package repositories

import "errors"

var (
	// ErrNotFound is returned when a row does not exist
	ErrNotFound = errors.New("not found")

	// ErrDuplicateField is returned when a field's machine name collides with
	// an existing field for the same entity kind and system partition
	ErrDuplicateField = errors.New("field name already exists for this entity kind")
)
