package repository

import "errors"

// ErrNotFound is returned when a lookup by key matches no row.
var ErrNotFound = errors.New("not found")
