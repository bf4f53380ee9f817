package repositories

import "github.com/JericoFX/advance-manager/internal/entities"

// ErrNotFound is returned when a row does not exist.
// It is the shared entities.ErrNotFound so services can match it without
// importing this package.
var ErrNotFound = entities.ErrNotFound
