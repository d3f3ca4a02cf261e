package domain

import "errors"

// ErrNotFound is returned when a referenced task, sprint or report does not
// exist. It is surfaced to the caller unchanged; nothing in the engine
// retries it.
var ErrNotFound = errors.New("not found")
