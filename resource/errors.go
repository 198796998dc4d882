package resource

import "errors"

// ErrExceedsLimit is returned when a single memory request is larger than
// the configured limit.
var ErrExceedsLimit = errors.New("resource: request exceeds memory limit")
