package model

import "errors"

// ErrNotFound is returned by store lookups when the requested record does
// not exist. Callers surface it as a 404; it is never a crash.
var ErrNotFound = errors.New("not found")
