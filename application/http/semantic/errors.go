package semantic

import "github.com/pkg/errors"

// ErrInvalidArgument is the cause of every rejected construction or mutation.
// Use errors.Is to test for it.
var ErrInvalidArgument = errors.New("invalid argument")
