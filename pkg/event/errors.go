package event

import "github.com/pkg/errors"

// ErrInvalidArgument is returned when a listener can not be registered
// because it does not take exactly one argument.
var ErrInvalidArgument = errors.New("invalid argument")
