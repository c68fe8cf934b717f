package textdiff

import "errors"

// ErrInvalidInput is returned when before, after, or name is missing.
var ErrInvalidInput = errors.New("textdiff: invalid input")

// ErrCoerce is returned when a value cannot be represented as text.
var ErrCoerce = errors.New("textdiff: value cannot be coerced to text")
