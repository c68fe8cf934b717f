package review

import "errors"

// ErrInvalidInput is returned when a request fails validation.
var ErrInvalidInput = errors.New("review: invalid input")

// ErrFileNotFound is returned when a referenced file does not exist inside
// the service's working area.
var ErrFileNotFound = errors.New("review: file not found")

// ErrNoFixes is returned by CommitFixes when the request carries no fixes.
var ErrNoFixes = errors.New("review: no fixes provided")

// ErrNoChanges is returned by CommitFixes when the written fixes leave the
// clone identical to the original.
var ErrNoChanges = errors.New("review: no changes detected in repository")
