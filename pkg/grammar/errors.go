package grammar

import "errors"

// ErrDuplicateID is returned when an identifier is already taken within a transform.
var ErrDuplicateID = errors.New("duplicate identifier")

// ErrForeignOperation is returned when an operation belongs to another transform.
var ErrForeignOperation = errors.New("operation belongs to another transform")

// ErrIndexOutOfRange is returned by SetTerm for an invalid term index.
var ErrIndexOutOfRange = errors.New("term index out of range")
