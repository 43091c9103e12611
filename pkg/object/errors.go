package object

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedObject   = errors.New("malformed object")
	ErrUnknownObjectKind = errors.New("unknown object kind")
	ErrObjectNotFound    = errors.New("object not found")
)

// KindMismatchError reports an object whose kind is not the one requested.
// It matches ErrObjectNotFound: there is no object of the wanted kind.
type KindMismatchError struct {
	Name  string
	Hash  Hash
	Want  ObjectType
	Found ObjectType
}

func (e *KindMismatchError) Error() string {
	if e == nil {
		return "<nil>"
	}
	name := e.Name
	if name == "" {
		name = string(e.Hash)
	}
	return fmt.Sprintf("no such %s %q: object %s is a %s", e.Want, name, e.Hash, e.Found)
}

func (e *KindMismatchError) Is(target error) bool {
	return target == ErrObjectNotFound
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedObject, fmt.Sprintf(format, args...))
}
