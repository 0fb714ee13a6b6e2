package archive

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingKey is returned when a required key is absent from a record
	ErrMissingKey = errors.New("archive key not found")
	// ErrWrongType is returned when a key holds a value of another kind
	ErrWrongType = errors.New("archive value has unexpected type")
	// ErrUnsupportedValue is returned when encoding anything other than plain data
	ErrUnsupportedValue = errors.New("archive value is not plain data")

	ErrMalformed          = errors.New("malformed archive")
	ErrIntegrity          = errors.New("archive integrity check failed")
	ErrUnknownKey         = errors.New("archive signed with unknown key")
	ErrUnsupportedVersion = errors.New("unsupported archive format version")
	ErrClassMismatch      = errors.New("archive class mismatch")
)

// KeyError reports a failure tied to a single record key
type KeyError struct {
	Key string
	Err error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("archive key %q: %v", e.Key, e.Err)
}

func (e *KeyError) Unwrap() error {
	return e.Err
}
