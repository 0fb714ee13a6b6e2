package userinfo

import (
	"errors"
	"fmt"

	"github.com/brizzai/federated-userinfo/internal/archive"
)

// ArchiveClass names AdditionalUserInfo archives
const ArchiveClass = "AdditionalUserInfo"

// Archive keys. They are persisted and must never change.
const (
	KeyProviderID = "providerID"
	KeyProfile    = "profile"
	KeyUsername   = "username"
	KeyNewUser    = "newUser"
)

// Archiver seals and opens keyed records. *archive.Archiver implements it.
type Archiver interface {
	Archive(class string, encode func(archive.Encoder) error) ([]byte, error)
	Unarchive(data []byte, class string, decode func(archive.Decoder) error) error
}

// DecodeError is returned whenever an archive cannot be turned back into an
// AdditionalUserInfo. Key is empty when the archive as a whole was rejected.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("failed to decode additional user info: %v", e.Err)
	}
	return fmt.Sprintf("failed to decode additional user info field %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeArchive writes u into enc. Absent optional fields are left out.
func (u *AdditionalUserInfo) EncodeArchive(enc archive.Encoder) error {
	enc.EncodeString(KeyProviderID, u.providerID)
	enc.EncodeBool(KeyNewUser, u.isNewUser)
	if u.hasUsername {
		enc.EncodeString(KeyUsername, u.username)
	}
	if u.profile != nil {
		if err := enc.EncodeObject(KeyProfile, u.profile); err != nil {
			return fmt.Errorf("failed to encode profile: %w", err)
		}
	}
	return nil
}

// DecodeArchive restores an AdditionalUserInfo from dec. It either returns a
// complete value or a *DecodeError, never both.
func DecodeArchive(dec archive.Decoder) (*AdditionalUserInfo, error) {
	providerID, err := dec.DecodeString(KeyProviderID)
	if err != nil {
		return nil, decodeError(KeyProviderID, err)
	}

	isNewUser, err := dec.DecodeBool(KeyNewUser)
	if err != nil {
		return nil, decodeError(KeyNewUser, err)
	}

	u := &AdditionalUserInfo{providerID: providerID, isNewUser: isNewUser}

	if dec.ContainsKey(KeyUsername) {
		if u.username, err = dec.DecodeString(KeyUsername); err != nil {
			return nil, decodeError(KeyUsername, err)
		}
		u.hasUsername = true
	}

	if dec.ContainsKey(KeyProfile) {
		if u.profile, err = dec.DecodeObject(KeyProfile); err != nil {
			return nil, decodeError(KeyProfile, err)
		}
	}

	return u, nil
}

// Archive seals u with a under ArchiveClass. A nil u is an error.
func Archive(a Archiver, u *AdditionalUserInfo) ([]byte, error) {
	if u == nil {
		return nil, errors.New("cannot archive nil additional user info")
	}
	return a.Archive(ArchiveClass, u.EncodeArchive)
}

// Unarchive opens data with a. Every failure, including integrity and
// version checks, comes back as a *DecodeError.
func Unarchive(a Archiver, data []byte) (*AdditionalUserInfo, error) {
	var restored *AdditionalUserInfo
	err := a.Unarchive(data, ArchiveClass, func(dec archive.Decoder) error {
		u, err := DecodeArchive(dec)
		if err != nil {
			return err
		}
		restored = u
		return nil
	})
	if err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			return nil, decodeErr
		}
		return nil, &DecodeError{Err: err}
	}
	return restored, nil
}

func decodeError(key string, err error) *DecodeError {
	return &DecodeError{Key: key, Err: err}
}
