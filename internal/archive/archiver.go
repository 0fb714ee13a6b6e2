// Package archive seals keyed plain-data records into signed, versioned blobs.
//
// A sealed archive is a compact JWS (HS256). Its payload is the protobuf
// encoding of a Record, optionally snappy-compressed. The protected header
// names the signing key, the archived class, the format version and the
// compression in use, so a reader needs no other context to restore it.
package archive

import (
	"errors"
	"fmt"
	"strings"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/golang/snappy"
)

const (
	// FormatVersion is the newest layout this package writes. Readers accept
	// every version from 1 up to it; new optional keys do not bump it.
	FormatVersion = 1

	// MinKeySize is the smallest accepted HMAC secret, in bytes
	MinKeySize = 32

	// ContentType marks the JWS as one of ours
	ContentType jose.ContentType = "userinfo-archive"
)

const (
	headerKeyID       jose.HeaderKey = "kid"
	headerType        jose.HeaderKey = "typ"
	headerClass       jose.HeaderKey = "cls"
	headerVersion     jose.HeaderKey = "ver"
	headerCompression jose.HeaderKey = "cmp"

	compressionNone   = "none"
	compressionSnappy = "snappy"
)

// Config describes the keyring of an Archiver
type Config struct {
	// ActiveKeyID selects the key new archives are signed with
	ActiveKeyID string
	// Keys maps key IDs to HMAC secrets. Retired keys stay here so older
	// archives keep opening.
	Keys        map[string][]byte
	Compression bool
}

// Archiver seals and opens archives. It is immutable and safe for concurrent use.
type Archiver struct {
	activeKeyID string
	keys        map[string][]byte
	compression bool
}

// New creates an Archiver from the given keyring
func New(cfg Config) (*Archiver, error) {
	if cfg.ActiveKeyID == "" {
		return nil, errors.New("active key ID is required")
	}

	keys := make(map[string][]byte, len(cfg.Keys))
	for id, secret := range cfg.Keys {
		if len(secret) < MinKeySize {
			return nil, fmt.Errorf("key %q is %d bytes, need at least %d", id, len(secret), MinKeySize)
		}
		keys[id] = append([]byte(nil), secret...)
	}

	if _, ok := keys[cfg.ActiveKeyID]; !ok {
		return nil, fmt.Errorf("no secret for active key %q", cfg.ActiveKeyID)
	}

	return &Archiver{
		activeKeyID: cfg.ActiveKeyID,
		keys:        keys,
		compression: cfg.Compression,
	}, nil
}

// Archive runs encode against a fresh record and seals the result under class
func (a *Archiver) Archive(class string, encode func(Encoder) error) ([]byte, error) {
	record := NewRecord()
	if err := encode(record); err != nil {
		return nil, err
	}

	payload, err := record.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	compression := compressionNone
	if a.compression {
		payload = snappy.Encode(nil, payload)
		compression = compressionSnappy
	}

	opts := (&jose.SignerOptions{}).
		WithType(ContentType).
		WithHeader(headerKeyID, a.activeKeyID).
		WithHeader(headerClass, class).
		WithHeader(headerVersion, FormatVersion).
		WithHeader(headerCompression, compression)

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: a.keys[a.activeKeyID]}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create signer: %w", err)
	}

	jws, err := signer.Sign(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to sign archive: %w", err)
	}

	compact, err := jws.CompactSerialize()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize archive: %w", err)
	}

	return []byte(compact), nil
}

// Unarchive verifies data, checks it was sealed under class and hands the
// restored record to decode. decode is never called on an archive that fails
// any check.
func (a *Archiver) Unarchive(data []byte, class string, decode func(Decoder) error) error {
	jws, err := jose.ParseSigned(strings.TrimSpace(string(data)), []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(jws.Signatures) != 1 {
		return fmt.Errorf("%w: expected one signature, got %d", ErrMalformed, len(jws.Signatures))
	}

	header := jws.Signatures[0].Protected
	secret, ok := a.keys[header.KeyID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, header.KeyID)
	}

	payload, err := jws.Verify(secret)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIntegrity, err)
	}

	if typ, _ := header.ExtraHeaders[headerType].(string); typ != string(ContentType) {
		return fmt.Errorf("%w: unexpected type %q", ErrMalformed, typ)
	}

	version, err := headerInt(header.ExtraHeaders[headerVersion])
	if err != nil {
		return fmt.Errorf("%w: version header: %v", ErrMalformed, err)
	}
	if version < 1 || version > FormatVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	if got, _ := header.ExtraHeaders[headerClass].(string); got != class {
		return fmt.Errorf("%w: want %q, got %q", ErrClassMismatch, class, got)
	}

	switch compression, _ := header.ExtraHeaders[headerCompression].(string); compression {
	case compressionNone, "":
	case compressionSnappy:
		payload, err = snappy.Decode(nil, payload)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	default:
		return fmt.Errorf("%w: unknown compression %q", ErrMalformed, compression)
	}

	record, err := UnmarshalRecord(payload)
	if err != nil {
		return err
	}

	return decode(record)
}

// headerInt reads a numeric header; JSON numbers come back as float64
func headerInt(v any) (int, error) {
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("not an integer: %v", n)
		}
		return int(n), nil
	case int:
		return n, nil
	case nil:
		return 0, errors.New("missing")
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
