package object

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// HashSize is the number of raw bytes in an object id.
	HashSize = 20
	// HashHexSize is the length of the hex-encoded form.
	HashHexSize = 2 * HashSize
)

// Hash is a 40-character lowercase hex-encoded SHA-1 digest.
type Hash string

// Sum computes the id of already-framed canonical bytes. It performs no
// framing of its own.
func Sum(canonical []byte) Hash {
	sum := sha1.Sum(canonical)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashObject computes the SHA-1 of the envelope "type len\0content",
// the same digest Git assigns to a loose object.
func HashObject(objType ObjectType, data []byte) Hash {
	h := sha1.New()
	h.Write(frameHeader(objType, len(data)))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// ParseHash validates a full 40-character hex id and returns it lowercased.
func ParseHash(s string) (Hash, error) {
	s = strings.TrimSpace(s)
	if !IsFullHash(s) {
		return "", fmt.Errorf("invalid object id %q", s)
	}
	return Hash(strings.ToLower(s)), nil
}

// IsFullHash reports whether s is exactly 40 hex digits (either case).
func IsFullHash(s string) bool {
	return len(s) == HashHexSize && IsHex(s)
}

// IsHex reports whether s is a non-empty string of hex digits.
func IsHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// Valid reports whether h is a well-formed lowercase id.
func (h Hash) Valid() bool {
	return IsFullHash(string(h)) && strings.ToLower(string(h)) == string(h)
}

// Short returns the first n characters of h, or all of it when shorter.
func (h Hash) Short(n int) string {
	if n <= 0 || n >= len(h) {
		return string(h)
	}
	return string(h[:n])
}

// Raw returns the 20-byte big-endian binary form used inside tree objects.
func (h Hash) Raw() ([HashSize]byte, error) {
	var out [HashSize]byte
	if !IsFullHash(string(h)) {
		return out, fmt.Errorf("invalid object id %q", h)
	}
	if _, err := hex.Decode(out[:], []byte(h)); err != nil {
		return out, fmt.Errorf("invalid object id %q: %w", h, err)
	}
	return out, nil
}

// HashFromRaw renders 20 raw bytes as a full hex id, leading zeros included.
func HashFromRaw(raw []byte) (Hash, error) {
	if len(raw) != HashSize {
		return "", fmt.Errorf("raw object id: got %d bytes, want %d", len(raw), HashSize)
	}
	return Hash(hex.EncodeToString(raw)), nil
}
