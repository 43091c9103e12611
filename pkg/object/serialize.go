package object

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Framing
// ---------------------------------------------------------------------------

func frameHeader(objType ObjectType, n int) []byte {
	return []byte(fmt.Sprintf("%s %d\x00", objType, n))
}

// Frame wraps payload in the "type len\0" envelope.
func Frame(objType ObjectType, payload []byte) []byte {
	header := frameHeader(objType, len(payload))
	out := make([]byte, 0, len(header)+len(payload))
	out = append(out, header...)
	return append(out, payload...)
}

// Unframe splits a framed object into its kind and payload. The declared
// length must match the bytes that follow the NUL exactly.
func Unframe(raw []byte) (ObjectType, []byte, error) {
	spc := bytes.IndexByte(raw, ' ')
	if spc < 0 {
		return "", nil, malformed("header has no kind terminator")
	}
	nul := indexFrom(raw, 0, spc)
	if nul < 0 {
		return "", nil, malformed("header has no NUL terminator")
	}
	objType, err := ParseObjectType(string(raw[:spc]))
	if err != nil {
		return "", nil, err
	}

	lenField := string(raw[spc+1 : nul])
	length, err := strconv.Atoi(lenField)
	if err != nil || !canonicalDecimal(lenField) {
		return "", nil, malformed("invalid length %q", lenField)
	}
	payload := raw[nul+1:]
	if len(payload) != length {
		return "", nil, malformed("bad length (header=%d, actual=%d)", length, len(payload))
	}
	return objType, payload, nil
}

// canonicalDecimal reports whether s is a base-10 number with no sign and
// no leading zeros.
func canonicalDecimal(s string) bool {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Marshal returns the canonical framed bytes of obj.
func Marshal(obj Object) ([]byte, error) {
	payload, err := EncodePayload(obj)
	if err != nil {
		return nil, err
	}
	return Frame(obj.Type(), payload), nil
}

// Unmarshal decodes framed bytes into a typed object.
func Unmarshal(raw []byte) (Object, error) {
	objType, payload, err := Unframe(raw)
	if err != nil {
		return nil, err
	}
	return DecodePayload(objType, payload)
}

// EncodePayload serializes obj without its envelope.
func EncodePayload(obj Object) ([]byte, error) {
	switch o := obj.(type) {
	case *Blob:
		return MarshalBlob(o), nil
	case *Tree:
		return MarshalTree(o)
	case *Commit:
		return MarshalKVLM(&o.KVLM)
	case *Tag:
		return MarshalKVLM(&o.KVLM)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownObjectKind, obj)
	}
}

// DecodePayload parses an unframed payload of the given kind.
func DecodePayload(objType ObjectType, payload []byte) (Object, error) {
	switch objType {
	case TypeBlob:
		return UnmarshalBlob(payload), nil
	case TypeTree:
		return UnmarshalTree(payload)
	case TypeCommit:
		k, err := UnmarshalKVLM(payload)
		if err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}
		return &Commit{KVLM: *k}, nil
	case TypeTag:
		k, err := UnmarshalKVLM(payload)
		if err != nil {
			return nil, fmt.Errorf("tag: %w", err)
		}
		return &Tag{KVLM: *k}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownObjectKind, objType)
	}
}

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) *Blob {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}
}

// ---------------------------------------------------------------------------
// Tree
// ---------------------------------------------------------------------------

// MarshalTree serializes a Tree in entry order. Each entry is
//
//	<mode> SP <path> NUL <20-byte binary id>
func MarshalTree(tr *Tree) ([]byte, error) {
	var buf bytes.Buffer
	for i, e := range tr.Entries {
		if !validTreeMode(e.Mode) {
			return nil, malformed("tree entry %d: invalid mode %q", i, e.Mode)
		}
		if e.Path == "" || strings.IndexByte(e.Path, 0) >= 0 {
			return nil, malformed("tree entry %d: invalid path %q", i, e.Path)
		}
		raw, err := e.Target.Raw()
		if err != nil {
			return nil, malformed("tree entry %d (%s): %v", i, e.Path, err)
		}
		buf.WriteString(e.Mode)
		buf.WriteByte(' ')
		buf.WriteString(e.Path)
		buf.WriteByte(0)
		buf.Write(raw[:])
	}
	return buf.Bytes(), nil
}

// UnmarshalTree parses entries until the payload is exhausted.
func UnmarshalTree(data []byte) (*Tree, error) {
	tr := &Tree{}
	pos := 0
	for pos < len(data) {
		spc := indexFrom(data, ' ', pos)
		if spc < 0 {
			return nil, malformed("tree: entry at offset %d has no mode terminator", pos)
		}
		if n := spc - pos; n != 5 && n != 6 {
			return nil, malformed("tree: entry at offset %d has %d-byte mode", pos, n)
		}
		nul := indexFrom(data, 0, spc)
		if nul < 0 {
			return nil, malformed("tree: entry at offset %d has no path terminator", pos)
		}
		if nul+1+HashSize > len(data) {
			return nil, malformed("tree: entry at offset %d truncated id (%d of %d bytes)", pos, len(data)-nul-1, HashSize)
		}
		target, err := HashFromRaw(data[nul+1 : nul+1+HashSize])
		if err != nil {
			return nil, malformed("tree: %v", err)
		}
		tr.Entries = append(tr.Entries, TreeEntry{
			Mode:   string(data[pos:spc]),
			Path:   string(data[spc+1 : nul]),
			Target: target,
		})
		pos = nul + 1 + HashSize
	}
	return tr, nil
}

func validTreeMode(mode string) bool {
	if len(mode) != 5 && len(mode) != 6 {
		return false
	}
	for i := 0; i < len(mode); i++ {
		if mode[i] < '0' || mode[i] > '7' {
			return false
		}
	}
	return true
}
