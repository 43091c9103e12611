package object

import (
	"bytes"
	"fmt"
	"strings"
)

// KVLM is the key-value-list-with-message format shared by commits and
// tags: header lines of "key value" (values may continue onto following
// lines that start with a space), a blank line, then the message.
//
// Keys keep the order of their first occurrence. A key that appears more
// than once holds all of its values in the order they were added, which is
// how a merge commit keeps every parent line.
type KVLM struct {
	fields []kvlmField

	// Message is the free-form body after the blank line.
	Message []byte
}

type kvlmField struct {
	key    string
	values [][]byte
}

// Keys returns the header keys in first-occurrence order.
func (k *KVLM) Keys() []string {
	out := make([]string, 0, len(k.fields))
	for _, f := range k.fields {
		out = append(out, f.key)
	}
	return out
}

// Get returns the first value of key, or nil when absent.
func (k *KVLM) Get(key string) []byte {
	if f := k.field(key); f != nil && len(f.values) > 0 {
		return f.values[0]
	}
	return nil
}

// Values returns every value recorded for key.
func (k *KVLM) Values(key string) [][]byte {
	f := k.field(key)
	if f == nil {
		return nil
	}
	out := make([][]byte, len(f.values))
	copy(out, f.values)
	return out
}

// Has reports whether key is present.
func (k *KVLM) Has(key string) bool {
	return k.field(key) != nil
}

// Add appends value to key, creating the key at the end when new.
func (k *KVLM) Add(key string, value []byte) {
	v := append([]byte(nil), value...)
	if f := k.field(key); f != nil {
		f.values = append(f.values, v)
		return
	}
	k.fields = append(k.fields, kvlmField{key: key, values: [][]byte{v}})
}

// Set replaces all values of key with value, keeping the key's position.
func (k *KVLM) Set(key string, value []byte) {
	v := append([]byte(nil), value...)
	if f := k.field(key); f != nil {
		f.values = [][]byte{v}
		return
	}
	k.fields = append(k.fields, kvlmField{key: key, values: [][]byte{v}})
}

func (k *KVLM) field(key string) *kvlmField {
	for i := range k.fields {
		if k.fields[i].key == key {
			return &k.fields[i]
		}
	}
	return nil
}

// MarshalKVLM serializes k. Continuation lines get a leading space.
func MarshalKVLM(k *KVLM) ([]byte, error) {
	var buf bytes.Buffer
	for _, f := range k.fields {
		if f.key == "" || strings.ContainsAny(f.key, " \n") {
			return nil, malformed("kvlm: invalid key %q", f.key)
		}
		for _, v := range f.values {
			buf.WriteString(f.key)
			buf.WriteByte(' ')
			buf.Write(bytes.ReplaceAll(v, []byte("\n"), []byte("\n ")))
			buf.WriteByte('\n')
		}
	}
	buf.WriteByte('\n')
	buf.Write(k.Message)
	return buf.Bytes(), nil
}

// UnmarshalKVLM parses raw with a single forward cursor.
func UnmarshalKVLM(raw []byte) (*KVLM, error) {
	k := &KVLM{}
	pos := 0
	for {
		nl := indexFrom(raw, '\n', pos)
		if nl < 0 {
			return nil, malformed("kvlm: missing blank line before message at offset %d", pos)
		}
		spc := indexFrom(raw, ' ', pos)

		// A newline before any space is the blank separator line.
		if spc < 0 || nl < spc {
			if nl != pos {
				return nil, malformed("kvlm: header line %q has no value", raw[pos:nl])
			}
			k.Message = make([]byte, len(raw)-nl-1)
			copy(k.Message, raw[nl+1:])
			return k, nil
		}

		if spc == pos {
			return nil, malformed("kvlm: empty key at offset %d", pos)
		}
		key := string(raw[pos:spc])

		end := nl
		for end+1 < len(raw) && raw[end+1] == ' ' {
			next := indexFrom(raw, '\n', end+1)
			if next < 0 {
				return nil, malformed("kvlm: unterminated value for key %q", key)
			}
			end = next
		}

		k.Add(key, bytes.ReplaceAll(raw[spc+1:end], []byte("\n "), []byte("\n")))
		pos = end + 1
	}
}

func indexFrom(b []byte, c byte, from int) int {
	if from >= len(b) {
		return -1
	}
	i := bytes.IndexByte(b[from:], c)
	if i < 0 {
		return -1
	}
	return from + i
}

// String renders k for debugging.
func (k *KVLM) String() string {
	raw, err := MarshalKVLM(k)
	if err != nil {
		return fmt.Sprintf("<invalid kvlm: %v>", err)
	}
	return string(raw)
}
