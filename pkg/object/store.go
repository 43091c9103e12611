package object

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zlib"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Store is a content-addressed loose object store with a 2-character
// fan-out directory layout: objects/ab/cdef0123...
//
// Objects are framed, hashed and zlib-compressed exactly as Git stores
// loose objects. Nothing is cached: every call goes to disk.
type Store struct {
	root   string
	logger *zap.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for debug events.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger.Named("store")
		}
	}
}

// NewStore creates a Store rooted at the given directory. The objects/
// subdirectory is created lazily on first write.
func NewStore(root string, opts ...StoreOption) *Store {
	s := &Store{root: root, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) objectsDir() string {
	return filepath.Join(s.root, "objects")
}

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.objectsDir(), string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	if !h.Valid() {
		return false
	}
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Sum returns the id obj would be stored under without writing anything.
func (s *Store) Sum(obj Object) (Hash, error) {
	raw, err := Marshal(obj)
	if err != nil {
		return "", err
	}
	return Sum(raw), nil
}

// Write serializes and stores obj, returning its content hash.
func (s *Store) Write(obj Object) (Hash, error) {
	payload, err := EncodePayload(obj)
	if err != nil {
		return "", fmt.Errorf("object write: %w", err)
	}
	return s.WriteRaw(obj.Type(), payload)
}

// WriteRaw stores an already-encoded payload of the given kind. Writing
// content that is already present is a no-op. Writes are atomic: data is
// compressed into a temp file in the bucket and then renamed into place, so
// concurrent writers of the same object never observe a partial file.
func (s *Store) WriteRaw(objType ObjectType, data []byte) (Hash, error) {
	raw := Frame(objType, data)
	h := Sum(raw)

	// Fast path: already exists.
	if s.Has(h) {
		s.logger.Debug("object exists", zap.String("hash", string(h)), zap.String("type", string(objType)))
		return h, nil
	}

	dir := filepath.Join(s.objectsDir(), string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object write mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	zw := zlib.NewWriter(tmp)
	_, werr := zw.Write(raw)
	werr = multierr.Combine(werr, zw.Close(), tmp.Chmod(0o444), tmp.Close())
	if werr != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write: %w", werr)
	}

	if err := os.Rename(tmpName, s.objectPath(h)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write rename: %w", err)
	}

	s.logger.Debug("object stored",
		zap.String("hash", string(h)),
		zap.String("type", string(objType)),
		zap.Int("size", len(data)),
	)
	return h, nil
}

// readFramed returns the decompressed framed bytes stored for h.
func (s *Store) readFramed(h Hash) (_ []byte, retErr error) {
	if !h.Valid() {
		return nil, fmt.Errorf("object read %q: invalid id: %w", h, ErrObjectNotFound)
	}
	f, err := os.Open(s.objectPath(h))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("object read %s: %w", h, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("object read %s: %w", h, err)
	}
	defer func() {
		retErr = multierr.Append(retErr, f.Close())
	}()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("object read %s: %w", h, malformed("zlib: %v", err))
	}
	defer func() {
		retErr = multierr.Append(retErr, zr.Close())
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, zr); err != nil {
		return nil, fmt.Errorf("object read %s: %w", h, malformed("zlib: %v", err))
	}
	return buf.Bytes(), nil
}

// ReadRaw retrieves an object by hash, returning its type and payload.
func (s *Store) ReadRaw(h Hash) (ObjectType, []byte, error) {
	raw, err := s.readFramed(h)
	if err != nil {
		return "", nil, err
	}
	objType, payload, err := Unframe(raw)
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}
	return objType, payload, nil
}

// Read retrieves and decodes an object by hash.
func (s *Store) Read(h Hash) (Object, error) {
	objType, payload, err := s.ReadRaw(h)
	if err != nil {
		return nil, err
	}
	obj, err := DecodePayload(objType, payload)
	if err != nil {
		return nil, fmt.Errorf("object read %s: %w", h, err)
	}
	return obj, nil
}

// ListPrefix returns the sorted ids of stored objects starting with prefix.
// Only the bucket named by the first two characters is scanned.
func (s *Store) ListPrefix(prefix string) ([]Hash, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if len(prefix) < 2 || len(prefix) > HashHexSize || !IsHex(prefix) {
		return nil, fmt.Errorf("list prefix: invalid prefix %q", prefix)
	}

	bucket := prefix[:2]
	entries, err := os.ReadDir(filepath.Join(s.objectsDir(), bucket))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list prefix %s: %w", prefix, err)
	}

	rest := prefix[2:]
	var out []Hash
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || len(name) != HashHexSize-2 || !strings.HasPrefix(name, rest) {
			continue
		}
		h := Hash(bucket + name)
		if !h.Valid() {
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// WriteBlob stores a Blob.
func (s *Store) WriteBlob(b *Blob) (Hash, error) { return s.Write(b) }

// WriteTree stores a Tree.
func (s *Store) WriteTree(tr *Tree) (Hash, error) { return s.Write(tr) }

// WriteCommit stores a Commit.
func (s *Store) WriteCommit(c *Commit) (Hash, error) { return s.Write(c) }

// WriteTag stores a Tag.
func (s *Store) WriteTag(t *Tag) (Hash, error) { return s.Write(t) }

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	obj, err := s.readKind(h, TypeBlob)
	if err != nil {
		return nil, err
	}
	return obj.(*Blob), nil
}

// ReadTree reads and deserializes a Tree.
func (s *Store) ReadTree(h Hash) (*Tree, error) {
	obj, err := s.readKind(h, TypeTree)
	if err != nil {
		return nil, err
	}
	return obj.(*Tree), nil
}

// ReadCommit reads and deserializes a Commit.
func (s *Store) ReadCommit(h Hash) (*Commit, error) {
	obj, err := s.readKind(h, TypeCommit)
	if err != nil {
		return nil, err
	}
	return obj.(*Commit), nil
}

// ReadTag reads and deserializes a Tag.
func (s *Store) ReadTag(h Hash) (*Tag, error) {
	obj, err := s.readKind(h, TypeTag)
	if err != nil {
		return nil, err
	}
	return obj.(*Tag), nil
}

func (s *Store) readKind(h Hash, want ObjectType) (Object, error) {
	obj, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if obj.Type() != want {
		return nil, &KindMismatchError{Hash: h, Want: want, Found: obj.Type()}
	}
	return obj, nil
}
