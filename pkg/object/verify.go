package object

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// VerifyReport summarizes a full-store integrity check.
type VerifyReport struct {
	Objects int
	Corrupt []CorruptObject
}

// CorruptObject is a stored object that failed verification.
type CorruptObject struct {
	Hash Hash
	Err  error
}

// OK reports whether every object verified.
func (r *VerifyReport) OK() bool { return len(r.Corrupt) == 0 }

// Verify re-reads every loose object, checks that its content hashes to its
// file name, and decodes it. Objects are checked concurrently.
func (s *Store) Verify(ctx context.Context) (*VerifyReport, error) {
	hashes, err := s.allHashes()
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	report := &VerifyReport{Objects: len(hashes)}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, h := range hashes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if verr := s.verifyOne(h); verr != nil {
				s.logger.Warn("corrupt object", zap.String("hash", string(h)), zap.Error(verr))
				mu.Lock()
				report.Corrupt = append(report.Corrupt, CorruptObject{Hash: h, Err: verr})
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	sort.Slice(report.Corrupt, func(i, j int) bool {
		return report.Corrupt[i].Hash < report.Corrupt[j].Hash
	})
	return report, nil
}

func (s *Store) verifyOne(h Hash) error {
	raw, err := s.readFramed(h)
	if err != nil {
		return err
	}
	if got := Sum(raw); got != h {
		return malformed("content hashes to %s", got)
	}
	_, err = Unmarshal(raw)
	return err
}

func (s *Store) allHashes() ([]Hash, error) {
	buckets, err := os.ReadDir(s.objectsDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var out []Hash
	for _, b := range buckets {
		if !b.IsDir() || len(b.Name()) != 2 || !IsHex(b.Name()) {
			continue
		}
		found, err := s.ListPrefix(b.Name())
		if err != nil {
			return nil, fmt.Errorf("bucket %s: %w", filepath.Join("objects", b.Name()), err)
		}
		out = append(out, found...)
	}
	return out, nil
}
