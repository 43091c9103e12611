package repo

import (
	"time"

	"github.com/odvcencio/wyag/pkg/object"
	"go.uber.org/zap"
)

// DefaultMinShortHash is the shortest hex prefix accepted as an abbreviated
// object id.
const DefaultMinShortHash = 4

// Repo represents an opened repository.
type Repo struct {
	RootDir string        // working directory root
	GitDir  string        // .git/ directory
	Store   *object.Store // content-addressed object store
	Config  *Config

	// MinShortHash is the minimum prefix length ResolveName treats as an
	// abbreviated id.
	MinShortHash int

	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Repo on Init or Open.
type Option func(*Repo)

// WithLogger sets the logger shared by the repository and its store.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Repo) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMinShortHash overrides DefaultMinShortHash. Values below 1 are ignored.
func WithMinShortHash(n int) Option {
	return func(r *Repo) {
		if n > 0 {
			r.MinShortHash = n
		}
	}
}

func newRepo(root, gitDir string, opts []Option) *Repo {
	r := &Repo{
		RootDir:      root,
		GitDir:       gitDir,
		MinShortHash: DefaultMinShortHash,
		logger:       zap.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.Store = object.NewStore(gitDir, object.WithLogger(r.logger))
	r.logger = r.logger.Named("repo")
	return r
}
