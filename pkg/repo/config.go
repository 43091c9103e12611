package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
)

// SupportedRepositoryFormatVersion is the only core.repositoryformatversion
// this implementation understands.
const SupportedRepositoryFormatVersion = 0

// Config mirrors the [core] section of .git/config. That subset of Git's
// config syntax is also valid TOML; other sections are ignored on read.
type Config struct {
	Core CoreConfig `toml:"core"`
}

// CoreConfig holds the [core] keys written on init.
type CoreConfig struct {
	RepositoryFormatVersion int  `toml:"repositoryformatversion"`
	FileMode                bool `toml:"filemode"`
	Bare                    bool `toml:"bare"`
}

// DefaultConfig returns the configuration written by Init.
func DefaultConfig() *Config {
	return &Config{Core: CoreConfig{
		RepositoryFormatVersion: SupportedRepositoryFormatVersion,
		FileMode:                false,
		Bare:                    false,
	}}
}

func configPath(gitDir string) string {
	return filepath.Join(gitDir, "config")
}

// ReadConfig reads and validates .git/config.
func ReadConfig(gitDir string) (*Config, error) {
	path := configPath(gitDir)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: configuration file missing: %s", path)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		// Files written by git itself carry subsections and bare strings that
		// are not TOML; only [core] matters here.
		cfg = Config{}
		md, err = toml.Decode(coreSection(string(data)), &cfg)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	if !md.IsDefined("core", "repositoryformatversion") {
		return nil, fmt.Errorf("read config: core.repositoryformatversion is not set")
	}
	if v := cfg.Core.RepositoryFormatVersion; v != SupportedRepositoryFormatVersion {
		return nil, fmt.Errorf("read config: %w: repositoryformatversion %d", ErrUnsupportedRepositoryFormat, v)
	}
	return &cfg, nil
}

// coreSection extracts the [core] keys of a git-style config as a TOML
// document. Keys are lowercased, the last assignment wins, a bare key means
// true, and values TOML cannot represent are dropped.
func coreSection(data string) string {
	var keys []string
	values := make(map[string]string)
	inCore := false
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' || line[0] == ';' {
			continue
		}
		if line[0] == '[' {
			inCore = strings.EqualFold(line, "[core]")
			continue
		}
		if !inCore {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			v = "true"
		}
		key := strings.ToLower(strings.TrimSpace(k))
		entry := key + " = " + strings.TrimSpace(v)
		if _, err := toml.Decode(entry, &map[string]any{}); err != nil {
			continue
		}
		if _, seen := values[key]; !seen {
			keys = append(keys, key)
		}
		values[key] = entry
	}

	var b strings.Builder
	b.WriteString("[core]\n")
	for _, k := range keys {
		b.WriteString(values[k])
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteConfig atomically writes .git/config.
func WriteConfig(gitDir string, cfg *Config) (retErr error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tmp, err := os.CreateTemp(gitDir, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if retErr != nil {
			os.Remove(tmpName)
		}
	}()

	enc := toml.NewEncoder(tmp)
	enc.Indent = "\t"
	if err := multierr.Combine(enc.Encode(cfg), tmp.Close()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpName, configPath(gitDir)); err != nil {
		return fmt.Errorf("write config: rename: %w", err)
	}
	return nil
}
