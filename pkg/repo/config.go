package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds repository-local settings from .git/config: scalar key/value
// pairs grouped into sections.
type Config struct {
	Core CoreConfig `toml:"core"`
	User UserConfig `toml:"user"`
}

// CoreConfig is the [core] section. RepositoryFormatVersion must be 0.
type CoreConfig struct {
	RepositoryFormatVersion int  `toml:"repositoryformatversion"`
	FileMode                bool `toml:"filemode"`
	Bare                    bool `toml:"bare"`
}

// UserConfig is the [user] section, consumed for commit authorship.
type UserConfig struct {
	Name  string `toml:"name,omitempty"`
	Email string `toml:"email,omitempty"`
}

// DefaultConfig returns the config written into a fresh repository.
func DefaultConfig() *Config {
	return &Config{
		Core: CoreConfig{
			RepositoryFormatVersion: 0,
			FileMode:                false,
			Bare:                    false,
		},
	}
}

// ReadConfig parses a config file. A missing file is an error: repositories
// are created with a config, so absence means a broken control directory.
func ReadConfig(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return &cfg, nil
}

// WriteConfig atomically writes .git/config.
func (r *Repository) WriteConfig(cfg *Config) error {
	tmp, err := os.CreateTemp(r.GitDir, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: close: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(r.GitDir, "config")); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: rename: %w", err)
	}
	return nil
}

// Author formats "Name <email>" from the [user] section, falling back to a
// placeholder identity when unset.
func (c *Config) Author() string {
	name := c.User.Name
	if name == "" {
		name = "unknown"
	}
	email := c.User.Email
	if email == "" {
		email = "unknown@localhost"
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
