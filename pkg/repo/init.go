package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/grit/pkg/object"
)

// Init creates a new grit repository at path. The worktree must be absent
// or an empty directory. It creates the .git/ layout (objects/, refs/heads/,
// refs/tags/, HEAD, config, description) and returns the opened repository.
func Init(path string) (*Repository, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("init: abs path: %w", err)
	}

	if info, err := os.Stat(abs); err == nil {
		if !info.IsDir() {
			return nil, fmt.Errorf("init: %q is not a directory", abs)
		}
		entries, err := os.ReadDir(abs)
		if err != nil {
			return nil, fmt.Errorf("init: %w", err)
		}
		if len(entries) > 0 {
			return nil, fmt.Errorf("init: %q is not empty", abs)
		}
	} else if os.IsNotExist(err) {
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %q: %w", abs, err)
		}
	} else {
		return nil, fmt.Errorf("init: %w", err)
	}

	gitDir := filepath.Join(abs, ".git")
	dirs := []string{
		filepath.Join(gitDir, "objects"),
		filepath.Join(gitDir, "refs", "heads"),
		filepath.Join(gitDir, "refs", "tags"),
		filepath.Join(gitDir, "info"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	desc := "Unnamed repository; edit this file 'description' to name the repository.\n"
	if err := os.WriteFile(filepath.Join(gitDir, "description"), []byte(desc), 0o644); err != nil {
		return nil, fmt.Errorf("init: write description: %w", err)
	}
	if err := os.WriteFile(filepath.Join(gitDir, "HEAD"), []byte("ref: refs/heads/main\n"), 0o644); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}

	r := &Repository{
		Worktree: abs,
		GitDir:   gitDir,
		Config:   DefaultConfig(),
		Store:    object.NewStore(gitDir),
	}
	if err := r.WriteConfig(r.Config); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	return r, nil
}

// Open searches upward from path for a .git/ directory, loads the config,
// and opens the repository. ErrNotARepository is returned when the search
// reaches the filesystem root.
func Open(path string) (*Repository, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		gitDir := filepath.Join(cur, ".git")
		info, err := os.Stat(gitDir)
		if err == nil && info.IsDir() {
			cfg, err := ReadConfig(filepath.Join(gitDir, "config"))
			if err != nil {
				return nil, fmt.Errorf("open %q: %w", cur, err)
			}
			if cfg.Core.RepositoryFormatVersion != 0 {
				return nil, fmt.Errorf("open %q: %w: %d", cur,
					ErrUnsupportedFormatVersion, cfg.Core.RepositoryFormatVersion)
			}
			return &Repository{
				Worktree: cur,
				GitDir:   gitDir,
				Config:   cfg,
				Store:    object.NewStore(gitDir),
			}, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open %q: %w (searched up to /)", abs, ErrNotARepository)
		}
		cur = parent
	}
}
