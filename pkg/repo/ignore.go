package repo

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// IgnoreRule is one parsed ignore line. Include true means "ignore"; a
// negated ("!") rule carries false and un-ignores an earlier match.
type IgnoreRule struct {
	Pattern string
	Include bool
}

// Ignore holds the full ruleset: repository-root-scoped rules (exclude file
// and the user-global ignore file) plus per-directory rules from every
// ignore blob reachable through the index. Rule order within a scope is
// significant; the last matching rule wins.
type Ignore struct {
	Absolute []IgnoreRule
	Scoped   map[string][]IgnoreRule
}

// ReadIgnore collects ignore rules from .git/info/exclude, the user-global
// git ignore file, and every .gitignore blob recorded in the index.
func (r *Repository) ReadIgnore() (*Ignore, error) {
	ig := &Ignore{Scoped: make(map[string][]IgnoreRule)}

	if data, err := os.ReadFile(r.path("info", "exclude")); err == nil {
		ig.Absolute = append(ig.Absolute, parseIgnoreLines(string(data))...)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read ignore: %w", err)
	}

	if global := globalIgnorePath(); global != "" {
		if data, err := os.ReadFile(global); err == nil {
			ig.Absolute = append(ig.Absolute, parseIgnoreLines(string(data))...)
		}
	}

	idx, err := r.ReadIndex()
	if err != nil {
		return nil, fmt.Errorf("read ignore: %w", err)
	}
	for _, e := range idx.Entries {
		if e.Name != ".gitignore" && !strings.HasSuffix(e.Name, "/.gitignore") {
			continue
		}
		blob, err := r.Store.ReadBlob(e.Hash)
		if err != nil {
			return nil, fmt.Errorf("read ignore blob %q: %w", e.Name, err)
		}
		ig.Scoped[path.Dir(e.Name)] = parseIgnoreLines(string(blob.Data))
	}

	return ig, nil
}

// globalIgnorePath locates the user-global ignore file via the platform
// config directory, honoring the XDG_CONFIG_HOME override.
func globalIgnorePath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "git", "ignore")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "git", "ignore")
}

// parseIgnoreLine parses a single ignore line. Empty lines and comments are
// not rules; "!" negates, and a leading backslash escapes a literal "!" or
// "#".
func parseIgnoreLine(line string) (IgnoreRule, bool) {
	line = strings.TrimSpace(line)
	switch {
	case line == "" || strings.HasPrefix(line, "#"):
		return IgnoreRule{}, false
	case strings.HasPrefix(line, "!"):
		return IgnoreRule{Pattern: line[1:], Include: false}, true
	case strings.HasPrefix(line, `\`):
		return IgnoreRule{Pattern: line[1:], Include: true}, true
	default:
		return IgnoreRule{Pattern: line, Include: true}, true
	}
}

func parseIgnoreLines(content string) []IgnoreRule {
	var rules []IgnoreRule
	for _, line := range strings.Split(content, "\n") {
		if rule, ok := parseIgnoreLine(line); ok {
			rules = append(rules, rule)
		}
	}
	return rules
}

// Check reports whether a worktree-relative path is ignored. The nearest
// ancestor directory with a matching scoped rule decides; otherwise the
// root-scoped rules apply, last match winning in both cases. An absolute
// path here is a caller bug, not a recoverable condition.
func (ig *Ignore) Check(relPath string) bool {
	if path.IsAbs(relPath) || filepath.IsAbs(relPath) {
		panic(fmt.Sprintf("ignore check requires a repository-relative path, got %q", relPath))
	}

	dir := path.Dir(relPath)
	for {
		if rules, ok := ig.Scoped[dir]; ok {
			if ignored, matched := matchIgnoreRules(rules, relPath); matched {
				return ignored
			}
		}
		if dir == "." {
			break
		}
		dir = path.Dir(dir)
	}

	ignored, _ := matchIgnoreRules(ig.Absolute, relPath)
	return ignored
}

// matchIgnoreRules evaluates a rule list against the full relative path and
// returns the last matching rule's include flag.
func matchIgnoreRules(rules []IgnoreRule, relPath string) (ignored, matched bool) {
	for _, rule := range rules {
		if matchIgnorePattern(rule.Pattern, relPath) {
			ignored = rule.Include
			matched = true
		}
	}
	return ignored, matched
}

func matchIgnorePattern(pattern, target string) bool {
	if strings.Contains(pattern, "**") {
		re, err := regexp.Compile(globToRegex(pattern))
		if err != nil {
			return false
		}
		return re.MatchString(target)
	}
	ok, err := path.Match(pattern, target)
	return err == nil && ok
}

// globToRegex expands a glob with globstar support into an anchored regexp.
func globToRegex(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		if ch == '*' {
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				if i+2 < len(pattern) && pattern[i+2] == '/' {
					// Globstar directory segment: zero or more path segments.
					b.WriteString("(?:.*/)?")
					i += 2
				} else {
					b.WriteString(".*")
					i++
				}
				continue
			}
			b.WriteString("[^/]*")
			continue
		}
		if ch == '?' {
			b.WriteString("[^/]")
			continue
		}
		if strings.ContainsRune(`.+()|[]{}^$\`, rune(ch)) {
			b.WriteByte('\\')
		}
		b.WriteByte(ch)
	}
	b.WriteString("$")
	return b.String()
}
