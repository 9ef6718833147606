package repo

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/odvcencio/grit/pkg/object"
)

var shortHashRe = regexp.MustCompile(`^[0-9A-Fa-f]{4,40}$`)

// ResolveName produces every object hash a human-entered token could mean:
// the literal HEAD, an abbreviated hex hash (disambiguated by scanning the
// fan-out directory), a tag, or a branch. Apart from HEAD, the rules append
// to the candidate set rather than short-circuiting, so a token naming both
// a tag and a branch surfaces as ambiguous.
func (r *Repository) ResolveName(text string) ([]object.Hash, error) {
	if text == "" {
		return nil, nil
	}

	if text == "HEAD" {
		h, err := r.ResolveRef("HEAD")
		if err != nil {
			return nil, err
		}
		if h == "" {
			return nil, nil
		}
		return []object.Hash{h}, nil
	}

	var candidates []object.Hash

	if shortHashRe.MatchString(text) {
		matches, err := r.Store.ScanPrefix(strings.ToLower(text))
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, matches...)
	}

	if h, err := r.ResolveRef("refs/tags/" + text); err != nil {
		return nil, err
	} else if h != "" {
		candidates = append(candidates, h)
	}

	if h, err := r.ResolveRef("refs/heads/" + text); err != nil {
		return nil, err
	} else if h != "" {
		candidates = append(candidates, h)
	}

	return candidates, nil
}

// Find resolves a name to exactly one object and, when a target type is
// requested, peels down to it: tags peel through their "object" header, and
// a commit peels to its tree when a tree is wanted. It returns the empty
// hash (no error) when follow is false and the type does not match, or when
// no peel rule applies.
func (r *Repository) Find(name string, want object.Type, follow bool) (object.Hash, error) {
	candidates, err := r.ResolveName(name)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: %q", ErrNoSuchReference, name)
	}
	if len(candidates) > 1 {
		return "", &AmbiguousReferenceError{Name: name, Candidates: candidates}
	}

	sha := candidates[0]
	if want == "" {
		return sha, nil
	}

	for {
		obj, err := r.Store.Read(sha)
		if err != nil {
			return "", err
		}
		if obj.Type() == want {
			return sha, nil
		}
		if !follow {
			return "", nil
		}

		switch o := obj.(type) {
		case *object.Tag:
			target, ok := o.TargetHash()
			if !ok {
				return "", fmt.Errorf("tag %s: %w: missing object header", sha, object.ErrMalformedObject)
			}
			sha = target
		case *object.Commit:
			if want != object.TypeTree {
				return "", nil
			}
			tree, ok := o.TreeHash()
			if !ok {
				return "", fmt.Errorf("commit %s: %w: missing tree header", sha, object.ErrMalformedObject)
			}
			sha = tree
		default:
			return "", nil
		}
	}
}
