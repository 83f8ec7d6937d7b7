// Package cache persists a loaded Grammar to disk, keyed by a content hash
// of the grammar-configuration text it was built from, so that re-running
// the same configuration doesn't re-tokenize and re-parse it.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dekarrin/rezi"

	"github.com/dekarrin/parsegen/internal/ictiobus/grammar"
)

// entry is the on-disk shape of a cached Grammar: exactly the parts Load
// produces, minus firstNonterminalID, which grammar.FromParts recomputes.
type entry struct {
	G                []int
	RuleStart        []int
	Ignore           []bool
	TokenNames       []string
	NonterminalNames []string
}

// KeyFor returns the cache key for a grammar-configuration source string.
// Two sources with the same bytes always produce the same key; anything
// else, including whitespace-only changes, produces a different one.
func KeyFor(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Dir is a directory of cached compiled grammars, one file per content hash.
// The zero value is not usable; construct one with NewDir.
type Dir struct {
	path string
}

// NewDir returns a Dir rooted at path. The directory is not created until
// the first successful Store.
func NewDir(path string) *Dir {
	return &Dir{path: path}
}

func (d *Dir) filename(key string) string {
	return filepath.Join(d.path, key+".rezi")
}

// Load returns the cached Grammar for source. A missing entry (including a
// missing cache directory) is reported as (nil, false, nil), not an error;
// only a present-but-unreadable or corrupt entry returns an error.
func (d *Dir) Load(source string) (*grammar.Grammar, bool, error) {
	data, err := os.ReadFile(d.filename(KeyFor(source)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}

	var e entry
	if _, err := rezi.DecBinary(data, &e); err != nil {
		return nil, false, fmt.Errorf("decoding cache entry: %w", err)
	}

	g := grammar.FromParts(e.G, e.RuleStart, e.Ignore, e.TokenNames, e.NonterminalNames)
	return g, true, nil
}

// Store persists g under source's content-hash key, creating the cache
// directory if it doesn't already exist.
func (d *Dir) Store(source string, g *grammar.Grammar) error {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	e := entry{
		G:                g.G,
		RuleStart:        g.RuleStart,
		Ignore:           g.Ignore,
		TokenNames:       g.TokenNames,
		NonterminalNames: g.NonterminalNames,
	}
	data := rezi.EncBinary(e)

	if err := os.WriteFile(d.filename(KeyFor(source)), data, 0o644); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}
