// Package build constructs augmented references: the host genome with the
// transposon sequence appended, plus the index files a particular aligner
// needs. Index construction is delegated to external tools; this package
// owns the directory layout and the common preparation steps.
package build

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/sofiaff/imfusion/reference"
)

// Indexer builds the aligner-specific index files of a reference.
type Indexer interface {
	// Dependencies lists the external binaries the indexer invokes.
	Dependencies() []string
	// BuildIndices builds index files inside the reference directory. The
	// augmented FASTA and annotation files are already in place when this
	// is called.
	BuildIndices(ctx context.Context, ref reference.Reference) error
}

// Factory builds an indexer.
type Factory func() Indexer

// Registry maps indexer names to factories. Callers construct it
// explicitly and pass it down; there is no package-level registry.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register adds a named factory, replacing any previous entry.
func (r *Registry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// Get returns the named factory. Unknown names produce an error listing
// the registered indexers.
func (r *Registry) Get(name string) (Factory, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, errors.Errorf("unknown indexer %q (available: %s)",
			name, strings.Join(r.Names(), ", "))
	}
	return factory, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
