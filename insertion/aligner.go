package insertion

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/sofiaff/imfusion/shell"
)

// Aligner maps sequencing reads against an augmented reference and derives
// insertions from the resulting fusion calls. Implementations wrap one
// external aligner each.
type Aligner interface {
	// Dependencies lists the external binaries the aligner invokes. The
	// list reflects the configured feature set.
	Dependencies() []string
	// IdentifyInsertions aligns the given reads and returns the derived
	// insertions, filtered and FFPM-normalized. fastq2Path is empty for
	// single-end data. Aligner output files are written under outputDir.
	// An aligner run that produces no fusions yields a nil slice and no
	// error.
	IdentifyInsertions(ctx context.Context, fastqPath, fastq2Path, outputDir string) ([]Insertion, error)
}

// Options configures an aligner independently of which external tool backs
// it. Zero values are not useful; start from DefaultOptions.
type Options struct {
	// Threads passed to the external aligner.
	Threads int
	// MinFlank is the minimum anchor length on either side of a fusion
	// boundary.
	MinFlank int
	// ExtraOpts are caller-supplied flags merged over the fixed ones.
	ExtraOpts shell.Options
	// Assemble runs a reference-guided transcript assembly after
	// alignment.
	Assemble     bool
	AssembleOpts shell.Options
	// Filter toggles; see the filter functions.
	FilterFeatures    bool
	FilterOrientation bool
	BlacklistedGenes  []string
}

// DefaultOptions holds the documented defaults.
var DefaultOptions = Options{
	Threads:           1,
	MinFlank:          12,
	FilterFeatures:    true,
	FilterOrientation: true,
}

// Factory builds an aligner over the reference rooted at base.
type Factory func(base string, opts Options) (Aligner, error)

// Registry maps aligner names to factories. It is constructed explicitly
// by the caller and passed down; there is no package-level registry.
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
// the registered aligners.
func (r *Registry) Get(name string) (Factory, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, errors.Errorf("unknown aligner %q (available: %s)",
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
