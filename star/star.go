// Package star wraps the STAR aligner: building a STAR genome index for
// an augmented reference and identifying gene-transposon insertions from
// STAR's chimeric alignments.
package star

import (
	"path/filepath"

	"github.com/sofiaff/imfusion/reference"
)

// Reference is an augmented reference with a STAR genome index.
type Reference struct {
	reference.Reference
}

// NewReference returns a Reference rooted at the given directory.
func NewReference(base string) Reference {
	return Reference{reference.New(base)}
}

// IndexDir returns the STAR genome index directory.
func (r Reference) IndexDir() string {
	return filepath.Join(r.Path(), "index")
}
