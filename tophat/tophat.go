// Package tophat wraps the TopHat2/Bowtie toolchain: building bowtie and
// transcriptome indices for an augmented reference, and identifying
// gene-transposon insertions from TopHat2's fusion calls.
package tophat

import (
	"path/filepath"

	"github.com/sofiaff/imfusion/reference"
)

// Reference is an augmented reference with TopHat2-specific index files.
type Reference struct {
	reference.Reference
}

// NewReference returns a Reference rooted at the given directory.
func NewReference(base string) Reference {
	return Reference{reference.New(base)}
}

// TranscriptomePath returns the base path of the transcriptome index.
func (r Reference) TranscriptomePath() string {
	return filepath.Join(r.Path(), "transcriptome")
}
