// Package reference models the on-disk layout of an augmented reference
// built by imfusion-build: the host genome with the transposon sequence
// appended, the matching annotation, and aligner index files. A Reference
// is created once by an indexer and is read-only afterwards.
package reference

import (
	"bufio"
	"context"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/pkg/errors"
)

// Reference describes the base directory of an augmented reference.
type Reference struct {
	base string
}

// New returns a Reference rooted at the given directory.
func New(base string) Reference {
	return Reference{base: base}
}

// Path returns the base directory.
func (r Reference) Path() string { return r.base }

// FastaPath returns the path of the augmented genome FASTA.
func (r Reference) FastaPath() string { return filepath.Join(r.base, "reference.fa") }

// GtfPath returns the path of the reference annotation.
func (r Reference) GtfPath() string { return filepath.Join(r.base, "reference.gtf") }

// TransposonPath returns the path of the transposon sequence FASTA.
func (r Reference) TransposonPath() string { return filepath.Join(r.base, "transposon.fa") }

// FeaturesPath returns the path of the transposon feature table.
func (r Reference) FeaturesPath() string { return filepath.Join(r.base, "features.txt") }

// IndexPath returns the base path of the genome alignment index.
func (r Reference) IndexPath() string { return filepath.Join(r.base, "reference") }

// TransposonName returns the sequence name under which the transposon was
// added to the augmented genome: the header of the single record in
// transposon.fa.
func (r Reference) TransposonName(ctx context.Context) (string, error) {
	in, err := file.Open(ctx, r.TransposonPath())
	if err != nil {
		return "", err
	}
	defer in.Close(ctx) // nolint: errcheck
	sc := bufio.NewScanner(in.Reader(ctx))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, ">") {
			break
		}
		name := strings.TrimPrefix(line, ">")
		if i := strings.IndexAny(name, " \t"); i >= 0 {
			name = name[:i]
		}
		return name, nil
	}
	if err := sc.Err(); err != nil {
		return "", errors.Wrapf(err, "read %s", r.TransposonPath())
	}
	return "", errors.Errorf("%s: no FASTA header found", r.TransposonPath())
}
