package build

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/pkg/errors"

	"github.com/sofiaff/imfusion/reference"
	"github.com/sofiaff/imfusion/shell"
)

// Job names the inputs for building an augmented reference.
type Job struct {
	// GenomePath is the host genome FASTA.
	GenomePath string
	// TransposonPath is the transposon FASTA, appended to the genome.
	TransposonPath string
	// GtfPath is the gene annotation for the host genome.
	GtfPath string
	// FeaturesPath is the transposon feature table.
	FeaturesPath string
	// OutputDir is the reference directory to create. It must not
	// already exist.
	OutputDir string
}

// Run builds a reference directory: it verifies the indexer's external
// dependencies, lays out the augmented FASTA and annotation files under
// job.OutputDir, and then delegates index construction to the indexer.
func Run(ctx context.Context, indexer Indexer, job Job) (reference.Reference, error) {
	ref := reference.New(job.OutputDir)
	if err := shell.CheckDependencies(indexer.Dependencies()); err != nil {
		return ref, err
	}
	if _, err := os.Stat(job.OutputDir); err == nil {
		return ref, errors.Errorf("output directory %s already exists", job.OutputDir)
	}
	if err := os.MkdirAll(job.OutputDir, 0777); err != nil {
		return ref, errors.Wrap(err, "creating output directory")
	}
	log.Printf("building reference in %s", job.OutputDir)
	if err := augmentFasta(ctx, job.GenomePath, job.TransposonPath, ref.FastaPath()); err != nil {
		return ref, err
	}
	for _, c := range []struct{ src, dst string }{
		{job.GtfPath, ref.GtfPath()},
		{job.TransposonPath, ref.TransposonPath()},
		{job.FeaturesPath, ref.FeaturesPath()},
	} {
		if err := copyFile(ctx, c.src, c.dst); err != nil {
			return ref, err
		}
	}
	if err := indexer.BuildIndices(ctx, ref); err != nil {
		return ref, err
	}
	return ref, nil
}

// augmentFasta writes the genome FASTA followed by the transposon FASTA
// to dst, inserting a newline between them if the genome does not end
// with one.
func augmentFasta(ctx context.Context, genomePath, transposonPath, dst string) error {
	out, err := file.Create(ctx, dst)
	if err != nil {
		return errors.Wrapf(err, "creating %s", dst)
	}
	var last byte
	for _, path := range []string{genomePath, transposonPath} {
		if path == transposonPath && last != 0 && last != '\n' {
			if _, err := out.Writer(ctx).Write([]byte{'\n'}); err != nil {
				return err
			}
		}
		b, err := appendFile(ctx, out.Writer(ctx), path)
		if err != nil {
			return err
		}
		last = b
	}
	return out.Close(ctx)
}

// appendFile copies path to w and returns the final byte written.
func appendFile(ctx context.Context, w io.Writer, path string) (byte, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return 0, errors.Wrapf(err, "opening %s", path)
	}
	defer in.Close(ctx) // nolint: errcheck
	var last byte
	buf := make([]byte, 1<<16)
	for {
		n, err := in.Reader(ctx).Read(buf)
		if n > 0 {
			last = buf[n-1]
			if _, werr := w.Write(buf[:n]); werr != nil {
				return last, werr
			}
		}
		if err == io.EOF {
			return last, nil
		}
		if err != nil {
			return last, errors.Wrapf(err, "reading %s", path)
		}
	}
}

func copyFile(ctx context.Context, src, dst string) error {
	in, err := file.Open(ctx, src)
	if err != nil {
		return errors.Wrapf(err, "opening %s", src)
	}
	defer in.Close(ctx) // nolint: errcheck
	out, err := file.Create(ctx, dst)
	if err != nil {
		return errors.Wrapf(err, "creating %s", dst)
	}
	if _, err := io.Copy(out.Writer(ctx), in.Reader(ctx)); err != nil {
		_ = out.Close(ctx)
		return errors.Wrapf(err, "copying %s to %s", src, filepath.Dir(dst))
	}
	return out.Close(ctx)
}
