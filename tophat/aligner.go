package tophat

import (
	"context"
	"os"
	"path/filepath"

	"github.com/grailbio/base/log"
	"github.com/pkg/errors"

	"github.com/sofiaff/imfusion/fastq"
	"github.com/sofiaff/imfusion/insertion"
	"github.com/sofiaff/imfusion/shell"
)

// Aligner identifies insertions with TopHat2's fusion search.
type Aligner struct {
	ref  Reference
	opts insertion.Options

	// run and countFragments are swapped out by tests.
	run            shell.Runner
	countFragments func(ctx context.Context, path string) (int64, error)
}

// NewAligner returns an Aligner over the reference rooted at base.
func NewAligner(base string, opts insertion.Options) (*Aligner, error) {
	return &Aligner{
		ref:            NewReference(base),
		opts:           opts,
		run:            shell.Run,
		countFragments: fastq.CountFragments,
	}, nil
}

// Factory adapts NewAligner to insertion.Factory.
func Factory(base string, opts insertion.Options) (insertion.Aligner, error) {
	return NewAligner(base, opts)
}

// Dependencies implements insertion.Aligner.
func (a *Aligner) Dependencies() []string {
	deps := []string{"tophat2", "bowtie"}
	if a.opts.Assemble {
		deps = append(deps, "stringtie")
	}
	return deps
}

// IdentifyInsertions implements insertion.Aligner. TopHat2 runs with
// fusion search enabled, writing under <outputDir>/_tophat; its fusion
// calls are annotated, filtered, and FFPM-normalized against the fragment
// count of fastqPath. A run that calls no fusions returns a nil slice.
func (a *Aligner) IdentifyInsertions(ctx context.Context, fastqPath, fastq2Path, outputDir string) ([]insertion.Insertion, error) {
	if err := os.MkdirAll(outputDir, 0777); err != nil {
		return nil, errors.Wrap(err, "creating output directory")
	}
	tophatDir := filepath.Join(outputDir, "_tophat")
	if err := a.align(ctx, fastqPath, fastq2Path, tophatDir, outputDir); err != nil {
		return nil, err
	}
	if a.opts.Assemble {
		if err := a.assemble(ctx, tophatDir, outputDir); err != nil {
			return nil, err
		}
	}
	return a.extractInsertions(ctx, filepath.Join(tophatDir, "fusions.out"), fastqPath)
}

func (a *Aligner) align(ctx context.Context, fastqPath, fastq2Path, tophatDir, outputDir string) error {
	opts := shell.Options{}
	opts.Set("--fusion-search")
	opts.Set("--bowtie1")
	opts.Set("--num-threads", a.opts.Threads)
	opts.Set("--fusion-anchor-length", a.opts.MinFlank)
	opts.Set("--transcriptome-index=" + a.ref.TranscriptomePath())
	merged := opts.Merge(a.opts.ExtraOpts)

	argv := append([]string{"tophat2"}, merged.Args()...)
	argv = append(argv, "--output-dir", tophatDir, a.ref.IndexPath(), fastqPath)
	if fastq2Path != "" {
		argv = append(argv, fastq2Path)
	}
	if err := shell.RunLogged(ctx, a.run, argv, filepath.Join(outputDir, "alignment.log")); err != nil {
		return errors.Wrap(err, "running tophat2")
	}
	return nil
}

func (a *Aligner) assemble(ctx context.Context, tophatDir, outputDir string) error {
	opts := shell.Options{}
	opts.Set("-p", a.opts.Threads)
	opts.Set("-G", a.ref.GtfPath())
	opts.Set("-o", filepath.Join(outputDir, "assembled.gtf"))
	merged := opts.Merge(a.opts.AssembleOpts)

	argv := append([]string{"stringtie"}, merged.Args()...)
	argv = append(argv, filepath.Join(tophatDir, "accepted_hits.bam"))
	if err := shell.RunLogged(ctx, a.run, argv, filepath.Join(outputDir, "assemble.log")); err != nil {
		return errors.Wrap(err, "running stringtie")
	}
	return nil
}

func (a *Aligner) extractInsertions(ctx context.Context, fusionsPath, fastqPath string) ([]insertion.Insertion, error) {
	if _, err := os.Stat(fusionsPath); os.IsNotExist(err) {
		// TopHat2 omits fusions.out when nothing was found.
		return nil, nil
	}
	transposonName, err := a.ref.TransposonName(ctx)
	if err != nil {
		return nil, err
	}
	var stats insertion.Stats
	fusions, err := ReadFusions(ctx, fusionsPath, transposonName, &stats)
	if err != nil {
		return nil, err
	}
	insertions, err := insertion.Derive(ctx, a.ref.Reference, fusions, a.opts, &stats)
	if err != nil {
		return nil, err
	}

	fragments, err := a.countFragments(ctx, fastqPath)
	if err != nil {
		return nil, err
	}
	if err := insertion.Normalize(insertions, fragments); err != nil {
		return nil, err
	}
	log.Printf("identified %d insertions from %d fusions (%d non-transposon, dropped %d by feature, %d by orientation, %d blacklisted)",
		len(insertions), stats.Fusions, stats.SkippedNonTransposon,
		stats.DroppedFeatureType, stats.DroppedOrientation, stats.DroppedBlacklist)
	return insertions, nil
}
