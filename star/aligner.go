package star

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/pkg/errors"

	"github.com/sofiaff/imfusion/fastq"
	"github.com/sofiaff/imfusion/insertion"
	"github.com/sofiaff/imfusion/shell"
)

// Aligner identifies insertions from STAR's chimeric alignments.
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
	deps := []string{"STAR"}
	if a.opts.Assemble {
		deps = append(deps, "stringtie", "samtools")
	}
	return deps
}

// IdentifyInsertions implements insertion.Aligner. STAR runs with
// chimeric detection enabled, writing under <outputDir>/_star; its
// chimeric junctions are annotated, filtered, and FFPM-normalized
// against the fragment count of fastqPath. A run that detects no
// chimeric alignments returns a nil slice.
func (a *Aligner) IdentifyInsertions(ctx context.Context, fastqPath, fastq2Path, outputDir string) ([]insertion.Insertion, error) {
	if err := os.MkdirAll(outputDir, 0777); err != nil {
		return nil, errors.Wrap(err, "creating output directory")
	}
	starDir := filepath.Join(outputDir, "_star")
	if err := os.MkdirAll(starDir, 0777); err != nil {
		return nil, errors.Wrap(err, "creating output directory")
	}
	if err := a.align(ctx, fastqPath, fastq2Path, starDir, outputDir); err != nil {
		return nil, err
	}
	if a.opts.Assemble {
		if err := a.assemble(ctx, starDir, outputDir); err != nil {
			return nil, err
		}
	}
	return a.extractInsertions(ctx, filepath.Join(starDir, "Chimeric.out.junction"), fastqPath)
}

func (a *Aligner) align(ctx context.Context, fastqPath, fastq2Path, starDir, outputDir string) error {
	opts := shell.Options{}
	opts.Set("--runThreadN", a.opts.Threads)
	opts.Set("--genomeDir", a.ref.IndexDir())
	opts.Set("--outFileNamePrefix", starDir+string(filepath.Separator))
	opts.Set("--chimSegmentMin", a.opts.MinFlank)
	opts.Set("--chimOutType", "Junctions")
	if fastq2Path != "" {
		opts.Set("--readFilesIn", fastqPath, fastq2Path)
	} else {
		opts.Set("--readFilesIn", fastqPath)
	}
	if strings.HasSuffix(fastqPath, ".gz") {
		opts.Set("--readFilesCommand", "gunzip", "-c")
	}
	if a.opts.Assemble {
		opts.Set("--outSAMtype", "BAM", "SortedByCoordinate")
	}
	merged := opts.Merge(a.opts.ExtraOpts)

	argv := append([]string{"STAR"}, merged.Args()...)
	if err := shell.RunLogged(ctx, a.run, argv, filepath.Join(outputDir, "alignment.log")); err != nil {
		return errors.Wrap(err, "running STAR")
	}
	return nil
}

func (a *Aligner) assemble(ctx context.Context, starDir, outputDir string) error {
	bam := filepath.Join(starDir, "Aligned.sortedByCoord.out.bam")
	if err := shell.RunLogged(ctx, a.run, []string{"samtools", "index", bam},
		filepath.Join(outputDir, "samtools.log")); err != nil {
		return errors.Wrap(err, "indexing alignment")
	}
	opts := shell.Options{}
	opts.Set("-p", a.opts.Threads)
	opts.Set("-G", a.ref.GtfPath())
	opts.Set("-o", filepath.Join(outputDir, "assembled.gtf"))
	merged := opts.Merge(a.opts.AssembleOpts)

	argv := append([]string{"stringtie"}, merged.Args()...)
	argv = append(argv, bam)
	if err := shell.RunLogged(ctx, a.run, argv, filepath.Join(outputDir, "assemble.log")); err != nil {
		return errors.Wrap(err, "running stringtie")
	}
	return nil
}

func (a *Aligner) extractInsertions(ctx context.Context, chimericPath, fastqPath string) ([]insertion.Insertion, error) {
	if _, err := os.Stat(chimericPath); os.IsNotExist(err) {
		// STAR omits Chimeric.out.junction when chimeric detection found
		// nothing to report.
		return nil, nil
	}
	transposonName, err := a.ref.TransposonName(ctx)
	if err != nil {
		return nil, err
	}
	var stats insertion.Stats
	fusions, err := ReadChimericJunctions(ctx, chimericPath, transposonName, &stats)
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
	log.Printf("identified %d insertions from %d chimeric junctions (%d non-transposon, dropped %d by feature, %d by orientation, %d blacklisted)",
		len(insertions), stats.Fusions, stats.SkippedNonTransposon,
		stats.DroppedFeatureType, stats.DroppedOrientation, stats.DroppedBlacklist)
	return insertions, nil
}
