package tophat

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/biogo/external"
	"github.com/pkg/errors"

	"github.com/sofiaff/imfusion/reference"
	"github.com/sofiaff/imfusion/shell"
)

// bowtieBuild builds the command line for bowtie-build.
type bowtieBuild struct {
	// Usage: bowtie-build genome.fa index_base
	Cmd   string `buildarg:"{{if .}}{{.}}{{else}}bowtie-build{{end}}"` // bowtie-build
	Fasta string `buildarg:"{{.}}"`                                    // "genome.fa"
	Index string `buildarg:"{{.}}"`                                    // "index_base"
}

func (b bowtieBuild) BuildCommand() (*exec.Cmd, error) {
	if b.Fasta == "" || b.Index == "" {
		return nil, errors.New("bowtie-build: missing required argument")
	}
	cl, err := external.Build(b)
	if err != nil {
		return nil, err
	}
	return exec.Command(cl[0], cl[1:]...), nil
}

// transcriptomeBuild builds the command line for the TopHat2 invocation
// that only materializes a transcriptome index.
type transcriptomeBuild struct {
	Cmd           string `buildarg:"{{if .}}{{.}}{{else}}tophat2{{end}}"`          // tophat2
	Gtf           string `buildarg:"{{if .}}--GTF{{split}}{{.}}{{end}}"`           // --GTF: annotation
	Transcriptome string `buildarg:"{{if .}}--transcriptome-index={{.}}{{end}}"`   // --transcriptome-index
	Bowtie1       bool   `buildarg:"{{if .}}--bowtie1{{end}}"`                     // --bowtie1
	OutputDir     string `buildarg:"{{if .}}--output-dir{{split}}{{.}}{{end}}"`    // --output-dir: scratch
	Index         string `buildarg:"{{.}}"`                                        // "index_base"
}

func (b transcriptomeBuild) BuildCommand() (*exec.Cmd, error) {
	if b.Index == "" {
		return nil, errors.New("tophat2: missing index argument")
	}
	cl, err := external.Build(b)
	if err != nil {
		return nil, err
	}
	return exec.Command(cl[0], cl[1:]...), nil
}

// Indexer builds the bowtie and transcriptome indices TopHat2 needs.
type Indexer struct {
	// run executes external commands; tests substitute a recording
	// implementation.
	run shell.Runner
}

// NewIndexer returns an Indexer that invokes the real external tools.
func NewIndexer() *Indexer {
	return &Indexer{run: shell.Run}
}

// Dependencies implements build.Indexer.
func (ix *Indexer) Dependencies() []string {
	return []string{"bowtie-build", "tophat2"}
}

// BuildIndices implements build.Indexer. bowtie-build output goes to
// bowtie.log and tophat2 output to transcriptome.log, both in the
// reference directory. The TopHat2 scratch directory is removed on all
// exit paths.
func (ix *Indexer) BuildIndices(ctx context.Context, ref reference.Reference) error {
	cmd, err := bowtieBuild{Fasta: ref.FastaPath(), Index: ref.IndexPath()}.BuildCommand()
	if err != nil {
		return err
	}
	if err := shell.RunLogged(ctx, ix.run, cmd.Args, filepath.Join(ref.Path(), "bowtie.log")); err != nil {
		return errors.Wrap(err, "building bowtie index")
	}

	tmpDir, err := os.MkdirTemp(ref.Path(), "tophat-")
	if err != nil {
		return errors.Wrap(err, "creating scratch directory")
	}
	defer os.RemoveAll(tmpDir) // nolint: errcheck
	r := Reference{ref}
	cmd, err = transcriptomeBuild{
		Gtf:           ref.GtfPath(),
		Transcriptome: r.TranscriptomePath(),
		Bowtie1:       true,
		OutputDir:     tmpDir,
		Index:         ref.IndexPath(),
	}.BuildCommand()
	if err != nil {
		return err
	}
	if err := shell.RunLogged(ctx, ix.run, cmd.Args, filepath.Join(ref.Path(), "transcriptome.log")); err != nil {
		return errors.Wrap(err, "building transcriptome index")
	}
	return nil
}
