package star

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

// genomeGenerate builds the command line for STAR in genomeGenerate mode.
type genomeGenerate struct {
	Cmd       string `buildarg:"{{if .}}{{.}}{{else}}STAR{{end}}"`              // STAR
	Generate  bool   `buildarg:"{{if .}}--runMode{{split}}genomeGenerate{{end}}"` // --runMode genomeGenerate
	Threads   int    `buildarg:"{{if .}}--runThreadN{{split}}{{.}}{{end}}"`     // --runThreadN
	GenomeDir string `buildarg:"{{if .}}--genomeDir{{split}}{{.}}{{end}}"`      // --genomeDir
	Fasta     string `buildarg:"{{if .}}--genomeFastaFiles{{split}}{{.}}{{end}}"` // --genomeFastaFiles
	Gtf       string `buildarg:"{{if .}}--sjdbGTFfile{{split}}{{.}}{{end}}"`    // --sjdbGTFfile
	Overhang  int    `buildarg:"{{if .}}--sjdbOverhang{{split}}{{.}}{{end}}"`   // --sjdbOverhang
}

func (g genomeGenerate) BuildCommand() (*exec.Cmd, error) {
	if g.GenomeDir == "" || g.Fasta == "" {
		return nil, errors.New("STAR: missing required argument")
	}
	cl, err := external.Build(g)
	if err != nil {
		return nil, err
	}
	return exec.Command(cl[0], cl[1:]...), nil
}

// IndexerOpts configures STAR index construction.
type IndexerOpts struct {
	// Overhang is the value for --sjdbOverhang; read length minus one is
	// ideal.
	Overhang int
	Threads  int
}

// DefaultIndexerOpts holds the documented defaults.
var DefaultIndexerOpts = IndexerOpts{Overhang: 100, Threads: 1}

// Indexer builds the STAR genome index.
type Indexer struct {
	opts IndexerOpts

	// run executes external commands; tests substitute a recording
	// implementation.
	run shell.Runner
}

// NewIndexer returns an Indexer that invokes the real STAR binary.
func NewIndexer(opts IndexerOpts) *Indexer {
	return &Indexer{opts: opts, run: shell.Run}
}

// Dependencies implements build.Indexer.
func (ix *Indexer) Dependencies() []string {
	return []string{"STAR"}
}

// BuildIndices implements build.Indexer. STAR output goes to star.log in
// the reference directory.
func (ix *Indexer) BuildIndices(ctx context.Context, ref reference.Reference) error {
	r := Reference{ref}
	if err := os.MkdirAll(r.IndexDir(), 0777); err != nil {
		return errors.Wrap(err, "creating index directory")
	}
	cmd, err := genomeGenerate{
		Generate:  true,
		Threads:   ix.opts.Threads,
		GenomeDir: r.IndexDir(),
		Fasta:     ref.FastaPath(),
		Gtf:       ref.GtfPath(),
		Overhang:  ix.opts.Overhang,
	}.BuildCommand()
	if err != nil {
		return err
	}
	if err := shell.RunLogged(ctx, ix.run, cmd.Args, filepath.Join(ref.Path(), "star.log")); err != nil {
		return errors.Wrap(err, "building STAR index")
	}
	return nil
}
