package main

/*
imfusion-insertions aligns RNA-seq reads against an augmented reference
and writes the gene-transposon insertions it identifies to
<output_dir>/insertions.txt.
*/

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/sofiaff/imfusion/insertion"
	"github.com/sofiaff/imfusion/shell"
	"github.com/sofiaff/imfusion/star"
	"github.com/sofiaff/imfusion/tophat"
)

var (
	alignerName  = flag.String("aligner", "tophat", "Aligner to use; 'tophat' and 'star' supported")
	fastqPath    = flag.String("fastq", "", "Input FASTQ path (R1, optionally gzipped); required")
	fastq2Path   = flag.String("fastq2", "", "Input mate FASTQ path (R2) for paired-end data")
	referenceDir = flag.String("reference", "", "Reference directory built by imfusion-build; required")
	outputDir    = flag.String("output_dir", "", "Output directory; required")

	threads      = flag.Int("threads", insertion.DefaultOptions.Threads, "Number of threads for the aligner")
	minFlank     = flag.Int("min_flank", insertion.DefaultOptions.MinFlank, "Minimum anchor length on either side of a fusion boundary")
	extraArgs    = flag.String("extra_args", "", "Extra arguments passed through to the aligner, e.g. \"--mate-inner-dist 200\"")
	assemble     = flag.Bool("assemble", false, "Run a reference-guided stringtie assembly after alignment")
	assembleArgs = flag.String("assemble_args", "", "Extra arguments passed through to stringtie")

	noFilterFeatures    = flag.Bool("no_filter_features", false, "Keep insertions whose transposon anchor hits no splice acceptor or donor")
	noFilterOrientation = flag.Bool("no_filter_orientation", false, "Keep insertions regardless of feature orientation relative to the gene")
	blacklistedGenes    = flag.String("blacklisted_genes", "", "Comma-separated gene names or ids to drop")
)

func insertionsUsage() {
	fmt.Printf("Usage: %s [OPTIONS]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = insertionsUsage
	shutdown := grail.Init()
	defer shutdown()

	for _, req := range []struct{ name, value string }{
		{"fastq", *fastqPath},
		{"reference", *referenceDir},
		{"output_dir", *outputDir},
	} {
		if req.value == "" {
			log.Fatalf("Missing required flag -%s", req.name)
		}
	}

	opts := insertion.DefaultOptions
	opts.Threads = *threads
	opts.MinFlank = *minFlank
	opts.ExtraOpts = shell.ParseOptions(*extraArgs)
	opts.Assemble = *assemble
	opts.AssembleOpts = shell.ParseOptions(*assembleArgs)
	opts.FilterFeatures = !*noFilterFeatures
	opts.FilterOrientation = !*noFilterOrientation
	if *blacklistedGenes != "" {
		opts.BlacklistedGenes = strings.Split(*blacklistedGenes, ",")
	}

	registry := insertion.NewRegistry()
	registry.Register("tophat", tophat.Factory)
	registry.Register("star", star.Factory)
	factory, err := registry.Get(*alignerName)
	if err != nil {
		log.Fatalf("%v", err)
	}
	aligner, err := factory(*referenceDir, opts)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := shell.CheckDependencies(aligner.Dependencies()); err != nil {
		log.Fatalf("%v", err)
	}

	ctx := vcontext.Background()
	insertions, err := aligner.IdentifyInsertions(ctx, *fastqPath, *fastq2Path, *outputDir)
	if err != nil {
		log.Fatalf("identifying insertions: %v", err)
	}
	insertion.Sort(insertions)

	outPath := filepath.Join(*outputDir, "insertions.txt")
	out, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("create %s: %v", outPath, err)
	}
	if err := insertion.WriteTSV(out, insertions); err != nil {
		log.Fatalf("write %s: %v", outPath, err)
	}
	if err := out.Close(); err != nil {
		log.Fatalf("close %s: %v", outPath, err)
	}
	log.Printf("wrote %d insertions to %s", len(insertions), outPath)
}
