package main

/*
imfusion-build constructs an augmented reference: the host genome with the
transposon sequence appended, the matching annotation files, and the index
files the selected aligner needs.
*/

import (
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/sofiaff/imfusion/build"
	"github.com/sofiaff/imfusion/star"
	"github.com/sofiaff/imfusion/tophat"
)

var (
	indexerName    = flag.String("indexer", "tophat", "Index type to build; 'tophat' and 'star' supported")
	genomePath     = flag.String("reference", "", "Input host genome FASTA path; required")
	gtfPath        = flag.String("gtf", "", "Input gene annotation GTF path; required")
	transposonPath = flag.String("transposon", "", "Input transposon FASTA path; required")
	featuresPath   = flag.String("features", "", "Input transposon feature table path; required")
	outputDir      = flag.String("output_dir", "", "Output reference directory; must not already exist; required")
	overhang       = flag.Int("overhang", star.DefaultIndexerOpts.Overhang, "STAR --sjdbOverhang value; read length minus one is ideal")
	threads        = flag.Int("threads", star.DefaultIndexerOpts.Threads, "Number of threads for index construction")
)

func buildUsage() {
	fmt.Printf("Usage: %s [OPTIONS]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = buildUsage
	shutdown := grail.Init()
	defer shutdown()

	for _, req := range []struct{ name, value string }{
		{"reference", *genomePath},
		{"gtf", *gtfPath},
		{"transposon", *transposonPath},
		{"features", *featuresPath},
		{"output_dir", *outputDir},
	} {
		if req.value == "" {
			log.Fatalf("Missing required flag -%s", req.name)
		}
	}

	registry := build.NewRegistry()
	registry.Register("tophat", func() build.Indexer { return tophat.NewIndexer() })
	registry.Register("star", func() build.Indexer {
		return star.NewIndexer(star.IndexerOpts{Overhang: *overhang, Threads: *threads})
	})
	factory, err := registry.Get(*indexerName)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx := vcontext.Background()
	ref, err := build.Run(ctx, factory(), build.Job{
		GenomePath:     *genomePath,
		TransposonPath: *transposonPath,
		GtfPath:        *gtfPath,
		FeaturesPath:   *featuresPath,
		OutputDir:      *outputDir,
	})
	if err != nil {
		log.Fatalf("build failed: %v", err)
	}
	log.Printf("reference written to %s", ref.Path())
}
