package main

/*
imfusion-expression tests a called gene for differential expression: it
compares expression over the exons after the insertion sites between
samples carrying an insertion and the rest of the cohort.
*/

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/sofiaff/imfusion/expression"
	"github.com/sofiaff/imfusion/insertion"
)

var (
	insertionsPath = flag.String("insertions", "", "Input insertions TSV written by imfusion-insertions; required")
	countsPath     = flag.String("exon_counts", "", "Input exon count matrix path; required")
	geneID         = flag.String("gene", "", "Gene id to test; required")
)

func expressionUsage() {
	fmt.Printf("Usage: %s [OPTIONS]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = expressionUsage
	shutdown := grail.Init()
	defer shutdown()

	for _, req := range []struct{ name, value string }{
		{"insertions", *insertionsPath},
		{"exon_counts", *countsPath},
		{"gene", *geneID},
	} {
		if req.value == "" {
			log.Fatalf("Missing required flag -%s", req.name)
		}
	}

	in, err := os.Open(*insertionsPath)
	if err != nil {
		log.Fatalf("open %s: %v", *insertionsPath, err)
	}
	insertions, err := insertion.ReadTSV(in)
	if err != nil {
		log.Fatalf("read %s: %v", *insertionsPath, err)
	}
	if err := in.Close(); err != nil {
		log.Fatalf("close %s: %v", *insertionsPath, err)
	}

	ctx := vcontext.Background()
	counts, err := expression.ReadExonCounts(ctx, *countsPath)
	if err != nil {
		log.Fatalf("read %s: %v", *countsPath, err)
	}

	result, err := expression.TestDE(counts, insertions, *geneID)
	if err != nil {
		log.Fatalf("testing %s: %v", *geneID, err)
	}
	fmt.Printf("gene\tp_value\tdirection\n")
	fmt.Printf("%s\t%g\t%d\n", *geneID, result.PValue, result.Direction)
	if len(result.Dropped) > 0 {
		log.Printf("dropped samples: %s", strings.Join(result.Dropped, ", "))
	}
}
