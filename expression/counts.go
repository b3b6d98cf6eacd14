// Package expression tests called genes for differential expression: it
// reads per-exon count matrices, splits a gene's exons around insertion
// sites, and compares insertion samples against the background cohort.
package expression

import (
	"bufio"
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Exon is one row of an exon count matrix: an exon with one count per
// sample, parallel to Matrix.Samples.
type Exon struct {
	GeneID  string
	Seqname string
	// Start and End are 1-based inclusive.
	Start, End int
	// Strand is +1 or -1.
	Strand int
	Counts []float64
}

// Matrix is an exon count matrix over a cohort of samples.
type Matrix struct {
	Samples []string
	Exons   []Exon
}

var countColumns = []string{"gene_id", "chr", "start", "end", "strand"}

// ReadExonCounts reads a tab-separated exon count matrix: the fixed
// columns gene_id, chr, start, end, strand followed by one column per
// sample.
func ReadExonCounts(ctx context.Context, path string) (*Matrix, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer in.Close(ctx) // nolint: errcheck

	sc := bufio.NewScanner(in.Reader(ctx))
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, errors.Wrapf(err, "read %s", path)
		}
		return nil, errors.Errorf("%s: empty count matrix", path)
	}
	header := strings.Split(sc.Text(), "\t")
	if len(header) < len(countColumns)+1 {
		return nil, errors.Errorf("%s: got %d columns, want at least %d",
			path, len(header), len(countColumns)+1)
	}
	for i, want := range countColumns {
		if header[i] != want {
			return nil, errors.Errorf("%s: column %d is %q, want %q", path, i+1, header[i], want)
		}
	}
	m := &Matrix{Samples: header[len(countColumns):]}

	lineno := 1
	for sc.Scan() {
		lineno++
		line := sc.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != len(header) {
			return nil, errors.Errorf("%s:%d: got %d columns, want %d",
				path, lineno, len(fields), len(header))
		}
		exon, err := parseExon(fields, len(m.Samples))
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, lineno)
		}
		m.Exons = append(m.Exons, exon)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return m, nil
}

func parseExon(fields []string, samples int) (Exon, error) {
	exon := Exon{GeneID: fields[0], Seqname: fields[1]}
	var err error
	if exon.Start, err = strconv.Atoi(fields[2]); err != nil {
		return exon, errors.Errorf("bad start %q", fields[2])
	}
	if exon.End, err = strconv.Atoi(fields[3]); err != nil {
		return exon, errors.Errorf("bad end %q", fields[3])
	}
	switch fields[4] {
	case "+", "1":
		exon.Strand = 1
	case "-", "-1":
		exon.Strand = -1
	default:
		return exon, errors.Errorf("bad strand %q", fields[4])
	}
	exon.Counts = make([]float64, samples)
	for i := 0; i < samples; i++ {
		v, err := strconv.ParseFloat(fields[len(countColumns)+i], 64)
		if err != nil {
			return exon, errors.Errorf("bad count %q", fields[len(countColumns)+i])
		}
		exon.Counts[i] = v
	}
	return exon, nil
}

// SampleIndex returns the column index of the named sample, or -1.
func (m *Matrix) SampleIndex(name string) int {
	for i, s := range m.Samples {
		if s == name {
			return i
		}
	}
	return -1
}

// GeneExons returns the exons of geneID in transcript orientation: by
// ascending start for forward genes and descending start for reverse
// genes.
func (m *Matrix) GeneExons(geneID string) []Exon {
	var exons []Exon
	for _, e := range m.Exons {
		if e.GeneID == geneID {
			exons = append(exons, e)
		}
	}
	sort.SliceStable(exons, func(i, j int) bool {
		if exons[i].Strand < 0 {
			return exons[i].Start > exons[j].Start
		}
		return exons[i].Start < exons[j].Start
	})
	return exons
}

// SizeFactors computes per-sample median-of-ratios normalization factors:
// for every exon with nonzero counts in all samples, each sample's count
// is divided by the exon's geometric mean, and the sample's factor is the
// median of those ratios.
func (m *Matrix) SizeFactors() ([]float64, error) {
	ratios := make([][]float64, len(m.Samples))
rows:
	for _, exon := range m.Exons {
		for _, c := range exon.Counts {
			if c <= 0 {
				continue rows
			}
		}
		gm := stat.GeometricMean(exon.Counts, nil)
		for i, c := range exon.Counts {
			ratios[i] = append(ratios[i], c/gm)
		}
	}
	factors := make([]float64, len(m.Samples))
	for i, r := range ratios {
		if len(r) == 0 {
			return nil, errors.New("size factors: no exon has nonzero counts in every sample")
		}
		factors[i] = median(r)
	}
	return factors, nil
}

// median returns the median of xs. xs is reordered.
func median(xs []float64) float64 {
	sort.Float64s(xs)
	n := len(xs)
	if n%2 == 1 {
		return xs[n/2]
	}
	return (xs[n/2-1] + xs[n/2]) / 2
}
