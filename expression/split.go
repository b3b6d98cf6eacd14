package expression

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/sofiaff/imfusion/insertion"
)

// Split divides a gene's exons around the insertion sites of a cohort.
type Split struct {
	// Before and After are the exons lying strictly before, respectively
	// strictly after, every retained insertion site in transcript
	// orientation.
	Before, After []Exon
	// Samples are the samples with an insertion in the gene that could be
	// split; Dropped are those whose insertion lies before the first or
	// after the last exon, leaving one side empty.
	Samples []string
	Dropped []string
}

// SplitCounts splits the exons of geneID around the per-sample insertion
// sites. A sample with an insertion in the gene is dropped when its own
// sites leave no exon on one of the two sides; the returned Before/After
// regions are common to all retained samples.
func SplitCounts(m *Matrix, insertions []insertion.Insertion, geneID string) (*Split, error) {
	exons := m.GeneExons(geneID)
	if len(exons) == 0 {
		return nil, errors.Errorf("no exons for gene %s", geneID)
	}
	strand := exons[0].Strand

	sites := map[string][]int{}
	for i := range insertions {
		ins := &insertions[i]
		if ins.GeneID() != geneID {
			continue
		}
		sample := ins.Sample()
		sites[sample] = append(sites[sample], ins.Position)
	}

	split := &Split{}
	var retained []int
	for _, sample := range sortedKeys(sites) {
		usable := true
		for _, pos := range sites[sample] {
			if countSide(exons, strand, pos, true) == 0 || countSide(exons, strand, pos, false) == 0 {
				usable = false
				break
			}
		}
		if !usable {
			split.Dropped = append(split.Dropped, sample)
			continue
		}
		split.Samples = append(split.Samples, sample)
		retained = append(retained, sites[sample]...)
	}

	for _, exon := range exons {
		if beforeAll(exon, strand, retained) {
			split.Before = append(split.Before, exon)
		}
		if afterAll(exon, strand, retained) {
			split.After = append(split.After, exon)
		}
	}
	return split, nil
}

// before reports whether exon lies strictly before pos in transcript
// orientation.
func before(exon Exon, strand, pos int) bool {
	if strand < 0 {
		return exon.Start > pos
	}
	return exon.End < pos
}

// after reports whether exon lies strictly after pos in transcript
// orientation.
func after(exon Exon, strand, pos int) bool {
	if strand < 0 {
		return exon.End < pos
	}
	return exon.Start > pos
}

func beforeAll(exon Exon, strand int, sites []int) bool {
	if len(sites) == 0 {
		return false
	}
	for _, pos := range sites {
		if !before(exon, strand, pos) {
			return false
		}
	}
	return true
}

func afterAll(exon Exon, strand int, sites []int) bool {
	if len(sites) == 0 {
		return false
	}
	for _, pos := range sites {
		if !after(exon, strand, pos) {
			return false
		}
	}
	return true
}

// countSide counts the exons on one side of pos.
func countSide(exons []Exon, strand, pos int, beforeSide bool) int {
	n := 0
	for _, exon := range exons {
		if beforeSide && before(exon, strand, pos) {
			n++
		}
		if !beforeSide && after(exon, strand, pos) {
			n++
		}
	}
	return n
}

func sortedKeys(m map[string][]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
