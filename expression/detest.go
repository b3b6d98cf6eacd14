package expression

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sofiaff/imfusion/insertion"
)

// Result holds the outcome of a differential-expression test.
type Result struct {
	// PValue is the two-sided Mann-Whitney p-value comparing after-region
	// expression of insertion samples against the background cohort.
	PValue float64
	// Direction is +1 when insertion samples express the after-region
	// more highly than the background, -1 otherwise (by group medians).
	Direction int
	// Dropped lists samples excluded because their insertion could not
	// split the gene.
	Dropped []string
}

// TestDE tests whether samples with an insertion in geneID differ from
// the rest of the cohort in expression over the exons after the insertion
// sites. Counts are normalized with median-of-ratios size factors before
// comparison.
func TestDE(m *Matrix, insertions []insertion.Insertion, geneID string) (*Result, error) {
	split, err := SplitCounts(m, insertions, geneID)
	if err != nil {
		return nil, err
	}
	if len(split.Samples) == 0 {
		return nil, errors.Errorf("no splittable samples with an insertion in %s", geneID)
	}
	if len(split.After) == 0 {
		return nil, errors.Errorf("no exons after the insertion sites in %s", geneID)
	}
	factors, err := m.SizeFactors()
	if err != nil {
		return nil, err
	}

	sums := make([]float64, len(m.Samples))
	for _, exon := range split.After {
		for i, c := range exon.Counts {
			sums[i] += c / factors[i]
		}
	}

	withInsertion := map[string]bool{}
	for i := range insertions {
		if insertions[i].GeneID() == geneID {
			withInsertion[insertions[i].Sample()] = true
		}
	}
	var insSums, bgSums []float64
	for _, sample := range split.Samples {
		i := m.SampleIndex(sample)
		if i < 0 {
			return nil, errors.Errorf("sample %s not in count matrix", sample)
		}
		insSums = append(insSums, sums[i])
	}
	for i, sample := range m.Samples {
		if !withInsertion[sample] {
			bgSums = append(bgSums, sums[i])
		}
	}
	if len(bgSums) == 0 {
		return nil, errors.New("no background samples without an insertion")
	}

	result := &Result{PValue: mannWhitney(insSums, bgSums), Direction: 1, Dropped: split.Dropped}
	if median(append([]float64(nil), insSums...)) < median(append([]float64(nil), bgSums...)) {
		result.Direction = -1
	}
	return result, nil
}

// mannWhitney returns the two-sided p-value of the Mann-Whitney U test
// between xs and ys, using the tie-corrected normal approximation with
// continuity correction.
func mannWhitney(xs, ys []float64) float64 {
	n1, n2 := float64(len(xs)), float64(len(ys))
	ranks, tieTerm := rankAll(xs, ys)
	var r1 float64
	for i := range xs {
		r1 += ranks[i]
	}
	u1 := r1 - n1*(n1+1)/2

	n := n1 + n2
	mu := n1 * n2 / 2
	sigma2 := n1 * n2 / 12 * ((n + 1) - tieTerm/(n*(n-1)))
	if sigma2 <= 0 {
		return 1
	}
	z := u1 - mu
	switch {
	case z > 0:
		z -= 0.5
	case z < 0:
		z += 0.5
	}
	z /= math.Sqrt(sigma2)
	p := 2 * distuv.UnitNormal.CDF(-math.Abs(z))
	if p > 1 {
		p = 1
	}
	return p
}

// rankAll assigns midranks to the concatenation of xs and ys (xs first)
// and returns the tie correction term sum(t^3-t) over tie groups.
func rankAll(xs, ys []float64) (ranks []float64, tieTerm float64) {
	values := append(append([]float64(nil), xs...), ys...)
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return values[order[i]] < values[order[j]] })

	ranks = make([]float64, len(values))
	for i := 0; i < len(order); {
		j := i
		for j < len(order) && values[order[j]] == values[order[i]] {
			j++
		}
		// Midrank for the tie group spanning sorted positions [i, j).
		mid := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[order[k]] = mid
		}
		t := float64(j - i)
		tieTerm += t*t*t - t
		i = j
	}
	return ranks, tieTerm
}
