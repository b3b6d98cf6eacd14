package insertion

import (
	"context"

	"github.com/sofiaff/imfusion/reference"
)

// Derive annotates canonical fusions against the reference annotation and
// applies the configured filters. It is the aligner-independent tail of
// insertion identification; aligner packages call it after parsing their
// native fusion reports.
func Derive(ctx context.Context, ref reference.Reference, fusions []Fusion, opts Options, stats *Stats) ([]Insertion, error) {
	features, err := reference.ReadFeatures(ctx, ref.FeaturesPath())
	if err != nil {
		return nil, err
	}
	genes, err := reference.ReadGenes(ctx, ref.GtfPath())
	if err != nil {
		return nil, err
	}
	insertions := NewAnnotator(features, genes).Insertions(fusions)
	stats.Insertions = len(insertions)
	return ApplyFilters(insertions, opts, stats), nil
}
