package insertion

import "github.com/sofiaff/imfusion/reference"

// FilterFeatures keeps insertions whose transposon feature is a splice
// acceptor or donor. Insertions whose anchor fell outside every annotated
// feature are dropped.
func FilterFeatures(insertions []Insertion, stats *Stats) []Insertion {
	kept := insertions[:0]
	for _, ins := range insertions {
		typ, ok := ins.metaString(MetaFeatureType)
		if !ok || (typ != reference.FeatureSpliceAcceptor && typ != reference.FeatureSpliceDonor) {
			stats.DroppedFeatureType++
			continue
		}
		kept = append(kept, ins)
	}
	return kept
}

// FilterOrientation keeps insertions whose feature is in gene-trapping
// orientation: the feature strand times the insertion strand must equal
// the strand of the affected gene. Insertions that overlap no gene cannot
// be oriented and are dropped.
func FilterOrientation(insertions []Insertion, stats *Stats) []Insertion {
	kept := insertions[:0]
	for _, ins := range insertions {
		featureStrand, okFeature := ins.metaInt(MetaFeatureStrand)
		geneStrand, okGene := ins.metaInt(MetaGeneStrand)
		if !okFeature || !okGene || featureStrand*ins.Strand != geneStrand {
			stats.DroppedOrientation++
			continue
		}
		kept = append(kept, ins)
	}
	return kept
}

// FilterBlacklist drops insertions whose gene name or gene id appears in
// the blacklist.
func FilterBlacklist(insertions []Insertion, blacklist []string, stats *Stats) []Insertion {
	if len(blacklist) == 0 {
		return insertions
	}
	blacklisted := make(map[string]bool, len(blacklist))
	for _, gene := range blacklist {
		blacklisted[gene] = true
	}
	kept := insertions[:0]
	for _, ins := range insertions {
		if blacklisted[ins.GeneName()] || blacklisted[ins.GeneID()] {
			stats.DroppedBlacklist++
			continue
		}
		kept = append(kept, ins)
	}
	return kept
}

// ApplyFilters runs the filters selected in opts, in the fixed order
// feature type, orientation, blacklist.
func ApplyFilters(insertions []Insertion, opts Options, stats *Stats) []Insertion {
	if opts.FilterFeatures {
		insertions = FilterFeatures(insertions, stats)
	}
	if opts.FilterOrientation {
		insertions = FilterOrientation(insertions, stats)
	}
	insertions = FilterBlacklist(insertions, opts.BlacklistedGenes, stats)
	return insertions
}
