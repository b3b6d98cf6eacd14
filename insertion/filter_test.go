package insertion

import (
	"context"
	"testing"

	"github.com/grailbio/testutil/expect"
)

var ctxTest = context.Background()

func makeInsertion(id string, strand, featureStrand, geneStrand int, featureType, geneName string) Insertion {
	meta := Metadata{}
	if featureType != "" {
		meta[MetaFeatureName] = featureType
		meta[MetaFeatureType] = featureType
		meta[MetaFeatureStrand] = featureStrand
	}
	if geneName != "" {
		meta[MetaGeneID] = "ID_" + geneName
		meta[MetaGeneName] = geneName
		meta[MetaGeneStrand] = geneStrand
	}
	return Insertion{ID: id, Seqname: "1", Position: 100, Strand: strand, Metadata: meta}
}

func ids(insertions []Insertion) []string {
	var out []string
	for _, ins := range insertions {
		out = append(out, ins.ID)
	}
	return out
}

func TestFilterFeatures(t *testing.T) {
	insertions := []Insertion{
		makeInsertion("INS_1", 1, -1, 1, "SA", "Cblb"),
		makeInsertion("INS_2", 1, 1, 1, "other", "Cblb"),
		makeInsertion("INS_3", 1, 1, 1, "SD", "Cblb"),
		makeInsertion("INS_4", 1, 0, 1, "", "Cblb"), // anchor outside every feature
	}
	stats := Stats{}
	kept := FilterFeatures(insertions, &stats)
	expect.EQ(t, ids(kept), []string{"INS_1", "INS_3"})
	expect.EQ(t, stats.DroppedFeatureType, 2)
}

func TestFilterOrientation(t *testing.T) {
	insertions := []Insertion{
		// feature -1 * strand -1 == gene +1: trapping orientation.
		makeInsertion("INS_1", -1, -1, 1, "SA", "Cblb"),
		// feature -1 * strand +1 != gene +1: dropped.
		makeInsertion("INS_2", 1, -1, 1, "SA", "Cblb"),
		// no gene annotation: cannot orient, dropped.
		makeInsertion("INS_3", 1, -1, 0, "SA", ""),
		// feature +1 * strand +1 == gene +1.
		makeInsertion("INS_4", 1, 1, 1, "SD", "Pten"),
	}
	stats := Stats{}
	kept := FilterOrientation(insertions, &stats)
	expect.EQ(t, ids(kept), []string{"INS_1", "INS_4"})
	expect.EQ(t, stats.DroppedOrientation, 2)
}

func TestFilterBlacklist(t *testing.T) {
	insertions := []Insertion{
		makeInsertion("INS_1", 1, 1, 1, "SA", "En2"),
		makeInsertion("INS_2", 1, 1, 1, "SA", "Cblb"),
	}
	stats := Stats{}
	kept := FilterBlacklist(insertions, []string{"En2"}, &stats)
	expect.EQ(t, ids(kept), []string{"INS_2"})
	expect.EQ(t, stats.DroppedBlacklist, 1)

	// Empty blacklist is a no-op.
	stats = Stats{}
	kept = FilterBlacklist([]Insertion{makeInsertion("INS_1", 1, 1, 1, "SA", "En2")}, nil, &stats)
	expect.EQ(t, ids(kept), []string{"INS_1"})
	expect.EQ(t, stats.DroppedBlacklist, 0)
}

func TestApplyFiltersToggles(t *testing.T) {
	insertions := func() []Insertion {
		return []Insertion{
			makeInsertion("INS_1", 1, 1, -1, "other", "Cblb"), // wrong feature and orientation
		}
	}
	opts := DefaultOptions
	stats := Stats{}
	expect.EQ(t, len(ApplyFilters(insertions(), opts, &stats)), 0)

	opts.FilterFeatures = false
	opts.FilterOrientation = false
	stats = Stats{}
	expect.EQ(t, ids(ApplyFilters(insertions(), opts, &stats)), []string{"INS_1"})
}
