// Package insertion defines the gene-transposon insertion data model and
// the pipeline shared by all aligners: deriving annotated Insertion
// records from transposon fusions, filtering them, and normalizing their
// read support.
package insertion

import (
	"fmt"
	"sort"

	"github.com/sofiaff/imfusion/reference"
)

// Metadata keys produced by the annotation pipeline.
const (
	MetaGeneID           = "gene_id"
	MetaGeneName         = "gene_name"
	MetaGeneStrand       = "gene_strand"
	MetaFeatureName      = "feature_name"
	MetaFeatureType      = "feature_type"
	MetaFeatureStrand    = "feature_strand"
	MetaTransposonAnchor = "transposon_anchor"
	MetaOrientation      = "orientation"
	MetaFFPM             = "ffpm"
	MetaFFPMJunction     = "ffpm_junction"
	MetaFFPMSpanning     = "ffpm_spanning"
	MetaSample           = "sample"
)

// Orientation values stored under MetaOrientation.
const (
	OrientationSense     = "sense"
	OrientationAntisense = "antisense"
)

// Metadata is an open annotation mapping attached to an Insertion. Values
// are strings, ints, or float64s.
type Metadata map[string]interface{}

// Insertion is a genomic locus where transposon-derived sequence is fused
// to a host gene, inferred from junction and spanning sequencing reads.
// Instances are immutable once built.
type Insertion struct {
	// ID identifies the insertion within one sample, e.g. "INS_4".
	ID string
	// Seqname, Position and Strand locate the insertion on the host
	// genome. Strand is +1 or -1 and reflects the orientation of the
	// transposon relative to the reference.
	Seqname  string
	Position int
	Strand   int
	// SupportJunction counts reads spanning the fusion boundary;
	// SupportSpanning counts read pairs whose mates flank it. Support is
	// their sum.
	SupportJunction int
	SupportSpanning int
	Support         int
	Metadata        Metadata
}

// Fusion is a gene-transposon fusion in canonical form: the genomic side
// identifies the insertion site and the transposon side is reduced to the
// anchor coordinate on the transposon sequence. Aligner packages produce
// these from their native report formats.
type Fusion struct {
	Seqname         string
	Position        int
	Strand          int
	Anchor          int
	SupportJunction int
	SupportSpanning int
}

// Annotator derives Insertion records from canonical fusions using the
// reference's transposon feature table and gene annotation.
type Annotator struct {
	features reference.Features
	genes    *reference.Genes
}

// NewAnnotator returns an Annotator over the given annotation.
func NewAnnotator(features reference.Features, genes *reference.Genes) *Annotator {
	return &Annotator{features: features, genes: genes}
}

// Insertions converts fusions into annotated insertions. IDs are assigned
// INS_<n> in input order, before any filtering, so identifiers are stable
// across filter configurations.
func (a *Annotator) Insertions(fusions []Fusion) []Insertion {
	var insertions []Insertion
	for i, fusion := range fusions {
		insertions = append(insertions, a.annotate(fmt.Sprintf("INS_%d", i+1), fusion))
	}
	return insertions
}

func (a *Annotator) annotate(id string, f Fusion) Insertion {
	ins := Insertion{
		ID:              id,
		Seqname:         f.Seqname,
		Position:        f.Position,
		Strand:          f.Strand,
		SupportJunction: f.SupportJunction,
		SupportSpanning: f.SupportSpanning,
		Support:         f.SupportJunction + f.SupportSpanning,
		Metadata:        Metadata{MetaTransposonAnchor: f.Anchor},
	}
	if feature := a.features.Find(f.Anchor); feature != nil {
		ins.Metadata[MetaFeatureName] = feature.Name
		ins.Metadata[MetaFeatureType] = feature.Type
		ins.Metadata[MetaFeatureStrand] = feature.Strand
	}
	if gene := a.genes.Find(f.Seqname, f.Position); gene != nil {
		ins.Metadata[MetaGeneID] = gene.ID
		ins.Metadata[MetaGeneName] = gene.Name
		ins.Metadata[MetaGeneStrand] = gene.Strand
		if f.Strand == gene.Strand {
			ins.Metadata[MetaOrientation] = OrientationSense
		} else {
			ins.Metadata[MetaOrientation] = OrientationAntisense
		}
	}
	return ins
}

// metaString returns the named metadata value as a string.
func (ins *Insertion) metaString(key string) (string, bool) {
	v, ok := ins.Metadata[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// metaInt returns the named metadata value as an int, converting the
// numeric types a TSV round trip may produce.
func (ins *Insertion) metaInt(key string) (int, bool) {
	switch v := ins.Metadata[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// GeneID returns the annotated gene_id, or "" when the insertion lies
// outside every gene.
func (ins *Insertion) GeneID() string {
	s, _ := ins.metaString(MetaGeneID)
	return s
}

// GeneName returns the annotated gene_name, or "".
func (ins *Insertion) GeneName() string {
	s, _ := ins.metaString(MetaGeneName)
	return s
}

// Sample returns the sample name carried in metadata, or "".
func (ins *Insertion) Sample() string {
	s, _ := ins.metaString(MetaSample)
	return s
}

// Sort orders insertions by seqname, position, then ID.
func Sort(insertions []Insertion) {
	sort.SliceStable(insertions, func(i, j int) bool {
		a, b := &insertions[i], &insertions[j]
		if a.Seqname != b.Seqname {
			return a.Seqname < b.Seqname
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.ID < b.ID
	})
}
