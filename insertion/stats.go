package insertion

// Stats summarizes one insertion-identification run.
type Stats struct {
	// Fusions is the number of fusion records read from the aligner
	// output.
	Fusions int
	// SkippedNonTransposon counts fusion records that did not involve the
	// transposon sequence on exactly one side.
	SkippedNonTransposon int
	// Insertions is the number of insertions derived before filtering.
	Insertions int
	// Dropped counts per filter.
	DroppedFeatureType int
	DroppedOrientation int
	DroppedBlacklist   int
}

// Merge adds the field values of the two Stats objects and creates new
// Stats.
func (s Stats) Merge(o Stats) Stats {
	s.Fusions += o.Fusions
	s.SkippedNonTransposon += o.SkippedNonTransposon
	s.Insertions += o.Insertions
	s.DroppedFeatureType += o.DroppedFeatureType
	s.DroppedOrientation += o.DroppedOrientation
	s.DroppedBlacklist += o.DroppedBlacklist
	return s
}
