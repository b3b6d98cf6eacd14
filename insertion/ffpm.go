package insertion

import "github.com/pkg/errors"

// Normalize attaches FFPM (fragments per million) metadata to each
// insertion: support counts scaled by 1e6 over the total number of
// sequenced fragments. The insertions are modified in place.
func Normalize(insertions []Insertion, fragments int64) error {
	if fragments <= 0 {
		return errors.Errorf("ffpm normalization: fragment count must be positive, got %d", fragments)
	}
	scale := 1e6 / float64(fragments)
	for i := range insertions {
		ins := &insertions[i]
		junction := float64(ins.SupportJunction) * scale
		spanning := float64(ins.SupportSpanning) * scale
		ins.Metadata[MetaFFPMJunction] = junction
		ins.Metadata[MetaFFPMSpanning] = spanning
		ins.Metadata[MetaFFPM] = junction + spanning
	}
	return nil
}
