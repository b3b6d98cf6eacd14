package insertion

import (
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestNormalize(t *testing.T) {
	insertions := []Insertion{
		{ID: "INS_1", SupportJunction: 462, SupportSpanning: 103, Support: 565, Metadata: Metadata{}},
		{ID: "INS_2", SupportJunction: 0, SupportSpanning: 4, Support: 4, Metadata: Metadata{}},
	}
	assert.NoError(t, Normalize(insertions, 2_000_000))

	expect.EQ(t, insertions[0].Metadata[MetaFFPMJunction], 231.0)
	expect.EQ(t, insertions[0].Metadata[MetaFFPMSpanning], 51.5)
	expect.EQ(t, insertions[0].Metadata[MetaFFPM], 282.5)

	expect.EQ(t, insertions[1].Metadata[MetaFFPMJunction], 0.0)
	expect.EQ(t, insertions[1].Metadata[MetaFFPMSpanning], 2.0)
	expect.EQ(t, insertions[1].Metadata[MetaFFPM], 2.0)
}

func TestNormalizeBadFragmentCount(t *testing.T) {
	err := Normalize([]Insertion{{ID: "INS_1", Metadata: Metadata{}}}, 0)
	assert.NotNil(t, err)
	err = Normalize(nil, -5)
	assert.NotNil(t, err)
}

func TestStatsMerge(t *testing.T) {
	a := Stats{Fusions: 3, SkippedNonTransposon: 1, Insertions: 2, DroppedFeatureType: 1}
	b := Stats{Fusions: 5, Insertions: 4, DroppedOrientation: 2, DroppedBlacklist: 1}
	expect.EQ(t, a.Merge(b), Stats{
		Fusions:              8,
		SkippedNonTransposon: 1,
		Insertions:           6,
		DroppedFeatureType:   1,
		DroppedOrientation:   2,
		DroppedBlacklist:     1,
	})
}
