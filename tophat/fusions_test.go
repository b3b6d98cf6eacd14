package tophat

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"

	"github.com/sofiaff/imfusion/insertion"
)

func TestReadFusions(t *testing.T) {
	ctx := context.Background()
	var stats insertion.Stats
	fusions, err := ReadFusions(ctx, filepath.Join("testdata", "fusions.out"), "T2onc", &stats)
	assert.NoError(t, err)
	expect.EQ(t, len(fusions), 10)
	expect.EQ(t, stats.Fusions, 11)
	expect.EQ(t, stats.SkippedNonTransposon, 1)

	expect.EQ(t, fusions[3], insertion.Fusion{
		Seqname:         "16",
		Position:        52141093,
		Strand:          -1,
		Anchor:          1539,
		SupportJunction: 462,
		SupportSpanning: 103,
	})
	// Transposon on the left side: normalized so the genomic side comes
	// first, with the strand preserved.
	expect.EQ(t, fusions[4], insertion.Fusion{
		Seqname:         "19",
		Position:        32800500,
		Strand:          -1,
		Anchor:          1433,
		SupportJunction: 150,
		SupportSpanning: 20,
	})
}

func TestReadFusionsErrors(t *testing.T) {
	ctx := context.Background()
	for _, test := range []struct {
		name, line, want string
	}{
		{"columns", "16-T2onc\t100\t200\tff\t1\t1\t1\t0\t20", "columns"},
		{"strand", "16-T2onc\t100\t200\tfx\t1\t1\t1\t0\t20\t20", "bad strand"},
		{"strandpair", "16-T2onc\t100\t200\tffr\t1\t1\t1\t0\t20\t20", "bad strand pair"},
		{"position", "16-T2onc\tabc\t200\tff\t1\t1\t1\t0\t20\t20", "bad position"},
		{"support", "16-T2onc\t100\t200\tff\tx\t1\t1\t0\t20\t20", "bad junction support"},
	} {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "fusions.out")
			assert.NoError(t, os.WriteFile(path, []byte(test.line+"\n"), 0666))
			var stats insertion.Stats
			_, err := ReadFusions(ctx, path, "T2onc", &stats)
			assert.NotNil(t, err)
			assert.HasSubstr(t, err.Error(), test.want)
		})
	}
}

func TestReadFusionsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fusions.out")
	assert.NoError(t, os.WriteFile(path, nil, 0666))
	var stats insertion.Stats
	fusions, err := ReadFusions(ctx, path, "T2onc", &stats)
	assert.NoError(t, err)
	expect.EQ(t, len(fusions), 0)
	expect.EQ(t, stats.Fusions, 0)
}
