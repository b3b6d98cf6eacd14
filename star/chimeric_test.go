package star

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"

	"github.com/sofiaff/imfusion/insertion"
)

func TestReadChimericJunctions(t *testing.T) {
	ctx := context.Background()
	var stats insertion.Stats
	fusions, err := ReadChimericJunctions(ctx,
		filepath.Join("testdata", "Chimeric.out.junction"), "T2onc", &stats)
	assert.NoError(t, err)
	expect.EQ(t, stats.Fusions, 4)
	expect.EQ(t, stats.SkippedNonTransposon, 1)
	expect.EQ(t, fusions, []insertion.Fusion{
		{Seqname: "16", Position: 52141093, Strand: -1, Anchor: 1539, SupportJunction: 3, SupportSpanning: 1},
		{Seqname: "11", Position: 79472250, Strand: 1, Anchor: 550, SupportJunction: 2},
		{Seqname: "1", Position: 182448297, Strand: 1, Anchor: 120, SupportJunction: 1},
	})
}

func TestReadChimericJunctionsErrors(t *testing.T) {
	ctx := context.Background()
	for _, test := range []struct {
		name, line, want string
	}{
		{"columns", "16\t100\t+\tT2onc\t200\t+\t0\t0", "columns"},
		{"strand", "16\t100\t*\tT2onc\t200\t+\t0\t0\t0", "bad strand"},
		{"position", "16\tabc\t+\tT2onc\t200\t+\t0\t0\t0", "bad position"},
		{"type", "16\t100\t+\tT2onc\t200\t+\tx\t0\t0", "bad junction type"},
	} {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "Chimeric.out.junction")
			assert.NoError(t, os.WriteFile(path, []byte(test.line+"\n"), 0666))
			var stats insertion.Stats
			_, err := ReadChimericJunctions(ctx, path, "T2onc", &stats)
			assert.NotNil(t, err)
			assert.HasSubstr(t, err.Error(), test.want)
		})
	}
}

func TestReadChimericJunctionsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "Chimeric.out.junction")
	assert.NoError(t, os.WriteFile(path, nil, 0666))
	var stats insertion.Stats
	fusions, err := ReadChimericJunctions(ctx, path, "T2onc", &stats)
	assert.NoError(t, err)
	expect.EQ(t, len(fusions), 0)
	expect.EQ(t, stats.Fusions, 0)
}
