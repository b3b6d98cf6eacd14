package tophat

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"

	"github.com/sofiaff/imfusion/reference"
	"github.com/sofiaff/imfusion/shell"
)

// flagValue returns the argument following flag in argv, or "".
func flagValue(argv []string, flag string) string {
	for i, arg := range argv {
		if arg == flag && i+1 < len(argv) {
			return argv[i+1]
		}
	}
	return ""
}

func hasArg(argv []string, want string) bool {
	for _, arg := range argv {
		if arg == want {
			return true
		}
	}
	return false
}

func recordingRunner(calls *[][]string) shell.Runner {
	return func(ctx context.Context, argv []string, stdout io.Writer) error {
		*calls = append(*calls, argv)
		return nil
	}
}

func TestBuildIndices(t *testing.T) {
	ctx := context.Background()
	ref := reference.New(t.TempDir())
	var calls [][]string
	ix := &Indexer{run: recordingRunner(&calls)}
	expect.EQ(t, ix.Dependencies(), []string{"bowtie-build", "tophat2"})
	assert.NoError(t, ix.BuildIndices(ctx, ref))
	assert.EQ(t, len(calls), 2)

	expect.EQ(t, calls[0], []string{"bowtie-build", ref.FastaPath(), ref.IndexPath()})

	tophat := calls[1]
	expect.EQ(t, tophat[0], "tophat2")
	expect.EQ(t, flagValue(tophat, "--GTF"), ref.GtfPath())
	expect.EQ(t, tophat[len(tophat)-1], ref.IndexPath())
	r := Reference{ref}
	expect.True(t, hasArg(tophat, "--transcriptome-index="+r.TranscriptomePath()), "args: %v", tophat)
	expect.True(t, hasArg(tophat, "--bowtie1"), "args: %v", tophat)

	// The scratch directory passed to tophat2 is cleaned up.
	scratch := flagValue(tophat, "--output-dir")
	expect.True(t, scratch != "")
	_, err := os.Stat(scratch)
	expect.True(t, os.IsNotExist(err))

	// Both log files are left in the reference directory.
	for _, name := range []string{"bowtie.log", "transcriptome.log"} {
		_, err := os.Stat(filepath.Join(ref.Path(), name))
		expect.NoError(t, err, "missing %s", name)
	}
}
