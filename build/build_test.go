package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"

	"github.com/sofiaff/imfusion/reference"
)

type fakeIndexer struct {
	deps  []string
	built []reference.Reference
	err   error
}

func (f *fakeIndexer) Dependencies() []string { return f.deps }

func (f *fakeIndexer) BuildIndices(ctx context.Context, ref reference.Reference) error {
	f.built = append(f.built, ref)
	return f.err
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0666))
	return path
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	job := Job{
		// Genome without a trailing newline, to exercise separator
		// insertion.
		GenomePath:     writeTestFile(t, dir, "genome.fa", ">1\nACGTACGT"),
		TransposonPath: writeTestFile(t, dir, "t2onc.fa", ">T2onc\nTTAACC\n"),
		GtfPath:        writeTestFile(t, dir, "genes.gtf", "1\ttest\tgene\t1\t8\t.\t+\t.\tgene_id \"G1\";\n"),
		FeaturesPath:   writeTestFile(t, dir, "features.txt", "name\tstart\tend\tstrand\ttype\nSA\t1\t3\t-1\tSA\n"),
		OutputDir:      filepath.Join(dir, "ref"),
	}
	indexer := &fakeIndexer{}
	ref, err := Run(ctx, indexer, job)
	assert.NoError(t, err)
	expect.EQ(t, len(indexer.built), 1)
	expect.EQ(t, indexer.built[0].Path(), ref.Path())

	fasta, err := os.ReadFile(ref.FastaPath())
	assert.NoError(t, err)
	expect.EQ(t, string(fasta), ">1\nACGTACGT\n>T2onc\nTTAACC\n")

	for _, path := range []string{ref.GtfPath(), ref.TransposonPath(), ref.FeaturesPath()} {
		_, err := os.Stat(path)
		expect.NoError(t, err, "missing %s", path)
	}
	name, err := ref.TransposonName(ctx)
	assert.NoError(t, err)
	expect.EQ(t, name, "T2onc")
}

func TestRunExistingOutput(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	job := Job{
		GenomePath:     writeTestFile(t, dir, "genome.fa", ">1\nACGT\n"),
		TransposonPath: writeTestFile(t, dir, "t2onc.fa", ">T2onc\nTT\n"),
		OutputDir:      dir,
	}
	_, err := Run(ctx, &fakeIndexer{}, job)
	assert.NotNil(t, err)
	assert.HasSubstr(t, err.Error(), "already exists")
}

func TestRunMissingDependency(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	job := Job{OutputDir: filepath.Join(dir, "ref")}
	_, err := Run(ctx, &fakeIndexer{deps: []string{"no-such-tool-xyz"}}, job)
	assert.NotNil(t, err)
	assert.HasSubstr(t, err.Error(), "no-such-tool-xyz")
	_, statErr := os.Stat(job.OutputDir)
	expect.True(t, os.IsNotExist(statErr))
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	registry.Register("tophat", func() Indexer { return &fakeIndexer{} })
	registry.Register("star", func() Indexer { return &fakeIndexer{} })
	expect.EQ(t, registry.Names(), []string{"star", "tophat"})

	factory, err := registry.Get("tophat")
	assert.NoError(t, err)
	assert.NotNil(t, factory())

	_, err = registry.Get("bwa")
	assert.NotNil(t, err)
	assert.HasSubstr(t, err.Error(), "star, tophat")
}
