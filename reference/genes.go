package reference

import (
	"bufio"
	"context"
	"strconv"
	"strings"

	"github.com/biogo/store/interval"
	"github.com/grailbio/base/file"
	"github.com/pkg/errors"
)

// Gene is one gene record from the reference GTF.
type Gene struct {
	ID      string
	Name    string
	Seqname string
	Start   int // 1-based, inclusive
	End     int // 1-based, inclusive
	Strand  int
}

// geneInterval adapts a Gene for the interval tree. Ranges are stored
// half-open.
type geneInterval struct {
	start, end int
	id         uintptr
	gene       *Gene
}

func (iv geneInterval) Overlap(b interval.IntRange) bool {
	return iv.end > b.Start && iv.start < b.End
}
func (iv geneInterval) Range() interval.IntRange {
	return interval.IntRange{Start: iv.start, End: iv.end}
}
func (iv geneInterval) ID() uintptr { return iv.id }

// Genes supports position-based gene lookup over the records of a
// reference GTF. Construct with ReadGenes; lookups are thread compatible.
type Genes struct {
	trees map[string]*interval.IntTree
	byID  map[string]*Gene
	n     int
}

// ReadGenes scans a GTF file and indexes its "gene" records. Other record
// types (transcripts, exons) are ignored here; they only matter to the
// external aligners.
func ReadGenes(ctx context.Context, gtfPath string) (*Genes, error) {
	in, err := file.Open(ctx, gtfPath)
	if err != nil {
		return nil, err
	}
	defer in.Close(ctx) // nolint: errcheck

	genes := &Genes{
		trees: map[string]*interval.IntTree{},
		byID:  map[string]*Gene{},
	}
	sc := bufio.NewScanner(in.Reader(ctx))
	nLine := 0
	for sc.Scan() {
		nLine++
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 9 {
			return nil, errors.Errorf("read gtf %s:%d: expected 9 columns, got %d", gtfPath, nLine, len(fields))
		}
		if fields[2] != "gene" {
			continue
		}
		start, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, errors.Wrapf(err, "read gtf %s:%d: bad start", gtfPath, nLine)
		}
		end, err := strconv.Atoi(fields[4])
		if err != nil {
			return nil, errors.Wrapf(err, "read gtf %s:%d: bad end", gtfPath, nLine)
		}
		strand := 0
		switch fields[6] {
		case "+":
			strand = 1
		case "-":
			strand = -1
		default:
			return nil, errors.Errorf("read gtf %s:%d: bad strand %q", gtfPath, nLine, fields[6])
		}
		attrs := parseAttributes(fields[8])
		gene := &Gene{
			ID:      attrs["gene_id"],
			Name:    attrs["gene_name"],
			Seqname: fields[0],
			Start:   start,
			End:     end,
			Strand:  strand,
		}
		if gene.ID == "" {
			return nil, errors.Errorf("read gtf %s:%d: gene record without gene_id", gtfPath, nLine)
		}
		if err := genes.insert(gene); err != nil {
			return nil, errors.Wrapf(err, "read gtf %s:%d", gtfPath, nLine)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "read gtf %s", gtfPath)
	}
	return genes, nil
}

func (g *Genes) insert(gene *Gene) error {
	tree := g.trees[gene.Seqname]
	if tree == nil {
		tree = &interval.IntTree{}
		g.trees[gene.Seqname] = tree
	}
	g.n++
	g.byID[gene.ID] = gene
	return tree.Insert(geneInterval{
		start: gene.Start,
		end:   gene.End + 1,
		id:    uintptr(g.n),
		gene:  gene,
	}, false)
}

// Len returns the number of indexed genes.
func (g *Genes) Len() int { return g.n }

// ByID returns the gene with the given gene_id, or nil.
func (g *Genes) ByID(id string) *Gene { return g.byID[id] }

// Find returns the gene containing the given position, or nil when no gene
// overlaps it. When several genes overlap, the one with the smallest start
// (then smallest end) wins so repeated calls are deterministic.
func (g *Genes) Find(seqname string, pos int) *Gene {
	tree := g.trees[seqname]
	if tree == nil {
		return nil
	}
	hits := tree.Get(geneInterval{start: pos, end: pos + 1})
	var best *Gene
	for _, hit := range hits {
		gene := hit.(geneInterval).gene
		if best == nil || gene.Start < best.Start ||
			(gene.Start == best.Start && gene.End < best.End) {
			best = gene
		}
	}
	return best
}

// parseAttributes splits a GTF attribute column of the form
// `gene_id "X"; gene_name "Y";` into a map.
func parseAttributes(s string) map[string]string {
	attrs := map[string]string{}
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		i := strings.IndexByte(part, ' ')
		if i < 0 {
			continue
		}
		key := part[:i]
		value := strings.Trim(strings.TrimSpace(part[i+1:]), `"`)
		attrs[key] = value
	}
	return attrs
}
