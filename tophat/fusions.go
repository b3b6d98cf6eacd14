package tophat

import (
	"bufio"
	"context"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/pkg/errors"

	"github.com/sofiaff/imfusion/insertion"
)

// fusions.out is whitespace-separated with at least these columns:
// seqname pair ("16-T2onc"), left position, right position, strand pair
// ("ff".."rr"), junction reads, spanning pairs, spanning mates,
// contradicting reads, left flank, right flank. Further columns are
// ignored.
const fusionColumns = 10

// ReadFusions parses a TopHat2 fusions.out file into canonical fusions.
// Records with the transposon on exactly one side are kept and normalized
// so the genomic side comes first; all others count as skipped in stats.
func ReadFusions(ctx context.Context, path, transposonName string, stats *insertion.Stats) ([]insertion.Fusion, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer in.Close(ctx) // nolint: errcheck

	var fusions []insertion.Fusion
	sc := bufio.NewScanner(in.Reader(ctx))
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < fusionColumns {
			return nil, errors.Errorf("%s:%d: got %d columns, want at least %d",
				path, lineno, len(fields), fusionColumns)
		}
		stats.Fusions++
		fusion, ok, err := parseFusion(fields, transposonName)
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, lineno)
		}
		if !ok {
			stats.SkippedNonTransposon++
			continue
		}
		fusions = append(fusions, fusion)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return fusions, nil
}

// parseFusion converts one fusions.out record. ok is false for records
// without the transposon on exactly one side.
func parseFusion(fields []string, transposonName string) (insertion.Fusion, bool, error) {
	var f insertion.Fusion

	// Resolve which side is the transposon before splitting the pair, so
	// seqnames containing '-' cannot be split at the wrong place.
	pair := fields[0]
	var genomeSeq string
	var transposonFirst bool
	switch {
	case strings.HasPrefix(pair, transposonName+"-"):
		genomeSeq = strings.TrimPrefix(pair, transposonName+"-")
		transposonFirst = true
	case strings.HasSuffix(pair, "-"+transposonName):
		genomeSeq = strings.TrimSuffix(pair, "-"+transposonName)
	default:
		return f, false, nil
	}
	if genomeSeq == "" || genomeSeq == transposonName {
		return f, false, nil
	}

	posA, err := strconv.Atoi(fields[1])
	if err != nil {
		return f, false, errors.Errorf("bad position %q", fields[1])
	}
	posB, err := strconv.Atoi(fields[2])
	if err != nil {
		return f, false, errors.Errorf("bad position %q", fields[2])
	}
	if len(fields[3]) != 2 {
		return f, false, errors.Errorf("bad strand pair %q", fields[3])
	}
	strandA, err := strandSign(fields[3][0])
	if err != nil {
		return f, false, err
	}
	strandB, err := strandSign(fields[3][1])
	if err != nil {
		return f, false, err
	}
	junction, err := strconv.Atoi(fields[4])
	if err != nil {
		return f, false, errors.Errorf("bad junction support %q", fields[4])
	}
	spanning, err := strconv.Atoi(fields[5])
	if err != nil {
		return f, false, errors.Errorf("bad spanning support %q", fields[5])
	}
	for _, col := range []int{6, 7, 8, 9} {
		if _, err := strconv.Atoi(fields[col]); err != nil {
			return f, false, errors.Errorf("bad column %d %q", col+1, fields[col])
		}
	}

	f = insertion.Fusion{
		Seqname: genomeSeq,
		// The transposon orientation relative to the genome is the product
		// of the two side orientations, which is invariant under swapping
		// the sides.
		Strand:          strandA * strandB,
		SupportJunction: junction,
		SupportSpanning: spanning,
	}
	if transposonFirst {
		f.Position, f.Anchor = posB, posA
	} else {
		f.Position, f.Anchor = posA, posB
	}
	return f, true, nil
}

func strandSign(c byte) (int, error) {
	switch c {
	case 'f':
		return 1, nil
	case 'r':
		return -1, nil
	}
	return 0, errors.Errorf("bad strand %q", string(c))
}
