package star

import (
	"bufio"
	"context"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/pkg/errors"

	"github.com/sofiaff/imfusion/insertion"
)

// Chimeric.out.junction is tab-separated with at least these columns:
// donor seqname, donor position, donor strand (+/-), acceptor seqname,
// acceptor position, acceptor strand, junction type (-1 for an
// encompassing read pair, >= 0 for a junction-spanning read), left repeat
// length, right repeat length. A read name and alignment details follow
// and are ignored.
const chimericColumns = 9

// junctionSite identifies one chimeric junction.
type junctionSite struct {
	seqnameA string
	posA     int
	strandA  int
	seqnameB string
	posB     int
	strandB  int
}

// chimericSupport accumulates per-site read counts.
type chimericSupport struct {
	junction int
	spanning int
}

// ReadChimericJunctions parses a STAR Chimeric.out.junction file into
// canonical fusions. Per-read records are grouped by junction site;
// groups with the transposon on exactly one side are kept and normalized
// so the genomic side comes first, all others count as skipped in stats.
// Fusions are returned in order of first appearance.
func ReadChimericJunctions(ctx context.Context, path, transposonName string, stats *insertion.Stats) ([]insertion.Fusion, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer in.Close(ctx) // nolint: errcheck

	support := map[junctionSite]*chimericSupport{}
	var order []junctionSite
	sc := bufio.NewScanner(in.Reader(ctx))
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		site, junction, err := parseChimericLine(strings.Fields(line))
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, lineno)
		}
		s, ok := support[site]
		if !ok {
			s = &chimericSupport{}
			support[site] = s
			order = append(order, site)
		}
		if junction {
			s.junction++
		} else {
			s.spanning++
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	var fusions []insertion.Fusion
	for _, site := range order {
		stats.Fusions++
		s := support[site]
		f := insertion.Fusion{
			Strand:          site.strandA * site.strandB,
			SupportJunction: s.junction,
			SupportSpanning: s.spanning,
		}
		switch {
		case site.seqnameA == transposonName && site.seqnameB != transposonName:
			f.Seqname, f.Position, f.Anchor = site.seqnameB, site.posB, site.posA
		case site.seqnameB == transposonName && site.seqnameA != transposonName:
			f.Seqname, f.Position, f.Anchor = site.seqnameA, site.posA, site.posB
		default:
			stats.SkippedNonTransposon++
			continue
		}
		fusions = append(fusions, f)
	}
	return fusions, nil
}

// parseChimericLine converts one per-read record. junction reports
// whether the read spans the junction (as opposed to an encompassing
// mate pair).
func parseChimericLine(fields []string) (junctionSite, bool, error) {
	var site junctionSite
	if len(fields) < chimericColumns {
		return site, false, errors.Errorf("got %d columns, want at least %d",
			len(fields), chimericColumns)
	}
	var err error
	site.seqnameA = fields[0]
	if site.posA, err = strconv.Atoi(fields[1]); err != nil {
		return site, false, errors.Errorf("bad position %q", fields[1])
	}
	if site.strandA, err = strandSign(fields[2]); err != nil {
		return site, false, err
	}
	site.seqnameB = fields[3]
	if site.posB, err = strconv.Atoi(fields[4]); err != nil {
		return site, false, errors.Errorf("bad position %q", fields[4])
	}
	if site.strandB, err = strandSign(fields[5]); err != nil {
		return site, false, err
	}
	junctionType, err := strconv.Atoi(fields[6])
	if err != nil {
		return site, false, errors.Errorf("bad junction type %q", fields[6])
	}
	for _, col := range []int{7, 8} {
		if _, err := strconv.Atoi(fields[col]); err != nil {
			return site, false, errors.Errorf("bad repeat length %q", fields[col])
		}
	}
	return site, junctionType >= 0, nil
}

func strandSign(s string) (int, error) {
	switch s {
	case "+":
		return 1, nil
	case "-":
		return -1, nil
	}
	return 0, errors.Errorf("bad strand %q", s)
}
