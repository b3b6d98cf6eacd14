package insertion

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/base/tsv"
	"github.com/pkg/errors"
)

// fixedColumns are the leading columns of the insertion TSV format;
// metadata columns follow in sorted order.
var fixedColumns = []string{
	"id", "seqname", "position", "strand",
	"support_junction", "support_spanning", "support",
}

// WriteTSV writes insertions as a tab-separated table with a header row.
// Metadata keys present in any insertion become trailing columns; absent
// values are left empty.
func WriteTSV(w io.Writer, insertions []Insertion) error {
	keySet := map[string]bool{}
	for _, ins := range insertions {
		for key := range ins.Metadata {
			keySet[key] = true
		}
	}
	metaKeys := make([]string, 0, len(keySet))
	for key := range keySet {
		metaKeys = append(metaKeys, key)
	}
	sort.Strings(metaKeys)

	out := tsv.NewWriter(w)
	out.WriteString(strings.Join(append(append([]string{}, fixedColumns...), metaKeys...), "\t"))
	if err := out.EndLine(); err != nil {
		return err
	}
	for _, ins := range insertions {
		out.WriteString(ins.ID)
		out.WriteString(ins.Seqname)
		out.WriteString(strconv.Itoa(ins.Position))
		out.WriteString(strconv.Itoa(ins.Strand))
		out.WriteString(strconv.Itoa(ins.SupportJunction))
		out.WriteString(strconv.Itoa(ins.SupportSpanning))
		out.WriteString(strconv.Itoa(ins.Support))
		for _, key := range metaKeys {
			out.WriteString(formatMetaValue(ins.Metadata[key]))
		}
		if err := out.EndLine(); err != nil {
			return err
		}
	}
	return out.Flush()
}

func formatMetaValue(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return ""
	}
}

// intMetaKeys and floatMetaKeys fix the parsed type of known metadata
// columns so a write/read round trip preserves comparisons.
var intMetaKeys = map[string]bool{
	MetaGeneStrand:       true,
	MetaFeatureStrand:    true,
	MetaTransposonAnchor: true,
}

func isFloatMetaKey(key string) bool {
	return strings.HasPrefix(key, "ffpm")
}

// ReadTSV reads a table written by WriteTSV (or assembled by hand, e.g.
// merged across samples with a "sample" column).
func ReadTSV(r io.Reader) ([]Insertion, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("read insertions: empty input")
	}
	header := strings.Split(sc.Text(), "\t")
	if len(header) < len(fixedColumns) {
		return nil, errors.Errorf("read insertions: expected at least %d columns, got %d",
			len(fixedColumns), len(header))
	}
	for i, want := range fixedColumns {
		if header[i] != want {
			return nil, errors.Errorf("read insertions: column %d is %q, want %q", i+1, header[i], want)
		}
	}
	metaKeys := header[len(fixedColumns):]

	var insertions []Insertion
	nLine := 1
	for sc.Scan() {
		nLine++
		line := sc.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != len(header) {
			return nil, errors.Errorf("read insertions: line %d has %d columns, want %d",
				nLine, len(fields), len(header))
		}
		ins, err := parseRow(fields, metaKeys)
		if err != nil {
			return nil, errors.Wrapf(err, "read insertions: line %d", nLine)
		}
		insertions = append(insertions, ins)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return insertions, nil
}

func parseRow(fields, metaKeys []string) (Insertion, error) {
	var (
		ins Insertion
		err error
	)
	ins.ID = fields[0]
	ins.Seqname = fields[1]
	if ins.Position, err = strconv.Atoi(fields[2]); err != nil {
		return ins, errors.Wrap(err, "bad position")
	}
	if ins.Strand, err = strconv.Atoi(fields[3]); err != nil {
		return ins, errors.Wrap(err, "bad strand")
	}
	if ins.SupportJunction, err = strconv.Atoi(fields[4]); err != nil {
		return ins, errors.Wrap(err, "bad support_junction")
	}
	if ins.SupportSpanning, err = strconv.Atoi(fields[5]); err != nil {
		return ins, errors.Wrap(err, "bad support_spanning")
	}
	if ins.Support, err = strconv.Atoi(fields[6]); err != nil {
		return ins, errors.Wrap(err, "bad support")
	}
	ins.Metadata = Metadata{}
	for i, key := range metaKeys {
		raw := fields[len(fixedColumns)+i]
		if raw == "" {
			continue
		}
		switch {
		case intMetaKeys[key]:
			v, err := strconv.Atoi(raw)
			if err != nil {
				return ins, errors.Wrapf(err, "bad %s", key)
			}
			ins.Metadata[key] = v
		case isFloatMetaKey(key):
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return ins, errors.Wrapf(err, "bad %s", key)
			}
			ins.Metadata[key] = v
		default:
			ins.Metadata[key] = raw
		}
	}
	return ins, nil
}
