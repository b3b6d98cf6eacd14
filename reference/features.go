package reference

import (
	"context"
	"io"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/pkg/errors"
)

// Feature types as used in the transposon feature table.
const (
	FeatureSpliceAcceptor = "SA"
	FeatureSpliceDonor    = "SD"
)

// Feature is one annotated element of the transposon sequence, for example
// a splice acceptor used for gene trapping. Coordinates are 1-based and
// inclusive, relative to the transposon sequence.
type Feature struct {
	Name   string
	Start  int
	End    int
	Strand int
	Type   string
}

// Features is the transposon feature table, ordered as read from disk.
type Features []Feature

// ReadFeatures reads a feature table. The file is tab-separated with a
// header row and columns name, start, end, strand, type.
func ReadFeatures(ctx context.Context, path string) (Features, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer in.Close(ctx) // nolint: errcheck

	r := tsv.NewReader(in.Reader(ctx))
	r.HasHeaderRow = true

	var features Features
	row := struct {
		Name   string
		Start  int
		End    int
		Strand int
		Type   string
	}{}
	for {
		if err := r.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrapf(err, "read features %s", path)
		}
		if row.Strand != 1 && row.Strand != -1 {
			return nil, errors.Errorf("read features %s: feature %s: strand must be 1 or -1, got %d",
				path, row.Name, row.Strand)
		}
		features = append(features, Feature(row))
	}
	return features, nil
}

// Find returns the feature whose span contains the given transposon
// position, or nil when the position falls outside every feature. When
// features overlap the first match in table order wins.
func (fs Features) Find(pos int) *Feature {
	for i := range fs {
		if pos >= fs[i].Start && pos <= fs[i].End {
			return &fs[i]
		}
	}
	return nil
}
