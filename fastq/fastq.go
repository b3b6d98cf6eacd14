// Package fastq provides minimal FASTQ scanning for the insertion
// pipeline: enough to validate read files and to count sequenced
// fragments for FFPM normalization.
package fastq

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/file"
)

var (
	// ErrShort is returned when a truncated FASTQ file is encountered.
	ErrShort = errors.New("short FASTQ file")
	// ErrInvalid is returned when an invalid FASTQ file is encountered.
	ErrInvalid = errors.New("invalid FASTQ file")
)

// A Read is a FASTQ read, comprising an ID, sequence, line 3
// ("unknown"), and a quality string.
type Read struct {
	ID, Seq, Unk, Qual string
}

var errEOF = errors.New("eof")

// Scanner reads FASTQ records. The Scan method fills the next read,
// returning a boolean indicating whether the scan succeeded. Scanners
// validate only the record framing: ID lines must begin with "@" and
// line 3 with "+".
type Scanner struct {
	b   *bufio.Scanner
	err error
}

// NewScanner constructs a Scanner reading raw FASTQ data from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{b: bufio.NewScanner(r)}
}

// Scan the next read into the provided read. Once Scan returns false, it
// never returns true again; check Err to distinguish EOF from an error.
func (f *Scanner) Scan(read *Read) bool {
	if f.err != nil {
		return false
	}
	if !f.b.Scan() {
		if f.err = f.b.Err(); f.err == nil {
			f.err = errEOF
		}
		return false
	}
	id := f.b.Bytes()
	if len(id) == 0 || id[0] != '@' {
		f.err = ErrInvalid
		return false
	}
	read.ID = string(id)
	if !f.scan() {
		return false
	}
	read.Seq = f.b.Text()
	if !f.scan() {
		return false
	}
	unk := f.b.Bytes()
	if len(unk) == 0 || unk[0] != '+' {
		f.err = ErrInvalid
		return false
	}
	read.Unk = string(unk)
	if !f.scan() {
		return false
	}
	read.Qual = f.b.Text()
	return true
}

func (f *Scanner) scan() bool {
	ok := f.b.Scan()
	if !ok {
		if f.err = f.b.Err(); f.err == nil {
			f.err = ErrShort
		}
	}
	return ok
}

// Err returns the scanning error, if any.
func (f *Scanner) Err() error {
	if f.err == errEOF {
		return nil
	}
	return f.err
}

// Count returns the number of FASTQ records in r.
func Count(r io.Reader) (int64, error) {
	sc := NewScanner(r)
	var (
		read Read
		n    int64
	)
	for sc.Scan(&read) {
		n++
	}
	return n, sc.Err()
}

// CountFragments counts the records in the FASTQ file at path, which may
// be gzip- or bzip2-compressed (detected from the path name). For
// paired-end data pass the R1 file; a fragment is one read pair.
func CountFragments(ctx context.Context, path string) (int64, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return 0, err
	}
	var r io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(r, in.Name()); u != nil {
		r = u
	}
	n, err := Count(r)
	if cerr := in.Close(ctx); cerr != nil && err == nil {
		err = cerr
	}
	return n, err
}
