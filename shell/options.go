package shell

import (
	"fmt"
	"sort"
	"strings"
)

// Options holds per-flag argument lists for an external command, for
// example {"--num-threads": ["4"], "--fusion-search": []}. The zero value
// is usable.
type Options map[string][]string

// Set stores values (stringified) under flag, replacing any previous entry.
func (o Options) Set(flag string, values ...interface{}) {
	strs := make([]string, len(values))
	for i, v := range values {
		strs[i] = fmt.Sprint(v)
	}
	o[flag] = strs
}

// Merge returns a copy of o with every entry of other applied on top.
// Neither receiver nor argument is modified.
func (o Options) Merge(other Options) Options {
	merged := make(Options, len(o)+len(other))
	for flag, values := range o {
		merged[flag] = values
	}
	for flag, values := range other {
		merged[flag] = values
	}
	return merged
}

// Args flattens the options into command-line arguments. Flags are emitted
// in sorted order so constructed command lines are reproducible.
func (o Options) Args() []string {
	flags := make([]string, 0, len(o))
	for flag := range o {
		flags = append(flags, flag)
	}
	sort.Strings(flags)
	var args []string
	for _, flag := range flags {
		args = append(args, flag)
		args = append(args, o[flag]...)
	}
	return args
}

// ParseOptions splits a raw argument string such as
// "--limitBAMsortRAM 2000 --quiet" into Options. Tokens starting with '-'
// open a new flag; the tokens that follow become its values.
func ParseOptions(raw string) Options {
	opts := Options{}
	var current string
	for _, tok := range strings.Fields(raw) {
		if strings.HasPrefix(tok, "-") {
			current = tok
			opts[current] = nil
			continue
		}
		if current == "" {
			continue // stray value with no flag
		}
		opts[current] = append(opts[current], tok)
	}
	return opts
}
