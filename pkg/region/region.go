// Package region resolves U.S. state names to the two-digit numeric codes
// used as feature identifiers in the us-atlas topology.
//
// The table covers the 50 states and the District of Columbia. Both
// directions are map lookups: [Resolver.Code] for joining statistics rows by
// name, [Resolver.Name] for labeling shapes by feature id.
package region

import (
	"fmt"
	"slices"
)

// Code is a two-character numeric region identifier such as "50" (Vermont).
type Code string

// Entry pairs a display name with its code.
type Entry struct {
	Name string
	Code Code
}

// States is the fixed 51-entry table of U.S. states plus the District of
// Columbia, in alphabetical order.
var States = []Entry{
	{"Alabama", "01"}, {"Alaska", "02"}, {"Arizona", "04"}, {"Arkansas", "05"},
	{"California", "06"}, {"Colorado", "08"}, {"Connecticut", "09"}, {"Delaware", "10"},
	{"District of Columbia", "11"}, {"Florida", "12"}, {"Georgia", "13"}, {"Hawaii", "15"},
	{"Idaho", "16"}, {"Illinois", "17"}, {"Indiana", "18"}, {"Iowa", "19"},
	{"Kansas", "20"}, {"Kentucky", "21"}, {"Louisiana", "22"}, {"Maine", "23"},
	{"Maryland", "24"}, {"Massachusetts", "25"}, {"Michigan", "26"}, {"Minnesota", "27"},
	{"Mississippi", "28"}, {"Missouri", "29"}, {"Montana", "30"}, {"Nebraska", "31"},
	{"Nevada", "32"}, {"New Hampshire", "33"}, {"New Jersey", "34"}, {"New Mexico", "35"},
	{"New York", "36"}, {"North Carolina", "37"}, {"North Dakota", "38"}, {"Ohio", "39"},
	{"Oklahoma", "40"}, {"Oregon", "41"}, {"Pennsylvania", "42"}, {"Rhode Island", "44"},
	{"South Carolina", "45"}, {"South Dakota", "46"}, {"Tennessee", "47"}, {"Texas", "48"},
	{"Utah", "49"}, {"Vermont", "50"}, {"Virginia", "51"}, {"Washington", "53"},
	{"West Virginia", "54"}, {"Wisconsin", "55"}, {"Wyoming", "56"},
}

// Resolver maps names to codes and back. It is read-only after construction
// and safe for concurrent use.
type Resolver struct {
	byName map[string]Code
	byCode map[Code]string
}

var defaultResolver = mustResolver(States)

// Default returns the shared resolver over [States].
func Default() *Resolver { return defaultResolver }

// NewResolver builds a resolver from entries. Names and codes must both be
// unique and non-empty.
func NewResolver(entries []Entry) (*Resolver, error) {
	r := &Resolver{
		byName: make(map[string]Code, len(entries)),
		byCode: make(map[Code]string, len(entries)),
	}
	for _, e := range entries {
		if e.Name == "" || e.Code == "" {
			return nil, fmt.Errorf("region: empty name or code in entry %+v", e)
		}
		if _, dup := r.byName[e.Name]; dup {
			return nil, fmt.Errorf("region: duplicate name %q", e.Name)
		}
		if _, dup := r.byCode[e.Code]; dup {
			return nil, fmt.Errorf("region: duplicate code %q", e.Code)
		}
		r.byName[e.Name] = e.Code
		r.byCode[e.Code] = e.Name
	}
	return r, nil
}

func mustResolver(entries []Entry) *Resolver {
	r, err := NewResolver(entries)
	if err != nil {
		panic(err)
	}
	return r
}

// Code returns the code for an exact, case-sensitive name match.
func (r *Resolver) Code(name string) (Code, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// Name returns the display name for a code.
func (r *Resolver) Name(code Code) (string, bool) {
	n, ok := r.byCode[code]
	return n, ok
}

// Codes returns every known code in ascending order.
func (r *Resolver) Codes() []Code {
	codes := make([]Code, 0, len(r.byCode))
	for c := range r.byCode {
		codes = append(codes, c)
	}
	slices.Sort(codes)
	return codes
}

// Len returns the number of entries.
func (r *Resolver) Len() int { return len(r.byName) }
