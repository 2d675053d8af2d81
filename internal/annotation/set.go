// SPDX-License-Identifier: Apache-2.0

package annotation

import (
	"cmp"
	"encoding/json"
	"slices"
	"strconv"
	"strings"
)

// Set holds annotations keyed by full structural equality. It is not safe
// for concurrent mutation.
type Set struct {
	items map[string]Annotation
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{items: map[string]Annotation{}}
}

// key returns the structural identity of an annotation. Every field is
// written length-prefixed with its raw bytes, so no two distinct records
// share a key.
func key(a Annotation) string {
	r := a.Record()
	var b strings.Builder
	field := func(s string) {
		b.WriteString(strconv.Itoa(len(s)))
		b.WriteByte(':')
		b.WriteString(s)
	}
	for _, s := range []string{
		string(r.Kind), r.Target, r.Quote, r.Comment, r.Source, r.ManifestDir, r.Path,
		string(r.Level), string(r.Format), r.Feature, r.TrackingIssue,
	} {
		field(s)
	}
	for _, n := range []int{r.AnnoLine, r.AnnoColumn, r.ItemLine, r.ItemColumn, len(r.Tags)} {
		field(strconv.Itoa(n))
	}
	for _, tag := range r.Tags {
		field(tag)
	}
	return b.String()
}

// Insert validates a and adds it to the set. Exact repeats are collapsed.
func (s *Set) Insert(a Annotation) error {
	if err := a.Validate(); err != nil {
		return err
	}
	s.items[key(a)] = a
	return nil
}

// Contains reports whether an annotation structurally equal to a is present.
func (s *Set) Contains(a Annotation) bool {
	_, ok := s.items[key(a)]
	return ok
}

func (s *Set) Len() int {
	return len(s.items)
}

// Merge adds every annotation of other to s.
func (s *Set) Merge(other *Set) {
	if other == nil {
		return
	}
	for k, a := range other.items {
		s.items[k] = a
	}
}

// Clone returns a shallow copy of the set.
func (s *Set) Clone() *Set {
	out := &Set{items: make(map[string]Annotation, len(s.items))}
	for k, a := range s.items {
		out.items[k] = a
	}
	return out
}

// Sorted returns the annotations in a stable order suitable for reports.
func (s *Set) Sorted() []Annotation {
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(x, y string) int {
		a, b := s.items[x], s.items[y]
		return cmp.Or(
			cmp.Compare(a.Source, b.Source),
			cmp.Compare(a.Location.AnnoLine, b.Location.AnnoLine),
			cmp.Compare(a.Location.AnnoColumn, b.Location.AnnoColumn),
			cmp.Compare(a.Kind(), b.Kind()),
			cmp.Compare(a.Target, b.Target),
			cmp.Compare(a.Quote, b.Quote),
			cmp.Compare(x, y),
		)
	})
	out := make([]Annotation, len(keys))
	for i, k := range keys {
		out[i] = s.items[k]
	}
	return out
}

// Records returns the sorted annotations in their wire shape.
func (s *Set) Records() []Record {
	sorted := s.Sorted()
	out := make([]Record, len(sorted))
	for i, a := range sorted {
		out[i] = a.Record()
	}
	return out
}

func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Records())
}
