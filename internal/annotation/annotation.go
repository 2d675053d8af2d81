// SPDX-License-Identifier: Apache-2.0

package annotation

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrMissingTarget is returned when an annotation has no target specification.
	ErrMissingTarget = errors.New("missing target")
	// ErrEmptyQuote is returned when a citation or exception has nothing to quote.
	ErrEmptyQuote = errors.New("empty quote")
	// ErrMissingDetails is returned when an annotation carries no kind payload.
	ErrMissingDetails = errors.New("missing annotation details")
	// ErrQuoteNotNormalized is returned when a quote was not passed through NormalizeQuote.
	ErrQuoteNotNormalized = errors.New("quote is not normalized")
)

// Location is the position of an annotation inside a scanned source file.
// Declaration-file annotations leave it zero.
type Location struct {
	// AnnoLine and AnnoColumn point at the first line of the annotation comment.
	AnnoLine   int
	AnnoColumn int
	// ItemLine and ItemColumn point at the code the annotation is attached to.
	ItemLine   int
	ItemColumn int
	Path       string
}

// IsZero reports whether the location is the declaration-file placeholder.
func (l Location) IsZero() bool {
	return l == Location{}
}

// Details is the kind-specific payload of an annotation. It is implemented
// only by Citation, Exception and Todo.
type Details interface {
	Kind() Kind
	details()
}

// Citation claims that the annotated item implements the quoted text.
type Citation struct {
	Level  Level
	Format Format
}

func (Citation) Kind() Kind { return KindCitation }
func (Citation) details() {}

// Exception records that the quoted text is deliberately not implemented.
type Exception struct{}

func (Exception) Kind() Kind { return KindException }
func (Exception) details() {}

// Todo records that the quoted text is not implemented yet.
type Todo struct {
	Feature       string
	TrackingIssue string
	// Tags is kept sorted and free of duplicates; use NewTags to build it.
	Tags []string
}

func (Todo) Kind() Kind { return KindTodo }
func (Todo) details() {}

// NewTags returns the sorted, deduplicated form of tags. The result is never nil.
func NewTags(tags ...string) []string {
	out := make([]string, 0, len(tags))
	out = append(out, tags...)
	slices.Sort(out)
	return slices.Compact(out)
}

// Annotation is one piece of evidence linking text to a requirement.
type Annotation struct {
	Target string
	// Quote is the normalized excerpt of specification text.
	Quote string
	// Comment is the exception or todo reason, or the raw quote for citations.
	Comment string
	// Source is the file that produced the annotation.
	Source string
	// ManifestDir is the context for resolving relative references downstream.
	// For declaration files it holds the declaration file path itself.
	ManifestDir string
	Location    Location
	Details     Details
}

// Kind returns the annotation kind, or the empty Kind when Details is unset.
func (a Annotation) Kind() Kind {
	if a.Details == nil {
		return ""
	}
	return a.Details.Kind()
}

// Level returns the citation level, LevelAuto for other kinds.
func (a Annotation) Level() Level {
	if c, ok := a.Details.(Citation); ok && c.Level != "" {
		return c.Level
	}
	return LevelAuto
}

// Format returns the citation format, FormatAuto for other kinds.
func (a Annotation) Format() Format {
	if c, ok := a.Details.(Citation); ok && c.Format != "" {
		return c.Format
	}
	return FormatAuto
}

// Feature returns the todo feature, empty for other kinds.
func (a Annotation) Feature() string {
	if t, ok := a.Details.(Todo); ok {
		return t.Feature
	}
	return ""
}

// TrackingIssue returns the todo tracking issue, empty for other kinds.
func (a Annotation) TrackingIssue() string {
	if t, ok := a.Details.(Todo); ok {
		return t.TrackingIssue
	}
	return ""
}

// Tags returns the todo tags, an empty slice for other kinds.
func (a Annotation) Tags() []string {
	if t, ok := a.Details.(Todo); ok {
		return NewTags(t.Tags...)
	}
	return []string{}
}

// Validate checks the invariants every annotation must hold before it is
// accepted as evidence.
func (a Annotation) Validate() error {
	if a.Target == "" {
		return ErrMissingTarget
	}
	if a.Details == nil {
		return ErrMissingDetails
	}
	if NormalizeQuote(a.Quote) != a.Quote {
		return fmt.Errorf("%w: %q", ErrQuoteNotNormalized, a.Quote)
	}
	switch a.Details.(type) {
	case Citation, Exception:
		if a.Quote == "" {
			return fmt.Errorf("%s: %w", a.Kind(), ErrEmptyQuote)
		}
	}
	return nil
}

// Record is the flat wire shape of an annotation.
type Record struct {
	Kind          Kind     `json:"kind" yaml:"kind"`
	Target        string   `json:"target" yaml:"target"`
	Quote         string   `json:"quote" yaml:"quote"`
	Comment       string   `json:"comment" yaml:"comment"`
	Source        string   `json:"source" yaml:"source"`
	ManifestDir   string   `json:"manifest_dir" yaml:"manifest_dir"`
	AnnoLine      int      `json:"anno_line" yaml:"anno_line"`
	AnnoColumn    int      `json:"anno_column" yaml:"anno_column"`
	ItemLine      int      `json:"item_line" yaml:"item_line"`
	ItemColumn    int      `json:"item_column" yaml:"item_column"`
	Path          string   `json:"path" yaml:"path"`
	Level         Level    `json:"level" yaml:"level"`
	Format        Format   `json:"format" yaml:"format"`
	Feature       string   `json:"feature" yaml:"feature"`
	TrackingIssue string   `json:"tracking_issue" yaml:"tracking_issue"`
	Tags          []string `json:"tags" yaml:"tags"`
}

// Record flattens the annotation, filling fields the kind does not carry
// with their defaults.
func (a Annotation) Record() Record {
	return Record{
		Kind:          a.Kind(),
		Target:        a.Target,
		Quote:         a.Quote,
		Comment:       a.Comment,
		Source:        a.Source,
		ManifestDir:   a.ManifestDir,
		AnnoLine:      a.Location.AnnoLine,
		AnnoColumn:    a.Location.AnnoColumn,
		ItemLine:      a.Location.ItemLine,
		ItemColumn:    a.Location.ItemColumn,
		Path:          a.Location.Path,
		Level:         a.Level(),
		Format:        a.Format(),
		Feature:       a.Feature(),
		TrackingIssue: a.TrackingIssue(),
		Tags:          a.Tags(),
	}
}
