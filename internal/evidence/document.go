// SPDX-License-Identifier: Apache-2.0

package evidence

import "fmt"

// Document is a parsed declaration file. List fields come in several
// spellings; Entries folds them together.
type Document struct {
	Target *string `toml:"target" yaml:"target" json:"target,omitempty"`

	Spec  []CitationEntry `toml:"spec" yaml:"spec" json:"spec,omitempty"`
	Specs []CitationEntry `toml:"specs" yaml:"specs" json:"specs,omitempty"`

	Exception  []ExceptionEntry `toml:"exception" yaml:"exception" json:"exception,omitempty"`
	Exceptions []ExceptionEntry `toml:"exceptions" yaml:"exceptions" json:"exceptions,omitempty"`

	// UpperTodo precedes Todo: the TOML decoder also indexes fields by their
	// lower-cased name and the later field keeps that slot.
	UpperTodo []TodoEntry `toml:"TODO" yaml:"TODO" json:"TODO,omitempty"`
	Todo      []TodoEntry `toml:"todo" yaml:"todo" json:"todo,omitempty"`
	Todos     []TodoEntry `toml:"todos" yaml:"todos" json:"todos,omitempty"`
}

// CitationEntry declares that the project implements the quoted text.
type CitationEntry struct {
	Target *string `toml:"target" yaml:"target" json:"target,omitempty"`
	Level  *string `toml:"level" yaml:"level" json:"level,omitempty"`
	Format *string `toml:"format" yaml:"format" json:"format,omitempty"`
	Quote  *string `toml:"quote" yaml:"quote" json:"quote,omitempty"`
}

// ExceptionEntry declares that the quoted text is deliberately not implemented.
type ExceptionEntry struct {
	Target *string `toml:"target" yaml:"target" json:"target,omitempty"`
	Quote  *string `toml:"quote" yaml:"quote" json:"quote,omitempty"`
	Reason *string `toml:"reason" yaml:"reason" json:"reason,omitempty"`
}

// TodoEntry declares that the quoted text is not implemented yet.
type TodoEntry struct {
	Target            *string  `toml:"target" yaml:"target" json:"target,omitempty"`
	Quote             *string  `toml:"quote" yaml:"quote" json:"quote,omitempty"`
	Feature           *string  `toml:"feature" yaml:"feature" json:"feature,omitempty"`
	TrackingIssue     *string  `toml:"tracking_issue" yaml:"tracking_issue" json:"tracking_issue,omitempty"`
	TrackingIssueDash *string  `toml:"tracking-issue" yaml:"tracking-issue" json:"tracking-issue,omitempty"`
	Reason            *string  `toml:"reason" yaml:"reason" json:"reason,omitempty"`
	Tags              []string `toml:"tags" yaml:"tags" json:"tags,omitempty"`
}

// Entries is a Document with its field spellings folded together.
type Entries struct {
	Target     *string
	Citations  []CitationEntry
	Exceptions []ExceptionEntry
	Todos      []TodoEntry
}

// Entries folds the alias spellings of each list. Using two spellings of the
// same list in one document is an error.
func (d *Document) Entries() (Entries, error) {
	citations, err := pick("spec", d.Spec, d.Specs)
	if err != nil {
		return Entries{}, err
	}
	exceptions, err := pick("exception", d.Exception, d.Exceptions)
	if err != nil {
		return Entries{}, err
	}
	todos, err := pick("todo", d.Todo, d.Todos, d.UpperTodo)
	if err != nil {
		return Entries{}, err
	}
	return Entries{
		Target:     d.Target,
		Citations:  citations,
		Exceptions: exceptions,
		Todos:      todos,
	}, nil
}

func pick[T any](name string, spellings ...[]T) ([]T, error) {
	var out []T
	found := false
	for _, s := range spellings {
		if s == nil {
			continue
		}
		if found {
			return nil, fmt.Errorf("%w: %q is set under more than one spelling", ErrDuplicateField, name)
		}
		out, found = s, true
	}
	return out, nil
}

// trackingIssue returns whichever spelling of the tracking issue is set.
func (e TodoEntry) trackingIssue() (*string, error) {
	if e.TrackingIssue != nil && e.TrackingIssueDash != nil {
		return nil, fmt.Errorf("%w: %q is set under more than one spelling", ErrDuplicateField, "tracking_issue")
	}
	if e.TrackingIssue != nil {
		return e.TrackingIssue, nil
	}
	return e.TrackingIssueDash, nil
}
