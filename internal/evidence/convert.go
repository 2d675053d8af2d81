// SPDX-License-Identifier: Apache-2.0

package evidence

import (
	"fmt"

	"github.com/gemaraproj/reqcite-mcp/internal/annotation"
)

// Convert turns a parsed declaration document into annotations. Every entry
// inherits the document target unless it sets its own. The first invalid
// entry fails the whole document.
func Convert(doc *Document, source string) (*annotation.Set, error) {
	entries, err := doc.Entries()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	set := annotation.NewSet()
	insert := func(kind annotation.Kind, i int, a annotation.Annotation, err error) error {
		if err == nil {
			err = set.Insert(a)
		}
		if err != nil {
			return fmt.Errorf("%s: %s entry %d: %w", source, kind, i, err)
		}
		return nil
	}

	for i, e := range entries.Citations {
		a, err := e.annotation(source, entries.Target)
		if err := insert(annotation.KindCitation, i, a, err); err != nil {
			return nil, err
		}
	}
	for i, e := range entries.Exceptions {
		a, err := e.annotation(source, entries.Target)
		if err := insert(annotation.KindException, i, a, err); err != nil {
			return nil, err
		}
	}
	for i, e := range entries.Todos {
		a, err := e.annotation(source, entries.Target)
		if err := insert(annotation.KindTodo, i, a, err); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// declared builds the fields shared by every declaration entry. Declaration
// annotations have no position, and ManifestDir is the declaration path itself.
func declared(source string, target, defaultTarget *string, quote string) (annotation.Annotation, error) {
	resolved := ""
	switch {
	case target != nil:
		resolved = *target
	case defaultTarget != nil:
		resolved = *defaultTarget
	}
	if resolved == "" {
		return annotation.Annotation{}, annotation.ErrMissingTarget
	}
	return annotation.Annotation{
		Target:      resolved,
		Quote:       annotation.NormalizeQuote(quote),
		Source:      source,
		ManifestDir: source,
	}, nil
}

func required(name string, v *string) (string, error) {
	if v == nil {
		return "", fmt.Errorf("%w: %q", ErrMissingField, name)
	}
	return *v, nil
}

func optional(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func (e CitationEntry) annotation(source string, defaultTarget *string) (annotation.Annotation, error) {
	quote, err := required("quote", e.Quote)
	if err != nil {
		return annotation.Annotation{}, err
	}
	a, err := declared(source, e.Target, defaultTarget, quote)
	if err != nil {
		return annotation.Annotation{}, err
	}

	details := annotation.Citation{Level: annotation.LevelAuto, Format: annotation.FormatAuto}
	if e.Level != nil {
		if details.Level, err = annotation.ParseLevel(*e.Level); err != nil {
			return annotation.Annotation{}, fmt.Errorf("%w: %w", ErrParse, err)
		}
	}
	if e.Format != nil {
		if details.Format, err = annotation.ParseFormat(*e.Format); err != nil {
			return annotation.Annotation{}, fmt.Errorf("%w: %w", ErrParse, err)
		}
	}

	a.Comment = quote
	a.Details = details
	return a, nil
}

func (e ExceptionEntry) annotation(source string, defaultTarget *string) (annotation.Annotation, error) {
	quote, err := required("quote", e.Quote)
	if err != nil {
		return annotation.Annotation{}, err
	}
	reason, err := required("reason", e.Reason)
	if err != nil {
		return annotation.Annotation{}, err
	}
	a, err := declared(source, e.Target, defaultTarget, quote)
	if err != nil {
		return annotation.Annotation{}, err
	}
	a.Comment = reason
	a.Details = annotation.Exception{}
	return a, nil
}

func (e TodoEntry) annotation(source string, defaultTarget *string) (annotation.Annotation, error) {
	quote, err := required("quote", e.Quote)
	if err != nil {
		return annotation.Annotation{}, err
	}
	issue, err := e.trackingIssue()
	if err != nil {
		return annotation.Annotation{}, err
	}
	a, err := declared(source, e.Target, defaultTarget, quote)
	if err != nil {
		return annotation.Annotation{}, err
	}
	a.Comment = optional(e.Reason)
	a.Details = annotation.Todo{
		Feature:       optional(e.Feature),
		TrackingIssue: optional(issue),
		Tags:          annotation.NewTags(e.Tags...),
	}
	return a, nil
}
