// SPDX-License-Identifier: Apache-2.0

package evidence

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/gemaraproj/reqcite-mcp/internal/annotation"
)

var (
	// ErrRead is returned when a unit's file cannot be read.
	ErrRead = errors.New("read failed")
	// ErrParse is returned when a declaration document is malformed or carries unknown fields.
	ErrParse = errors.New("parse failed")
	// ErrExtract is returned when the comment pattern engine rejects a scanned file.
	ErrExtract = errors.New("extract failed")
	// ErrUnsupportedFormat is returned when no registered parser accepts a declaration file.
	ErrUnsupportedFormat = errors.New("unsupported declaration format")
	// ErrMissingField is returned when a declaration entry omits a required field.
	ErrMissingField = errors.New("missing field")
	// ErrDuplicateField is returned when two spellings of the same field are both set.
	ErrDuplicateField = errors.New("duplicate field")
)

// Extractor turns the text of a scanned source file into annotations with
// real positions.
type Extractor interface {
	Extract(text, path string) ([]annotation.Annotation, error)
}

// Unit is a file that contributes annotations. It is implemented only by
// ScannedUnit and DeclarativeUnit.
type Unit interface {
	UnitPath() string
	unit()
}

// ScannedUnit is an ordinary source file whose annotations are found by
// running Pattern over its text.
type ScannedUnit struct {
	Pattern Extractor
	Path    string
}

func (u ScannedUnit) UnitPath() string { return u.Path }
func (ScannedUnit) unit() {}

// DeclarativeUnit is a declaration file listing annotations explicitly.
type DeclarativeUnit struct {
	Path string
}

func (u DeclarativeUnit) UnitPath() string { return u.Path }
func (DeclarativeUnit) unit() {}

// DeclarationSource describes the raw input to a DocumentParser.
type DeclarationSource struct {
	// Content is the raw document content.
	Content []byte
	// Format is a hint such as "toml" or "yaml". When empty, parsers fall back to
	// the path extension and then to content sniffing.
	Format string
	Path   string
}

// FormatHint returns the explicit format, or the path extension without the dot.
func (s DeclarationSource) FormatHint() string {
	if s.Format != "" {
		return strings.ToLower(s.Format)
	}
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(s.Path), "."))
}

// DocumentParser decodes one declaration format into a Document. Unknown
// fields must be rejected.
type DocumentParser interface {
	CanHandle(source DeclarationSource) bool
	Parse(ctx context.Context, source DeclarationSource) (*Document, error)
	Name() string
}
