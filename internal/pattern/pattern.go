// SPDX-License-Identifier: Apache-2.0

// Package pattern finds annotations written as comments in ordinary source
// files. An annotation is a block of meta lines followed by quote lines:
//
//	//= https://example.com/spec#section-2
//	//= type=todo
//	//= tracking-issue=#42
//	//# The client MUST retry
//	//# at most three times.
//	func retry() {}
//
// The first meta line that is not a key=value pair names the target. The
// first code line after the block is the annotated item.
package pattern

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gemaraproj/reqcite-mcp/internal/annotation"
)

var (
	ErrUnknownKey      = errors.New("unknown annotation key")
	ErrDuplicateTarget = errors.New("duplicate annotation target")
	ErrOrphanQuote     = errors.New("quote line without annotation target")
	ErrMissingQuote    = errors.New("annotation has no quote")
)

// Comment is a pair of line prefixes: Meta introduces target and key=value
// lines, Content introduces quote lines.
type Comment struct {
	Meta    string
	Content string
	// Lenient treats content lines outside an annotation block as ordinary
	// comments instead of failing. Families whose content prefix also opens
	// plain comments, such as "##", set it.
	Lenient bool
}

// Default is the pattern for languages with // line comments.
func Default() Comment {
	return Comment{Meta: "//=", Content: "//#"}
}

var byExtension = map[string]Comment{}

func init() {
	for _, ext := range []string{"go", "rs", "c", "h", "cc", "cpp", "hpp", "java", "js", "jsx", "ts", "tsx", "swift", "kt", "scala", "cs", "dart", "zig"} {
		byExtension[ext] = Default()
	}
	for _, ext := range []string{"py", "rb", "sh", "bash", "pl", "r", "toml", "yaml", "yml", "tf", "nix"} {
		byExtension[ext] = Comment{Meta: "#=", Content: "##", Lenient: true}
	}
	for _, ext := range []string{"sql", "lua", "hs", "elm", "ada"} {
		byExtension[ext] = Comment{Meta: "--=", Content: "--#", Lenient: true}
	}
}

// CacheKey identifies the pattern in result cache keys.
func (c Comment) CacheKey() string {
	return fmt.Sprintf("%q|%q|%t", c.Meta, c.Content, c.Lenient)
}

// ForExtension returns the comment pattern for a file extension, with or
// without the leading dot.
func ForExtension(ext string) (Comment, bool) {
	c, ok := byExtension[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return c, ok
}

// ForPath returns the comment pattern for a file path.
func ForPath(path string) (Comment, bool) {
	return ForExtension(filepath.Ext(path))
}

// block accumulates one annotation while scanning.
type block struct {
	line, column int
	target       string
	kind         annotation.Kind
	level        string
	format       string
	reason       string
	feature      string
	issue        string
	tags         []string
	quote        []string
}

var metaKeys = map[string]bool{
	"type": true, "level": true, "format": true, "reason": true,
	"feature": true, "tracking-issue": true, "tracking_issue": true, "tags": true,
}

// Extract scans text and returns every annotation block found in it.
// Lines are 1-based and columns are 0-based byte offsets.
func (c Comment) Extract(text, path string) ([]annotation.Annotation, error) {
	var (
		out     []annotation.Annotation
		current *block
		// inQuote is set once the current block has quote lines; a meta line
		// after that starts a new block.
		inQuote bool
	)

	flush := func(itemLine, itemColumn int) error {
		if current == nil {
			return nil
		}
		a, err := current.annotation(path, itemLine, itemColumn)
		if err != nil {
			return fmt.Errorf("line %d: %w", current.line, err)
		}
		out = append(out, a)
		current, inQuote = nil, false
		return nil
	}

	lines := strings.Split(text, "\n")
	for i, raw := range lines {
		lineNo := i + 1
		raw = strings.TrimRight(raw, "\r")
		trimmed := strings.TrimLeft(raw, " \t")
		column := len(raw) - len(trimmed)

		switch {
		case strings.HasPrefix(trimmed, c.Meta):
			if current != nil && inQuote {
				if err := flush(0, 0); err != nil {
					return nil, err
				}
			}
			if current == nil {
				current = &block{line: lineNo, column: column, kind: annotation.KindCitation}
			}
			if err := current.meta(strings.TrimSpace(strings.TrimPrefix(trimmed, c.Meta))); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		case strings.HasPrefix(trimmed, c.Content):
			if current == nil {
				if c.Lenient {
					continue
				}
				return nil, fmt.Errorf("line %d: %w", lineNo, ErrOrphanQuote)
			}
			inQuote = true
			current.quote = append(current.quote, strings.TrimPrefix(strings.TrimPrefix(trimmed, c.Content), " "))
		case strings.TrimSpace(trimmed) == "":
			// blank lines between a block and its item are skipped
		default:
			if err := flush(lineNo, column); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(0, 0); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *block) meta(line string) error {
	if line == "" {
		return nil
	}
	key, value, ok := strings.Cut(line, "=")
	key = strings.TrimSpace(key)
	if !ok || strings.ContainsAny(key, ":/#") {
		if b.target != "" {
			return fmt.Errorf("%w: %q", ErrDuplicateTarget, line)
		}
		b.target = line
		return nil
	}
	if !metaKeys[key] {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	value = strings.TrimSpace(value)
	switch key {
	case "type":
		kind, err := annotation.ParseKind(value)
		if err != nil {
			return err
		}
		b.kind = kind
	case "level":
		b.level = value
	case "format":
		b.format = value
	case "reason":
		b.reason = value
	case "feature":
		b.feature = value
	case "tracking-issue", "tracking_issue":
		b.issue = value
	case "tags":
		for _, tag := range strings.Split(value, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				b.tags = append(b.tags, tag)
			}
		}
	}
	return nil
}

func (b *block) annotation(path string, itemLine, itemColumn int) (annotation.Annotation, error) {
	raw := strings.Join(b.quote, "\n")
	a := annotation.Annotation{
		Target:      b.target,
		Quote:       annotation.NormalizeQuote(raw),
		Source:      path,
		ManifestDir: filepath.Dir(path),
		Location: annotation.Location{
			AnnoLine:   b.line,
			AnnoColumn: b.column,
			ItemLine:   itemLine,
			ItemColumn: itemColumn,
			Path:       path,
		},
	}
	if a.Target == "" {
		return a, annotation.ErrMissingTarget
	}

	switch b.kind {
	case annotation.KindCitation:
		if a.Quote == "" {
			return a, ErrMissingQuote
		}
		details := annotation.Citation{Level: annotation.LevelAuto, Format: annotation.FormatAuto}
		var err error
		if b.level != "" {
			if details.Level, err = annotation.ParseLevel(b.level); err != nil {
				return a, err
			}
		}
		if b.format != "" {
			if details.Format, err = annotation.ParseFormat(b.format); err != nil {
				return a, err
			}
		}
		a.Comment = raw
		a.Details = details
	case annotation.KindException:
		if a.Quote == "" {
			return a, ErrMissingQuote
		}
		a.Comment = b.reason
		a.Details = annotation.Exception{}
	case annotation.KindTodo:
		a.Comment = b.reason
		a.Details = annotation.Todo{
			Feature:       b.feature,
			TrackingIssue: b.issue,
			Tags:          annotation.NewTags(b.tags...),
		}
	}
	return a, nil
}
