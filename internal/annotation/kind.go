// SPDX-License-Identifier: Apache-2.0

package annotation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownLevel is returned when a level label is not one of the known strengths.
	ErrUnknownLevel = errors.New("unknown annotation level")
	// ErrUnknownFormat is returned when a format label is not one of the known quote formats.
	ErrUnknownFormat = errors.New("unknown annotation format")
	// ErrUnknownKind is returned when an annotation type label is not recognized.
	ErrUnknownKind = errors.New("unknown annotation type")
)

// Kind discriminates what an annotation asserts about its quote.
type Kind string

const (
	KindCitation  Kind = "citation"
	KindException Kind = "exception"
	KindTodo      Kind = "todo"
)

// ParseKind parses an annotation type label. "spec" is accepted as a
// synonym for citation.
func ParseKind(label string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "citation", "spec":
		return KindCitation, nil
	case "exception":
		return KindException, nil
	case "todo":
		return KindTodo, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, label)
}

// Level is the compliance strength a citation claims.
type Level string

const (
	LevelAuto   Level = "AUTO"
	LevelMust   Level = "MUST"
	LevelShould Level = "SHOULD"
	LevelMay    Level = "MAY"
)

// AllLevels returns every level label in ascending strength.
func AllLevels() []Level {
	return []Level{LevelAuto, LevelMay, LevelShould, LevelMust}
}

// ParseLevel parses a level label case-insensitively.
func ParseLevel(label string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(label)))
	for _, known := range AllLevels() {
		if l == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLevel, label)
}

// Format tells the matcher how to interpret a quote against specification text.
type Format string

const (
	FormatAuto     Format = "auto"
	FormatIETF     Format = "ietf"
	FormatMarkdown Format = "markdown"
)

// AllFormats returns every format label.
func AllFormats() []Format {
	return []Format{FormatAuto, FormatIETF, FormatMarkdown}
}

// ParseFormat parses a format label case-insensitively. "md" is accepted for markdown.
func ParseFormat(label string) (Format, error) {
	f := strings.ToLower(strings.TrimSpace(label))
	if f == "md" {
		return FormatMarkdown, nil
	}
	for _, known := range AllFormats() {
		if Format(f) == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, label)
}
