// SPDX-License-Identifier: Apache-2.0

package parsers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gemaraproj/reqcite-mcp/internal/evidence"
	"github.com/pelletier/go-toml/v2"
)

var (
	citationKeys  = keySet("target", "level", "format", "quote")
	exceptionKeys = keySet("target", "quote", "reason")
	todoKeys      = keySet("target", "quote", "feature", "tracking_issue", "tracking-issue", "reason", "tags")

	// documentKeys maps each top-level key to the keys its entries accept.
	documentKeys = map[string]map[string]bool{
		"target":     nil,
		"spec":       citationKeys,
		"specs":      citationKeys,
		"exception":  exceptionKeys,
		"exceptions": exceptionKeys,
		"todo":       todoKeys,
		"todos":      todoKeys,
		"TODO":       todoKeys,
	}

	// otherFormats are the hints owned by the other declaration parsers.
	otherFormats = keySet("yaml", "yml", "json", "cue")
)

func keySet(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

// TOMLParser decodes TOML declaration files, the default declaration format.
type TOMLParser struct{}

func NewTOMLParser() *TOMLParser {
	return &TOMLParser{}
}

func (p *TOMLParser) Name() string {
	return "toml"
}

// CanHandle accepts the "toml" hint. Unhinted sources and sources whose
// extension no parser claims are accepted when the content looks like TOML
// assignments or table headers, or holds nothing but comments.
func (p *TOMLParser) CanHandle(source evidence.DeclarationSource) bool {
	hint := source.FormatHint()
	switch {
	case hint == "toml":
		return true
	case otherFormats[hint]:
		return false
	}
	for _, line := range strings.Split(string(source.Content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return strings.HasPrefix(line, "[") || strings.Contains(line, "=")
	}
	return hint != ""
}

func (p *TOMLParser) Parse(_ context.Context, source evidence.DeclarationSource) (*evidence.Document, error) {
	var raw map[string]any
	if err := toml.Unmarshal(source.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal TOML: %w", err)
	}
	if err := checkKeys(raw); err != nil {
		return nil, err
	}

	var doc evidence.Document
	dec := toml.NewDecoder(bytes.NewReader(source.Content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("unknown fields: %s", strings.TrimSpace(strict.String()))
		}
		return nil, fmt.Errorf("failed to unmarshal TOML: %w", err)
	}
	return &doc, nil
}

// checkKeys rejects any key whose exact spelling the declaration schema does
// not define. The struct decoder alone would accept case variants.
func checkKeys(raw map[string]any) error {
	var unknown []string
	for k, v := range raw {
		entryKeys, ok := documentKeys[k]
		if !ok {
			unknown = append(unknown, k)
			continue
		}
		entries, _ := v.([]any)
		for i, e := range entries {
			entry, _ := e.(map[string]any)
			for ek := range entry {
				if !entryKeys[ek] {
					unknown = append(unknown, fmt.Sprintf("%s[%d].%s", k, i, ek))
				}
			}
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	slices.Sort(unknown)
	return fmt.Errorf("unknown fields: %s", strings.Join(unknown, ", "))
}
