// SPDX-License-Identifier: Apache-2.0

package parsers

import (
	"context"
	"fmt"
	"strings"

	"github.com/gemaraproj/reqcite-mcp/internal/evidence"
	"github.com/goccy/go-yaml"
)

// YAMLParser decodes YAML and JSON declaration files. Keys the declaration
// schema does not know are rejected.
type YAMLParser struct{}

func NewYAMLParser() *YAMLParser {
	return &YAMLParser{}
}

func (p *YAMLParser) Name() string {
	return "yaml"
}

func (p *YAMLParser) CanHandle(source evidence.DeclarationSource) bool {
	switch source.FormatHint() {
	case "yaml", "yml", "json":
		return true
	case "":
	default:
		return false
	}
	content := strings.TrimSpace(string(source.Content))
	// JSON object or YAML document marker
	if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "---") {
		return true
	}
	// Plain YAML: "key: value" on the first line
	first := strings.SplitN(content, "\n", 2)[0]
	key, _, found := strings.Cut(first, ":")
	return found && key != "" && !strings.ContainsAny(key, "=[ \t")
}

func (p *YAMLParser) Parse(_ context.Context, source evidence.DeclarationSource) (*evidence.Document, error) {
	var doc evidence.Document
	if err := yaml.UnmarshalWithOptions(source.Content, &doc, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML/JSON: %w", err)
	}
	return &doc, nil
}
