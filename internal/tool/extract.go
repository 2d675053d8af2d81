// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/gemaraproj/reqcite-mcp/internal/annotation"
	"github.com/gemaraproj/reqcite-mcp/internal/evidence"
	"github.com/gemaraproj/reqcite-mcp/internal/evidence/parsers"
	"github.com/gemaraproj/reqcite-mcp/internal/pattern"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MetadataExtractAnnotations describes the extract_annotations tool.
var MetadataExtractAnnotations = &mcp.Tool{
	Name: "extract_annotations",
	Description: "Extract requirement annotations (citations, exceptions and todos) and return them as " +
		"normalized records for coverage analysis. " +
		"Annotations come from declaration files (toml, yaml, json, cue) listing them explicitly, or from " +
		"source files where they are written as comments (//= target, //# quote). " +
		"Pass an inline declaration document as content, or file paths as declarations and sources. " +
		"Quotes are whitespace-normalized; records are deduplicated and sorted.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Inline declaration document.",
			},
			"format": map[string]interface{}{
				"type":        "string",
				"description": "Format of the inline content. If omitted, it is taken from source_id's extension or detected.",
				"enum":        []string{"toml", "yaml", "json", "cue"},
			},
			"source_id": map[string]interface{}{
				"type":        "string",
				"description": "Identifier for the inline content (usually its file path), recorded as the annotation source.",
			},
			"declarations": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Paths of declaration files to read.",
			},
			"sources": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Paths of source files to scan for annotation comments. The comment style is chosen by extension.",
			},
		},
	},
}

// InputExtractAnnotations is the input for the ExtractAnnotations tool.
type InputExtractAnnotations struct {
	Content      string   `json:"content"`
	Format       string   `json:"format"`
	SourceID     string   `json:"source_id"`
	Declarations []string `json:"declarations"`
	Sources      []string `json:"sources"`
}

// OutputExtractAnnotations is the output for the ExtractAnnotations tool.
type OutputExtractAnnotations struct {
	// Annotations is the sorted, deduplicated annotation set.
	Annotations []annotation.Record `json:"annotations"`
	Count       int                 `json:"count"`
	// Units is the number of files and inline documents processed.
	Units int `json:"units"`
}

// PatternFunc chooses the comment pattern for a source path.
type PatternFunc func(path string) (pattern.Comment, bool)

// Handler serves the extraction tools.
type Handler struct {
	pipeline    *evidence.Pipeline
	patterns    PatternFunc
	concurrency int
}

// DefaultParsers returns the declaration parsers in selection order.
func DefaultParsers() []evidence.DocumentParser {
	return []evidence.DocumentParser{
		parsers.NewTOMLParser(),
		parsers.NewYAMLParser(),
		parsers.NewCUEParser(),
	}
}

// NewHandler creates a Handler. A nil patterns uses the built-in extension table.
func NewHandler(pipeline *evidence.Pipeline, patterns PatternFunc, concurrency int) *Handler {
	if patterns == nil {
		patterns = pattern.ForPath
	}
	return &Handler{pipeline: pipeline, patterns: patterns, concurrency: concurrency}
}

// Units turns declaration and source paths into units. Sources with no known
// comment pattern are rejected.
func (h *Handler) Units(declarations, sources []string) ([]evidence.Unit, error) {
	units := make([]evidence.Unit, 0, len(declarations)+len(sources))
	for _, path := range declarations {
		units = append(units, evidence.DeclarativeUnit{Path: path})
	}
	for _, path := range sources {
		p, ok := h.patterns(path)
		if !ok {
			return nil, fmt.Errorf("%s: no comment pattern for this file type", path)
		}
		units = append(units, evidence.ScannedUnit{Pattern: p, Path: path})
	}
	return units, nil
}

// Collect processes units with the handler's concurrency.
func (h *Handler) Collect(ctx context.Context, units []evidence.Unit) (*annotation.Set, error) {
	return h.pipeline.Collect(ctx, units, h.concurrency)
}

// ExtractAnnotations collects annotations from the inline document and the
// listed files into one set.
func (h *Handler) ExtractAnnotations(ctx context.Context, _ *mcp.CallToolRequest, input InputExtractAnnotations) (*mcp.CallToolResult, OutputExtractAnnotations, error) {
	if input.Content == "" && len(input.Declarations) == 0 && len(input.Sources) == 0 {
		return nil, OutputExtractAnnotations{}, fmt.Errorf("content, declarations or sources is required")
	}

	units, err := h.Units(input.Declarations, input.Sources)
	if err != nil {
		return nil, OutputExtractAnnotations{}, err
	}

	set, err := h.Collect(ctx, units)
	if err != nil {
		return nil, OutputExtractAnnotations{}, err
	}

	if input.Content != "" {
		sourceID := input.SourceID
		if sourceID == "" {
			sourceID = "inline"
		}
		inline, err := h.pipeline.Decode(ctx, evidence.DeclarationSource{
			Content: []byte(input.Content),
			Format:  input.Format,
			Path:    sourceID,
		})
		if err != nil {
			return nil, OutputExtractAnnotations{}, err
		}
		set.Merge(inline)
		units = append(units, evidence.DeclarativeUnit{Path: sourceID})
	}

	records := set.Records()
	return nil, OutputExtractAnnotations{
		Annotations: records,
		Count:       len(records),
		Units:       len(units),
	}, nil
}
