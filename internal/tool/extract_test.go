// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gemaraproj/reqcite-mcp/internal/annotation"
	"github.com/gemaraproj/reqcite-mcp/internal/evidence"
)

func TestExtractAnnotations(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	dir := t.TempDir()
	declPath := filepath.Join(dir, "compliance.yaml")
	require.NoError(t, os.WriteFile(declPath, []byte("target: spec#A\nexceptions:\n  - quote: X\n    reason: not applicable\n"), 0o644))
	srcPath := filepath.Join(dir, "client.go")
	require.NoError(t, os.WriteFile(srcPath, []byte("package client\n\n//= spec#A\n//# Foo\nfunc Do() {}\n"), 0o644))
	unknownPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(unknownPath, []byte("hello"), 0o644))

	h := NewHandler(evidence.NewPipeline(DefaultParsers()), nil, 2)

	tests := []struct {
		name           string
		input          InputExtractAnnotations
		wantErr        bool
		errContains    string
		validateOutput func(t *testing.T, output OutputExtractAnnotations)
	}{
		{
			name:        "empty input returns error",
			input:       InputExtractAnnotations{},
			wantErr:     true,
			errContains: "is required",
		},
		{
			name: "inline toml declaration",
			input: InputExtractAnnotations{
				Content:  "target = \"spec#A\"\n[[spec]]\nquote = \"\"\"\n  Foo\n  Bar  \n\"\"\"\n",
				SourceID: "compliance/spec.toml",
			},
			validateOutput: func(t *testing.T, output OutputExtractAnnotations) {
				require.Equal(t, 1, output.Count)
				assert.Equal(t, 1, output.Units)
				r := output.Annotations[0]
				assert.Equal(t, annotation.KindCitation, r.Kind)
				assert.Equal(t, "spec#A", r.Target)
				assert.Equal(t, "Foo Bar", r.Quote)
				assert.Equal(t, annotation.LevelAuto, r.Level)
				assert.Equal(t, annotation.FormatAuto, r.Format)
				assert.Equal(t, "compliance/spec.toml", r.Source)
			},
		},
		{
			name: "inline content without source_id or format",
			input: InputExtractAnnotations{
				Content: "target: spec#A\ntodo:\n  - quote: Later\n    tags: [a, b, a]\n",
			},
			validateOutput: func(t *testing.T, output OutputExtractAnnotations) {
				require.Equal(t, 1, output.Count)
				assert.Equal(t, "inline", output.Annotations[0].Source)
				assert.Equal(t, []string{"a", "b"}, output.Annotations[0].Tags)
			},
		},
		{
			name: "declaration and source files",
			input: InputExtractAnnotations{
				Declarations: []string{declPath},
				Sources:      []string{srcPath},
			},
			validateOutput: func(t *testing.T, output OutputExtractAnnotations) {
				assert.Equal(t, 2, output.Count)
				assert.Equal(t, 2, output.Units)
				for _, r := range output.Annotations {
					if r.Kind == annotation.KindException {
						assert.Equal(t, "not applicable", r.Comment)
						assert.Equal(t, 0, r.AnnoLine)
					} else {
						assert.Equal(t, 3, r.AnnoLine)
						assert.Equal(t, srcPath, r.Path)
					}
				}
			},
		},
		{
			name:        "source without comment pattern",
			input:       InputExtractAnnotations{Sources: []string{unknownPath}},
			wantErr:     true,
			errContains: "no comment pattern",
		},
		{
			name: "unknown field is rejected",
			input: InputExtractAnnotations{
				Content: "target = \"t\"\n[[spec]]\nquote = \"q\"\nlevle = \"MUST\"\n",
				Format:  "toml",
			},
			wantErr:     true,
			errContains: "parse failed",
		},
		{
			name: "missing target is rejected",
			input: InputExtractAnnotations{
				Content:  "[[exception]]\nquote = \"q\"\nreason = \"r\"\n",
				SourceID: "decl.toml",
			},
			wantErr:     true,
			errContains: "missing target",
		},
		{
			name: "unsupported format returns error",
			input: InputExtractAnnotations{
				Content: "<xml/>",
				Format:  "xml",
			},
			wantErr:     true,
			errContains: "unsupported declaration format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := h.ExtractAnnotations(ctx, req, tt.input)

			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}

			require.NoError(t, err)
			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}
