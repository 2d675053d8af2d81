// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gemaraproj/reqcite-mcp/internal/annotation"
)

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.toml", "a.toml", "c.yaml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(""), 0o644))
	}

	got, err := expand([]string{filepath.Join(dir, "*.toml"), filepath.Join(dir, "a.toml"), filepath.Join(dir, "missing.cue")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.toml"),
		filepath.Join(dir, "b.toml"),
		filepath.Join(dir, "missing.cue"),
	}, got)

	got, err = expand([]string{filepath.Join(dir, "*.rs")})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWriteRecords(t *testing.T) {
	records := []annotation.Record{{Kind: annotation.KindTodo, Target: "specA", Tags: []string{}}}

	var buf bytes.Buffer
	require.NoError(t, writeRecords(&buf, "json", records))
	var decoded []annotation.Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, records, decoded)

	buf.Reset()
	require.NoError(t, writeRecords(&buf, "yaml", records))
	assert.Contains(t, buf.String(), "kind: todo")
	assert.Contains(t, buf.String(), "target: specA")
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, writeDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "concurrency:")
	assert.Contains(t, string(data), "output: json")

	assert.Error(t, writeDefaultConfig(path), "existing file must not be overwritten")
}

func TestExtractCommand(t *testing.T) {
	dir := t.TempDir()
	decl := filepath.Join(dir, "spec.toml")
	require.NoError(t, os.WriteFile(decl, []byte("target = \"spec#A\"\n[[todo]]\nquote = \"Later\"\ntags = [\"a\", \"b\", \"a\"]\n"), 0o644))
	src := filepath.Join(dir, "lib.go")
	require.NoError(t, os.WriteFile(src, []byte("package lib\n\n//= spec#A\n//# Foo\nfunc F() {}\n"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"extract", "--no-cache", "--config", filepath.Join(dir, "none.yaml"), "-d", decl, "-s", src})
	require.NoError(t, rootCmd.Execute())

	var records []annotation.Record
	require.NoError(t, json.Unmarshal(out.Bytes(), &records))
	require.Len(t, records, 2)

	kinds := map[annotation.Kind]annotation.Record{}
	for _, r := range records {
		kinds[r.Kind] = r
	}
	assert.Equal(t, []string{"a", "b"}, kinds[annotation.KindTodo].Tags)
	assert.Equal(t, decl, kinds[annotation.KindTodo].ManifestDir)
	assert.Equal(t, 3, kinds[annotation.KindCitation].AnnoLine)
}
