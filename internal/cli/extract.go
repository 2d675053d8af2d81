// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gemaraproj/reqcite-mcp/internal/annotation"
)

var extractCmd = &cobra.Command{
	Use:   "extract [flags]",
	Short: "Collect annotations from declaration and source files",
	Long: `Extract reads declaration files and scans source files, then prints
the combined annotation set sorted by source and position.

Example:
  reqcite extract --declarations 'compliance/*.toml' --sources 'src/*.go'
  reqcite extract -d spec.yaml -s main.rs -s lib.rs --output yaml`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringSliceP("declarations", "d", nil, "declaration file globs (toml, yaml, json, cue)")
	extractCmd.Flags().StringSliceP("sources", "s", nil, "source file globs to scan for annotation comments")
	extractCmd.Flags().StringP("output", "o", "", "output format: json or yaml")

	_ = viper.BindPFlag("declarations", extractCmd.Flags().Lookup("declarations"))
	_ = viper.BindPFlag("sources", extractCmd.Flags().Lookup("sources"))
	_ = viper.BindPFlag("output", extractCmd.Flags().Lookup("output"))
}

func runExtract(cmd *cobra.Command, _ []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.cleanup()

	declarations, err := expand(env.cfg.Declarations)
	if err != nil {
		return err
	}
	sources, err := expand(env.cfg.Sources)
	if err != nil {
		return err
	}
	if len(declarations) == 0 && len(sources) == 0 {
		return fmt.Errorf("no declaration or source files matched")
	}

	units, err := env.handler.Units(declarations, sources)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	set, err := env.handler.Collect(ctx, units)
	if err != nil {
		return err
	}
	return writeRecords(cmd.OutOrStdout(), env.cfg.Output, set.Records())
}

// expand resolves globs to a sorted, duplicate-free file list. A pattern
// without glob characters is kept even when it does not exist, so the read
// error names it.
func expand(patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", p, err)
		}
		if len(matches) == 0 && !hasMeta(p) {
			matches = []string{p}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func hasMeta(p string) bool {
	for _, c := range p {
		switch c {
		case '*', '?', '[', '\\':
			return true
		}
	}
	return false
}

func writeRecords(w io.Writer, format string, records []annotation.Record) error {
	switch format {
	case "yaml":
		data, err := yaml.Marshal(records)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
}
