// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gemaraproj/reqcite-mcp/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the annotation tools over MCP (stdio)",
	Long: `Serve starts a Model Context Protocol server on stdin/stdout exposing
the extract_annotations tool. Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.cleanup()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return server.ServeStdio(ctx, server.New(env.handler, Version), env.logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
