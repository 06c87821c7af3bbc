package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anams/page-server/pkg/document"
	"github.com/anams/page-server/pkg/logger"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <id>",
	Short: "Print the content of one document",
	Long: `Resolve a document ID against the configured backend and print its content.
Exits non-zero when the document is missing, unreadable or empty.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	store, _, err := newStore(ctx, cfg, logger.New(logger.ComponentStorage))
	if err != nil {
		return err
	}

	resolver := document.NewResolver(store, logger.New(logger.ComponentResolver))
	res := resolver.Resolve(ctx, document.ID(args[0]))
	if err := res.Err(); err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), res.Content)
	return err
}
