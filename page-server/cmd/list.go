package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/anams/page-server/pkg/logger"
	"github.com/anams/page-server/pkg/registry"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the registered documents",
	Long:  `Print the documents offered by the configured registry, in presentation order.`,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print the list as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	store, _, err := newStore(ctx, cfg, logger.New(logger.ComponentStorage))
	if err != nil {
		return err
	}
	reg, err := newRegistry(cfg, store)
	if err != nil {
		return err
	}

	return printEntries(cmd.OutOrStdout(), reg.List(ctx), listJSON)
}

func printEntries(out io.Writer, entries []registry.Entry, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tID")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\n", e.Name, e.ID)
	}
	return tw.Flush()
}
