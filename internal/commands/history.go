package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cgdscraper/internal/runlog"
)

func newHistoryCommand(global *globalOptions) *cobra.Command {
	var last int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous scraper runs from the run log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, global)
			if err != nil {
				return err
			}
			return runHistory(cmd.OutOrStdout(), e.cfg.LogDir, last)
		},
	}

	cmd.Flags().IntVarP(&last, "last", "n", 0, "only show the most recent N runs (0 shows all)")

	return cmd
}

func runHistory(out io.Writer, logDir string, last int) error {
	entries, err := runlog.Read(logDir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}
	if last > 0 && len(entries) > last {
		entries = entries[len(entries)-last:]
	}

	for _, e := range entries {
		output := e.Output
		if output == "" {
			output = "-"
		}
		fmt.Fprintf(out, "%s  %-8s  %-14s  %4d  %12s  %s\n",
			e.Timestamp.Local().Format(time.DateTime), e.Scraper, e.Account,
			e.Transactions, e.ClosingBalance.StringFixed(2), output)
	}
	return nil
}
