package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/cgdscraper/internal/scraper"
)

func newFileCommand(global *globalOptions) *cobra.Command {
	opts := &runOptions{globalOptions: global}

	cmd := &cobra.Command{
		Use:   "file [path file_type account]",
		Short: "Parse a CSV or TSV statement exported from the portal",
		Long: `Parse a statement file downloaded from Caixadirecta by hand.

file_type is "csv" or "tsv". account is the account number or a label
from the accounts list of the config.`,
		Args: cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, global)
			if err != nil {
				return err
			}

			sargs := opts.args(args, nil)
			if len(sargs) > 2 {
				sargs[2] = e.cfg.AccountNumber(sargs[2])
			}

			_, err = e.runScraper(cmd.Context(), cmd.OutOrStdout(), scraper.FileScraperName, sargs, opts)
			return err
		},
	}
	opts.addFlags(cmd)

	return cmd
}
