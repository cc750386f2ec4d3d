package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/cgdscraper/internal/config"
	"github.com/cleared-dev/cgdscraper/internal/scraper"
)

func newFetchCommand(global *globalOptions) *cobra.Command {
	opts := &runOptions{globalOptions: global}

	cmd := &cobra.Command{
		Use:   "fetch [contract_number access_code account]",
		Short: "Log into Caixadirecta and download the latest movements",
		Long: `Log into Caixadirecta and download the latest 100 movements of an account.

Credentials default to CGD_CONTRACT_NUMBER, CGD_ACCESS_CODE and
CGD_ACCOUNT_NUMBER, read from the environment or the ejson secrets file.`,
		Args: cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, global)
			if err != nil {
				return err
			}

			_, err = e.runScraper(cmd.Context(), cmd.OutOrStdout(), scraper.PortalScraperName, fetchArgs(opts, args, e), opts)
			return err
		},
	}
	opts.addFlags(cmd)

	return cmd
}

func fetchArgs(opts *runOptions, positional []string, e *env) scraper.Args {
	args := opts.args(positional, secretArgs(e.secrets))
	if len(args) > 2 {
		args[2] = e.cfg.AccountNumber(args[2])
	}
	return args
}

func secretArgs(s *config.Secrets) scraper.Args {
	return scraper.Args{s.ContractNumber, s.AccessCode, s.AccountNumber}
}
