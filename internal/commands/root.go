package commands

import (
	"flag"
	"fmt"

	"github.com/spf13/cobra"
	"k8s.io/klog"

	"github.com/cleared-dev/cgdscraper/internal/buildinfo"
	"github.com/cleared-dev/cgdscraper/internal/config"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath  string
	secretsFile string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "cgdscraper",
		Short:   "Caixa Geral de Depositos statement scraper",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.FileName, "config file")
	rootCmd.PersistentFlags().StringVar(&opts.secretsFile, "secrets", "", "ejson secrets file (overrides secrets_file in the config)")

	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	rootCmd.PersistentFlags().AddGoFlagSet(klogFlags)

	rootCmd.AddCommand(
		newInitCommand(),
		newFileCommand(opts),
		newFetchCommand(opts),
		newScheduleCommand(opts),
		newHistoryCommand(opts),
	)

	return rootCmd
}
