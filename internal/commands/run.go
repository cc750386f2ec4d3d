package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/klog"

	"github.com/cleared-dev/cgdscraper/internal/config"
	"github.com/cleared-dev/cgdscraper/internal/metrics"
	"github.com/cleared-dev/cgdscraper/internal/model"
	"github.com/cleared-dev/cgdscraper/internal/runlog"
	"github.com/cleared-dev/cgdscraper/internal/scraper"
	"github.com/cleared-dev/cgdscraper/internal/statement"
	"github.com/cleared-dev/cgdscraper/internal/store"
)

// runOptions are the flags of the commands that run a scraper.
type runOptions struct {
	*globalOptions
	scraperArgs string
	output      string
	store       bool
	metrics     bool
	saveRaw     string
}

func (o *runOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.scraperArgs, "scraper-args", "", "scraper arguments as one space-separated string")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "write the statement CSV to this file instead of stdout")
	cmd.Flags().BoolVar(&o.store, "store", false, "upsert transactions into postgres")
	cmd.Flags().BoolVar(&o.metrics, "metrics", false, "write the closing balance to influxdb")
	cmd.Flags().StringVar(&o.saveRaw, "save-raw", "", "keep the raw portal download in this directory")
}

// args picks the scraper arguments: positional arguments first, then
// --scraper-args, then fallback.
func (o *runOptions) args(positional []string, fallback scraper.Args) scraper.Args {
	switch {
	case len(positional) > 0:
		return scraper.Args(positional)
	case o.scraperArgs != "":
		return scraper.ParseArgs(o.scraperArgs)
	default:
		return fallback
	}
}

// env is everything a scraper run needs besides its arguments.
type env struct {
	cfg      *config.Config
	secrets  *config.Secrets
	registry *scraper.Registry
}

func loadEnv(cmd *cobra.Command, opts *globalOptions) (*env, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("config") {
			return nil, err
		}
		klog.V(2).Infof("No %s found, using defaults", opts.configPath)
		cfg = config.Default()
	}

	secretsFile := cfg.SecretsFile
	if opts.secretsFile != "" {
		secretsFile = opts.secretsFile
	}
	secrets, err := config.ReadSecrets(secretsFile)
	if err != nil {
		return nil, err
	}

	return &env{cfg: cfg, secrets: secrets, registry: scraper.DefaultRegistry()}, nil
}

// runScraper builds the named scraper, runs it and hands the statement to
// every configured sink.
func (e *env) runScraper(ctx context.Context, stdout io.Writer, name string, args scraper.Args, o *runOptions) (*model.Statement, error) {
	s, err := e.registry.New(name, args, scraper.Options{
		Charset:    e.cfg.Charset,
		Portal:     e.cfg.Portal,
		SaveRawDir: o.saveRaw,
	})
	if err != nil {
		return nil, err
	}

	stmt, err := scraper.Run(ctx, s)
	if err != nil {
		return nil, err
	}

	for _, rerr := range statement.Reconcile(stmt, true) {
		klog.Warningf("Account %s: %v", stmt.AccountNumber, rerr)
	}

	if err := writeOutput(stdout, o.output, stmt); err != nil {
		return nil, err
	}
	if o.store {
		if err := e.save(ctx, stmt); err != nil {
			return nil, err
		}
	}
	if o.metrics {
		if err := e.writeMetrics(stmt); err != nil {
			return nil, err
		}
	}

	entry := runlog.NewEntry(time.Now().UTC(), s.Name(), stmt, o.output)
	if err := runlog.Append(e.cfg.LogDir, entry); err != nil {
		klog.Warningf("Failed to write run log: %v", err)
	}
	return stmt, nil
}

func (e *env) save(ctx context.Context, stmt *model.Statement) error {
	dsn := e.secrets.DatabaseURL
	if dsn == "" {
		dsn = e.cfg.Database.URL
	}
	if dsn == "" {
		return errors.New("--store needs database.url in the config or DATABASE_URL")
	}

	db, err := store.New(dsn, e.cfg.Database.Table)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Save(ctx, stmt)
	return err
}

func (e *env) writeMetrics(stmt *model.Statement) error {
	if e.cfg.Influx.Endpoint == "" {
		return errors.New("--metrics needs influx.endpoint in the config")
	}

	sink, err := metrics.New(e.cfg.Influx, e.secrets.InfluxUser, e.secrets.InfluxPassword)
	if err != nil {
		return err
	}
	defer sink.Close()

	return sink.Write(stmt)
}

func writeOutput(stdout io.Writer, path string, stmt *model.Statement) error {
	if path == "" || path == "-" {
		return statement.WriteCSV(stdout, stmt)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if err := statement.WriteCSV(f, stmt); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	klog.Infof("Wrote %d transactions to %s", stmt.Len(), path)
	return nil
}
