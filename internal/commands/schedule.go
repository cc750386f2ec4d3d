package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron"
	"github.com/spf13/cobra"
	"k8s.io/klog"

	"github.com/cleared-dev/cgdscraper/internal/scraper"
)

func newScheduleCommand(global *globalOptions) *cobra.Command {
	opts := &runOptions{globalOptions: global}
	var runNow bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Fetch the statement on the configured cron schedule",
		Long: `Fetch the statement on schedule.cron (a six field cron spec with
seconds) until interrupted. Each run writes a new file to
schedule.output_dir.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, global)
			if err != nil {
				return err
			}
			return runSchedule(cmd.Context(), cmd.OutOrStdout(), e, opts, runNow)
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().BoolVar(&runNow, "run-now", false, "fetch once immediately before waiting for the schedule")

	return cmd
}

// scheduledFetch runs one fetch at a time. Ticks that arrive while a fetch
// is still running are skipped.
type scheduledFetch struct {
	mu  sync.Mutex
	run func() error
}

func (f *scheduledFetch) tick() {
	if !f.mu.TryLock() {
		klog.Warning("Previous fetch still running, skipping this run")
		return
	}
	defer f.mu.Unlock()

	klog.Info("Starting scheduled fetch")
	if err := f.run(); err != nil {
		klog.Errorf("Scheduled fetch failed: %v", err)
	}
}

func runSchedule(ctx context.Context, stdout io.Writer, e *env, opts *runOptions, runNow bool) error {
	args := fetchArgs(opts, nil, e)
	if _, err := e.registry.New(scraper.PortalScraperName, args, scraper.Options{}); err != nil {
		return err
	}

	job := &scheduledFetch{
		run: func() error {
			run := *opts
			run.output = filepath.Join(e.cfg.Schedule.OutputDir, scheduledFileName(args.At(2), time.Now()))
			_, err := e.runScraper(ctx, stdout, scraper.PortalScraperName, args, &run)
			return err
		},
	}

	c := cron.New()
	if err := c.AddFunc(e.cfg.Schedule.Cron, job.tick); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", e.cfg.Schedule.Cron, err)
	}

	if runNow {
		job.tick()
	}

	c.Start()
	defer c.Stop()
	klog.Infof("Scheduled fetch with %q", e.cfg.Schedule.Cron)

	<-ctx.Done()
	klog.Info("Stopping scheduler")
	return nil
}

func scheduledFileName(account string, now time.Time) string {
	return fmt.Sprintf("%s-%s.csv", account, now.Format("20060102-1504"))
}
