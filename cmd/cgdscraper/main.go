package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"k8s.io/klog"

	"github.com/cleared-dev/cgdscraper/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := commands.NewRootCommand().ExecuteContext(ctx)
	stop()
	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
