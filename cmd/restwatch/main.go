package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/samvad-hq/restmapper/internal/app"
	"github.com/samvad-hq/restmapper/internal/config"
	"github.com/samvad-hq/restmapper/internal/logger"
	"github.com/samvad-hq/restmapper/pkg/restmapper"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "restwatch: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("restwatch", pflag.ContinueOnError)
	flags.String("profile", "", "profile id (optional when only one profile is configured)")
	flags.String("profiles-file", "", "path to the profiles file")
	flags.String("publishers-file", "", "path to the publishers file")
	flags.String("journal-type", "", "journal backend (none|bbolt)")
	flags.String("log-level", "", "log level")
	method := flags.String("method", "GET", "HTTP method to poll with")
	interval := flags.Duration("interval", 0, "poll interval (defaults to poll_interval_seconds)")

	if err := flags.Parse(args); err != nil {
		return err
	}
	segments := flags.Args()
	if len(segments) == 0 {
		return errors.New("usage: restwatch [flags] segments...")
	}
	m, ok := restmapper.ParseMethod(strings.ToUpper(*method))
	if !ok {
		return fmt.Errorf("%w: %s", restmapper.ErrUnknownMethod, *method)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *interval > 0 {
		cfg.PollInterval = *interval
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Close()

	log.InfoObj("restwatch starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	explorer, err := app.NewExplorer(ctx, cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize explorer", "error", err)
		return err
	}
	defer func() {
		if err := explorer.Close(); err != nil {
			log.ErrorObj("explorer close failed", "error", err)
		}
	}()

	poller := app.NewPoller(explorer, app.CallRequest{Segments: segments, Method: m}, cfg.PollInterval, log)
	if err := poller.Run(ctx); err != nil {
		return fmt.Errorf("restwatch run: %w", err)
	}
	return nil
}
