package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log/level"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/maxpoletaev/groupcast/address"
	"github.com/maxpoletaev/groupcast/api"
	"github.com/maxpoletaev/groupcast/channel"
)

func main() {
	p := flags.NewParser(&opts, flags.Default)

	if _, err := p.Parse(); err != nil {
		if err.(*flags.Error).Type != flags.ErrHelp {
			fmt.Println("cli error:", err)
		}

		os.Exit(2)
	}

	appctx, cancel := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := setupLogger()
	names := address.NewNameCache()
	history := newChatHistory(opts.Cluster.HistoryLength, os.Stdout, names, logger)
	reg := prometheus.NewRegistry()

	pipeline, err := setupPipeline(logger)
	if err != nil {
		level.Error(logger).Log("msg", "failed to create pipeline", "err", err)
		os.Exit(1)
	}

	ch, err := setupChannel(pipeline, history, names, reg, logger)
	if err != nil {
		level.Error(logger).Log("msg", "failed to create channel", "err", err)
		os.Exit(1)
	}

	stateTimeout := time.Duration(opts.Cluster.StateTimeout) * time.Millisecond

	err = ch.ConnectWithState(opts.Cluster.Name, nil, stateTimeout)
	if err != nil && !errors.Is(err, channel.ErrStateTransfer) {
		level.Error(logger).Log("msg", "failed to connect", "cluster", opts.Cluster.Name, "err", err)
		os.Exit(1)
	}

	level.Info(logger).Log("msg", "connected", "cluster", opts.Cluster.Name, "name", ch.Name(), "addr", ch.Address())

	eg, ctx := errgroup.WithContext(appctx)

	if opts.RestAPI.Enabled {
		eg.Go(func() error {
			return api.StartServer(ctx, ch, reg, logger, opts.RestAPI.BindAddr)
		})
	}

	eg.Go(func() error {
		defer cancel()
		return readLines(ctx, os.Stdin, ch, logger)
	})

	if err := eg.Wait(); err != nil {
		level.Error(logger).Log("msg", "node failed", "err", err)
	}

	level.Info(logger).Log("msg", "shutting down")

	if err := ch.Close(); err != nil {
		level.Error(logger).Log("msg", "failed to close channel", "err", err)
	}
}
