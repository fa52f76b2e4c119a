package main

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/maxpoletaev/groupcast/address"
	"github.com/maxpoletaev/groupcast/channel"
	"github.com/maxpoletaev/groupcast/stack/gossip"
)

func setupLogger() kitlog.Logger {
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))

	if !opts.Verbose {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	return kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)
}

func setupPipeline(logger kitlog.Logger) (*gossip.Pipeline, error) {
	conf := gossip.DefaultConfig()
	conf.BindAddr = opts.Gossip.BindAddr
	conf.BindPort = opts.Gossip.BindPort
	conf.AdvertiseAddr = opts.Gossip.AdvertiseAddr
	conf.AdvertisePort = opts.Gossip.AdvertisePort
	conf.Seeds = parseAddrs(opts.Cluster.JoinAddrs)
	conf.Logger = kitlog.With(logger, "component", "gossip")

	return gossip.New(conf)
}

func setupChannel(
	pipeline channel.Pipeline,
	history *chatHistory,
	names *address.NameCache,
	reg prometheus.Registerer,
	logger kitlog.Logger,
) (*channel.Channel, error) {
	conf := channel.DefaultConfig()
	conf.Name = opts.Node.Name
	conf.DiscardOwnMessages = opts.Cluster.DiscardOwn
	conf.Logger = kitlog.With(logger, "component", "channel")

	return channel.New(
		pipeline, conf,
		channel.WithReceiver(history),
		channel.WithNameCache(names),
		channel.WithRegisterer(reg),
	)
}

// readLines broadcasts every line read from r until ctx is done or r is
// exhausted.
func readLines(ctx context.Context, r io.Reader, ch *channel.Channel, logger kitlog.Logger) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}

		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-scanErr:
			return err

		case text := <-lines:
			if text == "" {
				continue
			}

			line := chatLine{
				Author: ch.Name(),
				Text:   text,
				Time:   time.Now().UnixNano(),
			}

			if err := ch.SendObject(nil, line); err != nil {
				level.Error(logger).Log("msg", "failed to send line", "err", err)
			}
		}
	}
}
