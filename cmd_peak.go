// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/lightningnetwork/lnd/ticker"
	"github.com/xchdev/explorer/coinset"
)

// peakEvent is a line of output of the peak command.
type peakEvent struct {
	Height uint32 `json:"height"`
}

type peakCommand struct {
	Count        int           `long:"count" description:"Exit after this many peaks, zero to follow until interrupted"`
	NoStream     bool          `long:"nostream" description:"Only poll the blockchain state"`
	PollInterval time.Duration `long:"pollinterval" description:"Interval at which the blockchain state is polled while the event stream is down"`

	app *app
}

func newPeakCommand(a *app) *peakCommand {
	return &peakCommand{
		PollInterval: coinset.DefaultPollInterval,
		app:          a,
	}
}

func (x *peakCommand) Register(p *flags.Parser) error {
	_, err := p.AddCommand(
		"peak",
		"Follow the chain peak",
		"Print the height of each new peak, read from the coinset "+
			"event stream and polled from the blockchain state "+
			"while the stream is down",
		x,
	)
	return err
}

func (x *peakCommand) Execute(args []string) error {
	if err := x.app.start(); err != nil {
		return err
	}
	return x.run(x.app.ctx, args)
}

func (x *peakCommand) run(ctx context.Context, _ []string) error {
	if x.Count < 0 {
		return errors.New("count must not be negative")
	}
	if x.PollInterval <= 0 {
		return errors.New("pollinterval must be positive")
	}

	client, err := x.app.cfg.coinsetClient()
	if err != nil {
		return err
	}

	cfg := &coinset.PeakConfig{
		Client:     client,
		PollTicker: ticker.New(x.PollInterval),
	}
	if !x.NoStream {
		cfg.WebsocketURL = x.app.cfg.CoinsetWebsocket.Value
	}

	watcher := coinset.NewPeakWatcher(cfg)
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	for seen := 0; x.Count == 0 || seen < x.Count; seen++ {
		select {
		case height := <-watcher.Peaks():
			err := x.app.writeJSON(&peakEvent{Height: height})
			if err != nil {
				return err
			}

		case <-ctx.Done():
			return nil
		}
	}

	return nil
}
