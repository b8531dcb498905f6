// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinset

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/btcsuite/websocket"
	"github.com/lightningnetwork/lnd/ticker"
)

const (
	// DefaultWebsocketURL is the public mainnet event stream.
	DefaultWebsocketURL = "wss://api.coinset.org/ws"

	// TestnetWebsocketURL is the public testnet11 event stream.
	TestnetWebsocketURL = "wss://testnet11.api.coinset.org/ws"

	// DefaultPollInterval is the interval at which the blockchain state
	// is polled while the event stream is unavailable.
	DefaultPollInterval = 30 * time.Second

	// DefaultReconnectDelay is the delay between websocket dial
	// attempts.
	DefaultReconnectDelay = 5 * time.Second

	handshakeTimeout = 10 * time.Second
)

// ErrWatcherStarted is returned when Start is called twice.
var ErrWatcherStarted = errors.New("coinset: peak watcher already started")

// PeakConfig holds the options of a PeakWatcher.
type PeakConfig struct {
	// WebsocketURL is the event stream to subscribe to.  When empty the
	// watcher only polls.
	WebsocketURL string

	// Client is used to poll the blockchain state.  When nil the watcher
	// only listens to the event stream.
	Client *Client

	// PollTicker drives polling.  Defaults to a ticker firing every
	// DefaultPollInterval.
	PollTicker ticker.Ticker

	// ReconnectDelay is the wait between dial attempts.
	ReconnectDelay time.Duration
}

// peakEvent is a message of the event stream.
type peakEvent struct {
	Type string `json:"type"`
	Data struct {
		Height uint32 `json:"height"`
	} `json:"data"`
}

// PeakWatcher delivers the height of every new peak the node reports.
// Heights are delivered in increasing order; a peak at or below the last
// delivered height is dropped.
type PeakWatcher struct {
	cfg *PeakConfig

	peaks chan uint32

	// wsState tells the poller whether the event stream is connected.
	wsState chan bool

	bestMtx sync.Mutex
	best    uint32
	hasBest bool

	startOnce sync.Once
	stopOnce  sync.Once

	wg   sync.WaitGroup
	quit chan struct{}
}

// NewPeakWatcher returns a watcher for the given config.
func NewPeakWatcher(cfg *PeakConfig) *PeakWatcher {
	if cfg.PollTicker == nil && cfg.Client != nil {
		cfg.PollTicker = ticker.New(DefaultPollInterval)
	}
	if cfg.ReconnectDelay == 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}

	return &PeakWatcher{
		cfg:     cfg,
		peaks:   make(chan uint32),
		wsState: make(chan bool, 1),
		quit:    make(chan struct{}),
	}
}

// Peaks returns the channel new peak heights are delivered on.
func (w *PeakWatcher) Peaks() <-chan uint32 {
	return w.peaks
}

// Start launches the watcher goroutines.
func (w *PeakWatcher) Start() error {
	err := ErrWatcherStarted
	w.startOnce.Do(func() {
		err = nil

		if w.cfg.Client != nil {
			w.wg.Add(1)
			go w.pollHandler()
		}
		if w.cfg.WebsocketURL != "" {
			w.wg.Add(1)
			go w.wsHandler()
		}
	})
	return err
}

// Stop terminates the watcher and waits for its goroutines to exit.
func (w *PeakWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.quit)
	})
	w.wg.Wait()
}

// publish delivers height if it is the first height seen or above the best
// one.
func (w *PeakWatcher) publish(height uint32) bool {
	w.bestMtx.Lock()
	if w.hasBest && height <= w.best {
		w.bestMtx.Unlock()
		return true
	}
	w.best = height
	w.hasBest = true
	w.bestMtx.Unlock()

	select {
	case w.peaks <- height:
		return true
	case <-w.quit:
		return false
	}
}

// setConnected reports the event stream state to the poller, replacing any
// state it has not consumed yet.
func (w *PeakWatcher) setConnected(connected bool) {
	select {
	case <-w.wsState:
	default:
	}
	w.wsState <- connected
}

// pollHandler polls the blockchain state while the event stream is down.
// It owns the poll ticker.
func (w *PeakWatcher) pollHandler() {
	defer w.wg.Done()

	t := w.cfg.PollTicker
	t.Resume()
	defer t.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-w.quit:
			cancel()
		case <-ctx.Done():
		}
	}()

	poll := func() bool {
		state, err := w.cfg.Client.BlockchainState(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			log.Errorf("Unable to poll blockchain state: %v", err)
			return true
		}
		if state.Peak == nil {
			return true
		}
		return w.publish(state.PeakHeight())
	}

	log.Infof("Started polling %s for new peaks", w.cfg.Client.url)

	if !poll() {
		return
	}

	for {
		select {
		case <-t.Ticks():
			if !poll() {
				return
			}

		case connected := <-w.wsState:
			if connected {
				log.Debugf("Event stream connected, pausing poller")
				t.Pause()
			} else {
				log.Debugf("Event stream lost, resuming poller")
				t.Resume()
			}

		case <-w.quit:
			return
		}
	}
}

// wsHandler keeps a subscription to the event stream open until the watcher
// stops.
func (w *PeakWatcher) wsHandler() {
	defer w.wg.Done()

	for {
		if err := w.subscribe(); err != nil {
			log.Warnf("Event stream %s: %v", w.cfg.WebsocketURL, err)
		}
		if w.cfg.Client != nil {
			w.setConnected(false)
		}

		select {
		case <-time.After(w.cfg.ReconnectDelay):
		case <-w.quit:
			return
		}
	}
}

// subscribe dials the event stream and reads it until the connection fails
// or the watcher stops.
func (w *PeakWatcher) subscribe() error {
	dialer := &websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.Dial(w.cfg.WebsocketURL, nil)
	if err != nil {
		return err
	}

	log.Infof("Subscribed to peaks on %s", w.cfg.WebsocketURL)
	if w.cfg.Client != nil {
		w.setConnected(true)
	}

	// Closing the connection unblocks the read below on shutdown.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-w.quit:
			conn.Close()
		case <-done:
		}
	}()
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-w.quit:
				return nil
			default:
			}
			return err
		}

		var event peakEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			log.Debugf("Ignoring malformed event: %v", err)
			continue
		}
		if event.Type != "peak" {
			continue
		}

		log.Tracef("Peak event at height %d", event.Data.Height)
		if !w.publish(event.Data.Height) {
			return nil
		}
	}
}
