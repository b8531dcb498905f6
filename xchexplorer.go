// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/jessevdk/go-flags"
	"golang.org/x/term"
)

func main() {
	// Work around defer not working after os.Exit.
	if err := explorerMain(); err != nil {
		os.Exit(1)
	}
}

// explorerMain is a work-around main function that is required since deferred
// functions (such as log flushing) are not called with calls to os.Exit.
// Instead, main runs this function and checks for a non-nil error, at which
// point any defers have already run, and if the error is non-nil, the program
// can be exited with an error exit status.
func explorerMain() error {
	ctx, cancel := interruptContext(context.Background())
	defer cancel()

	a := &app{
		ctx:    ctx,
		in:     os.Stdin,
		out:    os.Stdout,
		pretty: term.IsTerminal(int(os.Stdout.Fd())),
	}
	err := a.run(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return err
}

// app is the state shared by the commands of one invocation.
type app struct {
	cfg *config

	ctx context.Context
	in  io.Reader
	out io.Writer

	// pretty indents JSON output.
	pretty bool

	startOnce sync.Once
	startErr  error
}

// run loads the configuration and executes the command selected by args.
func (a *app) run(args []string) error {
	cfg, flagParser, err := loadConfig(args, a.out)
	if errors.Is(err, errEarlyExit) {
		return nil
	}
	if err != nil {
		return err
	}
	a.cfg = cfg
	defer logRotator.Close()

	for _, cmd := range a.commands() {
		if err := cmd.Register(flagParser); err != nil {
			return err
		}
	}

	_, err = flagParser.ParseArgs(args)
	var flagsErr *flags.Error
	switch {
	case errors.Is(err, errEarlyExit):
		return nil

	case errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp:
		fmt.Fprintln(a.out, flagsErr.Message)
		return nil
	}
	return err
}

// start finalizes the configuration once a command has been selected.
func (a *app) start() error {
	a.startOnce.Do(func() {
		a.startErr = a.cfg.finalize()
		if a.startErr != nil {
			return
		}
		log.Debugf("Version %s (Go version %s %s/%s)", version(),
			runtime.Version(), runtime.GOOS, runtime.GOARCH)
	})
	return a.startErr
}
