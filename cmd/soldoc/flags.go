// Copyright 2026 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/soldoc/internal/errors"
	"github.com/kraklabs/soldoc/internal/ui"
)

// newFlagSet creates a command flag set whose usage prints usage, the
// option defaults and then examples.
func newFlagSet(name, usage, examples string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fmt.Fprintln(os.Stderr, "\nOptions:")
		fs.PrintDefaults()
		if examples != "" {
			fmt.Fprintf(os.Stderr, "\nExamples:\n%s", examples)
		}
	}
	return fs
}

// parseFlags parses args. help is true when --help was requested and the
// usage has already been printed.
func parseFlags(fs *flag.FlagSet, args []string) (help bool, err error) {
	err = fs.Parse(args)
	if err == flag.ErrHelp {
		return true, nil
	}
	if err != nil {
		return false, errors.NewInputError(
			fmt.Sprintf("Invalid options for %s", fs.Name()),
			err.Error(),
			fmt.Sprintf("Run: soldoc %s --help", fs.Name()),
		)
	}
	return false, nil
}

// unusedFlags registers string options that every command accepts but fs
// has no use for. The returned func warns about each one that was set.
func unusedFlags(fs *flag.FlagSet, names ...string) func() {
	for _, n := range names {
		fs.String(n, "", "Accepted for a uniform command line; ignored by "+fs.Name())
	}
	return func() {
		for _, n := range names {
			if fs.Changed(n) {
				ui.Warningf("--%s is ignored by %s", n, fs.Name())
			}
		}
	}
}

// usageError prints the command usage and returns an input error.
func usageError(fs *flag.FlagSet, msg string) error {
	fs.Usage()
	return errors.NewInputError(msg, "", fmt.Sprintf("Run: soldoc %s --help", fs.Name()))
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("shutdown.signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
