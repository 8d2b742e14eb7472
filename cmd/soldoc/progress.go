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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/kraklabs/soldoc/pkg/knowledge"
)

// ProgressConfig determines if and how progress should be displayed.
type ProgressConfig struct {
	// Enabled is false with --json or -q, or when stderr is not a TTY.
	Enabled bool
	Writer  io.Writer
	NoColor bool
}

// NewProgressConfig creates a progress configuration from global flags and TTY detection.
func NewProgressConfig(globals GlobalFlags) ProgressConfig {
	enabled := !globals.Quiet && isatty.IsTerminal(os.Stderr.Fd())
	return ProgressConfig{
		Enabled: enabled,
		Writer:  os.Stderr,
		NoColor: globals.NoColor,
	}
}

// NewProgressBar creates a progress bar, or nil when progress is disabled.
func NewProgressBar(cfg ProgressConfig, total int64, description string) *progressbar.ProgressBar {
	if !cfg.Enabled {
		return nil
	}

	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(cfg.Writer),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(!cfg.NoColor),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// NewSpinner creates an indeterminate spinner, or nil when progress is disabled.
func NewSpinner(cfg ProgressConfig, description string) *progressbar.ProgressBar {
	if !cfg.Enabled {
		return nil
	}

	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(cfg.Writer),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionEnableColorCodes(!cfg.NoColor),
	)
}

// indexProgress renders chunk uploads and readiness polling. Its methods
// match the callback signatures of knowledge.Indexer and knowledge.Poller
// and are safe to call when progress is disabled.
type indexProgress struct {
	cfg      ProgressConfig
	uploads  *progressbar.ProgressBar
	polling  *progressbar.ProgressBar
	uploaded int
	failed   int
}

func newIndexProgress(cfg ProgressConfig) *indexProgress {
	return &indexProgress{cfg: cfg}
}

// start shows a bar for total chunks, or a spinner when total is unknown.
func (p *indexProgress) start(total int) {
	if total > 0 {
		p.uploads = NewProgressBar(p.cfg, int64(total), "Uploading chunks")
		return
	}
	p.uploads = NewSpinner(p.cfg, "Uploading chunks")
}

func (p *indexProgress) chunk(path string, err error) {
	if err != nil {
		p.failed++
	} else {
		p.uploaded++
	}
	if p.uploads != nil {
		p.uploads.Describe("Uploading " + filepath.Base(path))
		_ = p.uploads.Add(1)
	}
}

func (p *indexProgress) poll(attempt int, states []knowledge.FileState) {
	if p.uploads != nil {
		_ = p.uploads.Finish()
		p.uploads = nil
	}
	if p.polling == nil {
		p.polling = NewSpinner(p.cfg, "Waiting for indexing")
	}
	if p.polling == nil {
		return
	}
	done := 0
	for _, s := range states {
		if s.Status == knowledge.StatusCompleted {
			done++
		}
	}
	p.polling.Describe(fmt.Sprintf("Waiting for indexing (%d/%d ready, poll %d)", done, len(states), attempt))
	_ = p.polling.Add(1)
}

func (p *indexProgress) finish() {
	for _, bar := range []*progressbar.ProgressBar{p.uploads, p.polling} {
		if bar != nil {
			_ = bar.Finish()
		}
	}
	p.uploads, p.polling = nil, nil
}
