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

package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Poll defaults: one listing per second for at most ten minutes.
const (
	DefaultPollInterval = time.Second
	DefaultPollAttempts = 600
)

// Clock abstracts waiting so tests can run the poll budget without real time.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// PollerConfig configures a Poller. Zero values take the defaults.
type PollerConfig struct {
	Interval    time.Duration
	MaxAttempts int
	Clock       Clock
	Logger      *slog.Logger

	// OnPoll, when set, is called after every listing.
	OnPoll func(attempt int, states []FileState)
}

// Poller waits for an index to finish processing its attached files.
type Poller struct {
	svc      Service
	interval time.Duration
	attempts int
	clock    Clock
	logger   *slog.Logger
	onPoll   func(int, []FileState)
}

// NewPoller creates a poller over svc.
func NewPoller(svc Service, cfg PollerConfig) *Poller {
	p := &Poller{
		svc:      svc,
		interval: cfg.Interval,
		attempts: cfg.MaxAttempts,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
		onPoll:   cfg.OnPoll,
	}
	if p.interval <= 0 {
		p.interval = DefaultPollInterval
	}
	if p.attempts <= 0 {
		p.attempts = DefaultPollAttempts
	}
	if p.clock == nil {
		p.clock = realClock{}
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// WaitReady blocks until every attached file of the session is completed.
// It returns a FailedError as soon as any file is reported failed, and
// ErrIndexingTimeout once the attempt budget is spent. A session with no
// attached files never becomes ready. Calling WaitReady on a ready session
// returns immediately.
func (p *Poller) WaitReady(ctx context.Context, s *Session) error {
	if s.ready {
		return nil
	}
	for attempt := 1; attempt <= p.attempts; attempt++ {
		states, err := p.svc.ListFileStatuses(ctx, s.IndexID)
		if err != nil {
			return &IndexError{Op: OpList, Err: err}
		}
		if p.onPoll != nil {
			p.onPoll(attempt, states)
		}
		if len(s.attached) == 0 {
			for _, st := range states {
				s.attach(st.FileID)
			}
		}

		done, failed := p.evaluate(s, states)
		if len(failed) > 0 {
			p.logger.Warn("poll.failed", "index_id", s.IndexID, "attempt", attempt, "failed", len(failed))
			return &FailedError{IndexID: s.IndexID, Files: failed}
		}
		p.logger.Debug("poll.tick", "index_id", s.IndexID, "attempt", attempt, "completed", done, "attached", len(s.attached))
		if len(s.attached) > 0 && done == len(s.attached) {
			s.ready = true
			p.logger.Info("poll.ready", "index_id", s.IndexID, "attempts", attempt)
			return nil
		}
		if attempt == p.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.clock.After(p.interval):
		}
	}
	return fmt.Errorf("%w: %s not ready after %d attempts", ErrIndexingTimeout, s.IndexID, p.attempts)
}

// evaluate counts completed attached files and collects failed ones. Files
// the listing does not mention yet count as pending.
func (p *Poller) evaluate(s *Session, states []FileState) (completed int, failed []FileState) {
	seen := make(map[string]struct{}, len(states))
	for _, st := range states {
		if _, ok := s.attached[st.FileID]; !ok {
			continue
		}
		switch st.Status {
		case StatusCompleted:
			if _, dup := seen[st.FileID]; !dup {
				seen[st.FileID] = struct{}{}
				completed++
			}
		case StatusFailed:
			failed = append(failed, st)
		}
	}
	return completed, failed
}
