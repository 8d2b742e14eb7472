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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitReady_SucceedsOnThirdPoll(t *testing.T) {
	svc := newFakeService()
	svc.rounds = [][]FileState{
		states("a", "processing", "b", "processing", "c", "completed"),
		states("a", "processing", "b", "processing", "c", "completed"),
		states("a", "completed", "b", "completed", "c", "completed"),
	}
	clock := &fakeClock{}
	p := NewPoller(svc, PollerConfig{Clock: clock})
	session := NewSession("vs_1", "a", "b", "c")

	require.NoError(t, p.WaitReady(context.Background(), session))
	assert.Equal(t, 3, svc.listCalls)
	assert.Equal(t, 2, clock.waits)
	assert.True(t, session.Ready())

	// Already certified: no further listings.
	require.NoError(t, p.WaitReady(context.Background(), session))
	assert.Equal(t, 3, svc.listCalls)
}

func TestWaitReady_FailsImmediately(t *testing.T) {
	svc := newFakeService()
	svc.rounds = [][]FileState{
		states("a", "processing", "b", "failed", "c", "processing"),
	}
	clock := &fakeClock{}
	p := NewPoller(svc, PollerConfig{Clock: clock})

	err := p.WaitReady(context.Background(), NewSession("vs_1", "a", "b", "c"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIndexingFailed)
	assert.NotErrorIs(t, err, ErrIndexingTimeout)
	assert.Equal(t, 1, svc.listCalls)
	assert.Zero(t, clock.waits)

	var failed *FailedError
	require.True(t, errors.As(err, &failed))
	require.Len(t, failed.Files, 1)
	assert.Equal(t, "b", failed.Files[0].FileID)
}

func TestWaitReady_Timeout(t *testing.T) {
	svc := newFakeService()
	svc.rounds = [][]FileState{states("a", "processing")}
	clock := &fakeClock{}
	p := NewPoller(svc, PollerConfig{Clock: clock})

	err := p.WaitReady(context.Background(), NewSession("vs_1", "a"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIndexingTimeout)
	assert.Equal(t, DefaultPollAttempts, svc.listCalls)
	assert.Equal(t, DefaultPollAttempts-1, clock.waits)
}

func TestWaitReady_EmptySessionNeverReady(t *testing.T) {
	svc := newFakeService()
	p := NewPoller(svc, PollerConfig{Clock: &fakeClock{}, MaxAttempts: 5})

	err := p.WaitReady(context.Background(), NewSession("vs_1"))
	assert.ErrorIs(t, err, ErrIndexingTimeout)
	assert.Equal(t, 5, svc.listCalls)
}

func TestWaitReady_MissingFilesArePending(t *testing.T) {
	svc := newFakeService()
	svc.rounds = [][]FileState{
		states("a", "completed"),
		states("a", "completed", "b", "completed"),
	}
	p := NewPoller(svc, PollerConfig{Clock: &fakeClock{}})

	require.NoError(t, p.WaitReady(context.Background(), NewSession("vs_1", "a", "b")))
	assert.Equal(t, 2, svc.listCalls)
}

func TestWaitReady_AdoptsListingForExistingIndex(t *testing.T) {
	svc := newFakeService()
	svc.rounds = [][]FileState{
		states("x", "processing", "y", "completed"),
		states("x", "completed", "y", "completed"),
	}
	p := NewPoller(svc, PollerConfig{Clock: &fakeClock{}})
	session := NewSession("vs_existing")

	require.NoError(t, p.WaitReady(context.Background(), session))
	assert.Equal(t, []string{"x", "y"}, session.Attached())
}

func TestWaitReady_IgnoresUnattachedFailures(t *testing.T) {
	svc := newFakeService()
	svc.rounds = [][]FileState{states("a", "completed", "other", "failed")}
	p := NewPoller(svc, PollerConfig{Clock: &fakeClock{}})

	assert.NoError(t, p.WaitReady(context.Background(), NewSession("vs_1", "a")))
}

func TestWaitReady_Cancelled(t *testing.T) {
	svc := newFakeService()
	svc.rounds = [][]FileState{states("a", "processing")}
	p := NewPoller(svc, PollerConfig{Clock: blockingClock{}, Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.WaitReady(ctx, NewSession("vs_1", "a")) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("WaitReady did not return after cancellation")
	}
}

func TestWaitReady_ListErrorIsNotRetried(t *testing.T) {
	svc := newFakeService()
	svc.listErr = errors.New("connection reset")
	p := NewPoller(svc, PollerConfig{Clock: &fakeClock{}})

	err := p.WaitReady(context.Background(), NewSession("vs_1", "a"))
	assert.ErrorIs(t, err, ErrIndex)
	assert.Equal(t, 1, svc.listCalls)
}

func TestWaitReady_OnPoll(t *testing.T) {
	svc := newFakeService()
	svc.rounds = [][]FileState{states("a", "processing"), states("a", "completed")}
	var attempts []int
	p := NewPoller(svc, PollerConfig{
		Clock:  &fakeClock{},
		OnPoll: func(attempt int, _ []FileState) { attempts = append(attempts, attempt) },
	})

	require.NoError(t, p.WaitReady(context.Background(), NewSession("vs_1", "a")))
	assert.Equal(t, []int{1, 2}, attempts)
}
