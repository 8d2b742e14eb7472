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
	"path/filepath"
	"sync"
	"time"
)

// fakeService is an in-memory Service. Listing returns scripted rounds in
// order and repeats the last one once they run out.
type fakeService struct {
	mu sync.Mutex

	nextID    int
	indexes   map[string][]string
	uploaded  []string
	rounds    [][]FileState
	listCalls int

	createErr error
	uploadErr map[string]error
	attachErr map[string]error
	listErr   error
	answer    string
	queries   []QueryRequest
}

func newFakeService() *fakeService {
	return &fakeService{
		indexes:   map[string][]string{},
		uploadErr: map[string]error{},
		attachErr: map[string]error{},
	}
}

func (f *fakeService) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s_%d", prefix, f.nextID)
}

func (f *fakeService) CreateIndex(_ context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	id := f.id("vs")
	f.indexes[id] = nil
	return id, nil
}

func (f *fakeService) UploadFile(_ context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.uploadErr[filepath.Base(path)]; err != nil {
		return "", err
	}
	f.uploaded = append(f.uploaded, filepath.Base(path))
	return "file-" + filepath.Base(path), nil
}

func (f *fakeService) AttachFile(_ context.Context, indexID, fileID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.attachErr[fileID]; err != nil {
		return err
	}
	f.indexes[indexID] = append(f.indexes[indexID], fileID)
	return nil
}

func (f *fakeService) ListFileStatuses(_ context.Context, _ string) ([]FileState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.rounds) == 0 {
		return nil, nil
	}
	i := f.listCalls - 1
	if i >= len(f.rounds) {
		i = len(f.rounds) - 1
	}
	return f.rounds[i], nil
}

func (f *fakeService) Query(_ context.Context, req QueryRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, req)
	return f.answer, nil
}

// fakeClock fires immediately and counts waits.
type fakeClock struct {
	mu    sync.Mutex
	waits int
}

func (c *fakeClock) After(time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.waits++
	c.mu.Unlock()
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

// blockingClock never fires.
type blockingClock struct{}

func (blockingClock) After(time.Duration) <-chan time.Time { return make(chan time.Time) }

func states(pairs ...string) []FileState {
	out := make([]FileState, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, FileState{FileID: pairs[i], Status: FileStatus(pairs[i+1])})
	}
	return out
}
