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

package pipeline

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a job or of one of its outputs.
type State string

const (
	StatePending    State = "pending"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// FileRef is a produced file as reported to callers.
type FileRef struct {
	Kind        string `json:"kind"`
	Path        string `json:"path"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
}

// Job tracks one pipeline run in memory. It is safe for concurrent use so
// progress can be read while the run goes on. Nothing is persisted.
type Job struct {
	mu       sync.Mutex
	runID    string
	state    State
	stage    string
	progress map[string]State
	files    []FileRef
	err      string
	created  time.Time
	updated  time.Time
}

// JobSnapshot is a point-in-time copy of a Job.
type JobSnapshot struct {
	RunID     string           `json:"run_id"`
	State     State            `json:"state"`
	Stage     string           `json:"stage,omitempty"`
	Progress  map[string]State `json:"progress"`
	Files     []FileRef        `json:"files"`
	Error     string           `json:"error,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewJob creates a pending job with one progress entry per output kind.
func NewJob(kinds []string) *Job {
	now := time.Now()
	j := &Job{
		runID:    uuid.NewString(),
		state:    StatePending,
		progress: make(map[string]State, len(kinds)),
		created:  now,
		updated:  now,
	}
	for _, k := range kinds {
		j.progress[k] = StatePending
	}
	return j
}

// RunID returns the job's unique id.
func (j *Job) RunID() string { return j.runID }

func (j *Job) touch() { j.updated = time.Now() }

// Stage marks the job as processing the named stage.
func (j *Job) Stage(name string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.state = StateProcessing
	j.stage = name
	j.touch()
}

// SetProgress records the state of one output kind.
func (j *Job) SetProgress(kind string, s State) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.progress[kind] = s
	j.touch()
}

// AddFile records a produced file.
func (j *Job) AddFile(kind, path, contentType string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.files = append(j.files, FileRef{Kind: kind, Path: path, Name: filepath.Base(path), ContentType: contentType})
	j.touch()
}

// Complete marks the job completed.
func (j *Job) Complete() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.state = StateCompleted
	j.stage = ""
	j.touch()
}

// Fail marks the job failed. Outputs still pending or processing fail with it.
func (j *Job) Fail(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.state = StateFailed
	if err != nil {
		j.err = err.Error()
	}
	for k, s := range j.progress {
		if s == StatePending || s == StateProcessing {
			j.progress[k] = StateFailed
		}
	}
	j.touch()
}

// Snapshot copies the current state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	progress := make(map[string]State, len(j.progress))
	for k, v := range j.progress {
		progress[k] = v
	}
	return JobSnapshot{
		RunID:     j.runID,
		State:     j.state,
		Stage:     j.stage,
		Progress:  progress,
		Files:     append([]FileRef{}, j.files...),
		Error:     j.err,
		CreatedAt: j.created,
		UpdatedAt: j.updated,
	}
}
