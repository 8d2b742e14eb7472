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
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/soldoc/pkg/archive"
	"github.com/kraklabs/soldoc/pkg/generation"
	"github.com/kraklabs/soldoc/pkg/knowledge"
)

// memService completes every attached file on the second listing.
type memService struct {
	mu       sync.Mutex
	files    []string
	lists    int
	queries  int
	failFile string
}

func (s *memService) CreateIndex(context.Context, string) (string, error) { return "vs_test", nil }

func (s *memService) UploadFile(_ context.Context, path string) (string, error) {
	return "file-" + filepath.Base(path), nil
}

func (s *memService) AttachFile(_ context.Context, _, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = append(s.files, fileID)
	return nil
}

func (s *memService) ListFileStatuses(context.Context, string) ([]knowledge.FileState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	out := make([]knowledge.FileState, 0, len(s.files))
	for _, id := range s.files {
		st := knowledge.StatusProcessing
		if s.lists > 1 {
			st = knowledge.StatusCompleted
		}
		if id == s.failFile {
			st = knowledge.StatusFailed
		}
		out = append(out, knowledge.FileState{FileID: id, Status: st})
	}
	return out, nil
}

func (s *memService) Query(_ context.Context, req knowledge.QueryRequest) (string, error) {
	s.mu.Lock()
	s.queries++
	s.mu.Unlock()
	switch {
	case strings.Contains(req.Prompt, "Mermaid"):
		return "flowchart LR\n  CA1 --> W1", nil
	case strings.Contains(req.Prompt, "DevValue"):
		return `[{"Name":"wm_SiteUrl","Type":"String"}]`, nil
	case strings.Contains(req.Prompt, "Question:"):
		return "It contains one workflow.", nil
	}
	return "# Document\n", nil
}

type instantClock struct{}

func (instantClock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

type copyConverter struct{}

func (copyConverter) Convert(_ context.Context, md, name, dir string) error {
	b, err := os.ReadFile(md)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), b, 0o644)
}

func solutionZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "solution.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

var sampleEntries = map[string]string{
	"solution.xml":                                "<ImportExportXml/>",
	"CanvasApps/app_DocumentUri.msapp":            "msapp",
	"CanvasApps/app_BackgroundImageUri":           "png",
	"Workflows/Notify-1234.json":                  `{"properties":{}}`,
	"environmentvariabledefinitions/wm_SiteUrl/x": "<x/>",
}

func newTestRunner(svc *memService) *Runner {
	return NewRunner(svc, Config{Converter: copyConverter{}, Clock: instantClock{}})
}

func TestRun_EndToEnd(t *testing.T) {
	svc := &memService{}
	var stages []string
	r := NewRunner(svc, Config{
		Converter: copyConverter{},
		Clock:     instantClock{},
		OnStage:   func(s string) { stages = append(stages, s) },
	})

	res, err := r.Run(context.Background(), Request{
		ArchivePath: solutionZip(t, sampleEntries),
		ScratchDir:  t.TempDir(),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{StageExtract, StageParse, StageIndex, StageGenerate}, stages)
	assert.Equal(t, "vs_test", res.IndexID)
	assert.Equal(t, StateCompleted, res.Job.State)
	// Four section chunks plus one per workflow.
	assert.Len(t, svc.files, 5)
	assert.Len(t, res.Parsed.Chunks, 5)

	require.NotNil(t, res.Generation)
	assert.Len(t, res.Generation.Artifacts, len(generation.Kinds))
	assert.Len(t, res.Job.Files, len(generation.Kinds))
	for _, k := range generation.Kinds {
		assert.Equal(t, StateCompleted, res.Job.Progress[k.String()], k.String())
	}
	assert.NotEmpty(t, res.Generation.Headline)
	assert.FileExists(t, res.Generation.Headline)
	assert.Equal(t, 2, svc.lists)
	assert.Contains(t, res.Summary(), "5 artifact(s)")
}

func TestRun_AskOnly(t *testing.T) {
	svc := &memService{}
	res, err := newTestRunner(svc).Run(context.Background(), Request{
		ArchivePath: solutionZip(t, sampleEntries),
		ScratchDir:  t.TempDir(),
		Outputs:     []string{"faq", "ask", "What does it contain?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "It contains one workflow.", res.Answer)
	assert.Equal(t, 1, svc.queries)
	assert.Empty(t, res.Job.Files)
	assert.Equal(t, map[string]State{"ask": StateCompleted}, res.Job.Progress)
}

func TestRun_RejectsBeforeRemoteWork(t *testing.T) {
	tests := []struct {
		name    string
		archive string
		outputs []string
		want    error
	}{
		{"bad extension", "upload.tar", nil, archive.ErrUnsupportedType},
		{"unknown output", "upload.zip", []string{"overview", "bogus"}, generation.ErrUnknownOutputType},
		{"missing question", "upload.zip", []string{"ask"}, generation.ErrMissingQuestion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &memService{}
			res, err := newTestRunner(svc).Run(context.Background(), Request{ArchivePath: tt.archive, Outputs: tt.outputs})
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, res)
			assert.Empty(t, svc.files)
		})
	}
}

func TestRun_NoContent(t *testing.T) {
	svc := &memService{}
	res, err := newTestRunner(svc).Run(context.Background(), Request{
		ArchivePath: solutionZip(t, map[string]string{"readme.txt": "hi"}),
		ScratchDir:  t.TempDir(),
	})
	require.ErrorIs(t, err, archive.ErrNoContent)
	assert.Equal(t, StateFailed, res.Job.State)
	assert.Empty(t, svc.files)
}

func TestRun_IndexingFailed(t *testing.T) {
	svc := &memService{failFile: "file-overview.json"}
	res, err := newTestRunner(svc).Run(context.Background(), Request{
		ArchivePath: solutionZip(t, sampleEntries),
		ScratchDir:  t.TempDir(),
		Outputs:     []string{"overview", "faq"},
	})
	require.ErrorIs(t, err, knowledge.ErrIndexingFailed)
	assert.Equal(t, StateFailed, res.Job.State)
	assert.Equal(t, StateFailed, res.Job.Progress["overview"])
	assert.Equal(t, StateFailed, res.Job.Progress["faq"])
	assert.Zero(t, svc.queries)
	assert.Contains(t, res.Job.Error, "indexing failed")
}

func TestJob_Lifecycle(t *testing.T) {
	j := NewJob([]string{"overview", "faq"})
	snap := j.Snapshot()
	assert.Equal(t, StatePending, snap.State)
	assert.NotEmpty(t, snap.RunID)

	j.Stage(StageIndex)
	j.SetProgress("overview", StateCompleted)
	j.AddFile("overview", "/out/Solution_Overview.docx", "application/x")
	j.Fail(fmt.Errorf("boom"))

	snap = j.Snapshot()
	assert.Equal(t, StateFailed, snap.State)
	assert.Equal(t, StateCompleted, snap.Progress["overview"])
	assert.Equal(t, StateFailed, snap.Progress["faq"])
	require.Len(t, snap.Files, 1)
	assert.Equal(t, "Solution_Overview.docx", snap.Files[0].Name)
	assert.Equal(t, "boom", snap.Error)
}
