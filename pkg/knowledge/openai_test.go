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
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOpenAI serves the handful of endpoints OpenAIService calls.
type fakeOpenAI struct {
	mu       sync.Mutex
	calls    []string
	purpose  string
	attached []string
	query    map[string]any
	fail     bool
}

func (f *fakeOpenAI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	w.Header().Set("Content-Type", "application/json")

	if f.fail {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/vector_stores":
		_, _ = io.WriteString(w, `{"id":"vs_abc","object":"vector_store","name":"solution_chunks","status":"completed"}`)
	case r.Method == http.MethodPost && r.URL.Path == "/files":
		_ = r.ParseMultipartForm(1 << 20)
		f.purpose = r.FormValue("purpose")
		_, _ = io.WriteString(w, `{"id":"file_1","object":"file","bytes":2,"filename":"overview.json","purpose":"assistants"}`)
	case r.Method == http.MethodPost && r.URL.Path == "/vector_stores/vs_abc/files":
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if id, ok := body["file_id"].(string); ok {
			f.attached = append(f.attached, id)
		}
		_, _ = io.WriteString(w, `{"id":"file_1","object":"vector_store.file","status":"in_progress","vector_store_id":"vs_abc"}`)
	case r.Method == http.MethodGet && r.URL.Path == "/vector_stores/vs_abc/files":
		_, _ = io.WriteString(w, `{"object":"list","data":[
			{"id":"file_1","object":"vector_store.file","status":"completed","vector_store_id":"vs_abc"},
			{"id":"file_2","object":"vector_store.file","status":"in_progress","vector_store_id":"vs_abc"},
			{"id":"file_3","object":"vector_store.file","status":"failed","vector_store_id":"vs_abc",
			 "last_error":{"code":"invalid_file","message":"unreadable"}}
		],"first_id":"file_1","last_id":"file_3","has_more":false}`)
	case r.Method == http.MethodPost && r.URL.Path == "/responses":
		_ = json.NewDecoder(r.Body).Decode(&f.query)
		_, _ = io.WriteString(w, `{"id":"resp_1","object":"response","status":"completed","model":"gpt-5-mini",
			"output":[{"type":"message","id":"msg_1","role":"assistant","status":"completed",
			"content":[{"type":"output_text","text":"Not found in uploaded files.","annotations":[]}]}]}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"message":"not found"}}`)
	}
}

func newTestOpenAI(t *testing.T) (*OpenAIService, *fakeOpenAI) {
	t.Helper()
	fake := &fakeOpenAI{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := NewOpenAIService(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return svc, fake
}

func TestOpenAIService_IndexLifecycle(t *testing.T) {
	svc, fake := newTestOpenAI(t)
	ctx := context.Background()

	id, err := svc.CreateIndex(ctx, "solution_chunks")
	require.NoError(t, err)
	assert.Equal(t, "vs_abc", id)

	path := filepath.Join(t.TempDir(), "overview.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	fileID, err := svc.UploadFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "file_1", fileID)
	assert.Equal(t, "assistants", fake.purpose)

	require.NoError(t, svc.AttachFile(ctx, id, fileID))
	assert.Equal(t, []string{"file_1"}, fake.attached)

	got, err := svc.ListFileStatuses(ctx, id)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, StatusCompleted, got[0].Status)
	assert.Equal(t, StatusProcessing, got[1].Status)
	assert.Equal(t, StatusFailed, got[2].Status)
	assert.Contains(t, got[2].Error, "unreadable")
}

func TestOpenAIService_QueryUsesFileSearch(t *testing.T) {
	svc, fake := newTestOpenAI(t)

	text, err := svc.Query(context.Background(), QueryRequest{IndexID: "vs_abc", Model: "gpt-5-mini", Prompt: "What is X?"})
	require.NoError(t, err)
	assert.Equal(t, "Not found in uploaded files.", text)

	assert.Equal(t, "gpt-5-mini", fake.query["model"])
	assert.Equal(t, "What is X?", fake.query["input"])
	tools, ok := fake.query["tools"].([]any)
	require.True(t, ok)
	require.Len(t, tools, 1)
	tool := tools[0].(map[string]any)
	assert.Equal(t, "file_search", tool["type"])
	assert.Equal(t, []any{"vs_abc"}, tool["vector_store_ids"])
}

func TestOpenAIService_NoRetry(t *testing.T) {
	svc, fake := newTestOpenAI(t)
	fake.fail = true

	_, err := svc.CreateIndex(context.Background(), "x")
	require.Error(t, err)
	assert.Len(t, fake.calls, 1)
}

func TestNewOpenAIService_RequiresKey(t *testing.T) {
	_, err := NewOpenAIService(OpenAIConfig{APIKey: "  "})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "API key"))
}
