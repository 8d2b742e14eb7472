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
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	ooption "github.com/openai/openai-go/option"
	oresponses "github.com/openai/openai-go/responses"
	oshared "github.com/openai/openai-go/shared"
)

// DefaultRequestTimeout bounds every single call made by OpenAIService.
const DefaultRequestTimeout = 60 * time.Second

// OpenAIConfig configures the vector-store backed Service.
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	RequestTimeout time.Duration
	HTTPClient     *http.Client
}

// OpenAIService implements Service on OpenAI vector stores, files and the
// Responses API with the file_search tool.
type OpenAIService struct {
	client openai.Client
}

var _ Service = (*OpenAIService)(nil)

// NewOpenAIService builds a client. The SDK's own retries are disabled.
func NewOpenAIService(cfg OpenAIConfig) (*OpenAIService, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errors.New("openai: missing API key")
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	opts := []ooption.RequestOption{
		ooption.WithAPIKey(key),
		ooption.WithRequestTimeout(timeout),
		ooption.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, ooption.WithBaseURL(base))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, ooption.WithHTTPClient(cfg.HTTPClient))
	}
	return &OpenAIService{client: openai.NewClient(opts...)}, nil
}

// CreateIndex creates a vector store named name and returns its id.
func (s *OpenAIService) CreateIndex(ctx context.Context, name string) (string, error) {
	vs, err := s.client.VectorStores.New(ctx, openai.VectorStoreNewParams{Name: openai.String(name)})
	if err != nil {
		return "", err
	}
	return vs.ID, nil
}

// UploadFile uploads the file at path for retrieval and returns the file id.
func (s *OpenAIService) UploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	obj, err := s.client.Files.New(ctx, openai.FileNewParams{
		File:    f,
		Purpose: openai.FilePurposeAssistants,
	})
	if err != nil {
		return "", err
	}
	return obj.ID, nil
}

// AttachFile adds an uploaded file to the vector store indexID. Ingestion
// continues server-side; poll ListFileStatuses for the outcome.
func (s *OpenAIService) AttachFile(ctx context.Context, indexID, fileID string) error {
	_, err := s.client.VectorStores.Files.New(ctx, indexID, openai.VectorStoreFileNewParams{FileID: fileID})
	return err
}

// ListFileStatuses returns the ingestion state of every file in the vector
// store, following pagination.
func (s *OpenAIService) ListFileStatuses(ctx context.Context, indexID string) ([]FileState, error) {
	iter := s.client.VectorStores.Files.ListAutoPaging(ctx, indexID, openai.VectorStoreFileListParams{
		Limit: openai.Int(100),
	})
	var out []FileState
	for iter.Next() {
		f := iter.Current()
		st := FileState{FileID: f.ID, Status: mapVectorStoreStatus(f.Status)}
		if f.LastError.Message != "" {
			st.Error = fmt.Sprintf("%s: %s", f.LastError.Code, f.LastError.Message)
		}
		out = append(out, st)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Query asks req.Model the prompt with file search over req.IndexID and
// returns the concatenated output text.
func (s *OpenAIService) Query(ctx context.Context, req QueryRequest) (string, error) {
	params := oresponses.ResponseNewParams{
		Model: oshared.ResponsesModel(strings.TrimSpace(req.Model)),
		Input: oresponses.ResponseNewParamsInputUnion{OfString: openai.String(req.Prompt)},
		Tools: []oresponses.ToolUnionParam{{
			OfFileSearch: &oresponses.FileSearchToolParam{VectorStoreIDs: []string{req.IndexID}},
		}},
	}
	resp, err := s.client.Responses.New(ctx, params)
	if err != nil {
		return "", err
	}
	return resp.OutputText(), nil
}

func mapVectorStoreStatus(status openai.VectorStoreFileStatus) FileStatus {
	switch status {
	case openai.VectorStoreFileStatusCompleted:
		return StatusCompleted
	case openai.VectorStoreFileStatusFailed, openai.VectorStoreFileStatusCancelled:
		return StatusFailed
	case openai.VectorStoreFileStatusInProgress:
		return StatusProcessing
	default:
		return StatusPending
	}
}
