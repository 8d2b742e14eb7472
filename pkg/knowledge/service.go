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
	"strings"
)

// FileStatus is the indexing state of one attached file.
type FileStatus string

const (
	StatusPending    FileStatus = "pending"
	StatusProcessing FileStatus = "processing"
	StatusCompleted  FileStatus = "completed"
	StatusFailed     FileStatus = "failed"
)

// Terminal reports whether no further transition is expected.
func (s FileStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// FileState is one entry of an index's file-status listing.
type FileState struct {
	FileID string     `json:"file_id"`
	Status FileStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// QueryRequest is a retrieval query constrained to a single index.
type QueryRequest struct {
	IndexID string
	Model   string
	Prompt  string
}

// Service is the remote semantic index. Implementations must not retry on
// their own; a failed call is reported to the caller as is.
type Service interface {
	// CreateIndex creates an empty index and returns its id.
	CreateIndex(ctx context.Context, name string) (string, error)

	// UploadFile uploads a local file and returns the remote file id.
	UploadFile(ctx context.Context, path string) (string, error)

	// AttachFile adds an uploaded file to an index.
	AttachFile(ctx context.Context, indexID, fileID string) error

	// ListFileStatuses returns the indexing state of every file in the index.
	ListFileStatuses(ctx context.Context, indexID string) ([]FileState, error)

	// Query runs a retrieval-augmented query against the index and returns
	// the model's text output.
	Query(ctx context.Context, req QueryRequest) (string, error)
}

var (
	// ErrIndex marks failures of create, upload, attach, list and query calls.
	ErrIndex = errors.New("index error")
	// ErrIndexingFailed is returned when the service rejects at least one file.
	ErrIndexingFailed = errors.New("indexing failed")
	// ErrIndexingTimeout is returned when the poll budget runs out.
	ErrIndexingTimeout = errors.New("indexing timed out")
)

// Index operations named in IndexError.
const (
	OpCreate = "create"
	OpUpload = "upload"
	OpAttach = "attach"
	OpList   = "list"
	OpQuery  = "query"
)

// IndexError is a failed call against the index. File is set for upload
// and attach failures.
type IndexError struct {
	Op   string
	File string
	Err  error
}

func (e *IndexError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("index %s %s: %v", e.Op, e.File, e.Err)
	}
	return fmt.Sprintf("index %s: %v", e.Op, e.Err)
}

func (e *IndexError) Unwrap() []error { return []error{ErrIndex, e.Err} }

// FailedError lists the files the service reported as failed.
type FailedError struct {
	IndexID string
	Files   []FileState
}

func (e *FailedError) Error() string {
	parts := make([]string, 0, len(e.Files))
	for _, f := range e.Files {
		if f.Error != "" {
			parts = append(parts, f.FileID+" ("+f.Error+")")
		} else {
			parts = append(parts, f.FileID)
		}
	}
	return fmt.Sprintf("indexing failed for %d file(s) in %s: %s", len(e.Files), e.IndexID, strings.Join(parts, ", "))
}

func (e *FailedError) Unwrap() error { return ErrIndexingFailed }
