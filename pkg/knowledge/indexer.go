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
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
)

// Indexer creates an index and fills it with chunk files.
type Indexer struct {
	svc    Service
	logger *slog.Logger

	// OnFile, when set, is called after each chunk has been uploaded and
	// attached (err == nil) or has failed (err != nil).
	OnFile func(path string, err error)
}

// NewIndexer creates an indexer. A nil logger falls back to slog.Default().
func NewIndexer(svc Service, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{svc: svc, logger: logger}
}

// ChunkFiles returns every .json file under dir, recursively, sorted.
func ChunkFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list chunks in %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// Build creates an index named name and uploads and attaches every chunk
// under chunkDir, in order. The first failure aborts the build; files
// already attached stay on the remote side.
func (ix *Indexer) Build(ctx context.Context, name, chunkDir string) (*Session, error) {
	files, err := ChunkFiles(chunkDir)
	if err != nil {
		return nil, err
	}
	return ix.BuildFiles(ctx, name, files)
}

// BuildFiles is Build over an explicit file list.
func (ix *Indexer) BuildFiles(ctx context.Context, name string, files []string) (*Session, error) {
	indexID, err := ix.svc.CreateIndex(ctx, name)
	if err != nil {
		return nil, &IndexError{Op: OpCreate, Err: err}
	}
	ix.logger.Info("index.created", "index_id", indexID, "name", name, "files", len(files))

	session := NewSession(indexID)
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return session, err
		}
		fileID, err := ix.uploadAndAttach(ctx, indexID, path)
		if ix.OnFile != nil {
			ix.OnFile(path, err)
		}
		if err != nil {
			return session, err
		}
		session.attach(fileID)
		ix.logger.Debug("index.attach", "file", filepath.Base(path), "file_id", fileID)
	}
	ix.logger.Info("index.attached", "index_id", indexID, "files", len(session.attached))
	return session, nil
}

func (ix *Indexer) uploadAndAttach(ctx context.Context, indexID, path string) (string, error) {
	name := filepath.Base(path)
	fileID, err := ix.svc.UploadFile(ctx, path)
	if err != nil {
		return "", &IndexError{Op: OpUpload, File: name, Err: err}
	}
	if err := ix.svc.AttachFile(ctx, indexID, fileID); err != nil {
		return "", &IndexError{Op: OpAttach, File: name, Err: err}
	}
	return fileID, nil
}
