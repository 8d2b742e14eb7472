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

package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ExtractSubdir is the directory under the scratch root that holds one
// uniquely named folder per extraction.
const ExtractSubdir = "extract"

// AllowedExtensions lists the upload types accepted by ValidateUpload.
var AllowedExtensions = []string{".zip", ".msapp"}

var (
	// ErrUnsupportedType is returned for uploads whose extension is not allowed.
	ErrUnsupportedType = errors.New("unsupported upload type")
	// ErrExtraction wraps any failure to read or unpack an archive.
	ErrExtraction = errors.New("archive extraction failed")
	// ErrNoContent is returned when an extracted tree holds no structured data files.
	ErrNoContent = errors.New("no structured content in archive")
)

// ExtractionError reports which archive (and, when known, which entry) failed.
type ExtractionError struct {
	Archive string
	Entry   string
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("extract %s: entry %s: %v", filepath.Base(e.Archive), e.Entry, e.Err)
	}
	return fmt.Sprintf("extract %s: %v", filepath.Base(e.Archive), e.Err)
}

func (e *ExtractionError) Unwrap() []error { return []error{ErrExtraction, e.Err} }

// ValidateUpload rejects file names whose extension is not in AllowedExtensions.
func ValidateUpload(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	for _, ok := range AllowedExtensions {
		if ext == ok {
			return nil
		}
	}
	return fmt.Errorf("%w: %q (allowed: %s)", ErrUnsupportedType, filepath.Base(name), strings.Join(AllowedExtensions, ", "))
}

// Extractor unpacks archives into fresh scratch directories.
type Extractor struct {
	ScratchRoot string
	Logger      *slog.Logger
}

// Extract unpacks archivePath into <ScratchRoot>/extract/<uuid> and returns
// that directory. Entries that would escape the target are rejected.
func (x *Extractor) Extract(ctx context.Context, archivePath string) (string, error) {
	logger := x.Logger
	if logger == nil {
		logger = slog.Default()
	}
	root := x.ScratchRoot
	if root == "" {
		root = os.TempDir()
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", &ExtractionError{Archive: archivePath, Err: err}
	}
	defer func() { _ = zr.Close() }()

	dest := filepath.Join(root, ExtractSubdir, uuid.NewString())
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", &ExtractionError{Archive: archivePath, Err: err}
	}

	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := extractEntry(f, dest); err != nil {
			return "", &ExtractionError{Archive: archivePath, Entry: f.Name, Err: err}
		}
	}

	logger.Info("archive.extracted", "archive", archivePath, "dest", dest, "entries", len(zr.File))
	return dest, nil
}

func extractEntry(f *zip.File, dest string) error {
	target, err := safeJoin(dest, f.Name)
	if err != nil {
		return err
	}
	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if !f.Mode().IsRegular() {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// safeJoin resolves name under dest and refuses absolute paths and parent escapes.
func safeJoin(dest, name string) (string, error) {
	clean := filepath.FromSlash(strings.ReplaceAll(name, `\`, "/"))
	if filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" {
		return "", fmt.Errorf("absolute path in archive: %s", name)
	}
	target := filepath.Join(dest, clean)
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes extraction directory: %s", name)
	}
	return target, nil
}

// RequireStructuredContent fails with ErrNoContent unless dir contains at
// least one .json file at any depth.
func RequireStructuredContent(dir string) error {
	found := false
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(d.Name()), ".json") {
			found = true
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan %s: %w", dir, err)
	}
	if !found {
		return fmt.Errorf("%w: no .json files under %s", ErrNoContent, dir)
	}
	return nil
}
