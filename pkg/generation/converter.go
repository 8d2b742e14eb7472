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

package generation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// DocFormat is a target format for Markdown conversion.
type DocFormat string

const (
	FormatWord DocFormat = "word"
	FormatPDF  DocFormat = "pdf"
)

// ParseDocFormat accepts "word" or "pdf" in any case.
func ParseDocFormat(s string) (DocFormat, error) {
	switch DocFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FormatWord:
		return FormatWord, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unknown export format %q (use word or pdf)", s)
}

// Extension returns the file extension for f.
func (f DocFormat) Extension() string {
	if f == FormatPDF {
		return ".pdf"
	}
	return ".docx"
}

// ContentType returns the MIME type for f.
func (f DocFormat) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

// Converter turns a Markdown file into a document named outputName inside workDir.
type Converter interface {
	Convert(ctx context.Context, markdownPath, outputName, workDir string) error
}

// DefaultConverterBinary is the converter looked up on PATH.
const DefaultConverterBinary = "pandoc"

// PandocConverter runs pandoc (or a compatible binary) as a subprocess.
type PandocConverter struct {
	Binary string
	// Args are appended after "<in> -o <out>". Nil means "--toc".
	Args []string
}

// Convert runs "<binary> <markdown> -o <outputName> [args...]" in workDir.
// A non-zero exit or any stderr output is a failure.
func (c PandocConverter) Convert(ctx context.Context, markdownPath, outputName, workDir string) error {
	bin := c.Binary
	if bin == "" {
		bin = DefaultConverterBinary
	}
	args := c.Args
	if args == nil {
		args = []string{"--toc"}
	}

	cmd := exec.CommandContext(ctx, bin, append([]string{markdownPath, "-o", outputName}, args...)...)
	cmd.Dir = workDir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	msg := strings.TrimSpace(stderr.String())
	switch {
	case errors.Is(err, exec.ErrNotFound):
		return fmt.Errorf("%s not found on PATH: %w", bin, err)
	case err != nil && msg != "":
		return fmt.Errorf("%s %s: %w: %s", bin, outputName, err, msg)
	case err != nil:
		return fmt.Errorf("%s %s: %w", bin, outputName, err)
	case msg != "":
		return fmt.Errorf("%s %s: %s", bin, outputName, msg)
	}
	return nil
}
