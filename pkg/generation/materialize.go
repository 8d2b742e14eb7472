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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Artifact file names inside the output directory.
const (
	DiagramFile = "architecture.mmd"
	EnvVarsFile = "environment-variables.xlsx"
)

// Content types of produced artifacts.
const (
	ContentTypeMarkdown    = "text/markdown"
	ContentTypeMermaid     = "text/vnd.mermaid"
	ContentTypeSpreadsheet = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var documentBaseNames = map[Kind]string{
	KindOverview:  "Solution_Overview",
	KindWorkflows: "Solution_Workflows",
	KindFAQ:       "Solution_FAQ",
}

// MarkdownName is the intermediate Markdown file for a document kind.
func MarkdownName(k Kind) string { return k.String() + ".md" }

// DocumentName is the converted file name for a document kind.
func DocumentName(k Kind, f DocFormat) string { return documentBaseNames[k] + f.Extension() }

var (
	// ErrMaterialization marks failures that affect a single artifact.
	ErrMaterialization = errors.New("materialization error")
	// ErrMissingMarkdown is returned by Export when generate has not run yet.
	ErrMissingMarkdown = errors.New("missing markdown")
)

// ConversionError is a failed Markdown-to-document conversion.
type ConversionError struct {
	Artifact string
	Err      error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %s: %v", e.Artifact, e.Err)
}

func (e *ConversionError) Unwrap() []error { return []error{ErrMaterialization, e.Err} }

// Artifact is one produced file. Source is the Markdown a document was
// converted from.
type Artifact struct {
	Kind        Kind   `json:"-"`
	KindName    string `json:"kind"`
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	Source      string `json:"source,omitempty"`
}

func newArtifact(k Kind, path, contentType string) Artifact {
	return Artifact{Kind: k, KindName: k.String(), Path: path, ContentType: contentType}
}

// Materializer turns raw model output into files under OutDir.
type Materializer struct {
	OutDir    string
	Converter Converter
	Format    DocFormat
	Logger    *slog.Logger
}

func (m *Materializer) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

func (m *Materializer) format() DocFormat {
	if m.Format == "" {
		return FormatWord
	}
	return m.Format
}

func (m *Materializer) write(name, content string) (string, error) {
	if err := os.MkdirAll(m.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(m.OutDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	m.logger().Info("generate.write", "path", path)
	return path, nil
}

// Document writes the Markdown for a document kind and converts it. When
// conversion fails the returned artifact is the Markdown file and the error
// is a ConversionError.
func (m *Materializer) Document(ctx context.Context, k Kind, markdown string) (Artifact, error) {
	if !k.IsDocument() {
		return Artifact{}, fmt.Errorf("%w: %v is not a document", ErrUnknownOutputType, k)
	}
	mdPath, err := m.write(MarkdownName(k), markdown)
	if err != nil {
		return Artifact{}, err
	}
	return m.convert(ctx, k, mdPath)
}

func (m *Materializer) convert(ctx context.Context, k Kind, mdPath string) (Artifact, error) {
	if m.Converter == nil {
		return newArtifact(k, mdPath, ContentTypeMarkdown), &ConversionError{Artifact: MarkdownName(k), Err: errors.New("no converter configured")}
	}
	f := m.format()
	name := DocumentName(k, f)
	// The converter runs inside OutDir, so a relative input would resolve twice.
	input, err := filepath.Abs(mdPath)
	if err != nil {
		return newArtifact(k, mdPath, ContentTypeMarkdown), &ConversionError{Artifact: name, Err: err}
	}
	if err := m.Converter.Convert(ctx, input, name, m.OutDir); err != nil {
		m.logger().Warn("generate.convert_failed", "kind", k.String(), "output", name, "err", err)
		return newArtifact(k, mdPath, ContentTypeMarkdown), &ConversionError{Artifact: name, Err: err}
	}
	art := newArtifact(k, filepath.Join(m.OutDir, name), f.ContentType())
	art.Source = mdPath
	m.logger().Info("generate.convert", "kind", k.String(), "path", art.Path)
	return art, nil
}

// Diagram strips code fences from Mermaid output and writes it.
func (m *Materializer) Diagram(text string) (Artifact, error) {
	path, err := m.write(DiagramFile, StripFences(text))
	if err != nil {
		return Artifact{}, err
	}
	return newArtifact(KindDiagrams, path, ContentTypeMermaid), nil
}

// EnvironmentVariables parses the model's JSON and renders the spreadsheet.
// It returns the number of skipped elements.
func (m *Materializer) EnvironmentVariables(text string) (Artifact, int, error) {
	parsed, err := ParseEnvVars(text, m.logger())
	if err != nil {
		return Artifact{}, 0, fmt.Errorf("%w: %v", ErrMaterialization, err)
	}
	if err := os.MkdirAll(m.OutDir, 0o755); err != nil {
		return Artifact{}, parsed.Skipped, fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(m.OutDir, EnvVarsFile)
	if err := WriteEnvVarSheet(path, parsed.Records); err != nil {
		return Artifact{}, parsed.Skipped, fmt.Errorf("%w: %v", ErrMaterialization, err)
	}
	m.logger().Info("generate.write", "path", path, "records", len(parsed.Records), "skipped", parsed.Skipped)
	return newArtifact(KindEnvironmentVariables, path, ContentTypeSpreadsheet), parsed.Skipped, nil
}

// Export converts previously generated overview, workflows and FAQ
// Markdown to format. All three files must exist. A failed conversion does
// not stop the others; the failures are joined into the returned error.
func (m *Materializer) Export(ctx context.Context, format DocFormat) ([]Artifact, error) {
	var (
		docs    []Kind
		missing []string
	)
	for _, k := range Kinds {
		if !k.IsDocument() {
			continue
		}
		docs = append(docs, k)
		if _, err := os.Stat(filepath.Join(m.OutDir, MarkdownName(k))); err != nil {
			missing = append(missing, MarkdownName(k))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w in %s: %v (run generate first)", ErrMissingMarkdown, m.OutDir, missing)
	}

	mm := *m
	mm.Format = format
	var (
		out  []Artifact
		errs []error
	)
	for _, k := range docs {
		art, err := mm.convert(ctx, k, filepath.Join(m.OutDir, MarkdownName(k)))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, art)
	}
	return out, errors.Join(errs...)
}
