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

package solution

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File names written by WriteOutputs.
const (
	ReportFile        = "solution_report.json"
	SummaryFile       = "solution_summary.md"
	ChunksDir         = "chunks"
	OverviewChunk     = "overview.json"
	CanvasAppsChunk   = "canvasapps.json"
	WorkflowsChunk    = "workflows.json"
	EnvVarsChunk      = "envvars.json"
	PerWorkflowSubdir = "workflows"
)

// Outputs lists everything WriteOutputs produced.
type Outputs struct {
	ReportPath  string   `json:"report"`
	SummaryPath string   `json:"summary"`
	ChunkDir    string   `json:"chunk_dir"`
	Chunks      []string `json:"chunks"`
}

// Overview is the content of the overview chunk.
type Overview struct {
	Root     string           `json:"root"`
	Manifest *Manifest        `json:"manifest,omitempty"`
	Mermaid  string           `json:"mermaid,omitempty"`
	Counts   Counts           `json:"counts"`
	TopLevel []InventoryEntry `json:"top_level"`
}

// WorkflowChunk is the content of one per-workflow chunk. Flow and Mermaid
// are empty when the definition could not be read.
type WorkflowChunk struct {
	WorkflowEntry
	Flow    *Flow  `json:"flow,omitempty"`
	Mermaid string `json:"mermaid,omitempty"`
}

// WriteOutputs writes the report, the summary document and the chunk files
// under outDir. Chunks are what gets indexed; nothing downstream reads the
// in-memory report. The chunk folder is recreated, so chunks left by an
// earlier parse into the same outDir are removed.
func WriteOutputs(report *Report, outDir string) (*Outputs, error) {
	if report == nil {
		return nil, fmt.Errorf("write outputs: nil report")
	}
	chunkDir := filepath.Join(outDir, ChunksDir)
	perFlowDir := filepath.Join(chunkDir, PerWorkflowSubdir)
	if err := os.RemoveAll(chunkDir); err != nil {
		return nil, fmt.Errorf("clear chunk directory: %w", err)
	}
	if err := os.MkdirAll(perFlowDir, 0o755); err != nil {
		return nil, fmt.Errorf("create chunk directory: %w", err)
	}

	out := &Outputs{
		ReportPath:  filepath.Join(outDir, ReportFile),
		SummaryPath: filepath.Join(outDir, SummaryFile),
		ChunkDir:    chunkDir,
	}
	if err := writeJSON(out.ReportPath, report); err != nil {
		return nil, err
	}
	if err := os.WriteFile(out.SummaryPath, []byte(RenderSummary(report)), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", SummaryFile, err)
	}

	overview := Overview{Root: report.Root, Manifest: report.Manifest, Counts: report.Counts(), TopLevel: report.TopLevel}
	if report.Manifest != nil {
		overview.Mermaid = report.Manifest.Mermaid()
	}
	chunks := []struct {
		name string
		v    any
	}{
		{OverviewChunk, overview},
		{CanvasAppsChunk, report.CanvasApps},
		{EnvVarsChunk, report.EnvVars},
		{WorkflowsChunk, report.Workflows},
	}
	for _, c := range chunks {
		path := filepath.Join(chunkDir, c.name)
		if err := writeJSON(path, c.v); err != nil {
			return nil, err
		}
		out.Chunks = append(out.Chunks, path)
	}

	used := map[string]bool{}
	for _, wf := range report.Workflows.Items {
		name := wf.Name
		if name == "" {
			name = "unknown.json"
		}
		path := filepath.Join(perFlowDir, uniqueFileName(SanitizeFileName(name), used)+".json")
		chunk := WorkflowChunk{WorkflowEntry: wf}
		if flow := report.Flows[wf.Name]; flow != nil {
			chunk.Flow = flow
			chunk.Mermaid = flow.Mermaid()
		}
		if err := writeJSON(path, chunk); err != nil {
			return nil, err
		}
		out.Chunks = append(out.Chunks, path)
	}
	return out, nil
}

// uniqueFileName appends _2, _3... to name until it differs, ignoring case,
// from every name already in used.
func uniqueFileName(name string, used map[string]bool) string {
	candidate := name
	for i := 2; used[strings.ToLower(candidate)]; i++ {
		candidate = fmt.Sprintf("%s_%d", name, i)
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

// SanitizeFileName replaces characters that are reserved on common
// filesystems (and control characters) with an underscore.
func SanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r < 0x20 || r == 0x7f:
			return '_'
		case strings.ContainsRune(`<>:"/\|?*`, r):
			return '_'
		}
		return r
	}, name)
}

// ReadWorkflowsChunk loads a workflows chunk written by WriteOutputs.
func ReadWorkflowsChunk(path string) (WorkflowsSection, error) {
	var section WorkflowsSection
	raw, err := os.ReadFile(path)
	if err != nil {
		return section, err
	}
	if err := json.Unmarshal(raw, &section); err != nil {
		return section, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return section, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
