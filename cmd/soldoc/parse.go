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

package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kraklabs/soldoc/internal/output"
	"github.com/kraklabs/soldoc/internal/ui"
	"github.com/kraklabs/soldoc/pkg/archive"
	"github.com/kraklabs/soldoc/pkg/solution"
)

// runParse executes 'soldoc parse', writing the structural report, the
// Markdown summary and the chunk files for a solution.
//
// The input is either an extracted solution folder or an upload archive,
// which is extracted into the scratch directory first.
func runParse(args []string, a *app) error {
	fs := newFlagSet("parse", `Usage: soldoc parse <solution_dir|archive.zip> [options]

Description:
  Parse an exported solution. Writes solution_report.json,
  solution_summary.md and chunks/*.json into the output folder.
`, `  soldoc parse ./MySolution
  soldoc parse MySolution_1_0_0_1.zip --out parsed_output
`)
	outDir := fs.String("out", "", "Output folder (default: parse.out_dir, parsed_output)")
	if help, err := parseFlags(fs, args); help || err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageError(fs, "Missing solution folder or archive")
	}
	input := fs.Arg(0)

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if *outDir != "" {
		cfg.Parse.OutDir = *outDir
	}

	ctx, stop := signalContext(a.logger)
	defer stop()

	root := input
	if isArchive(input) {
		if err := archive.ValidateUpload(input); err != nil {
			return err
		}
		scratch := cfg.ScratchDir
		if scratch == "" {
			scratch = os.TempDir()
		}
		dir, err := (&archive.Extractor{ScratchRoot: scratch, Logger: a.logger}).Extract(ctx, input)
		if err != nil {
			return err
		}
		if err := archive.RequireStructuredContent(dir); err != nil {
			return err
		}
		ui.Successf("Extracted %s", filepath.Base(input))
		root = dir
	}

	report, err := solution.NewParser(a.logger).Parse(root)
	if err != nil {
		return err
	}
	out, err := solution.WriteOutputs(report, cfg.Parse.OutDir)
	if err != nil {
		return err
	}

	counts := report.Counts()
	ui.Header("Solution Parse")
	ui.KeyValue("Root", ui.DimText(report.Root))
	ui.KeyValue("Canvas apps", ui.CountText(counts.CanvasAppGroups))
	ui.KeyValue("Workflows", ui.CountText(counts.Workflows))
	ui.KeyValue("Env variables", ui.CountText(counts.EnvVars))
	ui.KeyValue("Chunks", ui.CountText(len(out.Chunks)))
	ui.Successf("Wrote %s", out.ChunkDir)

	return output.Emit(a.stdout, a.globals.JSON, out, []string{out.ReportPath, out.SummaryPath, out.ChunkDir})
}

func isArchive(path string) bool {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	return ext != ""
}
