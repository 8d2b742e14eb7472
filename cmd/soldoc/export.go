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
	"context"

	"github.com/kraklabs/soldoc/internal/output"
	"github.com/kraklabs/soldoc/internal/ui"
	"github.com/kraklabs/soldoc/pkg/generation"
)

// runExport executes 'soldoc export', converting the overview, workflows and
// faq Markdown produced by generate into Word or PDF. No remote calls.
func runExport(args []string, a *app) error {
	fs := newFlagSet("export", `Usage: soldoc export <word|pdf> [options]

Description:
  Convert overview.md, workflows.md and faq.md from the output folder
  with pandoc. All three must exist.
`, `  soldoc export word
  soldoc export pdf --out rag_outputs
`)
	outDir := fs.String("out", "", "Folder holding the Markdown (default: generation.out_dir)")
	warnUnused := unusedFlags(fs, "vs", "model")
	if help, err := parseFlags(fs, args); help || err != nil {
		return err
	}
	warnUnused()
	if fs.NArg() != 1 {
		return usageError(fs, "Missing format (word or pdf)")
	}
	format, err := generation.ParseDocFormat(fs.Arg(0))
	if err != nil {
		return usageError(fs, err.Error())
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	applyGenerationFlags(cfg, "", *outDir, "")

	m := &generation.Materializer{
		OutDir:    cfg.Generation.OutDir,
		Converter: cfg.Converter(),
		Format:    format,
		Logger:    a.logger,
	}
	arts, err := m.Export(context.Background(), format)
	paths := make([]string, 0, len(arts))
	for _, art := range arts {
		paths = append(paths, art.Path)
		ui.Successf("Wrote %s", art.Path)
	}
	if emitErr := output.Emit(a.stdout, a.globals.JSON, arts, paths); emitErr != nil {
		return emitErr
	}
	return err
}
