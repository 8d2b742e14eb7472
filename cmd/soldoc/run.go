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
	"fmt"
	"sort"

	"github.com/kraklabs/soldoc/internal/output"
	"github.com/kraklabs/soldoc/internal/ui"
	"github.com/kraklabs/soldoc/pkg/archive"
	"github.com/kraklabs/soldoc/pkg/generation"
	"github.com/kraklabs/soldoc/pkg/pipeline"
)

// runPipeline executes 'soldoc run': the whole archive to artifacts flow in
// one process. The archive type and every output token are checked before
// anything is extracted or uploaded.
//
// Flags:
//   - --outputs: comma separated output types (default: all five documents)
//   - --out: artifact folder (default: generation.out_dir)
//   - --name: vector store name
//   - --vs: accepted and ignored, run always creates its own vector store
//   - --metrics-addr: serve Prometheus metrics while running
func runPipeline(args []string, a *app) error {
	fs := newFlagSet("run", `Usage: soldoc run <archive.zip> [output...] [options]

Description:
  Extract an uploaded solution archive, parse it, index the chunks in a
  new vector store and generate the requested outputs. Outputs may be
  given with --outputs or as extra arguments; an "ask: <question>" output
  replaces the batch and prints only the answer.
`, `  soldoc run MySolution_1_0_0_1.zip
  soldoc run MySolution.zip --outputs overview,diagrams --out docs
  soldoc run MySolution.zip "ask: Which flows use SharePoint?"
`)
	outputs := fs.StringSlice("outputs", nil, "Comma separated output types (default: all)")
	outDir := fs.String("out", "", "Artifact folder (default: generation.out_dir, rag_outputs)")
	parseOut := fs.String("parse-out", "", "Folder for the parse report and chunks (default: per run, under the scratch dir)")
	name := fs.String("name", "", "Vector store name (default: index.name)")
	model := fs.String("model", "", "Model (default: generation.model)")
	format := fs.String("format", "", "Document format: word or pdf")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")
	warnUnused := unusedFlags(fs, "vs")
	if help, err := parseFlags(fs, args); help || err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return usageError(fs, "Missing archive")
	}
	warnUnused()
	tokens := append(append([]string{}, *outputs...), fs.Args()[1:]...)
	if err := archive.ValidateUpload(fs.Arg(0)); err != nil {
		return err
	}
	if len(tokens) > 0 {
		if _, err := generation.ParseTokens(tokens); err != nil {
			return err
		}
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	applyGenerationFlags(cfg, *model, *outDir, *format)
	if err := cfg.Validate(); err != nil {
		return err
	}
	svc, err := cfg.Service()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(a.logger)
	defer stop()
	serveMetrics(ctx, *metricsAddr, a.logger)

	progress := newIndexProgress(NewProgressConfig(a.globals))
	defer progress.finish()
	runner := pipeline.NewRunner(svc, pipeline.Config{
		Model:        cfg.Generation.Model,
		Converter:    cfg.Converter(),
		Format:       cfg.DocFormat(),
		PollInterval: cfg.Index.PollInterval,
		PollAttempts: cfg.Index.PollAttempts,
		Logger:       a.logger,
		OnChunk:      progress.chunk,
		OnPoll:       progress.poll,
		OnStage: func(stage string) {
			if stage == pipeline.StageIndex {
				progress.start(0)
			}
			ui.Infof("%s", stage)
		},
	})

	res, err := runner.Run(ctx, pipeline.Request{
		ArchivePath: fs.Arg(0),
		ScratchDir:  cfg.ScratchDir,
		ParseOutDir: *parseOut,
		OutDir:      cfg.Generation.OutDir,
		IndexName:   firstNonEmpty(*name, cfg.Index.Name),
		Outputs:     tokens,
	})
	progress.finish()
	if res != nil {
		printJob(res.Job)
	}
	if err != nil {
		return err
	}

	if res.Answer != "" && !a.globals.JSON {
		_, err := fmt.Fprintln(a.stdout, res.Answer)
		return err
	}
	var paths []string
	if res.Generation != nil {
		reportGeneration(res.Generation)
		paths = res.Generation.Paths()
	}
	ui.Successf("%s", res.Summary())
	if err := output.Emit(a.stdout, a.globals.JSON, res, paths); err != nil {
		return err
	}
	if res.Generation != nil {
		return res.Generation.Err()
	}
	return nil
}

// printJob shows per-output progress of a finished or failed run.
func printJob(job pipeline.JobSnapshot) {
	ui.Header("Run " + job.RunID)
	kinds := make([]string, 0, len(job.Progress))
	for k := range job.Progress {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		ui.KeyValue(k, ui.StateText(string(job.Progress[k])))
	}
	if job.Error != "" {
		ui.KeyValue("error", job.Error)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
