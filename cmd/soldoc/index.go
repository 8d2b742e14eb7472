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

	"github.com/kraklabs/soldoc/internal/errors"
	"github.com/kraklabs/soldoc/internal/output"
	"github.com/kraklabs/soldoc/internal/ui"
	"github.com/kraklabs/soldoc/pkg/knowledge"
	"github.com/kraklabs/soldoc/pkg/pipeline"
)

type indexResult struct {
	IndexID string   `json:"index_id"`
	Files   []string `json:"files"`
	Ready   bool     `json:"ready"`
}

// runIndex executes 'soldoc index': every chunk file is uploaded and
// attached to a new vector store whose id is printed on stdout.
//
// Flags:
//   - --chunks: chunk folder (default: <parse.out_dir>/chunks)
//   - --out: parse output folder whose chunks/ subfolder is indexed
//   - --name: vector store name
//   - --wait: poll until every file is indexed
//   - --metrics-addr: serve Prometheus metrics while running
func runIndex(args []string, a *app) error {
	fs := newFlagSet("index", `Usage: soldoc index [options]

Description:
  Create a vector store and upload every *.json chunk below the chunk
  folder, including per-workflow chunks. Prints the vector store id,
  which ask and generate take as --vs.
`, `  soldoc index
  soldoc index --chunks parsed_output/chunks --name my_solution --wait
`)
	chunks := fs.String("chunks", "", "Chunk folder (default: <parse.out_dir>/chunks)")
	parseOut := fs.String("out", "", "Parse output folder; its chunks/ subfolder is indexed (default: parse.out_dir)")
	name := fs.String("name", "", "Vector store name (default: index.name)")
	wait := fs.Bool("wait", false, "Wait until every file is indexed")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")
	warnUnused := unusedFlags(fs, "vs", "model")
	if help, err := parseFlags(fs, args); help || err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return usageError(fs, "index takes no positional arguments")
	}
	warnUnused()

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if *parseOut != "" {
		cfg.Parse.OutDir = *parseOut
	}
	if *chunks == "" {
		*chunks = cfg.ChunkDir()
	}
	if *name == "" {
		*name = cfg.Index.Name
	}
	if _, err := os.Stat(*chunks); err != nil {
		return errors.NewInputError("Chunk folder not found", err.Error(), "Run: soldoc parse <solution> first")
	}
	files, err := knowledge.ChunkFiles(*chunks)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.NewInputError("No chunk files found", "No *.json files below "+*chunks, "Run: soldoc parse <solution> first")
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
	progress.start(len(files))

	indexer := knowledge.NewIndexer(svc, a.logger)
	indexer.OnFile = func(path string, err error) {
		pipeline.RecordChunk(err)
		progress.chunk(path, err)
	}
	session, err := indexer.BuildFiles(ctx, *name, files)
	if err != nil {
		if session != nil {
			ui.Warningf("Vector store %s was left partially populated", session.IndexID)
		}
		return err
	}
	res := indexResult{IndexID: session.IndexID, Files: session.Attached()}

	if *wait {
		poller := knowledge.NewPoller(svc, knowledge.PollerConfig{
			Interval:    cfg.Index.PollInterval,
			MaxAttempts: cfg.Index.PollAttempts,
			Logger:      a.logger,
			OnPoll: func(attempt int, states []knowledge.FileState) {
				pipeline.RecordPollAttempt()
				progress.poll(attempt, states)
			},
		})
		if err := poller.WaitReady(ctx, session); err != nil {
			return err
		}
		res.Ready = true
	}
	progress.finish()

	ui.Successf("Indexed %d chunk(s) into %s", len(res.Files), res.IndexID)
	return output.Emit(a.stdout, a.globals.JSON, res, []string{res.IndexID})
}
