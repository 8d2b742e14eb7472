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

	"github.com/kraklabs/soldoc/internal/output"
	"github.com/kraklabs/soldoc/internal/ui"
	"github.com/kraklabs/soldoc/pkg/generation"
	"github.com/kraklabs/soldoc/pkg/knowledge"
	"github.com/kraklabs/soldoc/pkg/pipeline"
)

type generateResult struct {
	IndexID   string                `json:"index_id"`
	Answer    string                `json:"answer,omitempty"`
	Artifacts []generation.Artifact `json:"artifacts"`
	Failures  []failureJSON         `json:"failures,omitempty"`
	Headline  string                `json:"headline,omitempty"`
}

type failureJSON struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// runGenerate executes 'soldoc generate'. Each token produces one artifact;
// an "ask: <question>" token replaces the batch and prints only the answer.
// Tokens are validated before anything is requested.
func runGenerate(args []string, a *app) error {
	fs := newFlagSet("generate", `Usage: soldoc generate <type>... --vs <id> [options]

Description:
  Generate documents from an indexed solution. Types:
    overview                Solution_Overview.docx (and overview.md)
    workflows               Solution_Workflows.docx (and workflows.md)
    faq                     Solution_FAQ.docx (and faq.md)
    diagrams                architecture.mmd (Mermaid flowchart)
    environment-variables   environment-variables.xlsx
    ask: <question>         Free-text question, printed instead
`, `  soldoc generate overview faq --vs vs_abc123
  soldoc generate diagrams environment-variables --vs vs_abc123 --out docs
  soldoc generate "ask: What triggers the approval flow?" --vs vs_abc123
`)
	vs := fs.String("vs", "", "Vector store id (default: $SOLDOC_INDEX_ID)")
	model := fs.String("model", "", "Model (default: generation.model)")
	outDir := fs.String("out", "", "Output folder (default: generation.out_dir, rag_outputs)")
	format := fs.String("format", "", "Document format: word or pdf (default: generation.format)")
	if help, err := parseFlags(fs, args); help || err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return usageError(fs, "Missing output type")
	}
	outputs, err := generation.ParseTokens(fs.Args())
	if err != nil {
		return err
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	indexID, err := resolveIndexID(*vs, cfg)
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

	progress := newIndexProgress(NewProgressConfig(a.globals))
	defer progress.finish()
	d := newDispatcher(svc, cfg, a, progress, cfg.Generation.OutDir)
	res, err := d.RunOutputs(ctx, knowledge.NewSession(indexID), outputs)
	if err != nil {
		return err
	}
	progress.finish()

	if res.Answer != "" && !a.globals.JSON {
		_, err := fmt.Fprintln(a.stdout, res.Answer)
		return err
	}
	reportGeneration(res)
	out := generateResult{IndexID: indexID, Answer: res.Answer, Artifacts: res.Artifacts, Headline: res.Headline}
	for _, f := range res.Failures {
		out.Failures = append(out.Failures, failureJSON{Kind: f.Kind.String(), Error: f.Err.Error()})
	}
	if err := output.Emit(a.stdout, a.globals.JSON, out, res.Paths()); err != nil {
		return err
	}
	return res.Err()
}

func applyGenerationFlags(cfg *Config, model, outDir, format string) {
	if model != "" {
		cfg.Generation.Model = model
	}
	if outDir != "" {
		cfg.Generation.OutDir = outDir
	}
	if format != "" {
		cfg.Generation.Format = format
	}
}

// newDispatcher wires a dispatcher to svc with readiness polling and
// progress. Outputs are written to outDir.
func newDispatcher(svc knowledge.Service, cfg *Config, a *app, progress *indexProgress, outDir string) *generation.Dispatcher {
	poller := knowledge.NewPoller(svc, knowledge.PollerConfig{
		Interval:    cfg.Index.PollInterval,
		MaxAttempts: cfg.Index.PollAttempts,
		Logger:      a.logger,
		OnPoll: func(attempt int, states []knowledge.FileState) {
			pipeline.RecordPollAttempt()
			progress.poll(attempt, states)
		},
	})
	return generation.NewDispatcher(svc, poller, generation.Config{
		Model: cfg.Generation.Model,
		Materializer: &generation.Materializer{
			OutDir:    outDir,
			Converter: cfg.Converter(),
			Format:    cfg.DocFormat(),
			Logger:    a.logger,
		},
		Logger: a.logger,
		OnOutput: func(k generation.Kind, err error) {
			pipeline.RecordOutput(k.String(), err)
			if err != nil || k == generation.KindAsk {
				return
			}
			ui.Successf("Generated %s", k)
		},
	})
}

// reportGeneration prints failures and the headline document.
func reportGeneration(res *generation.Result) {
	for _, f := range res.Failures {
		ui.Errorf("%s: %v", f.Kind, f.Err)
	}
	if res.EnvVarsSkipped > 0 {
		ui.Warningf("Skipped %d malformed environment variable record(s)", res.EnvVarsSkipped)
	}
	if res.Headline != "" {
		ui.KeyValue("Overview", ui.DimText(res.Headline))
	}
}
