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

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kraklabs/soldoc/pkg/archive"
	"github.com/kraklabs/soldoc/pkg/generation"
	"github.com/kraklabs/soldoc/pkg/knowledge"
	"github.com/kraklabs/soldoc/pkg/solution"
)

// Stage names used in logs, metrics and job records.
const (
	StageValidate = "validate"
	StageExtract  = "extract"
	StageParse    = "parse"
	StageIndex    = "index"
	StageGenerate = "generate"
)

// DefaultIndexName names indexes created by Run.
const DefaultIndexName = "solution_chunks"

// Config configures a Runner. Zero values take package defaults.
type Config struct {
	Model        string
	Converter    generation.Converter
	Format       generation.DocFormat
	PollInterval time.Duration
	PollAttempts int
	Clock        knowledge.Clock
	Logger       *slog.Logger

	// OnChunk is called after each chunk upload; OnPoll after each status
	// listing. Both are optional and used for progress display.
	OnChunk func(path string, err error)
	OnPoll  func(attempt int, states []knowledge.FileState)
	// OnStage is called when a stage starts.
	OnStage func(stage string)
}

// Request is one upload to process.
type Request struct {
	ArchivePath string
	// ScratchDir receives the extraction. Empty means the system temp dir.
	ScratchDir string
	// ParseOutDir and OutDir default to per-run directories under
	// ScratchDir/<run id>, which keeps concurrent runs apart.
	ParseOutDir string
	OutDir      string
	IndexName   string
	// Outputs are generation tokens. Empty means every batch kind.
	Outputs []string
}

// Result is everything a run produced.
type Result struct {
	Job        JobSnapshot        `json:"job"`
	Report     *solution.Report   `json:"-"`
	Parsed     *solution.Outputs  `json:"parsed"`
	IndexID    string             `json:"index_id,omitempty"`
	Generation *generation.Result `json:"-"`
	Answer     string             `json:"answer,omitempty"`
}

// Runner executes the full archive to artifacts pipeline.
type Runner struct {
	svc knowledge.Service
	cfg Config
	log *slog.Logger
}

// NewRunner creates a runner over svc.
func NewRunner(svc knowledge.Service, cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{svc: svc, cfg: cfg, log: logger}
}

// Run validates the request, extracts and parses the archive, indexes the
// chunks and dispatches the requested outputs. Request problems are
// reported before anything is extracted or uploaded. The returned Result is
// non-nil whenever a job was created, including on failure.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	recordRunStarted()
	started := time.Now()
	defer observeStage("total", started)

	tokens := req.Outputs
	if len(tokens) == 0 {
		for _, k := range generation.Kinds {
			tokens = append(tokens, k.String())
		}
	}

	// Validation happens before the job so a bad request leaves no trace.
	if err := archive.ValidateUpload(req.ArchivePath); err != nil {
		recordRunFailed(StageValidate)
		return nil, err
	}
	outputs, err := generation.ParseTokens(tokens)
	if err != nil {
		recordRunFailed(StageValidate)
		return nil, err
	}

	job := NewJob(outputKinds(outputs))
	res := &Result{}
	fail := func(stage string, err error) (*Result, error) {
		recordRunFailed(stage)
		job.Fail(err)
		res.Job = job.Snapshot()
		r.log.Error("pipeline.failed", "run_id", job.RunID(), "stage", stage, "err", err)
		return res, err
	}
	r.log.Info("pipeline.starting", "run_id", job.RunID(), "archive", req.ArchivePath, "outputs", len(outputs))

	scratch := req.ScratchDir
	if scratch == "" {
		scratch = os.TempDir()
	}
	runDir := filepath.Join(scratch, job.RunID())
	parseOut := req.ParseOutDir
	if parseOut == "" {
		parseOut = filepath.Join(runDir, "parsed_output")
	}
	outDir := req.OutDir
	if outDir == "" {
		outDir = filepath.Join(runDir, "outputs")
	}

	// Extract
	r.stage(job, StageExtract)
	t0 := time.Now()
	extracted, err := (&archive.Extractor{ScratchRoot: scratch, Logger: r.log}).Extract(ctx, req.ArchivePath)
	if err != nil {
		return fail(StageExtract, err)
	}
	if err := archive.RequireStructuredContent(extracted); err != nil {
		return fail(StageExtract, err)
	}
	observeStage(StageExtract, t0)

	// Parse and export chunks
	r.stage(job, StageParse)
	t0 = time.Now()
	report, err := solution.NewParser(r.log).Parse(extracted)
	if err != nil {
		return fail(StageParse, err)
	}
	res.Report = report
	parsed, err := solution.WriteOutputs(report, parseOut)
	if err != nil {
		return fail(StageParse, err)
	}
	res.Parsed = parsed
	observeStage(StageParse, t0)

	// Index
	r.stage(job, StageIndex)
	t0 = time.Now()
	indexer := knowledge.NewIndexer(r.svc, r.log)
	indexer.OnFile = func(path string, err error) {
		RecordChunk(err)
		if r.cfg.OnChunk != nil {
			r.cfg.OnChunk(path, err)
		}
	}
	name := req.IndexName
	if name == "" {
		name = DefaultIndexName
	}
	session, err := indexer.Build(ctx, name, parsed.ChunkDir)
	if session != nil {
		res.IndexID = session.IndexID
	}
	if err != nil {
		return fail(StageIndex, err)
	}
	observeStage(StageIndex, t0)

	// Generate
	r.stage(job, StageGenerate)
	t0 = time.Now()
	for _, k := range outputKinds(outputs) {
		job.SetProgress(k, StateProcessing)
	}
	poller := knowledge.NewPoller(r.svc, knowledge.PollerConfig{
		Interval:    r.cfg.PollInterval,
		MaxAttempts: r.cfg.PollAttempts,
		Clock:       r.cfg.Clock,
		Logger:      r.log,
		OnPoll: func(attempt int, states []knowledge.FileState) {
			RecordPollAttempt()
			if r.cfg.OnPoll != nil {
				r.cfg.OnPoll(attempt, states)
			}
		},
	})
	dispatcher := generation.NewDispatcher(r.svc, poller, generation.Config{
		Model: r.cfg.Model,
		Materializer: &generation.Materializer{
			OutDir:    outDir,
			Converter: r.cfg.Converter,
			Format:    r.cfg.Format,
			Logger:    r.log,
		},
		Logger: r.log,
		OnOutput: func(k generation.Kind, err error) {
			RecordOutput(k.String(), err)
			if err != nil {
				job.SetProgress(k.String(), StateFailed)
				return
			}
			job.SetProgress(k.String(), StateCompleted)
		},
	})
	gen, err := dispatcher.RunOutputs(ctx, session, outputs)
	if gen != nil {
		res.Generation = gen
		res.Answer = gen.Answer
		for _, a := range gen.Artifacts {
			job.AddFile(a.KindName, a.Path, a.ContentType)
		}
		recordEnvVarsSkipped(gen.EnvVarsSkipped)
	}
	if err != nil {
		return fail(StageGenerate, err)
	}
	observeStage(StageGenerate, t0)

	job.Complete()
	res.Job = job.Snapshot()
	recordRunSucceeded()
	r.log.Info("pipeline.complete",
		"run_id", job.RunID(),
		"index_id", res.IndexID,
		"artifacts", len(gen.Artifacts),
		"failures", len(gen.Failures),
		"duration", time.Since(started),
	)
	return res, nil
}

func (r *Runner) stage(job *Job, name string) {
	job.Stage(name)
	r.log.Info("pipeline.stage", "run_id", job.RunID(), "stage", name)
	if r.cfg.OnStage != nil {
		r.cfg.OnStage(name)
	}
}

// outputKinds lists the distinct kinds a run will report progress for. An
// ask replaces the batch, so it is the only entry when present.
func outputKinds(outputs []generation.Output) []string {
	for _, o := range outputs {
		if o.Kind == generation.KindAsk {
			return []string{o.Kind.String()}
		}
	}
	kinds := make([]string, 0, len(outputs))
	for _, o := range outputs {
		kinds = append(kinds, o.Kind.String())
	}
	return kinds
}

// Summary renders a one-line description of a finished run.
func (res *Result) Summary() string {
	if res.Generation == nil {
		return fmt.Sprintf("run %s: %s", res.Job.RunID, res.Job.State)
	}
	return fmt.Sprintf("run %s: %s, %d artifact(s), %d failure(s)",
		res.Job.RunID, res.Job.State, len(res.Generation.Artifacts), len(res.Generation.Failures))
}
