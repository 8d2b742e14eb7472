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

	"github.com/kraklabs/soldoc/pkg/knowledge"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gpt-5-mini"

// Querier issues retrieval queries. knowledge.Service satisfies it.
type Querier interface {
	Query(ctx context.Context, req knowledge.QueryRequest) (string, error)
}

// Readiness certifies a session before it is queried. *knowledge.Poller satisfies it.
type Readiness interface {
	WaitReady(ctx context.Context, s *knowledge.Session) error
}

// Failure is an artifact that could not be produced while the batch went on.
type Failure struct {
	Kind Kind
	Err  error
}

// Result is the outcome of one dispatch.
type Result struct {
	// Answer is set when the batch was an ask.
	Answer    string
	Artifacts []Artifact
	Failures  []Failure
	// Headline is the overview document when one was produced.
	Headline string
	// EnvVarsSkipped counts malformed environment variable elements.
	EnvVarsSkipped int
}

// Paths returns the produced artifact paths in order.
func (r *Result) Paths() []string {
	paths := make([]string, 0, len(r.Artifacts))
	for _, a := range r.Artifacts {
		paths = append(paths, a.Path)
	}
	return paths
}

// Err joins the per-artifact failures, or returns nil.
func (r *Result) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("%s: %w", f.Kind, f.Err))
	}
	return errors.Join(errs...)
}

// Config configures a Dispatcher.
type Config struct {
	Model        string
	Materializer *Materializer
	Logger       *slog.Logger

	// OnOutput, when set, is called after each output kind finishes.
	OnOutput func(kind Kind, err error)
}

// Dispatcher routes output tokens to closed-book queries and materializes
// the answers. Tokens run sequentially in the order given.
type Dispatcher struct {
	query    Querier
	ready    Readiness
	mat      *Materializer
	model    string
	logger   *slog.Logger
	onOutput func(Kind, error)
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(q Querier, ready Readiness, cfg Config) *Dispatcher {
	d := &Dispatcher{
		query:    q,
		ready:    ready,
		mat:      cfg.Materializer,
		model:    cfg.Model,
		logger:   cfg.Logger,
		onOutput: cfg.OnOutput,
	}
	if d.model == "" {
		d.model = DefaultModel
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.mat == nil {
		d.mat = &Materializer{OutDir: ".", Logger: d.logger}
	}
	return d
}

// Run parses tokens and dispatches them against session. Every token is
// validated before any remote call, so a bad token produces no artifacts.
func (d *Dispatcher) Run(ctx context.Context, session *knowledge.Session, tokens []string) (*Result, error) {
	outputs, err := ParseTokens(tokens)
	if err != nil {
		return nil, err
	}
	return d.RunOutputs(ctx, session, outputs)
}

// RunOutputs dispatches already parsed outputs. The first ask in the list
// replaces the whole batch: only its answer is returned.
//
// Index, readiness and I/O failures end the run. Conversion and
// environment variable parsing failures are recorded in Result.Failures and
// the remaining outputs still run.
func (d *Dispatcher) RunOutputs(ctx context.Context, session *knowledge.Session, outputs []Output) (*Result, error) {
	for _, out := range outputs {
		if out.Kind == KindAsk {
			answer, err := d.Ask(ctx, session, out.Question)
			d.report(KindAsk, err)
			if err != nil {
				return nil, err
			}
			return &Result{Answer: answer}, nil
		}
	}

	res := &Result{}
	for _, out := range outputs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		d.logger.Info("generate.start", "kind", out.Kind.String(), "index_id", session.IndexID)
		err := d.generate(ctx, session, out.Kind, res)
		d.report(out.Kind, err)
		if err == nil {
			continue
		}
		if errors.Is(err, ErrMaterialization) {
			d.logger.Warn("generate.artifact_failed", "kind", out.Kind.String(), "err", err)
			res.Failures = append(res.Failures, Failure{Kind: out.Kind, Err: err})
			continue
		}
		return res, err
	}
	return res, nil
}

// Ask answers a free-text question from the indexed content only.
func (d *Dispatcher) Ask(ctx context.Context, session *knowledge.Session, question string) (string, error) {
	if question == "" {
		return "", ErrMissingQuestion
	}
	return d.retrieve(ctx, session, Output{Kind: KindAsk, Question: question})
}

func (d *Dispatcher) generate(ctx context.Context, session *knowledge.Session, k Kind, res *Result) error {
	text, err := d.retrieve(ctx, session, Output{Kind: k})
	if err != nil {
		return err
	}

	if k.IsDocument() {
		art, err := d.mat.Document(ctx, k, text)
		if art.Path != "" {
			res.Artifacts = append(res.Artifacts, art)
		}
		if err == nil && k == KindOverview {
			res.Headline = art.Path
		}
		return err
	}

	var art Artifact
	switch k {
	case KindDiagrams:
		art, err = d.mat.Diagram(text)
	case KindEnvironmentVariables:
		var skipped int
		art, skipped, err = d.mat.EnvironmentVariables(text)
		res.EnvVarsSkipped += skipped
	default:
		return fmt.Errorf("%w: %v", ErrUnknownOutputType, k)
	}
	if err != nil {
		return err
	}
	res.Artifacts = append(res.Artifacts, art)
	return nil
}

// retrieve waits for the index to be ready and runs the kind's query.
func (d *Dispatcher) retrieve(ctx context.Context, session *knowledge.Session, out Output) (string, error) {
	if err := d.ready.WaitReady(ctx, session); err != nil {
		return "", err
	}
	text, err := d.query.Query(ctx, knowledge.QueryRequest{
		IndexID: session.IndexID,
		Model:   d.model,
		Prompt:  Prompt(out),
	})
	if err != nil {
		return "", &knowledge.IndexError{Op: knowledge.OpQuery, Err: err}
	}
	return text, nil
}

func (d *Dispatcher) report(k Kind, err error) {
	if d.onOutput != nil {
		d.onOutput(k, err)
	}
}
