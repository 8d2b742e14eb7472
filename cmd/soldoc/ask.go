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
	"strings"

	"github.com/kraklabs/soldoc/internal/errors"
	"github.com/kraklabs/soldoc/internal/output"
	"github.com/kraklabs/soldoc/pkg/knowledge"
)

type askResult struct {
	IndexID  string `json:"index_id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// runAsk executes 'soldoc ask'. The answer comes from the indexed files only;
// when they do not contain it the model replies "Not found in uploaded files."
func runAsk(args []string, a *app) error {
	fs := newFlagSet("ask", `Usage: soldoc ask <question...> --vs <id> [options]

Description:
  Ask a free-text question about an indexed solution. The answer is
  printed on stdout.
`, `  soldoc ask "Which flows send email?" --vs vs_abc123
  SOLDOC_INDEX_ID=vs_abc123 soldoc ask What connectors are used
`)
	vs := fs.String("vs", "", "Vector store id (default: $SOLDOC_INDEX_ID)")
	model := fs.String("model", "", "Model (default: generation.model)")
	outDir := fs.String("out", "", "Output folder (default: generation.out_dir)")
	if help, err := parseFlags(fs, args); help || err != nil {
		return err
	}
	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		return usageError(fs, "Missing question")
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	indexID, err := resolveIndexID(*vs, cfg)
	if err != nil {
		return err
	}
	applyGenerationFlags(cfg, *model, *outDir, "")
	svc, err := cfg.Service()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(a.logger)
	defer stop()

	progress := newIndexProgress(NewProgressConfig(a.globals))
	defer progress.finish()
	d := newDispatcher(svc, cfg, a, progress, cfg.Generation.OutDir)
	answer, err := d.Ask(ctx, knowledge.NewSession(indexID), question)
	if err != nil {
		return err
	}
	progress.finish()

	if a.globals.JSON {
		return output.JSONTo(a.stdout, askResult{IndexID: indexID, Question: question, Answer: answer})
	}
	_, err = fmt.Fprintln(a.stdout, answer)
	return err
}

// resolveIndexID prefers the flag over SOLDOC_INDEX_ID and index.id.
func resolveIndexID(flagValue string, cfg *Config) (string, error) {
	if id := strings.TrimSpace(flagValue); id != "" {
		return id, nil
	}
	if id := strings.TrimSpace(cfg.Index.ID); id != "" {
		return id, nil
	}
	return "", errors.NewInputError(
		"Missing vector store id",
		"This command needs an existing index",
		"Pass --vs <id> from soldoc index, or set SOLDOC_INDEX_ID",
	)
}
