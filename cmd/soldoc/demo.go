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
	"path/filepath"
)

// runDemo prints the recommended command sequence for the configured folders.
func runDemo(args []string, a *app) error {
	fs := newFlagSet("demo", `Usage: soldoc demo

Description:
  Print the recommended command sequence and where outputs are written.
`, "")
	if help, err := parseFlags(fs, args); help || err != nil {
		return err
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	out, _ := filepath.Abs(cfg.Generation.OutDir)
	_, err = fmt.Fprintf(a.stdout, `Recommended sequence:

  1. soldoc parse <solution_dir|archive.zip>
  2. soldoc index                                 (prints the vector store id)
  3. soldoc ask "What does this solution do?" --vs <id>
  4. soldoc generate overview workflows faq diagrams environment-variables --vs <id>
  5. soldoc export pdf                            (optional, Word is the default)

Or in one step:

  soldoc run <archive.zip>

Chunks:  %s
Outputs: %s
Model:   %s
`, cfg.ChunkDir(), out, cfg.Generation.Model)
	return err
}
