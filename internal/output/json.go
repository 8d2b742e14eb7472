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

// Package output writes the machine-readable results of soldoc commands.
//
// With --json a command prints one JSON document on stdout. Without it,
// stdout carries the produced file paths, one per line, so the output can be
// piped into other tools:
//
//	soldoc run solution.zip | xargs -n1 open
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// JSON writes data as pretty-printed JSON to stdout.
func JSON(data any) error {
	return JSONTo(os.Stdout, data)
}

// JSONTo writes data as pretty-printed JSON to w.
func JSONTo(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("JSON encoding failed: %w", err)
	}
	return nil
}

// PathsTo writes one path per line. Empty paths are skipped.
func PathsTo(w io.Writer, paths []string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := fmt.Fprintln(w, p); err != nil {
			return err
		}
	}
	return nil
}

// Emit prints data as JSON when jsonMode is set, and the paths otherwise.
func Emit(w io.Writer, jsonMode bool, data any, paths []string) error {
	if jsonMode {
		return JSONTo(w, data)
	}
	return PathsTo(w, paths)
}
