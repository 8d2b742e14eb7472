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

// Package ui provides terminal output helpers for the soldoc CLI.
//
// Colors follow the --no-color flag and the NO_COLOR environment variable.
// Human-readable status goes to Out (stderr by default) so that stdout only
// carries produced file paths or JSON.
//
// Color usage:
//   - Red: errors, failed artifacts
//   - Yellow: warnings, skipped records
//   - Green: completed stages and artifacts
//   - Cyan: info and counts
//   - Bold/Dim: headers and paths
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Out receives all status output. Tests replace it.
var Out io.Writer = os.Stderr

var (
	Red    = color.New(color.FgRed)
	Yellow = color.New(color.FgYellow)
	Green  = color.New(color.FgGreen)
	Cyan   = color.New(color.FgCyan)
	Bold   = color.New(color.Bold)
	Dim    = color.New(color.Faint)
)

// InitColors configures global color output. Call it right after flag parsing.
func InitColors(noColor bool) {
	color.NoColor = noColor
}

// Successf prints a green line with a checkmark prefix.
func Successf(format string, args ...any) {
	_, _ = Green.Fprintf(Out, "✓ "+format+"\n", args...)
}

// Warningf prints a yellow line with a warning prefix.
func Warningf(format string, args ...any) {
	_, _ = Yellow.Fprintf(Out, "⚠ "+format+"\n", args...)
}

// Errorf prints a red line with an X prefix.
func Errorf(format string, args ...any) {
	_, _ = Red.Fprintf(Out, "✗ "+format+"\n", args...)
}

// Infof prints a cyan line with an info prefix.
func Infof(format string, args ...any) {
	_, _ = Cyan.Fprintf(Out, "ℹ "+format+"\n", args...)
}

// Header prints a bold header underlined with '='.
//
//	Solution Parse
//	==============
func Header(text string) {
	_, _ = Bold.Fprintln(Out, text)
	fmt.Fprintln(Out, strings.Repeat("=", len(text)))
}

// Label returns a bold label for inline use.
func Label(text string) string {
	return Bold.Sprint(text)
}

// DimText returns dim text, used for paths.
func DimText(text string) string {
	return Dim.Sprint(text)
}

// CountText returns a cyan count.
func CountText(count int) string {
	return Cyan.Sprint(count)
}

// StateText colors a job or output state: completed green, failed red,
// processing cyan and anything else dim.
func StateText(state string) string {
	switch state {
	case "completed":
		return Green.Sprint(state)
	case "failed":
		return Red.Sprint(state)
	case "processing":
		return Cyan.Sprint(state)
	}
	return Dim.Sprint(state)
}

// KeyValue prints an aligned "label value" line.
func KeyValue(label string, value any) {
	fmt.Fprintf(Out, "  %s %v\n", Label(fmt.Sprintf("%-14s", label+":")), value)
}
