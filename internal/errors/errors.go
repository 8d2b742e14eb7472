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

// Package errors provides structured error handling for the soldoc CLI.
//
// UserError carries what went wrong, why it happened and how to fix it,
// plus a Kind from the pipeline's error taxonomy and the exit code the CLI
// should use. Library packages return plain sentinel-wrapping errors;
// Classify turns them into UserErrors at the command boundary.
//
// # Usage Example
//
//	res, err := runner.Run(ctx, req)
//	if err != nil {
//	    os.Exit(errors.Report(os.Stderr, err, jsonMode))
//	}
//
// # Formatted Output
//
// The Format() method provides colored terminal output:
//
//	Error: Archive has no structured content
//	Cause: no structured content in archive: no .json files under /tmp/extract/...
//	Fix:   Upload an unmanaged solution export (.zip) produced by the maker portal
//
// For JSON output, ToJSON returns the same fields plus kind and exit_code.
//
// # Exit Codes
//
//   - ExitSuccess (0): Successful execution
//   - ExitConfig (1): Missing or invalid configuration
//   - ExitIndex (3): Remote index errors, failed or timed out indexing
//   - ExitInput (4): Invalid arguments, uploads or output types
//   - ExitNotFound (6): Solution root or other input not found
//   - ExitArtifact (7): An output could not be materialized
//   - ExitInternal (10): Internal errors (bugs, unexpected failures)
//   - ExitInterrupted (130): Cancelled by a signal
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/kraklabs/soldoc/pkg/archive"
	"github.com/kraklabs/soldoc/pkg/generation"
	"github.com/kraklabs/soldoc/pkg/knowledge"
	"github.com/kraklabs/soldoc/pkg/solution"
)

// Exit codes for different error categories.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitConfig indicates configuration errors (missing API key, bad config file).
	ExitConfig = 1

	// ExitIndex indicates remote index errors, including failed or timed out indexing.
	ExitIndex = 3

	// ExitInput indicates invalid user input (bad arguments, uploads, output types).
	ExitInput = 4

	// ExitNotFound indicates a missing solution root or input path.
	ExitNotFound = 6

	// ExitArtifact indicates that at least one output could not be materialized.
	ExitArtifact = 7

	// ExitInternal indicates internal errors (bugs, unexpected failures).
	// Exit code 10 signals "this is a bug that should be reported".
	ExitInternal = 10

	// ExitInterrupted is used when the run was cancelled by SIGINT/SIGTERM.
	ExitInterrupted = 130
)

// Kind classifies an error for reporting.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindParse           Kind = "parse"
	KindIndex           Kind = "index"
	KindIndexingFailed  Kind = "indexing_failed"
	KindIndexingTimeout Kind = "indexing_timeout"
	KindDispatch        Kind = "dispatch"
	KindMaterialization Kind = "materialization"
	KindConfig          Kind = "config"
	KindInternal        Kind = "internal"
)

// UserError represents an error with structured context for end users.
//
// It provides three levels of information:
//   - Message: What went wrong (user-facing error description)
//   - Cause: Why it happened (diagnostic information)
//   - Fix: How to fix it (actionable suggestion)
type UserError struct {
	// Kind is the error's place in the taxonomy.
	Kind Kind

	// Message describes what went wrong in user-friendly language.
	Message string

	// Cause explains why the error occurred (diagnostic information).
	Cause string

	// Fix provides an actionable suggestion on how to resolve the error.
	Fix string

	// ExitCode is the exit code that should be used when exiting due to this error.
	ExitCode int

	// Err is the underlying error, kept for errors.Is/As.
	Err error
}

// Error implements the error interface.
func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *UserError) Unwrap() error {
	return e.Err
}

func newUserError(kind Kind, code int, msg, cause, fix string, err error) *UserError {
	return &UserError{Kind: kind, Message: msg, Cause: cause, Fix: fix, ExitCode: code, Err: err}
}

// NewConfigError creates a configuration error with exit code ExitConfig.
//
// Example:
//
//	return NewConfigError(
//	    "OpenAI API key is not set",
//	    "Neither OPENAI_API_KEY nor index.api_key is configured",
//	    "Export OPENAI_API_KEY or add it to .env",
//	    nil,
//	)
func NewConfigError(msg, cause, fix string, err error) *UserError {
	return newUserError(KindConfig, ExitConfig, msg, cause, fix, err)
}

// NewIndexError creates a remote index error with exit code ExitIndex.
func NewIndexError(msg, cause, fix string, err error) *UserError {
	return newUserError(KindIndex, ExitIndex, msg, cause, fix, err)
}

// NewInputError creates an input validation error with exit code ExitInput.
// Input errors typically do not wrap an underlying error.
//
// Example:
//
//	return NewInputError(
//	    "Missing vector store id",
//	    "The ask command needs an existing index",
//	    "Pass --vs <id> or set SOLDOC_INDEX_ID",
//	)
func NewInputError(msg, cause, fix string) *UserError {
	return newUserError(KindValidation, ExitInput, msg, cause, fix, nil)
}

// NewNotFoundError creates a not found error with exit code ExitNotFound.
func NewNotFoundError(msg, cause, fix string, err error) *UserError {
	return newUserError(KindParse, ExitNotFound, msg, cause, fix, err)
}

// NewInternalError creates an internal error with exit code ExitInternal.
//
// Use this for unexpected errors that indicate bugs in the program.
func NewInternalError(msg, cause, fix string, err error) *UserError {
	return newUserError(KindInternal, ExitInternal, msg, cause, fix, err)
}

// Classify maps an error returned by the soldoc packages to a UserError.
// A UserError anywhere in the chain is returned as is. Unrecognized errors
// are internal.
func Classify(err error) *UserError {
	if err == nil {
		return nil
	}
	var ue *UserError
	if errors.As(err, &ue) {
		return ue
	}
	cause := err.Error()

	switch {
	case errors.Is(err, context.Canceled):
		return newUserError(KindInternal, ExitInterrupted, "Interrupted", cause, "", err)

	// Validation
	case errors.Is(err, archive.ErrUnsupportedType):
		return newUserError(KindValidation, ExitInput, "Unsupported upload type", cause,
			"Upload a solution export (.zip) or a canvas app package (.msapp)", err)
	case errors.Is(err, archive.ErrExtraction):
		return newUserError(KindValidation, ExitInput, "Cannot extract archive", cause,
			"Check that the file is a complete, uncorrupted zip archive", err)
	case errors.Is(err, archive.ErrNoContent):
		return newUserError(KindValidation, ExitInput, "Archive has no structured content", cause,
			"Upload an unmanaged solution export produced by the maker portal", err)
	case errors.Is(err, generation.ErrMissingMarkdown):
		return newUserError(KindValidation, ExitInput, "Nothing to export", cause,
			"Run: soldoc generate overview, workflows and faq first", err)

	// Parse
	case errors.Is(err, solution.ErrRootNotFound):
		return NewNotFoundError("Solution folder not found", cause,
			"Pass an extracted solution folder or a .zip export", err)

	// Index
	case errors.Is(err, knowledge.ErrIndexingFailed):
		return newUserError(KindIndexingFailed, ExitIndex, "Indexing failed", cause,
			"Inspect the failed files in the vector store and re-run", err)
	case errors.Is(err, knowledge.ErrIndexingTimeout):
		return newUserError(KindIndexingTimeout, ExitIndex, "Indexing did not finish in time", cause,
			"Retry later with --vs <id> to reuse the index, or raise index.poll_attempts", err)
	case errors.Is(err, knowledge.ErrIndex):
		return NewIndexError("Remote index request failed", cause,
			"Check OPENAI_API_KEY, OPENAI_BASE_URL and your network connection", err)

	// Dispatch
	case errors.Is(err, generation.ErrUnknownOutputType):
		return newUserError(KindDispatch, ExitInput, "Unknown output type", cause,
			"Use one of: "+strings.Join(kindNames(), ", ")+", or ask: <question>", err)
	case errors.Is(err, generation.ErrDispatch):
		return newUserError(KindDispatch, ExitInput, "Invalid output request", cause,
			`Write the question after the token, e.g. "ask: What does this solution do?"`, err)

	// Materialization
	case errors.Is(err, generation.ErrMaterialization):
		fix := ""
		var conv *generation.ConversionError
		if errors.As(err, &conv) {
			fix = "Install pandoc (https://pandoc.org) or check its output; the Markdown was kept"
		}
		return newUserError(KindMaterialization, ExitArtifact, "Output could not be produced", cause, fix, err)
	}

	return NewInternalError("Unexpected error", cause,
		"This is a bug. Please report it at github.com/kraklabs/soldoc/issues", err)
}

func kindNames() []string {
	names := make([]string, 0, len(generation.Kinds))
	for _, k := range generation.Kinds {
		names = append(names, k.String())
	}
	return names
}

// Color definitions for error formatting.
var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format returns a formatted error message for terminal display.
//
// Error is red and bold, Cause yellow and Fix green. Color output respects
// the NO_COLOR environment variable and can be disabled with noColor.
// Empty Cause or Fix fields are omitted.
//
// Note: This method temporarily modifies the global color.NoColor state
// and restores it after formatting.
func (e *UserError) Format(noColor bool) string {
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")

	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}

	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}

	return out.String()
}

// ErrorJSON represents error information in JSON format.
type ErrorJSON struct {
	Error    string `json:"error"`
	Kind     Kind   `json:"kind,omitempty"`
	Cause    string `json:"cause,omitempty"`
	Fix      string `json:"fix,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// ToJSON converts the UserError to a JSON-serializable structure.
func (e *UserError) ToJSON() ErrorJSON {
	return ErrorJSON{
		Error:    e.Message,
		Kind:     e.Kind,
		Cause:    e.Cause,
		Fix:      e.Fix,
		ExitCode: e.ExitCode,
	}
}

// Report prints err to w and returns the exit code for it.
//
// Errors that are not a UserError are classified first. A nil error prints
// nothing and returns ExitSuccess.
func Report(w io.Writer, err error, jsonOutput bool) int {
	if err == nil {
		return ExitSuccess
	}
	ue := Classify(err)
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(ue.ToJSON())
	} else {
		fmt.Fprint(w, ue.Format(false))
	}
	return ue.ExitCode
}
