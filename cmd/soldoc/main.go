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

// Package main implements the soldoc CLI, which turns an exported low-code
// solution archive into documentation produced from an indexed copy of its
// structure.
//
// Usage:
//
//	soldoc parse <solution_dir|archive.zip>   Parse a solution into chunks
//	soldoc index                              Upload chunks to a vector store
//	soldoc ask <question> --vs <id>           Ask a question about the solution
//	soldoc generate <type>... --vs <id>       Generate documents and artifacts
//	soldoc export <word|pdf>                  Convert generated Markdown
//	soldoc run <archive.zip>                  Full pipeline in one step
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/soldoc/internal/errors"
	"github.com/kraklabs/soldoc/internal/ui"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags are accepted before the command name.
type GlobalFlags struct {
	JSON    bool
	NoColor bool
	Quiet   bool
	Debug   bool
	LogFile string
}

// app carries what every command needs.
type app struct {
	globals    GlobalFlags
	configPath string
	logger     *slog.Logger
	stdout     io.Writer
}

func (a *app) loadConfig() (*Config, error) {
	return LoadConfig(a.configPath)
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run parses global flags, dispatches the command and returns the exit code.
func run(args []string) int {
	globals, configPath, showVersion, rest, err := parseGlobals(args)
	if err == flag.ErrHelp {
		return errors.ExitSuccess
	}
	if err != nil {
		return errors.ExitInput
	}
	if showVersion {
		fmt.Printf("soldoc version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		return errors.ExitSuccess
	}
	if len(rest) == 0 {
		printUsage()
		return errors.ExitInput
	}

	ui.InitColors(globals.NoColor || os.Getenv("NO_COLOR") != "")
	if globals.Quiet {
		ui.Out = io.Discard
	}
	logger, closeLog, err := setupLogging(globals)
	if err != nil {
		return report(errors.NewConfigError("Cannot open log file", err.Error(), "Check --log-file", err), globals.JSON)
	}
	defer closeLog()

	a := &app{globals: globals, configPath: configPath, logger: logger, stdout: os.Stdout}
	return report(dispatch(rest[0], rest[1:], a), globals.JSON)
}

func parseGlobals(args []string) (g GlobalFlags, configPath string, showVersion bool, rest []string, err error) {
	fs := flag.NewFlagSet("soldoc", flag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.Usage = printUsage
	fs.BoolVar(&showVersion, "version", false, "Show version and exit")
	fs.StringVar(&configPath, "config", "", "Path to config file (default: ./"+DefaultConfigPath+")")
	fs.BoolVar(&g.JSON, "json", false, "Print machine-readable JSON on stdout")
	fs.BoolVar(&g.NoColor, "no-color", false, "Disable colored output")
	fs.BoolVarP(&g.Quiet, "quiet", "q", false, "Hide progress and status output")
	fs.BoolVar(&g.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&g.LogFile, "log-file", "", "Also write logs to a rotating file")
	if err = fs.Parse(args); err != nil {
		return
	}
	if g.JSON {
		g.Quiet = true
	}
	rest = fs.Args()
	return
}

func dispatch(command string, args []string, a *app) error {
	switch command {
	case "parse":
		return runParse(args, a)
	case "index":
		return runIndex(args, a)
	case "ask":
		return runAsk(args, a)
	case "generate":
		return runGenerate(args, a)
	case "export":
		return runExport(args, a)
	case "run":
		return runPipeline(args, a)
	case "demo":
		return runDemo(args, a)
	case "help":
		printUsage()
		return nil
	}
	printUsage()
	return errors.NewInputError(
		fmt.Sprintf("Unknown command: %s", command),
		"",
		"Run: soldoc --help",
	)
}

// report prints err and returns its exit code.
func report(err error, jsonOutput bool) int {
	return errors.Report(os.Stderr, err, jsonOutput)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `soldoc - solution archive documentation generator

soldoc parses an exported solution archive (canvas apps, cloud flows,
environment variable definitions), indexes the parsed structure in an
OpenAI vector store and generates documentation that is grounded only in
the indexed content.

Usage:
  soldoc [global options] <command> [options]

Commands:
  parse      Parse an extracted solution folder or .zip into chunks
  index      Upload chunks to a new vector store
  ask        Ask a free-text question about an indexed solution
  generate   Generate overview, workflows, faq, diagrams, environment-variables
  export     Convert generated Markdown to Word or PDF
  run        Extract, parse, index and generate in one step
  demo       Print the recommended command sequence

Global Options:
  --config      Path to config file (default: ./%s)
  --json        Print machine-readable JSON on stdout
  --no-color    Disable colored output
  -q, --quiet   Hide progress and status output
  --debug       Enable debug logging
  --log-file    Also write logs to a rotating file
  --version     Show version and exit

Environment Variables:
  OPENAI_API_KEY    API key for the vector store and Responses API
  OPENAI_BASE_URL   Alternate API endpoint
  SOLDOC_MODEL      Model used for generation (default: %s)
  SOLDOC_OUT_DIR    Directory for generated artifacts
  SOLDOC_INDEX_ID   Vector store id used by ask and generate

For detailed command help: soldoc <command> --help

`, DefaultConfigPath, defaultModel)
}
