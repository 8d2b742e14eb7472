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

package solution

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Well-known directory names inside an exported solution. Matching is case-insensitive.
const (
	CanvasAppsDir      = "CanvasApps"
	WorkflowsDir       = "Workflows"
	EnvVarDefsDir      = "environmentvariabledefinitions"
	workflowExtension  = ".json"
	thumbnailCacheFile = "Thumbs.db"
)

// ErrRootNotFound is returned when the solution root is missing or not a directory.
var ErrRootNotFound = errors.New("solution root not found")

// canvasAppSuffixes is checked in order and the first match wins. Longer,
// more specific suffixes come first because ".msapp" also ends "_DocumentUri.msapp".
var canvasAppSuffixes = []string{
	"_AdditionalUris0_identity.json",
	"_BackgroundImageUri",
	"_DocumentUri.msapp",
	".msapp",
}

// Parser walks an extracted solution tree.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser. A nil logger falls back to slog.Default().
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Parse builds the report for the solution rooted at root. Unreadable
// subdirectories are skipped with a warning; a missing root is fatal.
func (p *Parser) Parse(root string) (*Report, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRootNotFound, root, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, abs)
	}
	entries, err := listDir(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRootNotFound, abs, err)
	}

	report := &Report{
		Root:       abs,
		Manifest:   p.readManifest(abs, entries),
		TopLevel:   topLevelInventory(entries),
		CanvasApps: CanvasAppsSection{Groups: CanvasAppGroups{}},
		Workflows:  WorkflowsSection{Items: []WorkflowEntry{}},
		EnvVars:    EnvVarsSection{Items: []EnvironmentVariableDefinitionEntry{}},
	}

	if dir, ok := findDir(abs, entries, CanvasAppsDir); ok {
		report.CanvasApps.Exists = true
		report.CanvasApps.Groups = p.groupCanvasApps(dir)
	}
	if dir, ok := findDir(abs, entries, WorkflowsDir); ok {
		report.Workflows.Exists = true
		report.Workflows.Items = p.listWorkflows(dir)
		report.Flows = p.readFlows(dir, report.Workflows.Items)
	}
	if dir, ok := findDir(abs, entries, EnvVarDefsDir); ok {
		report.EnvVars.Exists = true
		report.EnvVars.Items = p.listEnvVarDefinitions(dir)
	}

	p.logger.Info("parse.complete",
		"root", abs,
		"canvasapp_groups", len(report.CanvasApps.Groups),
		"workflows", len(report.Workflows.Items),
		"envvars", len(report.EnvVars.Items),
		"manifest", report.Manifest != nil,
	)
	return report, nil
}

// GroupCanvasApps groups sibling file names by their base name. Names that
// match no known suffix form a group keyed by the full name. Keys compare
// case-insensitively and the first spelling seen is kept.
func GroupCanvasApps(names []string) CanvasAppGroups {
	sorted := append([]string(nil), names...)
	sortFold(sorted)

	index := make(map[string]int, len(sorted))
	groups := CanvasAppGroups{}
	for _, name := range sorted {
		base := canvasAppBase(name)
		key := strings.ToLower(base)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, CanvasAppGroup{Base: base})
		}
		groups[i].Members = append(groups[i].Members, name)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return lessFold(groups[i].Base, groups[j].Base)
	})
	for i := range groups {
		sortFold(groups[i].Members)
	}
	return groups
}

func canvasAppBase(name string) string {
	for _, sfx := range canvasAppSuffixes {
		if strings.HasSuffix(name, sfx) && len(name) > len(sfx) {
			return name[:len(name)-len(sfx)]
		}
	}
	return name
}

func (p *Parser) groupCanvasApps(dir string) CanvasAppGroups {
	entries, err := listDir(dir)
	if err != nil {
		p.logger.Warn("parse.skip_dir", "path", dir, "err", err)
		return CanvasAppGroups{}
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return GroupCanvasApps(names)
}

func (p *Parser) listWorkflows(dir string) []WorkflowEntry {
	items := []WorkflowEntry{}
	entries, err := listDir(dir)
	if err != nil {
		p.logger.Warn("parse.skip_dir", "path", dir, "err", err)
		return items
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), workflowExtension) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			p.logger.Warn("parse.skip_file", "path", filepath.Join(dir, e.Name()), "err", err)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		items = append(items, WorkflowEntry{Name: e.Name(), Bytes: info.Size()})
	}
	return items
}

// readManifest returns nil when solution.xml is absent or unreadable.
func (p *Parser) readManifest(root string, entries []fs.DirEntry) *Manifest {
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(e.Name(), ManifestFile) {
			continue
		}
		path := filepath.Join(root, e.Name())
		m, err := ReadManifest(path)
		if err != nil {
			p.logger.Warn("parse.manifest_invalid", "path", path, "err", err)
			return nil
		}
		return m
	}
	return nil
}

func (p *Parser) readFlows(dir string, items []WorkflowEntry) map[string]*Flow {
	flows := make(map[string]*Flow, len(items))
	for _, wf := range items {
		path := filepath.Join(dir, wf.Name)
		raw, err := os.ReadFile(path)
		if err == nil {
			var flow *Flow
			if flow, err = ParseFlow(raw); err == nil {
				flows[wf.Name] = flow
				continue
			}
		}
		p.logger.Warn("parse.flow_invalid", "path", path, "err", err)
	}
	return flows
}

func (p *Parser) listEnvVarDefinitions(dir string) []EnvironmentVariableDefinitionEntry {
	items := []EnvironmentVariableDefinitionEntry{}
	entries, err := listDir(dir)
	if err != nil {
		p.logger.Warn("parse.skip_dir", "path", dir, "err", err)
		return items
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		items = append(items, EnvironmentVariableDefinitionEntry{Name: e.Name()})
	}
	return items
}

func topLevelInventory(entries []fs.DirEntry) []InventoryEntry {
	inv := make([]InventoryEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			inv = append(inv, InventoryEntry{Name: e.Name() + "/", Type: KindDir})
			continue
		}
		entry := InventoryEntry{Name: e.Name(), Type: KindFile}
		if info, err := e.Info(); err == nil {
			size := info.Size()
			entry.Bytes = &size
		}
		inv = append(inv, entry)
	}
	return inv
}

func findDir(root string, entries []fs.DirEntry, name string) (string, bool) {
	for _, e := range entries {
		if e.IsDir() && strings.EqualFold(e.Name(), name) {
			return filepath.Join(root, e.Name()), true
		}
	}
	return "", false
}

// listDir reads a directory, drops hidden and thumbnail-cache entries and
// sorts the rest case-insensitively.
func listDir(dir string) ([]fs.DirEntry, error) {
	raw, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := make([]fs.DirEntry, 0, len(raw))
	for _, e := range raw {
		if isIgnored(e.Name()) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return lessFold(out[i].Name(), out[j].Name())
	})
	return out, nil
}

func isIgnored(name string) bool {
	return strings.HasPrefix(name, ".") || strings.EqualFold(name, thumbnailCacheFile)
}

// lessFold orders case-insensitively and breaks ties by byte order so the
// result does not depend on the input order.
func lessFold(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

func sortFold(names []string) {
	sort.SliceStable(names, func(i, j int) bool { return lessFold(names[i], names[j]) })
}
