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
	"bytes"
	"encoding/json"
	"fmt"
)

// EntryKind distinguishes files from directories in the top-level inventory.
type EntryKind string

const (
	KindFile EntryKind = "file"
	KindDir  EntryKind = "dir"
)

// InventoryEntry describes one top-level entry of the extracted solution.
// Directory names carry a trailing slash; only files carry a size.
type InventoryEntry struct {
	Name  string    `json:"name"`
	Type  EntryKind `json:"type"`
	Bytes *int64    `json:"bytes,omitempty"`
}

// CanvasAppGroup is one logical canvas app: the files that share a base name
// once a known suffix is stripped.
type CanvasAppGroup struct {
	Base    string
	Members []string
}

// CanvasAppGroups keeps groups in a fixed order and encodes as a JSON object
// whose keys follow that order, so the report bytes are stable.
type CanvasAppGroups []CanvasAppGroup

// MarshalJSON encodes the groups as {"base": ["member", ...], ...}.
func (g CanvasAppGroups) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, group := range g {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(group.Base)
		if err != nil {
			return nil, err
		}
		members := group.Members
		if members == nil {
			members = []string{}
		}
		value, err := json.Marshal(members)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of base -> members, preserving key order.
func (g *CanvasAppGroups) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*g = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("canvas app groups: expected object, got %v", tok)
	}
	out := CanvasAppGroups{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("canvas app groups: expected string key, got %v", keyTok)
		}
		var members []string
		if err := dec.Decode(&members); err != nil {
			return fmt.Errorf("canvas app groups: %s: %w", key, err)
		}
		out = append(out, CanvasAppGroup{Base: key, Members: members})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*g = out
	return nil
}

// WorkflowEntry is a workflow definition file directly inside the workflows directory.
type WorkflowEntry struct {
	Name  string `json:"name"`
	Bytes int64  `json:"bytes"`
}

// EnvironmentVariableDefinitionEntry is one definition folder inside the
// environment-variable-definitions directory.
type EnvironmentVariableDefinitionEntry struct {
	Name string `json:"name"`
}

// CanvasAppsSection reports the canvas apps directory.
type CanvasAppsSection struct {
	Exists bool            `json:"exists"`
	Groups CanvasAppGroups `json:"groups"`
}

// WorkflowsSection reports the workflows directory.
type WorkflowsSection struct {
	Exists bool            `json:"exists"`
	Items  []WorkflowEntry `json:"items"`
}

// EnvVarsSection reports the environment-variable-definitions directory.
type EnvVarsSection struct {
	Exists bool                                 `json:"exists"`
	Items  []EnvironmentVariableDefinitionEntry `json:"items"`
}

// Report is the parsed inventory of one solution. It is built once per parse
// run and is not mutated after it has been written.
type Report struct {
	Root       string            `json:"root"`
	Manifest   *Manifest         `json:"manifest,omitempty"`
	TopLevel   []InventoryEntry  `json:"top_level"`
	CanvasApps CanvasAppsSection `json:"canvasapps"`
	Workflows  WorkflowsSection  `json:"workflows"`
	EnvVars    EnvVarsSection    `json:"environmentvariabledefinitions"`

	// Flows holds the action graph of each readable workflow, keyed by file
	// name. It goes into the per-workflow chunks, not the report file.
	Flows map[string]*Flow `json:"-"`
}

// Counts summarizes the report for the overview chunk and the summary document.
type Counts struct {
	CanvasAppGroups int `json:"canvasapps_groups"`
	Workflows       int `json:"workflows"`
	EnvVars         int `json:"envvars"`
}

// Counts returns the key counts of the report.
func (r *Report) Counts() Counts {
	return Counts{
		CanvasAppGroups: len(r.CanvasApps.Groups),
		Workflows:       len(r.Workflows.Items),
		EnvVars:         len(r.EnvVars.Items),
	}
}
