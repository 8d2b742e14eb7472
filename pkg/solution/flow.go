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
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"unicode"
)

// FlowAction is one action of a cloud flow definition.
type FlowAction struct {
	Name     string   `json:"name"`
	Type     string   `json:"type,omitempty"`
	RunAfter []string `json:"run_after,omitempty"`
	// Parent is the scope, condition or switch the action is nested in.
	Parent string `json:"parent,omitempty"`
}

// Flow is the action graph of one workflow file.
type Flow struct {
	Triggers []string     `json:"triggers"`
	Actions  []FlowAction `json:"actions"`
}

type rawAction struct {
	Type     string                     `json:"type"`
	RunAfter map[string]json.RawMessage `json:"runAfter"`
	Actions  map[string]rawAction       `json:"actions"`
	Else     *struct {
		Actions map[string]rawAction `json:"actions"`
	} `json:"else"`
	Cases map[string]struct {
		Actions map[string]rawAction `json:"actions"`
	} `json:"cases"`
	Default *struct {
		Actions map[string]rawAction `json:"actions"`
	} `json:"default"`
}

type rawDefinition struct {
	Triggers map[string]json.RawMessage `json:"triggers"`
	Actions  map[string]rawAction       `json:"actions"`
}

// ParseFlow reads the triggers and actions of a workflow definition. Both
// the exported shape {"properties":{"definition":...}} and a bare
// {"definition":...} are accepted. Actions nested in scopes, conditions and
// switches are included with their Parent set. Names are sorted at every
// level so the result does not depend on JSON key order.
func ParseFlow(data []byte) (*Flow, error) {
	var doc struct {
		Properties struct {
			Definition *rawDefinition `json:"definition"`
		} `json:"properties"`
		Definition *rawDefinition `json:"definition"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse flow: %w", err)
	}
	def := doc.Properties.Definition
	if def == nil {
		def = doc.Definition
	}
	flow := &Flow{Triggers: []string{}, Actions: []FlowAction{}}
	if def == nil {
		return flow, nil
	}
	flow.Triggers = sortedKeys(def.Triggers)
	collectActions(def.Actions, "", &flow.Actions)
	return flow, nil
}

func collectActions(actions map[string]rawAction, parent string, out *[]FlowAction) {
	for _, name := range sortedKeys(actions) {
		a := actions[name]
		*out = append(*out, FlowAction{
			Name:     name,
			Type:     a.Type,
			RunAfter: sortedKeys(a.RunAfter),
			Parent:   parent,
		})
		collectActions(a.Actions, name, out)
		if a.Else != nil {
			collectActions(a.Else.Actions, name, out)
		}
		for _, c := range sortedKeys(a.Cases) {
			collectActions(a.Cases[c].Actions, name, out)
		}
		if a.Default != nil {
			collectActions(a.Default.Actions, name, out)
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return nil
	}
	return keys
}

// Mermaid renders the flow as a top-down flowchart. Top-level actions with
// no predecessor hang off a Start node; nested ones hang off their parent.
func (f *Flow) Mermaid() string {
	ids := newNodeIDs()
	var b strings.Builder
	b.WriteString("flowchart TD\n")

	start := "Start"
	if len(f.Triggers) > 0 {
		start = "Trigger: " + strings.Join(f.Triggers, ", ")
	}
	b.WriteString("    Start((\"" + mermaidLabel(start) + "\"))\n")
	ids.reserve("Start")

	for _, a := range f.Actions {
		label := a.Name
		if a.Type != "" {
			label += " (" + a.Type + ")"
		}
		fmt.Fprintf(&b, "    %s[\"%s\"]\n", ids.get(a.Name), mermaidLabel(label))
	}
	for _, a := range f.Actions {
		to := ids.get(a.Name)
		switch {
		case len(a.RunAfter) > 0:
			for _, p := range a.RunAfter {
				fmt.Fprintf(&b, "    %s --> %s\n", ids.get(p), to)
			}
		case a.Parent != "":
			fmt.Fprintf(&b, "    %s --> %s\n", ids.get(a.Parent), to)
		default:
			fmt.Fprintf(&b, "    Start --> %s\n", to)
		}
	}
	return b.String()
}

// nodeIDs assigns each action name a Mermaid-safe id, unique within one chart.
type nodeIDs struct {
	byName map[string]string
	used   map[string]bool
}

func newNodeIDs() *nodeIDs {
	return &nodeIDs{byName: map[string]string{}, used: map[string]bool{}}
}

func (n *nodeIDs) reserve(id string) { n.used[id] = true }

func (n *nodeIDs) get(name string) string {
	if id, ok := n.byName[name]; ok {
		return id
	}
	base := safeID(name)
	id := base
	for i := 2; n.used[id]; i++ {
		id = fmt.Sprintf("%s_%d", base, i)
	}
	n.used[id] = true
	n.byName[name] = id
	return id
}

// safeID keeps letters, digits and underscores. Names with none of those
// get a stable hash.
func safeID(name string) string {
	id := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return r
		}
		return -1
	}, name)
	if id == "" {
		h := fnv.New32a()
		_, _ = h.Write([]byte(name))
		return fmt.Sprintf("node_%08x", h.Sum32())
	}
	if unicode.IsDigit(rune(id[0])) {
		id = "n_" + id
	}
	return id
}

func mermaidLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
