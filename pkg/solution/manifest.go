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
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ManifestFile is the solution manifest at the root of an export.
const ManifestFile = "solution.xml"

// ErrNoManifest is returned by ReadManifest when the document has no
// SolutionManifest element.
var ErrNoManifest = errors.New("SolutionManifest element not found")

// LocalizedName is a display name in one language.
type LocalizedName struct {
	LanguageCode string `json:"language_code"`
	Description  string `json:"description"`
}

// Publisher identifies who published the solution.
type Publisher struct {
	UniqueName          string          `json:"unique_name"`
	Email               string          `json:"email,omitempty"`
	Website             string          `json:"website,omitempty"`
	CustomizationPrefix string          `json:"customization_prefix,omitempty"`
	OptionValuePrefix   string          `json:"option_value_prefix,omitempty"`
	LocalizedNames      []LocalizedName `json:"localized_names,omitempty"`
}

// RootComponent is one component the solution ships.
type RootComponent struct {
	Type       string `json:"type"`
	ID         string `json:"id,omitempty"`
	Behavior   string `json:"behavior,omitempty"`
	SchemaName string `json:"schema_name,omitempty"`
}

// Label is the schema name, or the id when the component has none.
func (c RootComponent) Label() string {
	if c.SchemaName != "" {
		return c.SchemaName
	}
	if c.ID != "" {
		return c.ID
	}
	return "(no id)"
}

// ComponentGroup holds the root components of one component type.
type ComponentGroup struct {
	Type       string          `json:"type"`
	TypeName   string          `json:"type_name"`
	Components []RootComponent `json:"components"`
}

// Manifest is the identity and component list read from solution.xml.
type Manifest struct {
	UniqueName     string           `json:"unique_name"`
	Version        string           `json:"version"`
	Managed        bool             `json:"managed"`
	LocalizedNames []LocalizedName  `json:"localized_names,omitempty"`
	Publisher      Publisher        `json:"publisher"`
	Components     []ComponentGroup `json:"components"`
}

// componentTypeNames maps the platform's numeric component types that
// commonly appear in exports.
var componentTypeNames = map[string]string{
	"1":   "Entity",
	"2":   "Attribute",
	"9":   "Option Set",
	"20":  "Security Role",
	"26":  "View",
	"29":  "Process (Workflow)",
	"59":  "Chart",
	"60":  "Form",
	"61":  "Web Resource",
	"62":  "Site Map",
	"80":  "Model-driven App",
	"300": "Canvas App",
	"371": "Connector",
	"372": "Connector",
	"380": "Environment Variable Definition",
	"381": "Environment Variable Value",
}

// ComponentTypeName returns a readable name for a numeric component type.
func ComponentTypeName(typ string) string {
	if name, ok := componentTypeNames[typ]; ok {
		return name
	}
	return "Type " + typ
}

type xmlLocalizedName struct {
	LanguageCode string `xml:"languagecode,attr"`
	Description  string `xml:"description,attr"`
}

type xmlManifest struct {
	UniqueName     string             `xml:"UniqueName"`
	Version        string             `xml:"Version"`
	Managed        string             `xml:"Managed"`
	LocalizedNames []xmlLocalizedName `xml:"LocalizedNames>LocalizedName"`
	Publisher      struct {
		UniqueName          string             `xml:"UniqueName"`
		Email               string             `xml:"EMailAddress"`
		Website             string             `xml:"SupportingWebsiteUrl"`
		CustomizationPrefix string             `xml:"CustomizationPrefix"`
		OptionValuePrefix   string             `xml:"CustomizationOptionValuePrefix"`
		LocalizedNames      []xmlLocalizedName `xml:"LocalizedNames>LocalizedName"`
	} `xml:"Publisher"`
	RootComponents struct {
		Items []struct {
			Type       string `xml:"type,attr"`
			ID         string `xml:"id,attr"`
			Behavior   string `xml:"behavior,attr"`
			SchemaName string `xml:"schemaName,attr"`
		} `xml:",any"`
	} `xml:"RootComponents"`
}

type xmlDocument struct {
	Manifest *xmlManifest `xml:"SolutionManifest"`
}

// ReadManifest parses a solution.xml file.
func ReadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseManifest(raw)
}

// ParseManifest decodes the SolutionManifest element of a solution.xml
// document. Components are grouped by type; groups are ordered by numeric
// type and components keep document order.
func ParseManifest(data []byte) (*Manifest, error) {
	var doc xmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ManifestFile, err)
	}
	sm := doc.Manifest
	if sm == nil {
		return nil, ErrNoManifest
	}

	m := &Manifest{
		UniqueName:     strings.TrimSpace(sm.UniqueName),
		Version:        strings.TrimSpace(sm.Version),
		Managed:        strings.TrimSpace(sm.Managed) == "1",
		LocalizedNames: localizedNames(sm.LocalizedNames),
		Publisher: Publisher{
			UniqueName:          strings.TrimSpace(sm.Publisher.UniqueName),
			Email:               strings.TrimSpace(sm.Publisher.Email),
			Website:             strings.TrimSpace(sm.Publisher.Website),
			CustomizationPrefix: strings.TrimSpace(sm.Publisher.CustomizationPrefix),
			OptionValuePrefix:   strings.TrimSpace(sm.Publisher.OptionValuePrefix),
			LocalizedNames:      localizedNames(sm.Publisher.LocalizedNames),
		},
		Components: []ComponentGroup{},
	}

	index := map[string]int{}
	for _, item := range sm.RootComponents.Items {
		c := RootComponent{Type: item.Type, ID: item.ID, Behavior: item.Behavior, SchemaName: item.SchemaName}
		i, ok := index[c.Type]
		if !ok {
			i = len(m.Components)
			index[c.Type] = i
			m.Components = append(m.Components, ComponentGroup{Type: c.Type, TypeName: ComponentTypeName(c.Type)})
		}
		m.Components[i].Components = append(m.Components[i].Components, c)
	}
	sort.SliceStable(m.Components, func(i, j int) bool {
		return lessType(m.Components[i].Type, m.Components[j].Type)
	})
	return m, nil
}

// ComponentCount is the number of root components across all types.
func (m *Manifest) ComponentCount() int {
	n := 0
	for _, g := range m.Components {
		n += len(g.Components)
	}
	return n
}

func localizedNames(in []xmlLocalizedName) []LocalizedName {
	var out []LocalizedName
	for _, n := range in {
		out = append(out, LocalizedName{LanguageCode: n.LanguageCode, Description: n.Description})
	}
	return out
}

// lessType orders numeric types numerically and anything else after them.
func lessType(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}

// Mermaid renders the solution, its publisher and its root components
// grouped by type as a left-to-right flowchart.
func (m *Manifest) Mermaid() string {
	ids := newNodeIDs()
	ids.reserve("Solution")
	ids.reserve("Publisher")
	var b strings.Builder
	b.WriteString("flowchart LR\n")
	fmt.Fprintf(&b, "    Solution([\"Solution: %s\"])\n", mermaidLabel(m.UniqueName))
	fmt.Fprintf(&b, "    Publisher([\"Publisher: %s\"])\n", mermaidLabel(m.Publisher.UniqueName))
	b.WriteString("    Solution --> Publisher\n")

	var nodes []string
	for _, g := range m.Components {
		fmt.Fprintf(&b, "    subgraph %s[\"%s\"]\n", ids.get("grp_"+g.TypeName), mermaidLabel(g.TypeName))
		for i, c := range g.Components {
			id := ids.get(fmt.Sprintf("c_%s_%d", g.Type, i+1))
			fmt.Fprintf(&b, "        %s[\"%s\"]\n", id, mermaidLabel(c.Label()))
			nodes = append(nodes, id)
		}
		b.WriteString("    end\n")
	}
	for _, id := range nodes {
		fmt.Fprintf(&b, "    Solution --> %s\n", id)
	}
	return b.String()
}
