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
	"fmt"
	"strings"
)

// RenderSummary renders the human-readable parse summary.
func RenderSummary(r *Report) string {
	counts := r.Counts()
	var b strings.Builder

	b.WriteString("# Solution Parse Summary\n\n")
	fmt.Fprintf(&b, "**Root:** `%s`\n\n", r.Root)

	if m := r.Manifest; m != nil {
		b.WriteString("## Manifest\n")
		fmt.Fprintf(&b, "- Unique name: **%s**\n", m.UniqueName)
		fmt.Fprintf(&b, "- Version: %s\n", m.Version)
		fmt.Fprintf(&b, "- Managed: %s\n", yesNo(m.Managed))
		fmt.Fprintf(&b, "- Publisher: %s", m.Publisher.UniqueName)
		if m.Publisher.CustomizationPrefix != "" {
			fmt.Fprintf(&b, " (prefix `%s`)", m.Publisher.CustomizationPrefix)
		}
		b.WriteString("\n")
		for _, ln := range m.LocalizedNames {
			fmt.Fprintf(&b, "- Name (%s): %s\n", ln.LanguageCode, ln.Description)
		}
		fmt.Fprintf(&b, "- Root components: **%d**\n", m.ComponentCount())
		for _, g := range m.Components {
			fmt.Fprintf(&b, "  - %s: %d\n", g.TypeName, len(g.Components))
		}
		b.WriteString("\n```mermaid\n" + m.Mermaid() + "```\n\n")
	}

	b.WriteString("## Key counts\n")
	fmt.Fprintf(&b, "- Canvas Apps (grouped): **%d**\n", counts.CanvasAppGroups)
	fmt.Fprintf(&b, "- Workflows: **%d**\n", counts.Workflows)
	fmt.Fprintf(&b, "- Environment variables: **%d**\n\n", counts.EnvVars)

	b.WriteString("## Canvas Apps (grouped)\n")
	if counts.CanvasAppGroups == 0 {
		b.WriteString("- None found (CanvasApps folder missing or empty)\n")
	}
	for _, g := range r.CanvasApps.Groups {
		fmt.Fprintf(&b, "- **%s**\n", g.Base)
		for _, m := range g.Members {
			fmt.Fprintf(&b, "  - %s\n", m)
		}
	}

	b.WriteString("\n## Workflows\n")
	if counts.Workflows == 0 {
		b.WriteString("- None found (Workflows folder missing or empty)\n")
	}
	for _, wf := range r.Workflows.Items {
		fmt.Fprintf(&b, "- %s (%d bytes)", wf.Name, wf.Bytes)
		if flow := r.Flows[wf.Name]; flow != nil {
			fmt.Fprintf(&b, ", %d action(s)", len(flow.Actions))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n## Environment Variable Definitions\n")
	if counts.EnvVars == 0 {
		b.WriteString("- None found (environmentvariabledefinitions missing or empty)\n")
	}
	for _, ev := range r.EnvVars.Items {
		fmt.Fprintf(&b, "- %s\n", ev.Name)
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
