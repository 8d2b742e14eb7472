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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `<?xml version="1.0" encoding="utf-8"?>
<ImportExportXml version="9.2" SolutionPackageVersion="9.2">
  <SolutionManifest>
    <UniqueName>ContosoRequests</UniqueName>
    <LocalizedNames>
      <LocalizedName description="Contoso Requests" languagecode="1033" />
    </LocalizedNames>
    <Version> 1.0.0.3 </Version>
    <Managed>0</Managed>
    <Publisher>
      <UniqueName>contoso</UniqueName>
      <EMailAddress>it@contoso.com</EMailAddress>
      <SupportingWebsiteUrl>https://contoso.com</SupportingWebsiteUrl>
      <CustomizationPrefix>wm</CustomizationPrefix>
      <CustomizationOptionValuePrefix>10000</CustomizationOptionValuePrefix>
    </Publisher>
    <RootComponents>
      <RootComponent type="380" schemaName="wm_SiteUrl" behavior="0" />
      <RootComponent type="29" id="{1234}" behavior="0" />
      <RootComponent type="300" schemaName="wm_requestapp_1a2b3" behavior="0" />
      <RootComponent type="380" schemaName="wm_ListId" behavior="0" />
      <RootComponent type="10112" schemaName="wm_sharedsharepoint" behavior="0" />
    </RootComponents>
  </SolutionManifest>
</ImportExportXml>`

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(sampleManifest))
	require.NoError(t, err)

	assert.Equal(t, "ContosoRequests", m.UniqueName)
	assert.Equal(t, "1.0.0.3", m.Version)
	assert.False(t, m.Managed)
	assert.Equal(t, []LocalizedName{{LanguageCode: "1033", Description: "Contoso Requests"}}, m.LocalizedNames)
	assert.Equal(t, "contoso", m.Publisher.UniqueName)
	assert.Equal(t, "it@contoso.com", m.Publisher.Email)
	assert.Equal(t, "wm", m.Publisher.CustomizationPrefix)
	assert.Equal(t, "10000", m.Publisher.OptionValuePrefix)
	assert.Equal(t, 5, m.ComponentCount())

	var types []string
	for _, g := range m.Components {
		types = append(types, g.Type)
	}
	assert.Equal(t, []string{"29", "300", "380", "10112"}, types)
	assert.Equal(t, "Environment Variable Definition", m.Components[2].TypeName)
	assert.Equal(t, []string{"wm_SiteUrl", "wm_ListId"}, []string{m.Components[2].Components[0].Label(), m.Components[2].Components[1].Label()})
	assert.Equal(t, "{1234}", m.Components[0].Components[0].Label())
	assert.Equal(t, "Type 10112", m.Components[3].TypeName)
}

func TestParseManifest_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no manifest element", "<ImportExportXml/>"},
		{"not xml", "{}"},
		{"truncated", "<ImportExportXml><SolutionManifest>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.data))
			assert.Error(t, err)
		})
	}
	_, err := ParseManifest([]byte("<ImportExportXml/>"))
	assert.ErrorIs(t, err, ErrNoManifest)
}

func TestManifest_Mermaid(t *testing.T) {
	m, err := ParseManifest([]byte(sampleManifest))
	require.NoError(t, err)

	want := `flowchart LR
    Solution(["Solution: ContosoRequests"])
    Publisher(["Publisher: contoso"])
    Solution --> Publisher
    subgraph grp_ProcessWorkflow["Process (Workflow)"]
        c_29_1["{1234}"]
    end
    subgraph grp_CanvasApp["Canvas App"]
        c_300_1["wm_requestapp_1a2b3"]
    end
    subgraph grp_EnvironmentVariableDefinition["Environment Variable Definition"]
        c_380_1["wm_SiteUrl"]
        c_380_2["wm_ListId"]
    end
    subgraph grp_Type10112["Type 10112"]
        c_10112_1["wm_sharedsharepoint"]
    end
    Solution --> c_29_1
    Solution --> c_300_1
    Solution --> c_380_1
    Solution --> c_380_2
    Solution --> c_10112_1
`
	assert.Equal(t, want, m.Mermaid())
	assert.Equal(t, want, m.Mermaid(), "node ids must not vary between renders")
}

func TestRootComponent_Label(t *testing.T) {
	assert.Equal(t, "(no id)", RootComponent{Type: "1"}.Label())
}

func TestParse_ManifestInReportAndOverview(t *testing.T) {
	root := sampleSolution(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "solution.xml"), []byte(sampleManifest), 0o644))

	report, err := NewParser(nil).Parse(root)
	require.NoError(t, err)
	require.NotNil(t, report.Manifest)
	assert.Equal(t, "ContosoRequests", report.Manifest.UniqueName)

	out, err := WriteOutputs(report, t.TempDir())
	require.NoError(t, err)
	raw, err := os.ReadFile(filepath.Join(out.ChunkDir, OverviewChunk))
	require.NoError(t, err)
	var overview Overview
	require.NoError(t, json.Unmarshal(raw, &overview))
	require.NotNil(t, overview.Manifest)
	assert.Equal(t, "contoso", overview.Manifest.Publisher.UniqueName)
	assert.Contains(t, overview.Mermaid, "Solution --> Publisher")

	summary, err := os.ReadFile(out.SummaryPath)
	require.NoError(t, err)
	assert.Contains(t, string(summary), "## Manifest")
	assert.Contains(t, string(summary), "- Unique name: **ContosoRequests**")
	assert.Contains(t, string(summary), "  - Environment Variable Definition: 2")
	assert.Contains(t, string(summary), "```mermaid\nflowchart LR\n")
}

func TestParse_InvalidManifestIsSkipped(t *testing.T) {
	// sampleSolution's solution.xml has no SolutionManifest element.
	report, err := NewParser(nil).Parse(sampleSolution(t))
	require.NoError(t, err)
	assert.Nil(t, report.Manifest)

	raw, err := json.Marshal(report)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"manifest"`)
}
