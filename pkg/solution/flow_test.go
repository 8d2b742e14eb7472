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

const sampleFlow = `{
  "properties": {
    "definition": {
      "triggers": {"When_an_item_is_created": {"type": "OpenApiConnection"}},
      "actions": {
        "Send_approval": {
          "type": "OpenApiConnectionWebhook",
          "runAfter": {"Get_item": ["Succeeded"]}
        },
        "Get_item": {"type": "OpenApiConnection", "runAfter": {}},
        "Check_outcome": {
          "type": "If",
          "runAfter": {"Send_approval": ["Succeeded"]},
          "actions": {"Notify_requester": {"type": "OpenApiConnection"}},
          "else": {"actions": {"Log \"rejection\"": {"type": "Compose"}}}
        }
      }
    }
  }
}`

func TestParseFlow(t *testing.T) {
	flow, err := ParseFlow([]byte(sampleFlow))
	require.NoError(t, err)

	assert.Equal(t, []string{"When_an_item_is_created"}, flow.Triggers)
	assert.Equal(t, []FlowAction{
		{Name: "Check_outcome", Type: "If", RunAfter: []string{"Send_approval"}},
		{Name: "Notify_requester", Type: "OpenApiConnection", Parent: "Check_outcome"},
		{Name: `Log "rejection"`, Type: "Compose", Parent: "Check_outcome"},
		{Name: "Get_item", Type: "OpenApiConnection"},
		{Name: "Send_approval", Type: "OpenApiConnectionWebhook", RunAfter: []string{"Get_item"}},
	}, flow.Actions)
}

func TestParseFlow_Shapes(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		wantActions int
		wantErr     bool
	}{
		{"bare definition", `{"definition":{"actions":{"A":{"type":"Compose"}}}}`, 1, false},
		{"no definition", `{"properties":{}}`, 0, false},
		{"switch cases and default", `{"definition":{"actions":{"S":{"type":"Switch","cases":{"c1":{"actions":{"X":{}}}},"default":{"actions":{"Y":{}}}}}}}`, 3, false},
		{"not json", `nope`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow, err := ParseFlow([]byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, flow.Actions, tt.wantActions)
		})
	}
}

func TestFlow_Mermaid(t *testing.T) {
	flow, err := ParseFlow([]byte(sampleFlow))
	require.NoError(t, err)

	want := `flowchart TD
    Start(("Trigger: When_an_item_is_created"))
    Check_outcome["Check_outcome (If)"]
    Notify_requester["Notify_requester (OpenApiConnection)"]
    Logrejection["Log #quot;rejection#quot; (Compose)"]
    Get_item["Get_item (OpenApiConnection)"]
    Send_approval["Send_approval (OpenApiConnectionWebhook)"]
    Send_approval --> Check_outcome
    Check_outcome --> Notify_requester
    Check_outcome --> Logrejection
    Start --> Get_item
    Get_item --> Send_approval
`
	assert.Equal(t, want, flow.Mermaid())
	assert.Equal(t, want, flow.Mermaid(), "rendering must be deterministic")
}

func TestSafeID(t *testing.T) {
	ids := newNodeIDs()
	ids.reserve("Start")
	assert.Equal(t, "Start_2", ids.get("Start"))
	assert.Equal(t, "Get_item", ids.get("Get_item"))
	assert.Equal(t, "Getitem", ids.get("Get item"))
	assert.Equal(t, "Getitem_2", ids.get("Get-item"))
	assert.Equal(t, "Getitem", ids.get("Get item"), "ids are stable per name")
	assert.Equal(t, "n_1st", safeID("1st"))
	assert.Regexp(t, `^node_[0-9a-f]{8}$`, safeID("???"))
}

func TestWriteOutputs_WorkflowChunkCarriesFlow(t *testing.T) {
	root := sampleSolution(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "Workflows", "Notify-ABC.json"), []byte(sampleFlow), 0o644))

	report, err := NewParser(nil).Parse(root)
	require.NoError(t, err)
	out, err := WriteOutputs(report, t.TempDir())
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(out.ChunkDir, PerWorkflowSubdir, "Notify-ABC.json.json"))
	require.NoError(t, err)
	var chunk WorkflowChunk
	require.NoError(t, json.Unmarshal(raw, &chunk))
	assert.Equal(t, "Notify-ABC.json", chunk.Name)
	require.NotNil(t, chunk.Flow)
	assert.Len(t, chunk.Flow.Actions, 5)
	assert.Contains(t, chunk.Mermaid, "Get_item --> Send_approval")

	summary, err := os.ReadFile(out.SummaryPath)
	require.NoError(t, err)
	assert.Contains(t, string(summary), "5 action(s)")
}
