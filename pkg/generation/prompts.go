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

package generation

import "fmt"

// NotFoundPhrase is what the model is told to say instead of guessing.
const NotFoundPhrase = "Not found in uploaded files."

const overviewPrompt = `Generate a clean Markdown solution overview based ONLY on the uploaded chunks.
Include:
- Key counts (workflows, env vars, canvas app groups)
- List workflows
- List environment variables (names)
- Keep it concise, headings + bullet points.
If information is missing, say '` + NotFoundPhrase + `' Do not invent details.`

const workflowsPrompt = `Summarise each workflow in Markdown using ONLY the uploaded chunks.
For each workflow include:
- Workflow name
- What it does (1-3 lines)
- Any obvious trigger/purpose if available
If missing details, say '` + NotFoundPhrase + `'`

const faqPrompt = `Create a Markdown FAQ for the solution using ONLY the uploaded chunks.
Include ~10 Q&As (workflows, env vars, canvas apps, what the solution contains).
If info is missing, say '` + NotFoundPhrase + `' Keep it concise.`

const diagramsPrompt = `Output ONLY ONE Mermaid diagram (no explanation), using flowchart LR.

It MUST include all three groups as explicit nodes:
1) Canvas Apps (each canvas app group as its own node)
2) Workflows (each workflow as its own node; do NOT use a single 'Workflows' hub node)
3) Environment Variables (each env var as its own node)

Connection rules:
- Connect each Canvas App node to each Workflow node (high-level relationship).
- Connect each Workflow node to a hub node named: Environment Variables (shared)
- Connect that hub node to EVERY environment variable node.
- Do NOT invent per-workflow env var mappings unless explicitly stated in uploaded chunks.

Formatting rules:
- Use subgraphs named exactly: CanvasApps, Workflows, EnvironmentVariables
- Use safe IDs: CA1, CA2, ... for canvas apps; W1, W2, ... for workflows; EVH for the env var hub; E1, E2, ... for env vars
- Labels must use the real names from the uploaded chunks.
- Output ONLY valid Mermaid code. No second diagram. No markdown fences.`

const envVarsPrompt = `Create a JSON response for the solution using ONLY the structure below to capture
environment variables and their details: type, description, and the value used in the Dev, UAT and
Production environments.
For description fields, use brief text (1-2 sentences) taken from the uploaded chunks.
If any information is missing (name, type, description, dev value, test value or production value),
do not assume anything; use null for that field.
Output ONLY the JSON array.
Structure:
[
  {
    "Name": "<Environment Variable Name>",
    "Type": "<Type>",
    "Description": "<Description>",
    "DevValue": "<Dev Value - Name of Dev Environment - DEV>",
    "TestValue": "<Test Value - Name of UAT Environment - UAT>",
    "ProductionValue": "<Production Value - Name of Production Environment>"
  }
]`

const askPromptFormat = `Answer using ONLY the uploaded solution chunks.
If the information is not present, say '` + NotFoundPhrase + `'

Question:
%s`

// Prompt returns the closed-book instruction for an output.
func Prompt(out Output) string {
	switch out.Kind {
	case KindOverview:
		return overviewPrompt
	case KindWorkflows:
		return workflowsPrompt
	case KindFAQ:
		return faqPrompt
	case KindDiagrams:
		return diagramsPrompt
	case KindEnvironmentVariables:
		return envVarsPrompt
	case KindAsk:
		return fmt.Sprintf(askPromptFormat, out.Question)
	}
	panic(fmt.Sprintf("generation: no prompt for %v", out.Kind))
}
