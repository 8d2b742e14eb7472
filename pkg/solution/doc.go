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

// Package solution parses an extracted platform solution into a typed
// inventory and exports it as self-contained JSON chunks for indexing.
//
// Three directories are recognized at the solution root, each optional and
// matched case-insensitively: CanvasApps, Workflows and
// environmentvariabledefinitions. Canvas app files are grouped into logical
// apps by stripping a fixed, ordered list of suffixes. When solution.xml
// carries a SolutionManifest its identity, publisher and root components
// are added to the report, and each readable workflow definition is reduced
// to an action graph rendered as a Mermaid flowchart in its chunk:
//
//	report, err := solution.NewParser(logger).Parse(extractedDir)
//	if err != nil {
//	    return err // errors.Is(err, solution.ErrRootNotFound)
//	}
//	out, err := solution.WriteOutputs(report, "parsed_output")
//	// out.ChunkDir now holds overview.json, canvasapps.json, workflows.json,
//	// envvars.json and workflows/<name>.json
//
// The chunk folder is recreated on every write. Workflow names that
// sanitize to the same file name get _2, _3 suffixes.
//
// Listings skip dotfiles and thumbnail caches and are sorted
// case-insensitively, so parsing an unchanged tree twice yields identical bytes.
package solution
