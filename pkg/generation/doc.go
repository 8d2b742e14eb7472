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

// Package generation turns output tokens into closed-book queries against a
// ready index and writes the answers as artifacts.
//
// Tokens are routed case-insensitively to a closed set of kinds: overview,
// workflows, faq, diagrams, environment-variables and ask. An ask token
// carries its question inline ("ask: What is X?") or takes the next token.
// When present, ask replaces the batch and only its answer is returned.
//
// Artifacts per kind:
//
//	overview, workflows, faq   <kind>.md converted to Solution_<Kind>.docx
//	diagrams                   architecture.mmd (fences stripped)
//	environment-variables      environment-variables.xlsx
package generation
