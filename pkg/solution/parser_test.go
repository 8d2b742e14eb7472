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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates files (with content) and directories (paths ending in "/") under root.
func writeTree(t *testing.T, root string, paths map[string]string) {
	t.Helper()
	for rel, content := range paths {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if rel[len(rel)-1] == '/' {
			require.NoError(t, os.MkdirAll(full, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func sampleSolution(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"solution.xml":                                 "<ImportExportXml/>",
		"customizations.xml":                           "<x/>",
		".DS_Store":                                    "junk",
		"Thumbs.db":                                    "junk",
		"canvasapps/app_BackgroundImageUri":            "png",
		"canvasapps/app_DocumentUri.msapp":             "msapp",
		"canvasapps/app_AdditionalUris0_identity.json": "{}",
		"canvasapps/Other.msapp":                       "msapp",
		"canvasapps/readme.txt":                        "hi",
		"Workflows/Notify-ABC.json":                    `{"a":1}`,
		"Workflows/approve-DEF.JSON":                   `{}`,
		"Workflows/notes.txt":                          "ignored",
		"Workflows/nested/inner.json":                  "{}",
		"environmentvariabledefinitions/wm_SiteUrl/":   "",
		"environmentvariabledefinitions/wm_ListId/":    "",
		"environmentvariabledefinitions/stray.json":    "{}",
	})
	return root
}

func TestGroupCanvasApps_SuffixGrouping(t *testing.T) {
	groups := GroupCanvasApps([]string{"B.msapp", "A_DocumentUri.msapp", "A_BackgroundImageUri"})

	require.Len(t, groups, 2)
	assert.Equal(t, "A", groups[0].Base)
	assert.Equal(t, []string{"A_BackgroundImageUri", "A_DocumentUri.msapp"}, groups[0].Members)
	assert.Equal(t, "B", groups[1].Base)
	assert.Equal(t, []string{"B.msapp"}, groups[1].Members)
}

func TestGroupCanvasApps_LongestSuffixWins(t *testing.T) {
	// "_DocumentUri.msapp" must be stripped whole, not just ".msapp".
	groups := GroupCanvasApps([]string{"X_DocumentUri.msapp"})
	require.Len(t, groups, 1)
	assert.Equal(t, "X", groups[0].Base)
}

func TestGroupCanvasApps_UnmatchedKeepsFullName(t *testing.T) {
	groups := GroupCanvasApps([]string{"readme.txt", "logo.png"})
	require.Len(t, groups, 2)
	assert.Equal(t, "logo.png", groups[0].Base)
	assert.Equal(t, "readme.txt", groups[1].Base)
}

func TestGroupCanvasApps_EveryNameInExactlyOneGroup(t *testing.T) {
	names := []string{
		"a_BackgroundImageUri", "A_DocumentUri.msapp", "a_AdditionalUris0_identity.json",
		"b.msapp", "b_BackgroundImageUri", "c", "C.msapp", "folder",
	}
	groups := GroupCanvasApps(names)

	seen := map[string]int{}
	for _, g := range groups {
		for _, m := range g.Members {
			seen[m]++
		}
	}
	assert.Len(t, seen, len(names))
	for _, n := range names {
		assert.Equal(t, 1, seen[n], "name %q should appear exactly once", n)
	}
}

func TestParse_Sections(t *testing.T) {
	root := sampleSolution(t)

	report, err := NewParser(nil).Parse(root)
	require.NoError(t, err)

	// Top level: hidden and thumbnail files are dropped, order is case-insensitive.
	var names []string
	for _, e := range report.TopLevel {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{
		"canvasapps/", "customizations.xml", "environmentvariabledefinitions/", "solution.xml", "Workflows/",
	}, names)
	assert.Equal(t, KindDir, report.TopLevel[0].Type)
	assert.Nil(t, report.TopLevel[0].Bytes)
	require.NotNil(t, report.TopLevel[1].Bytes)
	assert.Equal(t, int64(len("<x/>")), *report.TopLevel[1].Bytes)

	assert.True(t, report.CanvasApps.Exists)
	require.Len(t, report.CanvasApps.Groups, 3)
	assert.Equal(t, "app", report.CanvasApps.Groups[0].Base)
	assert.Len(t, report.CanvasApps.Groups[0].Members, 3)
	assert.Equal(t, "Other", report.CanvasApps.Groups[1].Base)
	assert.Equal(t, "readme.txt", report.CanvasApps.Groups[2].Base)

	assert.True(t, report.Workflows.Exists)
	assert.Equal(t, []WorkflowEntry{
		{Name: "approve-DEF.JSON", Bytes: 2},
		{Name: "Notify-ABC.json", Bytes: 7},
	}, report.Workflows.Items)

	assert.True(t, report.EnvVars.Exists)
	assert.Equal(t, []EnvironmentVariableDefinitionEntry{{Name: "wm_ListId"}, {Name: "wm_SiteUrl"}}, report.EnvVars.Items)
}

func TestParse_MissingSectionsAreNotErrors(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"solution.xml": "<x/>"})

	report, err := NewParser(nil).Parse(root)
	require.NoError(t, err)
	assert.False(t, report.CanvasApps.Exists)
	assert.False(t, report.Workflows.Exists)
	assert.False(t, report.EnvVars.Exists)
	assert.Empty(t, report.CanvasApps.Groups)
	assert.NotNil(t, report.Workflows.Items)
	assert.NotNil(t, report.EnvVars.Items)
}

func TestParse_RootNotFound(t *testing.T) {
	_, err := NewParser(nil).Parse(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRootNotFound)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = NewParser(nil).Parse(file)
	assert.ErrorIs(t, err, ErrRootNotFound)
}

func TestParse_UnreadableSubdirectoryIsSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root := sampleSolution(t)
	wf := filepath.Join(root, "Workflows")
	require.NoError(t, os.Chmod(wf, 0o000))
	t.Cleanup(func() { _ = os.Chmod(wf, 0o755) })

	report, err := NewParser(nil).Parse(root)
	require.NoError(t, err)
	assert.True(t, report.Workflows.Exists)
	assert.Empty(t, report.Workflows.Items)
}
