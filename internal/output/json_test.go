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

package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONTo(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]any{"index_id": "vs_1", "chunks": 5}
	if err := JSONTo(&buf, data); err != nil {
		t.Fatalf("JSONTo() error = %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"chunks\": 5") {
		t.Errorf("JSONTo() not indented: %q", buf.String())
	}
	var back map[string]any
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Errorf("JSONTo() produced invalid JSON: %v", err)
	}
}

func TestJSONTo_Unencodable(t *testing.T) {
	var buf bytes.Buffer
	if err := JSONTo(&buf, make(chan int)); err == nil {
		t.Error("JSONTo(chan) should fail")
	}
}

func TestEmit(t *testing.T) {
	tests := []struct {
		name     string
		jsonMode bool
		paths    []string
		want     string
	}{
		{"paths", false, []string{"/out/Solution_Overview.docx", "", "/out/architecture.mmd"}, "/out/Solution_Overview.docx\n/out/architecture.mmd\n"},
		{"no paths", false, nil, ""},
		{"json", true, []string{"/ignored"}, "{\n  \"ok\": true\n}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Emit(&buf, tt.jsonMode, map[string]bool{"ok": true}, tt.paths); err != nil {
				t.Fatalf("Emit() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("Emit() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}
