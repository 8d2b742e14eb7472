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

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// NotSpecified fills any field no record for a variable populated.
const NotSpecified = "<not specified>"

// EnvVarRecord is one environment variable. Records are identified by Name.
type EnvVarRecord struct {
	Name            string `json:"Name"`
	Type            string `json:"Type"`
	Description     string `json:"Description"`
	DevValue        string `json:"DevValue"`
	TestValue       string `json:"TestValue"`
	ProductionValue string `json:"ProductionValue"`
}

// envVarFields is one element as returned by the model. Values may be
// null, strings or other JSON scalars.
type envVarFields struct {
	Name            json.RawMessage `json:"Name"`
	Type            json.RawMessage `json:"Type"`
	Description     json.RawMessage `json:"Description"`
	DevValue        json.RawMessage `json:"DevValue"`
	TestValue       json.RawMessage `json:"TestValue"`
	ProductionValue json.RawMessage `json:"ProductionValue"`
}

// partialRecord holds nil for every field the element did not populate.
type partialRecord struct {
	name string
	typ  *string
	desc *string
	dev  *string
	test *string
	prod *string
}

// EnvVarParse is the outcome of ParseEnvVars.
type EnvVarParse struct {
	Records []EnvVarRecord
	// Skipped counts elements that were not objects or had no name.
	Skipped int
}

// ParseEnvVars reads the model's JSON array of environment variables.
// Surrounding Markdown fences are tolerated. Malformed elements are logged
// and skipped. Records sharing a name are merged: the first populated value
// of each field wins and fields nobody populated become NotSpecified. The
// result keeps first-seen order. A response that is not a JSON array at all
// is an error.
func ParseEnvVars(text string, logger *slog.Logger) (*EnvVarParse, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(extractJSONArray(text)), &elems); err != nil {
		return nil, fmt.Errorf("environment variables response is not a JSON array: %w", err)
	}

	// Decode every element first, then merge into a fresh map.
	out := &EnvVarParse{}
	parsed := make([]partialRecord, 0, len(elems))
	for i, raw := range elems {
		rec, err := decodeEnvVar(raw)
		if err != nil {
			out.Skipped++
			logger.Warn("generate.envvar_skip", "index", i, "err", err, "element", truncate(string(raw), 200))
			continue
		}
		parsed = append(parsed, rec)
	}

	merged := make(map[string]*partialRecord, len(parsed))
	order := make([]string, 0, len(parsed))
	for _, rec := range parsed {
		cur, ok := merged[rec.name]
		if !ok {
			r := rec
			merged[rec.name] = &r
			order = append(order, rec.name)
			continue
		}
		fillMissing(&cur.typ, rec.typ)
		fillMissing(&cur.desc, rec.desc)
		fillMissing(&cur.dev, rec.dev)
		fillMissing(&cur.test, rec.test)
		fillMissing(&cur.prod, rec.prod)
	}

	out.Records = make([]EnvVarRecord, 0, len(order))
	for _, name := range order {
		r := merged[name]
		out.Records = append(out.Records, EnvVarRecord{
			Name:            name,
			Type:            orNotSpecified(r.typ),
			Description:     orNotSpecified(r.desc),
			DevValue:        orNotSpecified(r.dev),
			TestValue:       orNotSpecified(r.test),
			ProductionValue: orNotSpecified(r.prod),
		})
	}
	return out, nil
}

func decodeEnvVar(raw json.RawMessage) (partialRecord, error) {
	var f envVarFields
	if err := json.Unmarshal(raw, &f); err != nil {
		return partialRecord{}, err
	}
	name := scalarText(f.Name)
	if name == nil || strings.TrimSpace(*name) == "" {
		return partialRecord{}, fmt.Errorf("missing Name")
	}
	return partialRecord{
		name: strings.TrimSpace(*name),
		typ:  scalarText(f.Type),
		desc: scalarText(f.Description),
		dev:  scalarText(f.DevValue),
		test: scalarText(f.TestValue),
		prod: scalarText(f.ProductionValue),
	}, nil
}

// scalarText returns nil for absent, null or blank values, the string for
// JSON strings, and the literal text for other values.
func scalarText(raw json.RawMessage) *string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		str = strings.TrimSpace(str)
		if str == "" {
			return nil
		}
		return &str
	}
	return &s
}

func fillMissing(dst **string, src *string) {
	if *dst == nil && src != nil {
		*dst = src
	}
}

func orNotSpecified(s *string) string {
	if s == nil {
		return NotSpecified
	}
	return *s
}

// extractJSONArray drops Markdown fences and any prose around the outermost
// brackets.
func extractJSONArray(text string) string {
	s := StripFences(text)
	if strings.HasPrefix(s, "[") {
		return s
	}
	start, end := strings.Index(s, "["), strings.LastIndex(s, "]")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

// StripFences removes Markdown code fence lines (with or without a language
// tag) and trims the result.
func StripFences(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
