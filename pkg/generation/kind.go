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
	"errors"
	"fmt"
	"strings"
)

// Kind is one of the output types the dispatcher can produce.
type Kind int

const (
	KindOverview Kind = iota + 1
	KindWorkflows
	KindFAQ
	KindDiagrams
	KindEnvironmentVariables
	KindAsk
)

// askPrefix routes free-text query tokens.
const askPrefix = "ask"

// questionSeparators split an inline question from the ask prefix.
const questionSeparators = ":=|?"

var kindTokens = map[Kind]string{
	KindOverview:             "overview",
	KindWorkflows:            "workflows",
	KindFAQ:                  "faq",
	KindDiagrams:             "diagrams",
	KindEnvironmentVariables: "environment-variables",
	KindAsk:                  askPrefix,
}

// Kinds lists the batch output types in their canonical order (ask excluded).
var Kinds = []Kind{KindOverview, KindWorkflows, KindFAQ, KindDiagrams, KindEnvironmentVariables}

// String returns the token that selects k.
func (k Kind) String() string {
	if s, ok := kindTokens[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsDocument reports whether k is rendered as Markdown and converted.
func (k Kind) IsDocument() bool {
	return k == KindOverview || k == KindWorkflows || k == KindFAQ
}

// ParseKind maps a batch token (case-insensitive) to its Kind.
func ParseKind(token string) (Kind, error) {
	norm := strings.ToLower(strings.TrimSpace(token))
	for _, k := range Kinds {
		if kindTokens[k] == norm {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOutputType, strings.TrimSpace(token))
}

var (
	// ErrDispatch is the parent of every token-level failure.
	ErrDispatch = errors.New("dispatch error")
	// ErrUnknownOutputType is returned for a token that names no output type.
	ErrUnknownOutputType = fmt.Errorf("%w: unknown output type", ErrDispatch)
	// ErrMissingQuestion is returned for an ask token without a question.
	ErrMissingQuestion = fmt.Errorf("%w: ask requires a question", ErrDispatch)
)

// Output is one routed token. Question is set only for KindAsk.
type Output struct {
	Kind     Kind
	Question string
}

// ParseTokens normalizes and routes every token before any work is done.
// Tokens are trimmed and lower-cased for routing; an ask question keeps its
// original case. An ask token with no inline question consumes the next
// token as its question.
func ParseTokens(tokens []string) ([]Output, error) {
	outputs := make([]Output, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		raw := strings.TrimSpace(tokens[i])
		norm := strings.ToLower(raw)

		if strings.HasPrefix(norm, askPrefix) {
			question := inlineQuestion(raw)
			if question == "" && i+1 < len(tokens) {
				i++
				question = strings.TrimSpace(tokens[i])
			}
			if question == "" {
				return nil, fmt.Errorf("%w (e.g. \"ask: What is the purpose of this solution?\")", ErrMissingQuestion)
			}
			outputs = append(outputs, Output{Kind: KindAsk, Question: question})
			continue
		}

		kind, err := ParseKind(raw)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, Output{Kind: kind})
	}
	return outputs, nil
}

// inlineQuestion returns the text after the first separator, or the whole
// text after the prefix when the separator is last ("ask What is X?").
// Separators alone do not make a question.
func inlineQuestion(raw string) string {
	rest := raw[len(askPrefix):]
	if i := strings.IndexAny(rest, questionSeparators); i >= 0 {
		if q := strings.TrimSpace(rest[i+1:]); q != "" {
			return q
		}
	}
	q := strings.TrimSpace(rest)
	if strings.Trim(q, questionSeparators+" \t") == "" {
		return ""
	}
	return q
}
