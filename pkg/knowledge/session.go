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

package knowledge

import "sort"

// Session is one run's view of an index: its id and the files attached to
// it. It is owned by a single run and is not safe for concurrent use.
type Session struct {
	IndexID string

	attached map[string]struct{}
	ready    bool
}

// NewSession starts a session for indexID with the given attached file ids.
// A session opened on an existing index may start with none; the poller then
// adopts whatever the index lists.
func NewSession(indexID string, fileIDs ...string) *Session {
	s := &Session{IndexID: indexID, attached: make(map[string]struct{}, len(fileIDs))}
	for _, id := range fileIDs {
		s.attach(id)
	}
	return s
}

func (s *Session) attach(fileID string) {
	if fileID == "" {
		return
	}
	s.attached[fileID] = struct{}{}
}

// Attached returns the attached file ids in sorted order.
func (s *Session) Attached() []string {
	ids := make([]string, 0, len(s.attached))
	for id := range s.attached {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Ready reports whether the poller has certified every attached file.
func (s *Session) Ready() bool { return s.ready }
