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

// Package knowledge drives a remote semantic index: it creates the index,
// uploads and attaches chunk files, and waits for the service to finish
// indexing them.
//
// The remote side is abstracted by Service; OpenAIService implements it on
// OpenAI vector stores. A typical run:
//
//	svc, _ := knowledge.NewOpenAIService(knowledge.OpenAIConfig{APIKey: key})
//	session, err := knowledge.NewIndexer(svc, logger).Build(ctx, "solution_chunks", chunkDir)
//	if err != nil {
//	    return err
//	}
//	poller := knowledge.NewPoller(svc, knowledge.PollerConfig{})
//	if err := poller.WaitReady(ctx, session); err != nil {
//	    return err // ErrIndexingFailed or ErrIndexingTimeout
//	}
//
// # Readiness
//
// Each attached file moves from pending through processing to completed or
// failed. The poller lists statuses once per interval. It stops with success
// when every attached file is completed, and with a FailedError the first
// time any attached file is failed. Otherwise it gives up with
// ErrIndexingTimeout after MaxAttempts listings. Waits go through Clock and
// honor context cancellation. Nothing is retried: a listing error ends the
// wait.
package knowledge
