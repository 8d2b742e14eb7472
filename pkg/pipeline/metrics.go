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

package pipeline

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsPipeline holds Prometheus metrics for pipeline runs.
type metricsPipeline struct {
	once sync.Once

	// Runs
	runsStarted   prometheus.Counter
	runsSucceeded prometheus.Counter
	runsFailed    *prometheus.CounterVec

	// Index
	chunksUploaded prometheus.Counter
	chunkFailures  prometheus.Counter
	pollAttempts   prometheus.Counter

	// Generation
	artifacts      *prometheus.CounterVec
	artifactErrors *prometheus.CounterVec
	envVarsSkipped prometheus.Counter

	// Durations
	stageDuration *prometheus.HistogramVec
}

var pipeMetrics metricsPipeline

func (m *metricsPipeline) init() {
	m.once.Do(func() {
		m.runsStarted = prometheus.NewCounter(prometheus.CounterOpts{Name: "soldoc_runs_started_total", Help: "Pipeline runs started"})
		m.runsSucceeded = prometheus.NewCounter(prometheus.CounterOpts{Name: "soldoc_runs_succeeded_total", Help: "Pipeline runs that completed"})
		m.runsFailed = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "soldoc_runs_failed_total", Help: "Pipeline runs that failed, by stage"}, []string{"stage"})

		m.chunksUploaded = prometheus.NewCounter(prometheus.CounterOpts{Name: "soldoc_chunks_uploaded_total", Help: "Chunk files uploaded and attached"})
		m.chunkFailures = prometheus.NewCounter(prometheus.CounterOpts{Name: "soldoc_chunk_failures_total", Help: "Chunk uploads or attachments that failed"})
		m.pollAttempts = prometheus.NewCounter(prometheus.CounterOpts{Name: "soldoc_poll_attempts_total", Help: "Index status listings"})

		m.artifacts = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "soldoc_artifacts_total", Help: "Outputs produced, by kind"}, []string{"kind"})
		m.artifactErrors = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "soldoc_artifact_errors_total", Help: "Outputs that failed, by kind"}, []string{"kind"})
		m.envVarsSkipped = prometheus.NewCounter(prometheus.CounterOpts{Name: "soldoc_envvar_records_skipped_total", Help: "Malformed environment variable elements skipped"})

		buckets := []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}
		m.stageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "soldoc_stage_seconds", Help: "Duration of pipeline stages", Buckets: buckets}, []string{"stage"})

		prometheus.MustRegister(
			m.runsStarted, m.runsSucceeded, m.runsFailed,
			m.chunksUploaded, m.chunkFailures, m.pollAttempts,
			m.artifacts, m.artifactErrors, m.envVarsSkipped,
			m.stageDuration,
		)
	})
}

func recordRunStarted() { pipeMetrics.init(); pipeMetrics.runsStarted.Inc() }
func recordRunSucceeded() { pipeMetrics.init(); pipeMetrics.runsSucceeded.Inc() }
func recordRunFailed(stage string) { pipeMetrics.init(); pipeMetrics.runsFailed.WithLabelValues(stage).Inc() }
func recordEnvVarsSkipped(n int) { pipeMetrics.init(); pipeMetrics.envVarsSkipped.Add(float64(n)) }

// RecordChunk counts one chunk upload. Standalone commands share these
// counters with full runs.
func RecordChunk(err error) {
	pipeMetrics.init()
	if err != nil {
		pipeMetrics.chunkFailures.Inc()
		return
	}
	pipeMetrics.chunksUploaded.Inc()
}

// RecordOutput counts one generated output by kind.
func RecordOutput(kind string, err error) {
	pipeMetrics.init()
	if err != nil {
		pipeMetrics.artifactErrors.WithLabelValues(kind).Inc()
		return
	}
	pipeMetrics.artifacts.WithLabelValues(kind).Inc()
}

func observeStage(stage string, start time.Time) {
	pipeMetrics.init()
	pipeMetrics.stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// RecordPollAttempt counts one index status listing.
func RecordPollAttempt() { pipeMetrics.init(); pipeMetrics.pollAttempts.Inc() }
