// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tracing

import (
	"fmt"
	"testing"
	"time"

	"github.com/ebay/federation/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

type recordingMetric struct {
	// Embedded only to satisfy the Metric interface.
	prometheus.Metric
	values []float64
}

func (metric *recordingMetric) Observe(value float64) {
	metric.values = append(metric.values, value)
}

func Test_UpdateMetric(t *testing.T) {
	assert := assert.New(t)
	cfg := jaegercfg.Configuration{ServiceName: t.Name()}
	tracer, closer, err := cfg.NewTracer(jaegercfg.ContribObserver(&contribObserver{}))
	assert.NoError(err)
	defer func() {
		assert.NoError(closer.Close())
	}()
	metric := new(recordingMetric)
	for i := 0; i < 3; i++ {
		span := tracer.StartSpan(t.Name())
		UpdateMetric(span, metric)
		time.Sleep(time.Millisecond)
		span.Finish()
	}
	unobserved := tracer.StartSpan("untagged")
	unobserved.Finish()
	assert.Len(metric.values, 3)
	for _, value := range metric.values {
		dur := time.Duration(value * 1e9)
		assert.True(dur >= time.Millisecond, "duration: %v", dur)
	}
}

func Test_stringableMetric(t *testing.T) {
	metric := prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: "federation",
		Subsystem: "exec",
		Name:      "source_query_seconds",
		Help:      "Source query latency.",
	})
	assert.Equal(t, "federation_exec_source_query_seconds", fmt.Sprint(stringableMetric{metric}))
}

func Test_New(t *testing.T) {
	tracer, err := New("test", nil)
	if assert.NoError(t, err) {
		tracer.Close()
		tracer.Close()
	}
	_, err = New("test", &config.Tracing{})
	assert.EqualError(t, err, "tracing configuration has no endpoint")
}
