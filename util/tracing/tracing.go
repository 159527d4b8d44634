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

// Package tracing sets up OpenTracing with a Jaeger backend and couples span
// durations to Prometheus metrics.
package tracing

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ebay/federation/config"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	jaeger "github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"github.com/uber/jaeger-client-go/transport"
)

// A Tracer reports OpenTracing traces to a Jaeger collector.
type Tracer struct {
	// If not nil, called by Close.
	close func()
}

// New constructs a tracer and installs it as the global OpenTracing tracer.
// If cfg is nil, tracing stays disabled and the returned Tracer does nothing.
// The returned Tracer should be closed before the program exits to flush any
// buffered spans.
func New(serviceName string, cfg *config.Tracing) (*Tracer, error) {
	if cfg == nil {
		log.Debug("Skipping Jaeger setup: nil Tracing configuration")
		return &Tracer{}, nil
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("tracing configuration has no endpoint")
	}
	jcfg := jaegercfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		},
	}
	reporter := jaeger.NewRemoteReporter(transport.NewHTTPTransport(cfg.Endpoint))
	logger := (*logrusAdapter)(log.WithFields(log.Fields{"component": "jaeger"}))
	tracer, closer, err := jcfg.NewTracer(
		jaegercfg.Logger(logger),
		jaegercfg.Reporter(reporter),
		jaegercfg.ContribObserver(&contribObserver{}),
	)
	if err != nil {
		return nil, fmt.Errorf("could not initialize Jaeger tracer: %v", err)
	}
	opentracing.SetGlobalTracer(tracer)
	return &Tracer{
		close: func() {
			if err := closer.Close(); err != nil {
				log.WithError(err).Warn("Error shutting down Jaeger tracer")
			}
		},
	}, nil
}

// Close flushes and stops the Tracer. It is not thread-safe.
func (t *Tracer) Close() {
	if t.close != nil {
		t.close()
	}
	t.close = nil
}

type logrusAdapter log.Entry

func (l *logrusAdapter) Error(msg string) {
	(*log.Entry)(l).Error(strings.TrimSpace(msg))
}

func (l *logrusAdapter) Infof(msg string, args ...interface{}) {
	(*log.Entry)(l).Infof(strings.TrimSpace(msg), args...)
}

// contribObserver implements jaeger.ContribObserver.
type contribObserver struct{}

func (*contribObserver) OnStartSpan(
	span opentracing.Span,
	operationName string,
	options opentracing.StartSpanOptions,
) (jaeger.ContribSpanObserver, bool) {
	start := options.StartTime
	if start.IsZero() {
		start = time.Now()
	}
	return &spanObserver{start: start}, true
}

// spanObserver implements jaeger.ContribSpanObserver.
type spanObserver struct {
	start time.Time
	// lock protects metric. Spans are rarely tagged and finished concurrently.
	lock   sync.Mutex
	metric Metric
}

func (o *spanObserver) OnSetOperationName(name string) {}

func (o *spanObserver) OnSetTag(key string, value interface{}) {
	if key != metricTag {
		return
	}
	if metric, ok := value.(Metric); ok {
		o.lock.Lock()
		o.metric = metric
		o.lock.Unlock()
	}
}

func (o *spanObserver) OnFinish(options opentracing.FinishOptions) {
	finish := options.FinishTime
	if finish.IsZero() {
		finish = time.Now()
	}
	o.lock.Lock()
	defer o.lock.Unlock()
	if o.metric != nil {
		o.metric.Observe(finish.Sub(o.start).Seconds())
	}
}

const metricTag = "metric"

// UpdateMetric arranges for the given metric to be updated with the duration
// of the span (in seconds) when the span finishes. This only has an effect
// with a tracer created by New.
func UpdateMetric(span opentracing.Span, metric Metric) {
	span.SetTag(metricTag, stringableMetric{metric})
}

// Metric is satisfied by prometheus.Summary and prometheus.Histogram.
type Metric interface {
	prometheus.Metric
	Observe(float64)
}

// stringableMetric reports the fully-qualified metric name as its String,
// which ends up as the value of the span's "metric" tag.
type stringableMetric struct {
	Metric
}

func (metric stringableMetric) String() string {
	// Desc has no accessor for the name; its String looks like:
	//   Desc{fqName: %q, help: %q, constLabels: {%s}, variableLabels: %v}
	s := strings.TrimPrefix(metric.Desc().String(), `Desc{fqName: "`)
	i := strings.IndexByte(s, '"')
	if i < 0 {
		return ""
	}
	return s[:i]
}
