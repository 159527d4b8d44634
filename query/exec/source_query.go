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

package exec

import (
	"context"
	"sync"
	"time"

	"github.com/ebay/federation/query/planner/plandef"
	"github.com/ebay/federation/rdf"
	"github.com/ebay/federation/util/parallel"
	"github.com/ebay/federation/util/tracing"
	"github.com/gammazero/deque"
	"github.com/google/uuid"
	opentracing "github.com/opentracing/opentracing-go"
	log "github.com/sirupsen/logrus"
)

// sourceQueryOp sends its input expression, along with the binding context, to
// a source. The call to the source runs on a pool slot and writes its results
// to a resultBuffer, which execute drains as the consumer allows. The pool slot
// is released as soon as the source is done, even if the consumer is slow.
type sourceQueryOp struct {
	def      *plandef.SourceQuery
	executor QueryExecutor
	pool     *parallel.Pool
	timeout  time.Duration
}

func (op *sourceQueryOp) operator() plandef.Expr {
	return op.def
}

func (op *sourceQueryOp) execute(ctx context.Context, seeds []rdf.Binding, res results) error {
	reqID := uuid.New()
	site := op.def.Site
	logger := log.WithFields(log.Fields{
		"site":      site,
		"requestID": reqID,
		"contexts":  len(seeds),
	})
	span, ctx := opentracing.StartSpanFromContext(ctx, "source query")
	span.SetTag("site", string(site))
	span.SetTag("request_id", reqID.String())
	tracing.UpdateMetric(span, metrics.sourceQuerySeconds)
	defer span.Finish()

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	buf := newResultBuffer()
	wait := op.pool.Go(ctx, func(ctx context.Context) error {
		if op.timeout > 0 {
			var cancelTimeout context.CancelFunc
			ctx, cancelTimeout = context.WithTimeout(ctx, op.timeout)
			defer cancelTimeout()
		}
		start := time.Now()
		count := 0
		err := op.executor.Evaluate(ctx, site, op.def.Input, seeds, func(b rdf.Binding) error {
			if count == 0 {
				logger.WithField("elapsed", time.Since(start)).Debug("Found first result")
			}
			count++
			buf.push(b)
			return ctx.Err()
		})
		metrics.sourceResults.WithLabelValues(string(site)).Add(float64(count))
		metrics.sourceDurations.WithLabelValues(string(site)).Observe(time.Since(start).Seconds())
		logger.WithFields(log.Fields{
			"results": count,
			"elapsed": time.Since(start),
		}).Info("Source query finished")
		return err
	})
	// The task may never run, if the pool is closed or the context ends while
	// waiting for a slot, so the buffer is finished once the task is over.
	waitFinished := parallel.Go(func() {
		wait()
		buf.finish()
	})
	drainErr := op.drain(ctx, buf, res)
	// If draining stopped early, this stops the source query.
	cancel()
	waitFinished()
	if drainErr != nil {
		return drainErr
	}
	if err := wait(); err != nil {
		if parent.Err() != nil {
			return parent.Err()
		}
		metrics.sourceErrors.WithLabelValues(string(site)).Inc()
		logger.WithError(err).Warn("Source query failed")
		return &SourceEvaluationError{Site: site, RequestID: reqID, Err: err}
	}
	return nil
}

// drain passes results from 'buf' to 'res' until the source query finishes.
// It returns an error from 'res' or from the context, but not the source
// query's own error.
func (op *sourceQueryOp) drain(ctx context.Context, buf *resultBuffer, res results) error {
	for {
		b, ok, err := buf.next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := res.add(ctx, b); err != nil {
			return err
		}
	}
}

// resultBuffer is an unbounded queue of results between a source query and the
// rest of the operator tree. One goroutine pushes results and then calls
// finish; another takes them with next.
type resultBuffer struct {
	lock     sync.Mutex
	items    deque.Deque[rdf.Binding]
	finished bool
	// ready holds a token when the buffer has changed since next last looked.
	ready chan struct{}
}

func newResultBuffer() *resultBuffer {
	return &resultBuffer{ready: make(chan struct{}, 1)}
}

func (buf *resultBuffer) push(b rdf.Binding) {
	buf.lock.Lock()
	buf.items.PushBack(b)
	buf.lock.Unlock()
	buf.notify()
}

// finish marks the end of the results.
func (buf *resultBuffer) finish() {
	buf.lock.Lock()
	buf.finished = true
	buf.lock.Unlock()
	buf.notify()
}

func (buf *resultBuffer) notify() {
	select {
	case buf.ready <- struct{}{}:
	default:
	}
}

// next blocks until a result is available, and returns it. It returns false
// once the buffer is empty and finished, and an error if 'ctx' is done first.
func (buf *resultBuffer) next(ctx context.Context) (rdf.Binding, bool, error) {
	for {
		buf.lock.Lock()
		if buf.items.Len() > 0 {
			b := buf.items.PopFront()
			buf.lock.Unlock()
			return b, true, nil
		}
		finished := buf.finished
		buf.lock.Unlock()
		if finished {
			return rdf.Binding{}, false, nil
		}
		select {
		case <-buf.ready:
		case <-ctx.Done():
			return rdf.Binding{}, false, ctx.Err()
		}
	}
}
