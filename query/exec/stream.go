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

	"github.com/ebay/federation/rdf"
)

// A Stream delivers the results of one evaluation to a single consumer.
// Evaluation starts on the first call to Next. Results are buffered up to a
// fixed limit ahead of the consumer; when the buffer is full, evaluation
// waits for the consumer. A Stream ends exactly once, either completing or
// failing with an error.
//
// The consumer must either read the stream until Next returns false, or call
// Close, to release the resources held by the evaluation.
type Stream struct {
	ctx    context.Context
	cancel context.CancelFunc
	run    func(ctx context.Context, res results) error
	ch     chan rdf.Binding
	done   chan struct{}

	lock      sync.Mutex
	started   bool
	cancelled bool
	// err is written before 'done' is closed.
	err error
}

func newStream(ctx context.Context, buffer int, run func(ctx context.Context, res results) error) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	return &Stream{
		ctx:    ctx,
		cancel: cancel,
		run:    run,
		ch:     make(chan rdf.Binding, buffer),
		done:   make(chan struct{}),
	}
}

// start begins evaluation unless it's already started or the stream has been
// cancelled.
func (s *Stream) start() {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.started {
		return
	}
	s.started = true
	if s.cancelled {
		s.finish(nil)
		return
	}
	go func() {
		err := s.run(s.ctx, resultsFunc(func(ctx context.Context, b rdf.Binding) error {
			select {
			case s.ch <- b:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}))
		s.finish(err)
	}()
}

func (s *Stream) finish(err error) {
	s.err = err
	s.cancel()
	close(s.done)
	close(s.ch)
}

// Next blocks until the next result is available and returns it. It returns
// false once the stream has ended or been cancelled; Err then reports whether
// it failed. After a cancellation, Next waits for the evaluation to stop.
func (s *Stream) Next() (rdf.Binding, bool) {
	s.start()
	s.lock.Lock()
	cancelled := s.cancelled
	s.lock.Unlock()
	if cancelled {
		<-s.done
		return rdf.Binding{}, false
	}
	b, ok := <-s.ch
	return b, ok
}

// Err returns the error that ended the stream, or nil if the stream completed
// successfully or hasn't ended yet. A stream cancelled after evaluation
// started ends with the context's error; one cancelled before that ends
// without error.
func (s *Stream) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Cancel stops the evaluation. It doesn't wait for the evaluation to wind
// down; see Close. Source queries already sent may still run to completion,
// but their results are discarded.
func (s *Stream) Cancel() {
	s.lock.Lock()
	s.cancelled = true
	s.lock.Unlock()
	s.cancel()
}

// Close cancels the stream, if it hasn't ended, and waits for the evaluation
// to stop.
func (s *Stream) Close() {
	s.Cancel()
	s.start()
	<-s.done
}

// Collect reads all the remaining results of the stream. It returns the
// results received and the error that ended the stream, if any.
func (s *Stream) Collect() ([]rdf.Binding, error) {
	var res []rdf.Binding
	for {
		b, ok := s.Next()
		if !ok {
			return res, s.Err()
		}
		res = append(res, b)
	}
}
