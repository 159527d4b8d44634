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

package parallel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrPoolClosed is returned by tasks submitted to a Pool after Close.
var ErrPoolClosed = errors.New("worker pool closed")

// A Pool runs blocking tasks on goroutines, limiting how many of them may run
// at once. A Pool is created once by the program, shared by all queries, and
// closed at shutdown.
type Pool struct {
	sem    *semaphore.Weighted // nil if unbounded
	limit  int
	active int64 // atomic
	wg     sync.WaitGroup

	lock   sync.Mutex
	closed bool
}

// NewPool returns a Pool that runs at most 'limit' tasks concurrently. A limit
// of 0 or less means no limit.
func NewPool(limit int) *Pool {
	p := &Pool{limit: limit}
	if limit > 0 {
		p.sem = semaphore.NewWeighted(int64(limit))
	}
	return p
}

// Limit returns the maximum number of concurrent tasks, or 0 if unbounded.
func (p *Pool) Limit() int {
	if p.limit <= 0 {
		return 0
	}
	return p.limit
}

// Active returns the number of tasks currently holding a slot.
func (p *Pool) Active() int {
	return int(atomic.LoadInt64(&p.active))
}

// Go starts 'run' on a new goroutine once a slot is available. Waiting for a
// slot gives up when 'ctx' is done. The returned function blocks until the task
// has finished (or given up) and returns its error.
func (p *Pool) Go(ctx context.Context, run func(ctx context.Context) error) (wait func() error) {
	p.lock.Lock()
	if p.closed {
		p.lock.Unlock()
		return func() error { return ErrPoolClosed }
	}
	p.wg.Add(1)
	p.lock.Unlock()
	return GoCaptureError(func() error {
		defer p.wg.Done()
		if p.sem != nil {
			if err := p.sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer p.sem.Release(1)
		}
		atomic.AddInt64(&p.active, 1)
		defer atomic.AddInt64(&p.active, -1)
		return run(ctx)
	})
}

// Close prevents new tasks from starting and waits for the running ones to
// finish. It's safe to call Close more than once.
func (p *Pool) Close() {
	p.lock.Lock()
	p.closed = true
	p.lock.Unlock()
	p.wg.Wait()
}
