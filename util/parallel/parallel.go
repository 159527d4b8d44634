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

// Package parallel is a utility package for running parallel/concurrent tasks.
package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Invoke runs the given callbacks concurrently in a child of 'ctx'. If any of
// them returns an error, Invoke cancels the child context, waits for the
// remaining callbacks to complete, and returns the first error. Otherwise it
// returns nil once all the callbacks have completed.
func Invoke(ctx context.Context, calls ...func(ctx context.Context) error) error {
	return InvokeN(ctx, len(calls),
		func(ctx context.Context, i int) error {
			return calls[i](ctx)
		})
}

// InvokeN runs the given callback 'n' times concurrently, with i=0, i=1, ...,
// i=n-1, with the same error and cancellation behavior as Invoke.
func InvokeN(ctx context.Context, n int, call func(ctx context.Context, i int) error) error {
	group, ctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		group.Go(func() error {
			return call(ctx, i)
		})
	}
	return group.Wait()
}

// Go is like the 'go' keyword but returns a function that blocks until the
// goroutine exits. It's safe to call the returned wait function multiple times.
func Go(run func()) (wait func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		run()
	}()
	return func() {
		<-done
	}
}

// GoCaptureError is like Go, but the returned wait function also reports the
// error returned by 'run'. Every call to wait reports the same result.
func GoCaptureError(run func() error) (wait func() error) {
	done := make(chan struct{})
	var err error
	go func() {
		defer close(done)
		err = run()
	}()
	return func() error {
		<-done
		return err
	}
}
