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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// A concurrent map operation is easy to write with InvokeN.
func ExampleInvokeN() {
	in := []int{5, 6, 7}
	res := make([]bool, len(in))
	_ = InvokeN(context.Background(), len(in), func(ctx context.Context, i int) error {
		res[i] = in[i]%2 == 0
		return nil
	})
	fmt.Printf("result: %v\n", res)
	// Output:
	// result: [false true false]
}

func Test_Invoke(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	assert.NoError(Invoke(ctx))

	res := make([]int, 3)
	err := Invoke(ctx,
		func(ctx context.Context) error { res[0] = 5; return nil },
		func(ctx context.Context) error { res[1] = 6; return errors.New("roar") },
		func(ctx context.Context) error { res[2] = 7; return nil },
	)
	assert.EqualError(err, "roar")
	assert.Equal([]int{5, 6, 7}, res)

	res = make([]int, 3)
	err = InvokeN(ctx, 3, func(ctx context.Context, i int) error {
		res[i] = i + 3
		return ctx.Err()
	})
	assert.NoError(err)
	assert.Equal([]int{3, 4, 5}, res)
}

func Test_InvokeN_earlyExit(t *testing.T) {
	assert := assert.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err := InvokeN(ctx, 10, func(ctx context.Context, i int) error {
		if i == 0 {
			return errors.New("failure")
		}
		<-ctx.Done()
		return ctx.Err()
	})
	assert.EqualError(err, "failure")
	assert.NoError(ctx.Err())
}

func Test_Go(t *testing.T) {
	x := 3
	wait := Go(func() { x++ })
	wait()
	assert.Equal(t, 4, x)
	wait()
	assert.Equal(t, 4, x)
}

func Test_GoCaptureError(t *testing.T) {
	wait := GoCaptureError(func() error { return nil })
	assert.NoError(t, wait())
	boom := errors.New("boom")
	wait = GoCaptureError(func() error { return boom })
	assert.Equal(t, boom, wait())
	assert.Equal(t, boom, wait())
}

func Test_Pool_limit(t *testing.T) {
	assert := assert.New(t)
	pool := NewPool(2)
	defer pool.Close()
	assert.Equal(2, pool.Limit())
	ctx := context.Background()
	release := make(chan struct{})
	started := make(chan struct{}, 3)
	task := func(ctx context.Context) error {
		started <- struct{}{}
		<-release
		return nil
	}
	w1 := pool.Go(ctx, task)
	w2 := pool.Go(ctx, task)
	<-started
	<-started
	w3 := pool.Go(ctx, task)
	select {
	case <-started:
		assert.Fail("third task should wait for a slot")
	default:
	}
	assert.Equal(2, pool.Active())
	close(release)
	assert.NoError(w1())
	assert.NoError(w2())
	assert.NoError(w3())
	assert.Equal(0, pool.Active())
}

func Test_Pool_cancelWhileWaiting(t *testing.T) {
	pool := NewPool(1)
	defer pool.Close()
	release := make(chan struct{})
	first := pool.Go(context.Background(), func(ctx context.Context) error {
		<-release
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	ran := false
	second := pool.Go(ctx, func(ctx context.Context) error {
		ran = true
		return nil
	})
	cancel()
	assert.Equal(t, context.Canceled, second())
	close(release)
	assert.NoError(t, first())
	assert.False(t, ran)
}

func Test_Pool_closed(t *testing.T) {
	pool := NewPool(0)
	assert.Equal(t, 0, pool.Limit())
	wait := pool.Go(context.Background(), func(ctx context.Context) error {
		return errors.New("ran")
	})
	assert.EqualError(t, wait(), "ran")
	pool.Close()
	pool.Close()
	wait = pool.Go(context.Background(), func(ctx context.Context) error {
		return nil
	})
	assert.Equal(t, ErrPoolClosed, wait())
}
