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

package cmp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type keyed string

func (k keyed) Key(b *strings.Builder) {
	b.WriteString("keyed:")
	b.WriteString(string(k))
}

func Test_GetKey(t *testing.T) {
	assert.Equal(t, "keyed:bob", GetKey(keyed("bob")))
	assert.Equal(t, "keyed:", GetKey(keyed("")))
}

func Test_MaxMin(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(3, MaxInt(3, -1))
	assert.Equal(3, MaxInt(-1, 3))
	assert.Equal(uint64(2), MinUint64(2, 10))
	assert.Equal(uint64(2), MinUint64(10, 2))
}

func Test_Compare(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(-1, Int(1, 2))
	assert.Equal(0, Int(2, 2))
	assert.Equal(1, Int(3, 2))
	assert.Equal(-1, String("alice", "bob"))
	assert.Equal(0, String("eve", "eve"))
	assert.Equal(1, String("zebra", "abba"))
}
