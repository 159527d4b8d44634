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

// Package cmp holds small helpers for identity keys and ordering.
package cmp

import "strings"

// The Key interface is satisfied by any object whose identity can be serialized
// into a string. Two objects with equal keys are interchangeable for the
// purposes of planning and execution.
type Key interface {
	// Key writes a serialization of the object's identity to the given
	// strings.Builder. It should stay human-readable to make debugging and
	// unit testing easier.
	Key(*strings.Builder)
}

// GetKey returns the identity/comparison key of the object.
func GetKey(object Key) string {
	var b strings.Builder
	object.Key(&b)
	return b.String()
}

// MaxInt returns the larger of a and b.
func MaxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// MinUint64 returns the smaller of a and b.
func MinUint64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// Int returns -1, 0, or 1 as a is less than, equal to, or greater than b.
func Int(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// String returns -1, 0, or 1 as a is less than, equal to, or greater than b.
func String(a, b string) int {
	return strings.Compare(a, b)
}
