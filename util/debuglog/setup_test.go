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

package debuglog

import (
	"bytes"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func Test_Configure(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	Configure(Options{Logger: logger, Level: logrus.DebugLevel})
	logger.WithField("site", "S1").Info("hello")
	out := buf.String()
	assert.Contains(t, out, "msg=hello")
	assert.Contains(t, out, "site=S1")
	assert.Contains(t, out, "UTC")
	assert.Contains(t, out, "util/debuglog/setup_test.go")
	assert.NotContains(t, out, "/util/debuglog/setup_test.go")

	// Configuring twice doesn't stack hooks.
	Configure(Options{Logger: logger})
	assert.Len(t, logger.Hooks[logrus.InfoLevel], 2)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func Test_utcHook(t *testing.T) {
	loc := time.FixedZone("somewhere", 3600)
	entry := &logrus.Entry{Time: time.Date(2019, 1, 2, 3, 4, 5, 0, loc)}
	assert.NoError(t, utcHook{}.Fire(entry))
	assert.Equal(t, time.UTC, entry.Time.Location())
	assert.Equal(t, 2, entry.Time.Hour())
}
