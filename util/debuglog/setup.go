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

// Package debuglog configures Logrus to print file and line info and UTC
// timestamps with subsecond precision.
//
// Main packages should call Configure early on.
package debuglog

import (
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options control the debug logger's behavior. The zero value is the default.
type Options struct {
	// If true, some output is highlighted with ANSI colors. This may be
	// overridden by setting the environment variable "CLICOLOR_FORCE" to "1".
	ForceColors bool

	// Minimum level to log. Defaults to logrus.InfoLevel.
	Level logrus.Level

	// If not nil, this logger is set up instead of the standard Logrus logger.
	// Used in unit tests.
	Logger *logrus.Logger
}

// Configure sets up the debug logger. It's safe to call more than once, but
// not concurrently.
func Configure(opts Options) {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Level == 0 {
		opts.Level = logrus.InfoLevel
	}
	opts.Logger.SetLevel(opts.Level)
	opts.Logger.SetReportCaller(true)
	opts.Logger.ReplaceHooks(make(logrus.LevelHooks))
	opts.Logger.AddHook(utcHook{})
	opts.Logger.AddHook(newFilenameHook())
	opts.Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:             true,
		TimestampFormat:           "2006-01-02 15:04:05.000000 MST",
		ForceColors:               opts.ForceColors,
		EnvironmentOverrideColors: true,
	})
	opts.Logger.WithFields(logrus.Fields{
		"forceColors": opts.ForceColors,
		"level":       opts.Level,
	}).Debug("Initialized Logrus")
}

// utcHook converts entry timestamps to UTC.
type utcHook struct{}

func (utcHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (utcHook) Fire(entry *logrus.Entry) error {
	entry.Time = entry.Time.UTC()
	return nil
}

// filenameHook strips the path up to the root of this module from caller
// file names, which would otherwise be repeated in every log message.
type filenameHook struct {
	prefix string
}

func newFilenameHook() filenameHook {
	_, file, _, ok := runtime.Caller(0)
	const localPath = "util/debuglog/setup.go"
	if !ok || !strings.HasSuffix(file, localPath) {
		return filenameHook{}
	}
	return filenameHook{prefix: file[:len(file)-len(localPath)]}
}

func (hook filenameHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook filenameHook) Fire(entry *logrus.Entry) error {
	if entry.HasCaller() && hook.prefix != "" {
		entry.Caller.File = strings.TrimPrefix(entry.Caller.File, hook.prefix)
	}
	return nil
}
