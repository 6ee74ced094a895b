// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"io"
	"log"
	"os"
)

type LogLevel int

const (
	// ErrLevel=1 - the minimum level of logging.
	ErrLevel LogLevel = iota + 1

	// WarnLevel=2 - the level for logging warnings, and errors
	WarnLevel

	// InfoLevel=3 - the level for logging high-level information, results
	InfoLevel

	// DebugLevel=4 - the level for debugging information: one line per query, cache hits, matched load/store pairs.
	DebugLevel

	// TraceLevel=5 - the level for tracing every state transition of the search. Only usable on small graphs.
	TraceLevel
)

// LogGroup is a set of loggers, one per level, that only print when the level of the group is high enough.
type LogGroup struct {
	level       LogLevel
	silenceWarn bool
	trace       *log.Logger
	debug       *log.Logger
	info        *log.Logger
	warn        *log.Logger
	err         *log.Logger
}

// NewLogGroup returns a log group that is configured to the logging settings stored inside the config
func NewLogGroup(config *Config) *LogGroup {
	return NewLogGroupWithOutput(config, os.Stderr)
}

// NewLogGroupWithOutput returns a log group configured by config that writes to w
func NewLogGroupWithOutput(config *Config, w io.Writer) *LogGroup {
	flags := log.Default().Flags()
	return &LogGroup{
		level:       LogLevel(config.LogLevel),
		silenceWarn: config.SilenceWarn,
		trace:       log.New(w, "[TRACE] ", flags),
		debug:       log.New(w, "[DEBUG] ", flags),
		info:        log.New(w, "[INFO] ", flags),
		warn:        log.New(w, "[WARN] ", flags),
		err:         log.New(w, "[ERROR] ", flags),
	}
}

// SetAllOutput sets all the output writers to the writer provided
func (l *LogGroup) SetAllOutput(w io.Writer) {
	l.trace.SetOutput(w)
	l.debug.SetOutput(w)
	l.info.SetOutput(w)
	l.warn.SetOutput(w)
	l.err.SetOutput(w)
}

// SetAllFlags sets the flag of all loggers in the log group to the argument provided
func (l *LogGroup) SetAllFlags(x int) {
	l.trace.SetFlags(x)
	l.debug.SetFlags(x)
	l.info.SetFlags(x)
	l.warn.SetFlags(x)
	l.err.SetFlags(x)
}

// Level returns the level of the group
func (l *LogGroup) Level() LogLevel {
	return l.level
}

// LogsTrace returns true when Tracef prints. Callers use it to avoid building expensive messages.
func (l *LogGroup) LogsTrace() bool {
	return l.level >= TraceLevel
}

// LogsDebug returns true when Debugf prints.
func (l *LogGroup) LogsDebug() bool {
	return l.level >= DebugLevel
}

// Tracef calls Trace.Printf to print to the trace logger. Arguments are handled in the manner of Printf
func (l *LogGroup) Tracef(format string, v ...any) {
	if l.level >= TraceLevel {
		l.trace.Printf(format, v...)
	}
}

// Debugf calls Debug.Printf to print to the debug logger. Arguments are handled in the manner of Printf
func (l *LogGroup) Debugf(format string, v ...any) {
	if l.level >= DebugLevel {
		l.debug.Printf(format, v...)
	}
}

// Infof calls Info.Printf to print to the info logger. Arguments are handled in the manner of Printf
func (l *LogGroup) Infof(format string, v ...any) {
	if l.level >= InfoLevel {
		l.info.Printf(format, v...)
	}
}

// Warnf calls Warn.Printf to print to the warning logger, unless warnings are silenced.
func (l *LogGroup) Warnf(format string, v ...any) {
	if l.level >= WarnLevel && !l.silenceWarn {
		l.warn.Printf(format, v...)
	}
}

// Errorf calls Error.Printf to print to the error logger. Arguments are handled in the manner of Printf
func (l *LogGroup) Errorf(format string, v ...any) {
	if l.level >= ErrLevel {
		l.err.Printf(format, v...)
	}
}

// GetDebug returns the debug level logger, for applications that need a logger as input
func (l *LogGroup) GetDebug() *log.Logger {
	return l.debug
}

// GetError returns the error logger, for applications that need a logger as input
func (l *LogGroup) GetError() *log.Logger {
	return l.err
}
