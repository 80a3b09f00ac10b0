// Copyright 2024 The Neutron Authors
// This file is part of the neutron-host library.
//
// The neutron-host library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The neutron-host library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the neutron-host library. If not, see <http://www.gnu.org/licenses/>.

// Package log is a small leveled, structured logger in the vein of the
// go-ethereum/probeum "log" package: plain key/value pairs, a handful of
// level-named functions, and terminal-aware formatting. It lives in-tree
// rather than as an import, built directly on go-stack/stack for caller
// frames rather than a separate log15-style module.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-stack/stack"
	"github.com/mattn/go-isatty"
)

// Level is a log severity, ordered least to most severe.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCrit
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelCrit:
		return "CRIT"
	default:
		return "????"
	}
}

// Logger is the interface every package in this module logs through.
// New returns a child logger with ctx permanently attached (the Manager
// uses it to tag each frame's records with a correlation uuid).
type Logger interface {
	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})
	New(ctx ...interface{}) Logger
}

type record struct {
	time  time.Time
	level Level
	msg   string
	ctx   []interface{}
	call  stack.Call
}

type logger struct {
	ctx []interface{}
	h   *handler
}

type handler struct {
	mu       sync.Mutex
	out      io.Writer
	minLevel Level
	color    bool
}

var root = &logger{h: &handler{out: os.Stderr, minLevel: LevelInfo, color: isatty.IsTerminal(os.Stderr.Fd())}}

// Root returns the module-wide root logger.
func Root() Logger { return root }

// SetOutput redirects the root logger's output.
func SetOutput(w io.Writer) {
	root.h.mu.Lock()
	defer root.h.mu.Unlock()
	root.h.out = w
}

// SetLevel sets the minimum level the root logger emits.
func SetLevel(lvl Level) {
	root.h.mu.Lock()
	defer root.h.mu.Unlock()
	root.h.minLevel = lvl
}

func (l *logger) New(ctx ...interface{}) Logger {
	return &logger{ctx: append(append([]interface{}{}, l.ctx...), ctx...), h: l.h}
}

func (l *logger) write(lvl Level, msg string, ctx []interface{}) {
	l.h.mu.Lock()
	defer l.h.mu.Unlock()
	if lvl < l.h.minLevel {
		return
	}
	r := record{time: time.Now(), level: lvl, msg: msg, ctx: append(append([]interface{}{}, l.ctx...), ctx...), call: stack.Caller(2)}
	fmt.Fprint(l.h.out, format(r, l.h.color))
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.write(LevelTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(LevelDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(LevelInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(LevelWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(LevelError, msg, ctx) }
func (l *logger) Crit(msg string, ctx ...interface{})  { l.write(LevelCrit, msg, ctx) }

// Package-level convenience wrappers over Root(), for
// log.Warn("msg","key",val) call sites.
func Trace(msg string, ctx ...interface{}) { root.write(LevelTrace, msg, ctx) }
func Debug(msg string, ctx ...interface{}) { root.write(LevelDebug, msg, ctx) }
func Info(msg string, ctx ...interface{})  { root.write(LevelInfo, msg, ctx) }
func Warn(msg string, ctx ...interface{})  { root.write(LevelWarn, msg, ctx) }
func Error(msg string, ctx ...interface{}) { root.write(LevelError, msg, ctx) }
func Crit(msg string, ctx ...interface{})  { root.write(LevelCrit, msg, ctx) }

// New returns a child of the root logger with ctx permanently attached.
func New(ctx ...interface{}) Logger { return root.New(ctx...) }

func format(r record, color bool) string {
	s := fmt.Sprintf("%s [%s] %s", r.time.Format("15:04:05.000"), r.level, r.msg)
	for i := 0; i+1 < len(r.ctx); i += 2 {
		s += fmt.Sprintf(" %v=%v", r.ctx[i], r.ctx[i+1])
	}
	if !color {
		return s + "\n"
	}
	return colorize(r.level, s) + "\n"
}

func colorize(lvl Level, s string) string {
	var code int
	switch lvl {
	case LevelCrit, LevelError:
		code = 31
	case LevelWarn:
		code = 33
	case LevelInfo:
		code = 32
	default:
		code = 36
	}
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", code, s)
}
