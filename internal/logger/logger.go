// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package logger builds the process-wide zap logger. Events are written as
// JSON to a lumberjack-rotated file when a log directory is configured and
// optionally teed to stdout.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configure New.
type Options struct {
	Dir     string // empty disables the file sink
	Console bool
	Level   string // debug, info, warn, error
	JSON    bool   // console output as JSON instead of text
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}
}

// New returns a sugared logger and installs it as the zap global, so
// zap.S() works everywhere after startup.
func New(opts Options) (*zap.SugaredLogger, error) {
	level, err := zapcore.ParseLevel(defaultString(opts.Level, "info"))
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	var cores []zapcore.Core
	var errOut zapcore.WriteSyncer = zapcore.AddSync(os.Stderr)

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		sink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, "blockpress.log"),
			MaxSize:    50, // MB
			MaxBackups: 7,
			MaxAge:     14, // days
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), sink, level))
		errOut = sink
	}

	if opts.Console || len(cores) == 0 {
		cores = append(cores, consoleCore(os.Stdout, opts.JSON, level))
	}

	z := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.ErrorOutput(errOut)).Sugar()
	zap.ReplaceGlobals(z.Desugar())
	return z, nil
}

func consoleCore(w io.Writer, asJSON bool, level zapcore.Level) zapcore.Core {
	enc := zapcore.NewConsoleEncoder(encoderConfig())
	if asJSON {
		enc = zapcore.NewJSONEncoder(encoderConfig())
	}
	return zapcore.NewCore(enc, zapcore.AddSync(w), level)
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
