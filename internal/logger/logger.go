// Package logger wires zap, teed between a human-readable console core and
// a rotated JSON core, the same split the teacher's internal/logger package
// uses. Unlike the teacher, nothing here is a package-level global: engine
// packages take a *zap.Logger explicitly (defaulting to a no-op logger) so
// the core stays silent when embedded as a library and noisy only from the
// cmd/ entry points that call Initialize.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Initialize builds a logger that writes human-readable lines to stdout and
// rotated JSON lines to logFile. levelStr is one of debug/info/warn/error
// (default info); an empty logFile disables the file core.
func Initialize(levelStr, logFile string) *zap.Logger {
	level := parseLevel(levelStr)

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(os.Stdout),
		level,
	)

	if logFile == "" {
		return zap.New(consoleCore, zap.AddCaller())
	}

	jsonCfg := zap.NewProductionEncoderConfig()
	jsonCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(jsonCfg),
		zapcore.AddSync(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     7,
			Compress:   true,
		}),
		level,
	)

	return zap.New(zapcore.NewTee(consoleCore, fileCore), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

// Nop returns a logger that discards everything, the default for engine
// components constructed without an explicit logger.
func Nop() *zap.Logger { return zap.NewNop() }

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// FID/Term/Op are small helpers used pervasively across the engine's log
// call sites, mirroring the teacher's WithRequestID/WithUserID helpers.
func FID(fid uint32) zap.Field   { return zap.Uint32("fid", fid) }
func Term(term uint32) zap.Field { return zap.Uint32("term", term) }
func Op(op string) zap.Field     { return zap.String("op", op) }
