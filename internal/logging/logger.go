// Package logging builds the zap loggers used across presssim and adapts
// them to press session events.
package logging

import (
	"io"
	"strings"

	"github.com/san-kum/presssim/internal/press"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel maps debug, info, warn and error to zap levels. Anything else
// is info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// New returns a console logger writing to w and the atomic level that
// controls it.
func New(level string, w io.Writer) (*zap.Logger, zap.AtomicLevel) {
	atom := zap.NewAtomicLevelAt(ParseLevel(level))
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.AddSync(w), atom)
	return zap.New(core, zap.Development()), atom
}

// Observer logs session transitions at info and every step at debug.
type Observer struct {
	logger *zap.Logger
}

func NewObserver(logger *zap.Logger) *Observer {
	return &Observer{logger: logger}
}

func (o *Observer) OnStatus(status press.Status, message string) {
	o.logger.Info(message, zap.Stringer("status", status))
}

func (o *Observer) OnStep(snap press.Snapshot) {
	if ce := o.logger.Check(zapcore.DebugLevel, "step"); ce != nil {
		ce.Write(
			zap.Int("step", snap.Step),
			zap.Stringer("kind", snap.Kind),
			zap.Float64("deformation", snap.Deformation),
			zap.Float64("stress", snap.Stress),
			zap.Float64("force", snap.Force),
			zap.Float64("height", snap.Height),
		)
	}
}
