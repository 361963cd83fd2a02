package logger

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lhpt2/portmidi/sdk/contracts"
)

// ZapLogger implements contracts.Logger on top of go.uber.org/zap.
type ZapLogger struct {
	logger *zap.Logger
	level  contracts.LogLevel
}

// NewZapLogger creates a production zap logger wrapped in the contracts
// interface. It is the default logger applied by the factory.
func NewZapLogger() contracts.Logger {
	z, _ := zap.NewProduction(zap.AddCallerSkip(2))
	return &ZapLogger{logger: z, level: contracts.InfoLevel}
}

// NewNopLogger returns a logger that discards everything. Useful in tests.
func NewNopLogger() contracts.Logger {
	return &ZapLogger{logger: zap.NewNop(), level: contracts.ErrorLevel}
}

// Info logs a message at the INFO level.
func (z *ZapLogger) Info(msg string, fields ...contracts.Field) {
	z.log(zapcore.InfoLevel, msg, fields...)
}

// Error logs a message at the ERROR level.
func (z *ZapLogger) Error(msg string, fields ...contracts.Field) {
	z.log(zapcore.ErrorLevel, msg, fields...)
}

// Debug logs a message at the DEBUG level.
func (z *ZapLogger) Debug(msg string, fields ...contracts.Field) {
	z.log(zapcore.DebugLevel, msg, fields...)
}

// Warn logs a message at the WARN level.
func (z *ZapLogger) Warn(msg string, fields ...contracts.Field) {
	z.log(zapcore.WarnLevel, msg, fields...)
}

// Fatal logs a message at the FATAL level and terminates the application.
func (z *ZapLogger) Fatal(msg string, fields ...contracts.Field) {
	z.log(zapcore.FatalLevel, msg, fields...)
}

// Field returns a new field builder.
func (z *ZapLogger) Field() contracts.Field {
	return zapField{}
}

// SetLevel sets the minimum level that will be logged.
func (z *ZapLogger) SetLevel(level contracts.LogLevel) {
	z.level = level
}

var levelMap = map[contracts.LogLevel]zapcore.Level{
	contracts.DebugLevel: zapcore.DebugLevel,
	contracts.InfoLevel:  zapcore.InfoLevel,
	contracts.WarnLevel:  zapcore.WarnLevel,
	contracts.ErrorLevel: zapcore.ErrorLevel,
	contracts.FatalLevel: zapcore.FatalLevel,
}

func (z *ZapLogger) log(level zapcore.Level, msg string, fields ...contracts.Field) {
	if min, ok := levelMap[z.level]; ok && level < min {
		return
	}

	zfields := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if zf, ok := f.(zapField); ok && zf.field != nil {
			zfields = append(zfields, *zf.field)
		}
	}

	switch level {
	case zapcore.DebugLevel:
		z.logger.Debug(msg, zfields...)
	case zapcore.InfoLevel:
		z.logger.Info(msg, zfields...)
	case zapcore.WarnLevel:
		z.logger.Warn(msg, zfields...)
	case zapcore.ErrorLevel:
		z.logger.Error(msg, zfields...)
	case zapcore.FatalLevel:
		z.logger.Fatal(msg, zfields...)
	}
}

// zapField implements contracts.Field by wrapping a single zap.Field.
type zapField struct {
	field *zap.Field
}

func wrap(f zap.Field) contracts.Field {
	return zapField{field: &f}
}

func (zapField) Bool(key string, val bool) contracts.Field {
	return wrap(zap.Bool(key, val))
}

func (zapField) Int(key string, val int) contracts.Field {
	return wrap(zap.Int(key, val))
}

func (zapField) Float64(key string, val float64) contracts.Field {
	return wrap(zap.Float64(key, val))
}

func (zapField) String(key string, val string) contracts.Field {
	return wrap(zap.String(key, val))
}

func (zapField) Time(key string, val time.Time) contracts.Field {
	return wrap(zap.Time(key, val))
}

func (zapField) Int64(key string, val int64) contracts.Field {
	return wrap(zap.Int64(key, val))
}

func (zapField) Error(key string, val error) contracts.Field {
	return wrap(zap.NamedError(key, val))
}

func (zapField) Uint64(key string, val uint64) contracts.Field {
	return wrap(zap.Uint64(key, val))
}

func (zapField) Uint8(key string, val uint8) contracts.Field {
	return wrap(zap.Uint8(key, val))
}
