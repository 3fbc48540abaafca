package logger

import (
	"io"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var zapLevels = map[Level]zapcore.Level{
	DebugLevel: zapcore.DebugLevel,
	InfoLevel:  zapcore.InfoLevel,
	WarnLevel:  zapcore.WarnLevel,
	ErrorLevel: zapcore.ErrorLevel,
	PanicLevel: zapcore.PanicLevel,
	FatalLevel: zapcore.FatalLevel,
}

type zapLogger struct {
	base  *zap.Logger
	level zap.AtomicLevel
}

// New builds a JSON logger writing to every given writer. Entries below level are dropped.
func New(level Level, writers ...io.Writer) Logger {
	atom := zap.NewAtomicLevelAt(zapLevel(level))

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeDuration = zapcore.StringDurationEncoder

	syncers := make([]zapcore.WriteSyncer, 0, len(writers))
	for _, w := range writers {
		syncers = append(syncers, zapcore.AddSync(w))
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.Lock(zapcore.NewMultiWriteSyncer(syncers...)),
		atom,
	)

	return &zapLogger{
		base:  zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)),
		level: atom,
	}
}

func String(key, value string) Field { return zap.String(key, value) }

func Int(key string, value int) Field { return zap.Int(key, value) }

func Bool(key string, value bool) Field { return zap.Bool(key, value) }

func Duration(key string, value time.Duration) Field { return zap.Duration(key, value) }

// Error attaches err under the "error" key. A nil error adds nothing.
func Error(err error) Field { return zap.NamedError("error", err) }

// Component tags every entry of a child logger with the subsystem that wrote it.
func Component(name string) Field { return zap.String("component", name) }

func (l *zapLogger) Debug(msg string, fields ...Field) { l.base.Debug(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.base.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.base.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.base.Error(msg, fields...) }

// Fatal exits the process with status 1 after writing the entry.
func (l *zapLogger) Fatal(msg string, fields ...Field) { l.base.Fatal(msg, fields...) }

func (l *zapLogger) Panic(msg string, fields ...Field) { l.base.Panic(msg, fields...) }

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{base: l.base.With(fields...), level: l.level}
}

func (l *zapLogger) Sync() error {
	return l.base.Sync()
}

// SetLevel changes the level of this logger and of every child made with With.
func (l *zapLogger) SetLevel(level Level) {
	l.level.SetLevel(zapLevel(level))
}

func zapLevel(level Level) zapcore.Level {
	if zl, ok := zapLevels[level]; ok {
		return zl
	}
	return zapcore.InfoLevel
}
