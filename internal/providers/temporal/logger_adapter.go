package temporal

import (
	"go.temporal.io/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger routes Temporal SDK logging through the application zap logger.
// SDK chatter stays at debug unless it is warn or worse, so venue sync runs
// do not drown the service logs in poller noise.
type zapLogger struct {
	logger *zap.Logger
}

// NewZapLoggerAdapter wraps a zap logger in Temporal's log.Logger interface
func NewZapLoggerAdapter(logger *zap.Logger) log.Logger {
	return &zapLogger{logger: logger}
}

func (z *zapLogger) Debug(msg string, keyvals ...interface{}) {
	z.log(zapcore.DebugLevel, msg, keyvals)
}

func (z *zapLogger) Info(msg string, keyvals ...interface{}) {
	z.log(zapcore.DebugLevel, msg, keyvals)
}

func (z *zapLogger) Warn(msg string, keyvals ...interface{}) {
	z.log(zapcore.WarnLevel, msg, keyvals)
}

func (z *zapLogger) Error(msg string, keyvals ...interface{}) {
	z.log(zapcore.ErrorLevel, msg, keyvals)
}

// log converts the SDK's alternating key/value list into zap fields. Keys
// that are not strings, and a trailing value without a key, are dropped.
func (z *zapLogger) log(level zapcore.Level, msg string, keyvals []interface{}) {
	ce := z.logger.Check(level, msg)
	if ce == nil {
		return
	}

	fields := make([]zap.Field, 0, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		if key, ok := keyvals[i].(string); ok {
			fields = append(fields, zap.Any(key, keyvals[i+1]))
		}
	}
	ce.Write(fields...)
}
