package logger

import (
	"context"
	"os"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	ct "todoitems/pkg/context"
)

type Config struct {
	Service  string
	Level    string
	Encoding string
}

// Logger is a zap logger wrapped by otelzap, so Ctx(ctx) carries the
// active trace and span ids into every entry.
type Logger struct {
	*otelzap.Logger
	service string
}

func New(cfg Config) (*Logger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	if err := level.Set(cfg.Level); err != nil {
		level = zapcore.InfoLevel
	}

	var encoder zapcore.Encoder
	switch cfg.Encoding {
	case "console":
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level)
	zapLogger := zap.New(core, zap.AddCaller()).With(zap.String("service", cfg.Service))

	return &Logger{
		Logger:  otelzap.New(zapLogger, otelzap.WithMinLevel(level)),
		service: cfg.Service,
	}, nil
}

func NewNop() *Logger {
	return &Logger{Logger: otelzap.New(zap.NewNop())}
}

func (l *Logger) Service() string {
	return l.service
}

func (l *Logger) Sync() error {
	return l.Logger.Sync()
}

// RequestID returns the request id field of the current request, if any.
func RequestID(ctx context.Context) zap.Field {
	if current, ok := ct.FromContext(ctx); ok {
		if id, ok := current.GetString(ct.RequestIDKey); ok {
			return zap.String("request_id", id)
		}
	}

	return zap.Skip()
}
