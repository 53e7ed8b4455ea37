package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const fileName = "uptime.log"

type Options struct {
	Dir    string
	Stdout bool // also write to stderr
	Debug  bool
}

// NewLogger writes JSON lines into a rotated file under opts.Dir.
func NewLogger(opts Options) (*zap.Logger, error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, err
	}
	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, fileName),
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	})
	if opts.Stdout {
		w = zapcore.NewMultiWriteSyncer(w, zapcore.Lock(os.Stderr))
	}

	level := zap.InfoLevel
	if opts.Debug {
		level = zap.DebugLevel
	}
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), w, level)
	return zap.New(core, zap.Fields(zap.String("service", "uptime-monitor"))), nil
}
