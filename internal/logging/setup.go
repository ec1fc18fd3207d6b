// Package logging builds the process logger for the entityforge command.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

type LogOpts struct {
	Verbose  bool
	Level    string
	Color    string
	Encoding string
}

func (opts LogOpts) Encoder() (zapcore.Encoder, error) {
	switch opts.Encoding {
	case "json":
		if opts.Verbose {
			return zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig()), nil
		}
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), nil
	case "console", "":
		cfg := zap.NewDevelopmentEncoderConfig()
		if opts.useColor() {
			cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		return zapcore.NewConsoleEncoder(cfg), nil
	default:
		return nil, fmt.Errorf("unknown log encoding %q", opts.Encoding)
	}
}

func (opts LogOpts) useColor() bool {
	switch opts.Color {
	case "always", "on":
		return true
	case "never", "off":
		return false
	default:
		return term.IsTerminal(int(os.Stderr.Fd()))
	}
}

// LevelOf resolves the configured level. Verbose forces debug.
func (opts LogOpts) LevelOf() (zapcore.Level, error) {
	if opts.Verbose {
		return zapcore.DebugLevel, nil
	}
	if opts.Level == "" {
		return zapcore.InfoLevel, nil
	}
	return zapcore.ParseLevel(opts.Level)
}

func (opts LogOpts) NewCore(w zapcore.WriteSyncer) (zapcore.Core, error) {
	enc, err := opts.Encoder()
	if err != nil {
		return nil, err
	}
	lvl, err := opts.LevelOf()
	if err != nil {
		return nil, err
	}
	return zapcore.NewCore(enc, w, zap.NewAtomicLevelAt(lvl)), nil
}

func (opts LogOpts) NewLogger() (*zap.Logger, error) {
	core, err := opts.NewCore(zapcore.Lock(os.Stderr))
	if err != nil {
		return nil, err
	}
	return zap.New(core), nil
}

// Setup installs the logger as the zap global and returns it together with the function
// restoring the previous global.
func Setup(opts LogOpts) (*zap.Logger, func(), error) {
	logger, err := opts.NewLogger()
	if err != nil {
		return nil, nil, err
	}
	undo := zap.ReplaceGlobals(logger)
	return logger, func() {
		_ = logger.Sync()
		undo()
	}, nil
}
