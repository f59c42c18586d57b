package logger

import (
	"github.com/code19m/errx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	encJSON    = "json"
	encPretty  = "pretty"
	levelDebug = "debug"
)

// Config configures a Logger.
type Config struct {
	// Level is the minimum level written: debug, info, warn or error.
	Level string `yaml:"level" validate:"oneof=debug info warn error" default:"debug"`

	// Encoding is "json" for one object per line or "pretty" for colored
	// console output.
	Encoding string `yaml:"encoding" validate:"oneof=json pretty" default:"pretty"`

	// Output is "stdout", "stderr" or a file path.
	Output string `yaml:"output" default:"stdout"`

	// Service is added to every entry under the "service" key when set.
	Service string `yaml:"service"`

	// Disable turns every call into a no-op.
	Disable bool `yaml:"disable"`
}

func (c Config) zapConfig() (*zap.Config, error) {
	level, err := zap.ParseAtomicLevel(c.Level)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithType(errx.T_Validation), errx.WithDetails(errx.D{"level": c.Level}))
	}

	output := c.Output
	if output == "" {
		output = "stdout"
	}

	cfg := &zap.Config{
		Level:            level,
		Encoding:         encJSON,
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:     "msg",
			LevelKey:       "level",
			NameKey:        "logger",
			TimeKey:        "time",
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.RFC3339TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeName:     zapcore.FullNameEncoder,
		},
	}
	if c.Service != "" {
		cfg.InitialFields = map[string]any{"service": c.Service}
	}
	if c.Encoding == encPretty {
		cfg = toConsole(cfg)
	}
	return cfg, nil
}
