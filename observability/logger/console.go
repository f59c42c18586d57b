package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const consoleTimeLayout = "15:04:05.000"

// toConsole switches a JSON zap config to the colored console encoder used for
// the "pretty" encoding. Fields keep their JSON rendering after the message.
func toConsole(cfg *zap.Config) *zap.Config {
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(consoleTimeLayout)
	cfg.EncoderConfig.ConsoleSeparator = "  "
	return cfg
}
