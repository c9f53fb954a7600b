package main

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/lite-lake/peerdns/internal/constants"
	"github.com/lite-lake/peerdns/internal/infrastructure/logger"
	"github.com/lite-lake/peerdns/internal/interfaces/cli"
)

func main() {
	logLevel := zerolog.InfoLevel
	if os.Getenv(constants.EnvDebug) != "" {
		logLevel = zerolog.DebugLevel
	}

	logger.Init(&logger.Config{
		Level:     logLevel,
		Format:    os.Getenv(constants.EnvLogFormat),
		AddSource: os.Getenv(constants.EnvDebug) != "",
	})

	cli.Execute()
}
