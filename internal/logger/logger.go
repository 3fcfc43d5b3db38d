package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New настраивает корневой логгер сервиса. В development логи пишутся
// человекочитаемой консолью, в остальных окружениях — JSON в stdout.
func New(environment string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	if environment == "development" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
		return zerolog.New(output).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
