package main

import (
	"os"

	"github.com/indigo-web/hello"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	addr := hello.DefaultAddr
	if len(os.Args) > 1 {
		addr = os.Args[1]
	}

	logger := log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.InfoLevel)

	if err := hello.New(addr).Logger(logger).Serve(); err != nil {
		logger.Fatal().Err(err).Msg("server is down")
	}
}
