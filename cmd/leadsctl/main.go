package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-leads-client/api"
	"github.com/jrsteele09/go-leads-client/gateway"
	"github.com/jrsteele09/go-leads-client/internal/config"
	apperrors "github.com/jrsteele09/go-leads-client/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	c := config.New()
	setupLogging(c.GetLogLevel())

	if err := run(c); err != nil {
		logFailure(log.Logger, err)
		os.Exit(1)
	}
}

// logFailure adds the HTTP status and a sign-in hint when the chain carries them.
func logFailure(logger zerolog.Logger, err error) {
	event := logger.Error().Err(err)

	var responseErr *api.ResponseError
	var statusErr *gateway.StatusError
	switch {
	case apperrors.As(err, &responseErr):
		event = event.Int("status", responseErr.StatusCode)
	case apperrors.As(err, &statusErr):
		event = event.Int("status", statusErr.StatusCode)
	}
	if apperrors.Is(err, apperrors.ErrUnauthenticated) {
		event = event.Str("hint", "run `leadsctl login`")
	}
	event.Msg("leadsctl failed")
}

func run(c config.Config) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(c, os.Stdout, os.Stderr)
	defer a.close()
	return newRootCmd(a).ExecuteContext(ctx)
}

func setupLogging(level string) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})
}

func displayAppname(w io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(w, myFigure.String())
}
