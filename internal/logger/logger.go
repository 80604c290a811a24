package logger

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// New builds the service logger and installs it as the zerolog global.
// Dev mode gets the human-friendly console writer; anything else logs JSON.
func New(level, appEnv string) zerolog.Logger {
	return NewWithWriter(level, appEnv, os.Stdout)
}

// NewWithWriter is New with an explicit output.
func NewWithWriter(level, appEnv string, out io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	w := out
	if appEnv == "dev" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	zerolog.TimeFieldFormat = time.RFC3339
	l := zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "feedback-backend").Logger()
	log.Logger = l
	return l
}

// Middleware attaches the logger to every request context and writes one
// access line per request once the handler returns.
func Middleware(l zerolog.Logger) func(http.Handler) http.Handler {
	attach := hlog.NewHandler(l)
	requestID := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := middleware.GetReqID(r.Context()); id != "" {
				hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
					return c.Str("request_id", id)
				})
			}
			next.ServeHTTP(w, r)
		})
	}
	access := hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		event := hlog.FromRequest(r).Info()
		if status >= 500 {
			event = hlog.FromRequest(r).Error()
		} else if status >= 400 {
			event = hlog.FromRequest(r).Warn()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("latency", d).
			Msg("request")
	})

	return func(next http.Handler) http.Handler {
		return attach(requestID(access(next)))
	}
}
