// Package logging configures logrus and carries a request-scoped entry and
// correlation id through context.
package logging

import (
	"context"
	"os"
	"strings"

	"github.com/lithammer/shortuuid/v3"
	"github.com/sirupsen/logrus"
)

// HeaderCorrelationID is read from incoming requests and echoed back.
const HeaderCorrelationID = "Correlation-ID"

type ctxKey int

const (
	loggerKey ctxKey = iota
	correlationIDKey
)

// Init sets the global level and formatter. format is "json" or "text";
// an unknown level falls back to info.
func Init(level, format string) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stdout)
	if strings.EqualFold(format, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// ToContext stores a log entry in ctx.
func ToContext(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey, entry)
}

// FromContext returns the entry stored in ctx, or a standard logger entry.
func FromContext(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(loggerKey).(*logrus.Entry); ok && entry != nil {
		return entry
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// ContextWithCorrelationID stores id in ctx.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext returns the id stored in ctx, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

// NewCorrelationID generates an id for requests that arrive without one.
func NewCorrelationID() string {
	return "gen_" + shortuuid.New()
}
