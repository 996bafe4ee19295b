package http

import (
	"go.uber.org/zap"

	"forecast-api/pkg/log"
)

// HTTPLogger interface defines methods for logging HTTP requests and responses
type HTTPLogger interface {
	// LogRequest is called before the request is sent with all request data formed
	LogRequest(method, url string)

	// LogResponseSuccess is called immediately after receiving a successful response (non-error HTTP status)
	LogResponseSuccess(method, url string, httpStatus int, latency int64)

	// LogResponseError is called after a transport failure or an error HTTP status
	LogResponseError(method, url string, httpStatus int, responseBody string, latency int64, err error)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) LogRequest(string, string) {}

func (NopLogger) LogResponseSuccess(string, string, int, int64) {}

func (NopLogger) LogResponseError(string, string, int, string, int64, error) {}

// ZapLogger writes outgoing calls to the application logger, tagged with a client name.
// Response bodies are only logged on errors and truncated to maxBody bytes.
type ZapLogger struct {
	Name    string
	MaxBody int
}

var _ HTTPLogger = ZapLogger{}

func (l ZapLogger) LogRequest(method, url string) {
	log.Debug("Outgoing request",
		zap.String("client", l.Name),
		zap.String("method", method),
		zap.String("url", url))
}

func (l ZapLogger) LogResponseSuccess(method, url string, httpStatus int, latency int64) {
	log.Info("Outgoing request completed",
		zap.String("client", l.Name),
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", httpStatus),
		zap.Int64("latency_ms", latency))
}

func (l ZapLogger) LogResponseError(method, url string, httpStatus int, responseBody string, latency int64, err error) {
	log.Warn("Outgoing request failed",
		zap.String("client", l.Name),
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", httpStatus),
		zap.Int64("latency_ms", latency),
		zap.String("response", truncate(responseBody, l.MaxBody)),
		zap.Error(err))
}

func truncate(value string, max int) string {
	if max <= 0 {
		max = 512
	}
	if len(value) <= max {
		return value
	}
	return value[:max] + "..."
}
