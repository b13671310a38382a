// Package source finds auction notice links on the published index page
// and downloads the notices.
package source

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("auction-tracker.source")

type ClientConfig struct {
	UserAgent  string
	Timeout    time.Duration
	RetryCount int
	RetryWait  time.Duration
}

// NewHTTPClient returns a resty client that retries transport errors and
// 5xx responses with backoff.
func NewHTTPClient(cfg ClientConfig, logger *slog.Logger) *resty.Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := resty.New().
		SetRetryCount(cfg.RetryCount).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil || r == nil {
				return true
			}
			return r.StatusCode() >= http.StatusInternalServerError
		}).
		AddRetryHook(func(r *resty.Response, err error) {
			var attrs []any
			if r != nil && r.Request != nil {
				attrs = append(attrs, "url", r.Request.URL, "attempt", r.Request.Attempt)
			}
			if err != nil {
				attrs = append(attrs, "error", err)
			} else if r != nil {
				attrs = append(attrs, "status", r.StatusCode())
			}
			logger.Warn("source.http.retry", attrs...)
		})
	if cfg.UserAgent != "" {
		c.SetHeader("User-Agent", cfg.UserAgent)
	}
	if cfg.Timeout > 0 {
		c.SetTimeout(cfg.Timeout)
	}
	if cfg.RetryWait > 0 {
		c.SetRetryWaitTime(cfg.RetryWait).SetRetryMaxWaitTime(4 * cfg.RetryWait)
	}
	return c
}
