package logger

import (
	"net"
	"os"
	"time"

	"calorie-tracker/config"

	logrustash "github.com/bshuster-repo/logrus-logstash-hook"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	contextKey      = "logger"
	requestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)

const timestampFormat = "2006-01-02 15:04:05"

// New builds the process logger. A logstash hook is attached when enabled;
// failing to reach logstash is logged and otherwise ignored.
func New(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.Out = os.Stdout

	level, levelErr := logrus.ParseLevel(cfg.Level)
	if levelErr != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: timestampFormat})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: timestampFormat,
		})
	}

	if cfg.LogstashEnable && cfg.LogstashURL != "" {
		conn, err := net.Dial("udp", cfg.LogstashURL)
		if err != nil {
			logger.WithError(err).Warn("logstash unreachable, continuing without hook")
		} else {
			hook := logrustash.New(conn, logrustash.DefaultFormatter(logrus.Fields{"type": "calorie-tracker"}))
			logger.Hooks.Add(hook)
		}
	}

	if levelErr != nil {
		logger.WithField("level", cfg.Level).Warn("unknown log level, using info")
	}
	return logger
}

// Middleware tags every request with an id, stores a request-scoped entry
// on the context and writes one access line when the handler returns.
func Middleware(base *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)
		c.Set(requestIDKey, requestID)

		entry := base.WithField(requestIDKey, requestID)
		c.Set(contextKey, entry)

		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}
		if userID := c.GetString("user_id"); userID != "" {
			fields["user_id"] = userID
		}
		line := entry.WithFields(fields)
		switch {
		case c.Writer.Status() >= 500:
			line.Error("request failed")
		case len(c.Errors) > 0:
			line.WithField("errors", c.Errors.String()).Warn("request completed with errors")
		default:
			line.Info("request completed")
		}
	}
}

// For returns the request-scoped entry, falling back to the standard
// logger outside the middleware (tests, background work).
func For(c *gin.Context) *logrus.Entry {
	if v, ok := c.Get(contextKey); ok {
		if entry, ok := v.(*logrus.Entry); ok {
			return entry
		}
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
