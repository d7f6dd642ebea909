package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/iockit/logger"
	"github.com/kbukum/iockit/scope"
)

// RequestLogger logs every request with method, path, status, duration and
// the request-scoped instances it created. Place it inside RequestScope.
// Health-check paths are skipped.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isHealthEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			fields := map[string]interface{}{
				"method":             r.Method,
				"path":               r.URL.Path,
				"status":             sw.status,
				logger.FieldDuration: time.Since(start).Milliseconds(),
			}
			addScopeFields(fields, r)
			logByStatus(log, fields, sw.status)
		})
	}
}

// GinRequestLogger is the Gin form of RequestLogger.
func GinRequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isHealthEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		fields := map[string]interface{}{
			"method":             c.Request.Method,
			"path":               c.Request.URL.Path,
			"status":             status,
			"client":             c.ClientIP(),
			logger.FieldDuration: latency.Milliseconds(),
		}
		if latency > 500*time.Millisecond {
			fields["slow"] = true
		}
		addScopeFields(fields, c.Request)
		logByStatus(log, fields, status)
	}
}

func addScopeFields(fields map[string]interface{}, r *http.Request) {
	if rec, ok := scope.RequestFrom(r.Context()); ok {
		fields["request_id"] = rec.ID
		if names := rec.Names(); len(names) > 0 {
			fields["request_beans"] = strings.Join(names, ",")
		}
	}
	if id, ok := scope.SessionIDFrom(r.Context()); ok {
		fields["session"] = id
	}
}

func isHealthEndpoint(path string) bool {
	for _, hp := range []string{"/health", "/alive", "/ready", "/metrics"} {
		if path == hp || path == "/api"+hp {
			return true
		}
	}
	return false
}

// logByStatus logs at a level matching the status code. A nil log uses the
// global logger.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	logErr := logger.Error
	logWarn := logger.Warn
	logDebug := logger.Debug
	if log != nil {
		logErr = log.Error
		logWarn = log.Warn
		logDebug = log.Debug
	}

	switch {
	case status >= 500:
		logErr("Request completed", fields)
	case status >= 400:
		logWarn("Request completed", fields)
	default:
		logDebug("Request completed", fields)
	}
}
