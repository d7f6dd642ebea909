package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/iockit/logger"
)

const internalError = "Internal server error"

// Recovery turns a panic in the handler into a 500 JSON response. Placed
// inside RequestScope, the request's instances are still destroyed.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logPanic(log, err, r)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{"error": internalError})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// GinRecovery is the Gin form of Recovery.
func GinRecovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logPanic(log, err, c.Request)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": internalError})
			}
		}()
		c.Next()
	}
}

func logPanic(log *logger.Logger, err any, r *http.Request) {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	log.Error("Panic recovered", map[string]interface{}{
		"error":  fmt.Sprintf("%v", err),
		"stack":  string(debug.Stack()),
		"path":   r.URL.Path,
		"method": r.Method,
	})
}
