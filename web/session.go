package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/iockit/scope"
)

// DefaultSessionCookie is the cookie name used when SessionConfig leaves it empty.
const DefaultSessionCookie = "iockit_session"

// SessionConfig controls the session cookie.
type SessionConfig struct {
	CookieName string        `yaml:"cookie_name" mapstructure:"cookie_name"`
	Path       string        `yaml:"path" mapstructure:"path"`
	MaxAge     time.Duration `yaml:"max_age" mapstructure:"max_age"`
	Secure     bool          `yaml:"secure" mapstructure:"secure"`
}

// ApplyDefaults sets the cookie name and path.
func (c *SessionConfig) ApplyDefaults() {
	if c.CookieName == "" {
		c.CookieName = DefaultSessionCookie
	}
	if c.Path == "" {
		c.Path = "/"
	}
}

// sessionID returns the session id carried by r, issuing a new cookie on w
// when there is none.
func (c SessionConfig) sessionID(w http.ResponseWriter, r *http.Request) string {
	if ck, err := r.Cookie(c.CookieName); err == nil && ck.Value != "" {
		return ck.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     c.CookieName,
		Value:    id,
		Path:     c.Path,
		MaxAge:   int(c.MaxAge.Seconds()),
		Secure:   c.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// Session selects the session for the session scope from a cookie, issuing
// one on the first request of a client.
func Session(cfg SessionConfig) Middleware {
	cfg.ApplyDefaults()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := cfg.sessionID(w, r)
			next.ServeHTTP(w, r.WithContext(scope.WithSessionID(r.Context(), id)))
		})
	}
}

// GinSession is the Gin form of Session.
func GinSession(cfg SessionConfig) gin.HandlerFunc {
	cfg.ApplyDefaults()
	return func(c *gin.Context) {
		id := cfg.sessionID(c.Writer, c.Request)
		c.Request = c.Request.WithContext(scope.WithSessionID(c.Request.Context(), id))
		c.Next()
	}
}
