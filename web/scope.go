package web

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/iockit/definition"
	"github.com/kbukum/iockit/di"
	"github.com/kbukum/iockit/scope"
)

// HeaderRequestID carries the request id, which is also the conversation id
// of the request scope.
const HeaderRequestID = "X-Request-Id"

// ContextKeyRequestID is the gin.Context key holding the request id.
const ContextKeyRequestID = "request_id"

// RequestScope opens a request scope for each request. An incoming
// X-Request-Id is reused as the scope's id, otherwise one is generated and
// echoed in the response. The scope ends when the handler returns.
func RequestScope() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, rec := scope.BeginRequest(r.Context(), r.Header.Get(HeaderRequestID))
			defer rec.End(context.WithoutCancel(ctx))

			r.Header.Set(HeaderRequestID, rec.ID)
			w.Header().Set(HeaderRequestID, rec.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GinRequestScope is the Gin form of RequestScope. The request id is also
// stored under ContextKeyRequestID.
func GinRequestScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, rec := scope.BeginRequest(c.Request.Context(), c.GetHeader(HeaderRequestID))
		defer rec.End(context.WithoutCancel(ctx))

		c.Set(ContextKeyRequestID, rec.ID)
		c.Header(HeaderRequestID, rec.ID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Resolve resolves name in the scopes of r. Request- and session-scoped
// definitions get the instance bound to this request.
func Resolve[T any](r *http.Request, res definition.Resolver, name string) (T, error) {
	return di.Resolve[T](r.Context(), res, name)
}

// GinResolve is the Gin form of Resolve.
func GinResolve[T any](c *gin.Context, res definition.Resolver, name string) (T, error) {
	return di.Resolve[T](c.Request.Context(), res, name)
}
