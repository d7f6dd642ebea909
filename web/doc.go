// Package web binds the container's request and session scopes to HTTP
// traffic.
//
// Every middleware comes in two forms: a standard Middleware for any
// http.Handler and a gin.HandlerFunc for Gin engines. RequestScope opens a
// request scope for the duration of each request and ends it, running the
// destruction callbacks of request-scoped instances, once the handler
// returns. Session reads or issues a session cookie and selects the matching
// session for the session scope.
//
//	mux := web.Chain(
//	    web.Recovery(log),
//	    web.RequestScope(),
//	    web.Session(web.SessionConfig{}),
//	)(handler)
package web
