// Package middleware provides the HTTP middleware stack of the site server.
package middleware

import (
	"fmt"
	"net/http"

	"github.com/solidprinciples/solid/internal/config"
	"github.com/solidprinciples/solid/internal/logging"
)

// Middleware represents a single middleware function
type Middleware func(http.Handler) http.Handler

// MiddlewareChain manages the ordered middleware stack.
//
// Middlewares run in the order they were added: the first added is the
// outermost wrapper and sees the request first.
//
// Standard stack (outer to inner):
//  1. Request ID
//  2. Recovery (renders the error page on panic)
//  3. Logging
//  4. Metrics (when a Metrics collector is supplied)
//  5. CORS
//  6. Security headers
type MiddlewareChain struct {
	config      *config.Config
	logger      logging.Logger
	metrics     *Metrics
	recovery    http.Handler
	middlewares []Middleware
}

// MiddlewareDependencies contains all dependencies needed for middleware construction
type MiddlewareDependencies struct {
	Config *config.Config
	Logger logging.Logger
	// Metrics is optional.
	Metrics *Metrics
	// ErrorPage is served when a handler panics. Optional.
	ErrorPage http.Handler
}

// NewMiddlewareChain creates a new middleware chain with the standard stack.
//
// Panics if Config or Logger is nil.
func NewMiddlewareChain(deps MiddlewareDependencies) *MiddlewareChain {
	if deps.Config == nil {
		panic("MiddlewareChain: config cannot be nil")
	}
	if deps.Logger == nil {
		panic("MiddlewareChain: logger cannot be nil")
	}

	chain := &MiddlewareChain{
		config:      deps.Config,
		logger:      deps.Logger.WithComponent("http"),
		metrics:     deps.Metrics,
		recovery:    deps.ErrorPage,
		middlewares: make([]Middleware, 0, 6),
	}
	chain.buildDefaultStack()
	return chain
}

func (mc *MiddlewareChain) buildDefaultStack() {
	mc.AddMiddleware(RequestID())
	mc.AddMiddleware(Recovery(mc.logger, mc.recovery))
	mc.AddMiddleware(Logging(mc.logger))
	if mc.metrics != nil {
		mc.AddMiddleware(mc.metrics.Middleware())
	}
	mc.AddMiddleware(CORS(mc.config.Server.AllowedOrigins, !mc.config.IsProduction()))
	mc.AddMiddleware(SecurityHeaders(mc.config.IsProduction()))
}

// AddMiddleware adds a middleware as the innermost wrapper.
func (mc *MiddlewareChain) AddMiddleware(middleware Middleware) {
	mc.middlewares = append(mc.middlewares, middleware)
}

// Middlewares returns the stack in execution order, e.g. for chi's Use.
func (mc *MiddlewareChain) Middlewares() []func(http.Handler) http.Handler {
	out := make([]func(http.Handler) http.Handler, len(mc.middlewares))
	for i, m := range mc.middlewares {
		out[i] = m
	}
	return out
}

// Apply wraps handler with the whole chain.
//
// Panics if handler is nil.
func (mc *MiddlewareChain) Apply(handler http.Handler) http.Handler {
	if handler == nil {
		panic("MiddlewareChain.Apply: handler cannot be nil")
	}

	wrapped := handler
	for i := len(mc.middlewares) - 1; i >= 0; i-- {
		wrapped = mc.middlewares[i](wrapped)
		if wrapped == nil {
			panic(fmt.Sprintf("MiddlewareChain.Apply: middleware at index %d returned nil handler", i))
		}
	}
	return wrapped
}

// GetMiddlewareCount returns the number of middlewares in the chain
func (mc *MiddlewareChain) GetMiddlewareCount() int {
	return len(mc.middlewares)
}
