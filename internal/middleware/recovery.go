package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/solidprinciples/solid/internal/logging"
)

// Recovery turns a handler panic into a logged error and a 500 response.
// errorPage renders the body; when nil a plain text body is written.
func Recovery(logger logging.Logger, errorPage http.Handler) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", rec)
				}
				logger.Error(r.Context(), err, "Recovered from panic",
					"path", r.URL.Path,
					"request_id", GetRequestID(r.Context()),
					"stack", string(debug.Stack()),
				)

				if errorPage != nil {
					errorPage.ServeHTTP(w, r)
					return
				}
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
