// internal/adapters/in/http/middleware/recover.go
package middleware

import (
	"encoding/json"
	"log"
	"net/http"
	"runtime/debug"
)

// ErrorBody is the JSON error shape of every storefront handler.
type ErrorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// WriteError writes ErrorBody, tagged with the request id RequestLog assigned.
func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	body := ErrorBody{Error: msg}
	if r != nil {
		body.RequestID = RequestID(r.Context())
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// headerTracker remembers whether the handler already started its response.
type headerTracker struct {
	http.ResponseWriter
	started bool
}

func (t *headerTracker) WriteHeader(code int) {
	t.started = true
	t.ResponseWriter.WriteHeader(code)
}

func (t *headerTracker) Write(b []byte) (int, error) {
	t.started = true
	return t.ResponseWriter.Write(b)
}

// Recover converts a handler panic into a 500 ErrorBody. When the handler had
// already written part of its response, the connection is left as is and only
// the panic is logged.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tw := &headerTracker{ResponseWriter: w}
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			rid := RequestID(r.Context())
			log.Printf("[recover] PANIC %s %s rid=%s: %v\n%s", r.Method, r.URL.Path, rid, rec, debug.Stack())
			if tw.started {
				return
			}
			WriteError(w, r, http.StatusInternalServerError, "internal server error")
		}()

		next.ServeHTTP(tw, r)
	})
}
