// internal/adapters/in/http/devapi/server.go
package devapi

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"storefront/internal/adapters/in/http/middleware"
	cartdom "storefront/internal/domain/cart"
	catalogdom "storefront/internal/domain/catalog"
	sessiondom "storefront/internal/domain/session"
)

const maxBody = 1 << 20

// Options configures the dev API router.
type Options struct {
	Seed Seed
	// AllowedOrigins for CORS; empty means "*".
	AllowedOrigins []string
}

// Server is an in-memory stand-in for the storefront API.
type Server struct {
	st   *store
	opts Options
}

func NewServer(opts Options) *Server {
	if len(opts.Seed.Stocks) == 0 && len(opts.Seed.Groups) == 0 {
		opts.Seed = DefaultSeed()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{st: newStore(opts.Seed), opts: opts}
}

// Router builds the chi router.
//
//	POST   /login          (open)
//	GET    /groups         (bearer)
//	POST   /getstockslite  (bearer)
//	GET    /cart           (bearer)
//	POST   /cart           (bearer)
//	PUT    /cart           (bearer)
//	DELETE /cart           (bearer)
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// CORS outermost so error responses carry the headers too.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.HeaderRequestID},
		ExposedHeaders: []string{middleware.HeaderRequestID},
		MaxAge:         600,
	}))
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recover)

	r.Post("/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(s.st))

		r.Get("/groups", s.handleGroups)
		r.Post("/getstockslite", s.handleStocks)

		r.Get("/cart", s.handleCartGet)
		r.Post("/cart", s.handleCartAdd)
		r.Put("/cart", s.handleCartUpdate)
		r.Delete("/cart", s.handleCartDelete)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, r, http.StatusNotFound, "not_found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, r, http.StatusMethodNotAllowed, "method_not_allowed")
	})
	return r
}

// ------------------------------------------------------------
// handlers
// ------------------------------------------------------------

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds sessiondom.APICredentials
	if !decode(w, r, &creds) {
		return
	}
	tok, err := s.st.issueToken(creds)
	if err != nil {
		writeErr(w, r, http.StatusBadRequest, "email is required")
		return
	}
	log.Printf("[devapi] issued token for email=%q", strings.TrimSpace(creds.Email))
	writeJSON(w, http.StatusOK, map[string]string{"token": tok})
}

func (s *Server) handleGroups(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": s.st.listGroups()})
}

func (s *Server) handleStocks(w http.ResponseWriter, r *http.Request) {
	var q catalogdom.StocksQuery
	if !decode(w, r, &q) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": s.st.listStocks(q)})
}

func (s *Server) handleCartGet(w http.ResponseWriter, r *http.Request) {
	sid, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("sessionID")), 10, 64)
	if err != nil || sid == 0 {
		writeErr(w, r, http.StatusBadRequest, "sessionID is required")
		return
	}
	items := s.st.cart(sid)
	if items == nil {
		items = []cartdom.Item{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "items": items})
}

func (s *Server) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	var req cartdom.AddRequest
	if !decode(w, r, &req) {
		return
	}
	s.writeMutation(w, r, s.st.add(req))
}

func (s *Server) handleCartUpdate(w http.ResponseWriter, r *http.Request) {
	var req cartdom.UpdateRequest
	if !decode(w, r, &req) {
		return
	}
	s.writeMutation(w, r, s.st.update(req))
}

func (s *Server) handleCartDelete(w http.ResponseWriter, r *http.Request) {
	var req cartdom.DeleteRequest
	if !decode(w, r, &req) {
		return
	}
	s.writeMutation(w, r, s.st.remove(req))
}

func (s *Server) writeMutation(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case errors.Is(err, errUnknownStock), errors.Is(err, errUnknownLine):
		writeErr(w, r, http.StatusNotFound, err.Error())
	default:
		writeErr(w, r, http.StatusBadRequest, err.Error())
	}
}

// ------------------------------------------------------------
// helpers
// ------------------------------------------------------------

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(dst); err != nil {
		writeErr(w, r, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, r *http.Request, status int, msg string) {
	middleware.WriteError(w, r, status, msg)
}
