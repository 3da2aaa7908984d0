package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/evsynth/pkg/cache"
	"github.com/matzehuels/evsynth/pkg/errors"
	"github.com/matzehuels/evsynth/pkg/observability"
)

const (
	headerRequestID = "X-Request-ID"
	headerAPIKey    = "X-API-Key"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	keyerKey
)

// requestID reuses the caller's X-Request-ID or issues a new UUID.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// observe fires the HTTP hooks around each request.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
	})
}

// authenticate checks the API key and scopes the cache keyer to it. Without
// configured keys every request shares the default keyer.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.keys == nil {
			next.ServeHTTP(w, r)
			return
		}
		key := r.Header.Get(headerAPIKey)
		if key == "" || !s.keys[key] {
			s.writeError(w, r, errors.New(errors.ErrCodeUnauthorized, "missing or unknown API key"))
			return
		}
		keyer := cache.NewScopedKeyer(nil, "tenant:"+cache.Hash([]byte(key))[:16]+":")
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), keyerKey, keyer)))
	})
}

func keyerFrom(ctx context.Context) cache.Keyer {
	k, _ := ctx.Value(keyerKey).(cache.Keyer)
	return k
}

func (s *Server) requestLogger(r *http.Request) *log.Logger {
	return s.logger.With("request_id", requestIDFrom(r.Context()))
}
