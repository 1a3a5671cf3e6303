package rpc

import (
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/sealwatch/slasher/network/httputil"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries the identifier of an API request. Clients may set
// it; otherwise one is generated.
const RequestIDHeader = "X-Request-Id"

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		log.WithFields(logrus.Fields{
			"requestId": id,
			"method":    r.Method,
			"path":      r.URL.Path,
		}).Debug("Serving request")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) corsMiddleware(h http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.allowedOrigins,
		AllowedMethods:   []string{http.MethodPost, http.MethodGet, http.MethodPut, http.MethodOptions},
		AllowCredentials: true,
		MaxAge:           600,
		AllowedHeaders:   []string{"*"},
	})
	return c.Handler(h)
}

// rateLimit admits a request from a remote host only while the host's
// bucket has room. Each admitted request takes one unit.
func (s *Server) rateLimit(next http.HandlerFunc) http.HandlerFunc {
	if s.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		key := remoteHost(r)
		if s.limiter.Add(key, 1) == 0 {
			rateLimitedRequests.Inc()
			log.WithField("remote", key).Debug("Rate limited request")
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(1/s.cfg.slashRate))))
			httputil.HandleError(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
