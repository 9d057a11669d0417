package server

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teranos/actorgraph/errors"
	"github.com/teranos/actorgraph/logger"
)

var httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "actorgraph_http_requests_total",
	Help: "HTTP requests by route pattern and status code",
}, []string{"route", "code"})

// setupHTTPRoutes registers every endpoint on the server's mux
func (s *Server) setupHTTPRoutes() {
	s.mux = http.NewServeMux()

	// Proxy API, paths as the Angular client calls them
	s.handle("GET /api/movie/id/{id}", s.HandleMovieByID)
	s.handle("GET /api/movie/allMovies", s.HandleAllMovies)
	s.handle("GET /api/actor/id/{id}", s.HandleActorByID)
	s.handle("GET /api/actor/name/{name}", s.HandleActorByName)
	s.handle("GET /api/actor/id/{id}/movies", s.HandleMoviesOfActor)
	s.handle("GET /api/actor/id/{id}/collaborators", s.HandleCollaborators)
	s.handle("POST /api/actor/moviecount/{$}", s.HandleMovieCounts)
	s.handle("POST /api/actor/moviecount", s.HandleMovieCounts)
	s.handle("GET /api/search/actorname/{name}", s.HandleSearchActorName)
	s.handle("GET /api/search/random/{$}", s.HandleRandomActor)
	s.handle("GET /api/search/random", s.HandleRandomActor)
	s.handle("GET /api/search/random/movie/{range}", s.HandleRandomMovie)

	// Chart summaries
	s.handle("GET /api/charts/timeline", s.HandleTimeline)
	s.handle("GET /api/charts/actor/{id}", s.HandleActorChart)

	s.handle("GET /ws", s.HandleWebSocket)
	s.handle("GET /health", s.HandleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	// CORS wraps the whole mux so preflight requests never reach a route
	s.handler = s.corsMiddleware(s.mux.ServeHTTP)
}

// handle registers pattern with request instrumentation
func (s *Server) handle(pattern string, h http.HandlerFunc) {
	s.mux.Handle(pattern, s.instrument(pattern, h))
}

// corsMiddleware adds CORS headers for configured origins. OPTIONS requests
// are answered here.
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.checkOrigin(r) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS, PUT, PATCH, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "X-Requested-With,content-type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// instrument logs each request at debug and counts it by route and status
func (s *Server) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := logger.WithRequestID(r.Context(), requestID)

		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))

		httpRequestsTotal.WithLabelValues(route, strconv.Itoa(rec.statusCode)).Inc()
		logger.LoggerFromContext(ctx).Debugw("HTTP request",
			logger.FieldMethod, r.Method,
			logger.FieldPath, r.URL.Path,
			logger.FieldStatus, rec.statusCode,
			logger.FieldDurationMS, time.Since(start).Milliseconds(),
		)
	})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rr *statusRecorder) WriteHeader(code int) {
	if !rr.wroteHeader {
		rr.statusCode = code
		rr.wroteHeader = true
	}
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *statusRecorder) Write(b []byte) (int, error) {
	if !rr.wroteHeader {
		rr.wroteHeader = true
	}
	return rr.ResponseWriter.Write(b)
}

// Hijack hands the connection to the websocket upgrader
func (rr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rr.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	rr.statusCode = http.StatusSwitchingProtocols
	rr.wroteHeader = true
	return h.Hijack()
}

// Unwrap lets http.ResponseController reach the underlying writer
func (rr *statusRecorder) Unwrap() http.ResponseWriter {
	return rr.ResponseWriter
}
