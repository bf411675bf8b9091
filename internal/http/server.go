package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"budgetapi/internal/auth"
	"budgetapi/internal/cache"
	"budgetapi/internal/log"
	"budgetapi/internal/middleware/ratelimit"
	"budgetapi/internal/middleware/security"
	"budgetapi/internal/middleware/trace"
	"budgetapi/internal/services"
)

const (
	defaultFailureDelay = 400 * time.Millisecond
	defaultName         = "Budget API"
)

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Ledger   *services.LedgerService
	Accounts *auth.Accounts
	Tokens   *auth.TokenIssuer
	Logger   *log.Logger

	// Name is used in the root status message.
	Name              string
	CORSOrigins       []string
	TrustedProxies    []string
	LoginRateLimit    int
	LoginFailureDelay time.Duration
	CacheStats        func() cache.Stats
}

type Server struct {
	http.Server
	ledger   *services.LedgerService
	accounts *auth.Accounts
	tokens   *auth.TokenIssuer
	logger   *log.Logger

	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	detector *security.Detector

	name         string
	failureDelay time.Duration
	cacheStats   func() cache.Stats
	started      time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	limitCfg := ratelimit.DefaultConfig()
	if deps.LoginRateLimit > 0 {
		limitCfg.Requests = deps.LoginRateLimit
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 16,
		},
		ledger:       deps.Ledger,
		accounts:     deps.Accounts,
		tokens:       deps.Tokens,
		logger:       logger,
		limiter:      ratelimit.NewLimiter(limitCfg),
		detector:     security.NewDetector(logger),
		name:         deps.Name,
		failureDelay: deps.LoginFailureDelay,
		cacheStats:   deps.CacheStats,
		started:      time.Now(),
	}
	if s.name == "" {
		s.name = defaultName
	}
	if s.failureDelay <= 0 {
		s.failureDelay = defaultFailureDelay
	}
	for _, cidr := range deps.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err.Error())
		}
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	s.Handler = s.chain(s.routes(), deps.CORSOrigins)
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)

	limited := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusTooManyRequests, "Too many login attempts")
	})
	r.Handle("/login", limited(http.HandlerFunc(s.handleLogin))).Methods(http.MethodPost)

	authed := auth.Middleware(s.tokens, s.accounts, writeAuthError)
	protect := func(path string, h http.HandlerFunc, method string) {
		r.Handle(path, authed(h)).Methods(method)
	}
	// Everything below needs a verified token, operational endpoints
	// included. GET / is the unauthenticated liveness check.
	protect("/healthz", handleHealth, http.MethodGet)
	protect("/readyz", s.handleReady, http.MethodGet)
	protect("/metrics", s.handleMetrics, http.MethodGet)
	protect("/verify-token", s.handleVerifyToken, http.MethodGet)
	protect("/calculate-budget", s.handleCalculateBudget, http.MethodPost)
	protect("/monthly-tracker/{month}", s.handleGetTracker, http.MethodGet)
	protect("/monthly-tracker/{month}", s.handleSaveActuals, http.MethodPost)
	protect("/overview/annual", s.handleAnnualOverview, http.MethodGet)

	return r
}

// chain wraps the router; tracing is outermost.
func (s *Server) chain(h http.Handler, origins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", trace.RequestIDHeader},
		ExposedHeaders:   []string{trace.RequestIDHeader},
		AllowCredentials: true,
	})

	h = c.Handler(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = log.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})(h)
	h = log.Middleware(s.logger)(h)
	h = s.tracer.Middleware(h)
	return h
}

// Shutdown gracefully shuts down the server and its background cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
