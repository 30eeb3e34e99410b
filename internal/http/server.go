package http

import (
	"context"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"canestats/internal/aggregator"
	"canestats/internal/core"
	"canestats/internal/log"
	"canestats/internal/metrics"
	"canestats/internal/middleware/ratelimit"
	"canestats/internal/middleware/security"
	"canestats/internal/middleware/trace"
	"canestats/internal/services"
	"canestats/internal/storage"
	appweb "canestats/web"
)

// Dashboard is the read side the handlers render from.
type Dashboard interface {
	Ready() bool
	Info() (services.DatasetInfo, bool)
	View(ctx context.Context, f core.FilterState) (aggregator.ViewData, error)
	Options(ctx context.Context, f core.FilterState) (aggregator.Options, error)
	MetricSeries(ctx context.Context, f core.FilterState, m aggregator.Metric) (aggregator.MetricSeries, error)
	Compare(ctx context.Context, f core.FilterState, baseMonth, targetMonth string) (aggregator.Comparison, error)
}

// SnapshotLister lists stored dataset snapshots, newest first.
type SnapshotLister interface {
	List(ctx context.Context, limit int) ([]storage.Snapshot, error)
}

// Options configures NewServer. Dashboard is required; everything else has
// a usable zero value.
type Options struct {
	Addr      string
	Dashboard Dashboard
	Snapshots SnapshotLister
	Metrics   *metrics.Metrics
	Gate      SessionGate
	Logger    *log.Logger

	AllowedOrigins     []string
	RateLimitPerMinute int
}

// Server wraps http.Server with dashboard-specific functionality
type Server struct {
	http.Server
	templates *template.Template
	dashboard Dashboard
	snapshots SnapshotLister
	gate      SessionGate
	metrics   *metrics.Metrics
	logger    *log.Logger

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	started      time.Time
	shutdownOnce sync.Once
}

// NewServer builds the router and its middleware chain.
func NewServer(opts Options) *Server {
	if opts.Gate == nil {
		opts.Gate = OpenGate{}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Logger == nil {
		opts.Logger = log.FromContext(context.Background())
	}
	logger := opts.Logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		dashboard: opts.Dashboard,
		snapshots: opts.Snapshots,
		gate:      opts.Gate,
		metrics:   opts.Metrics,
		logger:    logger,
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:  security.NewDetector(logger.WithComponent(log.ComponentSecurity).Logger),
		started:   time.Now(),
	}
	s.tracer = trace.NewMiddleware(logger.WithComponent(log.ComponentTrace).Logger, s.detector.ExtractClientIP, s.observe)

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Error("Template parsing failed", log.FieldError, err, log.FieldComponent, log.ComponentTemplate)
	} else {
		s.templates = tmpl
	}

	r := mux.NewRouter()
	r.Use(s.recoverPanics, s.tracer.Middleware,
		log.Middleware(logger),
		log.RequestIDMiddleware(func(r *http.Request) string { return trace.GetRequestID(r.Context()) }),
		s.detector.Middleware,
		security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware,
		s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimit))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, NotFoundError("not found"))
	})

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	if staticFS, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.PathPrefix("/static/").Handler(security.StaticAssetMiddleware(3600)(static)).Methods(http.MethodGet)
	} else {
		logger.Error("Static assets unavailable", log.FieldError, err)
	}

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(log.ComponentMiddleware(log.ComponentDashboard), s.requireSession)
	api.HandleFunc("/options", s.handleOptions).Methods(http.MethodGet)
	api.HandleFunc("/view", s.handleView).Methods(http.MethodGet)
	api.HandleFunc("/kpi", s.handleKPI).Methods(http.MethodGet)
	api.HandleFunc("/pie", s.handlePie).Methods(http.MethodGet)
	api.HandleFunc("/bar", s.handleBar).Methods(http.MethodGet)
	api.HandleFunc("/metrics/{metric}", s.handleMetric).Methods(http.MethodGet)
	api.HandleFunc("/compare", s.handleCompare).Methods(http.MethodGet)
	api.HandleFunc("/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	api.HandleFunc("/snapshots", s.handleSnapshots).Methods(http.MethodGet)
	api.HandleFunc("/export.xlsx", s.handleExport).Methods(http.MethodGet)

	var handler http.Handler = r
	if len(opts.AllowedOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", trace.RequestIDHeader},
			ExposedHeaders: []string{trace.RequestIDHeader, "Content-Disposition"},
			MaxAge:         86400,
		}).Handler(r)
	}

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	return s
}

// Shutdown gracefully shuts down the server and stops background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// observe feeds request metrics keyed by route template, so path parameters
// do not explode label cardinality.
func (s *Server) observe(r *http.Request, status int, elapsed time.Duration) {
	route := "unmatched"
	if cur := mux.CurrentRoute(r); cur != nil {
		if tpl, err := cur.GetPathTemplate(); err == nil {
			route = tpl
		}
	}
	s.metrics.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
	s.metrics.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.ErrorContext(r.Context(), "Panic recovered",
					"panic", rec,
					"stack", string(debug.Stack()),
					log.FieldPath, r.URL.Path)
				s.writeError(w, r, InternalServerError("internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	s.writeError(w, r, ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Header("Retry-After", "60"))
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, b *JSONResponseBuilder) {
	b.WithRequestID(trace.GetRequestID(r.Context())).Write(w)
}

// writeServiceError maps dashboard errors onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNotReady):
		s.writeError(w, r, ServiceUnavailableError("dataset is still loading"))
	case errors.Is(err, services.ErrInvalidFilter):
		s.writeError(w, r, BadRequestError(err.Error()))
	default:
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), "Dashboard request failed",
			err, log.ComponentDashboard, log.OpDerive,
			log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent(), r.Referer()))
		s.writeError(w, r, InternalServerError("internal server error"))
	}
}

// filters parses the request filters, answering 400 itself on failure.
func (s *Server) filters(w http.ResponseWriter, r *http.Request) (core.FilterState, bool) {
	f, err := ParseFilters(r.URL.Query())
	if err != nil {
		s.metrics.InvalidFilters.Inc()
		s.writeError(w, r, BadRequestError(err.Error()))
		return core.FilterState{}, false
	}
	return f, true
}
