package publicapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/techwm-project/techwm/pkg/publicapi/middleware"
	"github.com/techwm-project/techwm/pkg/system"
)

// APIPrefix is the path prefix of every endpoint.
const APIPrefix = "/api/v1"

type Config struct {
	// These are TCP connection deadlines and not HTTP timeouts. They don't control the time it takes for our handlers
	// to complete. Deadlines operate on the connection, so our server will fail to return a result only after
	// the handlers try to access connection properties
	ReadHeaderTimeout time.Duration // the amount of time allowed to read request headers
	ReadTimeout       time.Duration // the maximum duration for reading the entire request, including the body
	WriteTimeout      time.Duration // the maximum duration before timing out writes of the response

	// This represents maximum duration for handlers to complete, or else fail the request with 503 error code.
	RequestHandlerTimeout time.Duration

	// MaxWait caps the wait a client can ask for when submitting a job.
	MaxWait time.Duration

	// ThrottleLimit is the number of requests per second allowed per client.
	ThrottleLimit float64
}

var DefaultConfig = Config{
	ReadHeaderTimeout:     10 * time.Second,
	ReadTimeout:           20 * time.Second,
	WriteTimeout:          45 * time.Second,
	RequestHandlerTimeout: 40 * time.Second,
	MaxWait:               30 * time.Second,
	ThrottleLimit:         1000,
}

type ServerParams struct {
	Catalog   Catalog
	Scheduler Scheduler
	Host      string
	Port      int
	Config    Config
}

// Server is the REST API in front of the catalog and the scheduler.
type Server struct {
	catalog   Catalog
	scheduler Scheduler
	Host      string
	Port      int
	config    Config
	router    *mux.Router
}

func NewServer(params ServerParams) (*Server, error) {
	if params.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if params.Scheduler == nil {
		return nil, errors.New("scheduler is required")
	}
	if params.Config == (Config{}) {
		params.Config = DefaultConfig
	}
	s := &Server{
		catalog:   params.Catalog,
		scheduler: params.Scheduler,
		Host:      params.Host,
		Port:      params.Port,
		config:    params.Config,
	}
	s.router = s.newRouter()
	return s, nil
}

func (s *Server) newRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.RequestID, middleware.RequestLogger(log.Logger, zerolog.DebugLevel))

	subrouter := router.PathPrefix(APIPrefix).Subrouter()
	subrouter.Handle("/healthz", s.instrument("healthz", handleError(returnsJSON(s.healthz)))).Methods(http.MethodGet)
	subrouter.Handle("/version", s.instrument("version", handleError(returnsJSON(s.version)))).Methods(http.MethodGet)
	subrouter.Handle("/stats", s.instrument("stats", handleError(returnsJSON(s.stats)))).Methods(http.MethodGet)

	resources := subrouter.PathPrefix("/resources").Subrouter()
	resources.Handle("", s.instrument("resources/attach", handleError(returnsJSON(expectsJSON(s.attachResource))))).
		Methods(http.MethodPost)
	resources.Handle("", s.instrument("resources/list", handleError(returnsJSON(s.listResources)))).
		Methods(http.MethodGet)
	resources.Handle("/{id}", s.instrument("resources/describe", handleError(returnsJSON(s.describeResource)))).
		Methods(http.MethodGet)

	jobs := subrouter.PathPrefix("/jobs").Subrouter()
	jobs.Handle("", s.instrument("jobs/submit", handleError(returnsJSON(expectsJSON(s.submitJob))))).
		Methods(http.MethodPost)
	jobs.Handle("", s.instrument("jobs/list", handleError(returnsJSON(s.listJobs)))).
		Methods(http.MethodGet)
	jobs.Handle("/{id}", s.instrument("jobs/describe", handleError(returnsJSON(s.describeJob)))).
		Methods(http.MethodGet)
	jobs.Handle("/{id}/cancel", s.instrument("jobs/cancel", handleError(returnsJSON(s.cancelJob)))).
		Methods(http.MethodPost)
	jobs.Handle("/{id}/finish", s.instrument("jobs/finish", handleError(returnsJSON(s.finishJob)))).
		Methods(http.MethodPost)

	// middlewares only run for matched routes
	router.NotFoundHandler = middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, errNotFound(r))
	}))
	return router
}

// Handler returns the root handler, for serving from tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// GetURI returns the HTTP URI that the server is listening on.
func (s *Server) GetURI() string {
	return fmt.Sprintf("http://%s", net.JoinHostPort(s.Host, fmt.Sprint(s.Port)))
}

// ListenAndServe listens for and serves HTTP requests against the API
// server until it is shut down through cm.
func (s *Server) ListenAndServe(ctx context.Context, cm *system.CleanupManager) error {
	srv := http.Server{
		Handler:           s.router,
		Addr:              net.JoinHostPort(s.Host, fmt.Sprint(s.Port)),
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	log.Ctx(ctx).Info().Msgf("API server listening on %s", srv.Addr)

	// Cleanup resources when system is done:
	cm.RegisterCallbackWithContext(srv.Shutdown)

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		log.Ctx(ctx).Debug().Msgf("API server closed on %s", srv.Addr)
		return nil // expected error if the server is shut down
	}
	return err
}

func (s *Server) instrument(name string, fn http.Handler) http.Handler {
	// otel handler
	handler := otelhttp.NewHandler(fn, fmt.Sprintf("pkg/publicapi/%s", name))

	// throttling handler
	handler = tollbooth.LimitHandler(
		tollbooth.NewLimiter(
			s.config.ThrottleLimit,
			&limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour}),
		handler)

	// timeout handler
	return http.TimeoutHandler(handler, s.config.RequestHandlerTimeout, "Server Timeout!")
}
