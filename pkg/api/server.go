package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rzzdr/mc-scenario-pricer/pkg/models"
	"github.com/rzzdr/mc-scenario-pricer/pkg/utils/logger"
)

// Config holds the configuration for the API server
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Upper bound for one simulation request
	RunTimeout time.Duration

	// Simulation requests per second, 0 disables limiting
	RateLimit float64
	RateBurst int

	// Largest accepted simulation request body
	MaxBodyBytes int64

	// Used for every field a simulation request leaves out
	DefaultParameters models.SimulationParameters
}

// Simulator runs pricing simulations
type Simulator interface {
	Run(ctx context.Context, params models.SimulationParameters) (*models.SimulationResult, error)
	RunWithSeed(ctx context.Context, params models.SimulationParameters, seed uint64) (*models.SimulationResult, error)
}

// ResultStore keeps the latest completed run
type ResultStore interface {
	Save(result *models.SimulationResult) error
	Latest() (*models.SimulationResult, error)
}

// Publisher ships completed runs downstream
type Publisher interface {
	Publish(ctx context.Context, result *models.SimulationResult) error
}

// Notifier pushes run events to live clients
type Notifier interface {
	HandleWebSocket(w http.ResponseWriter, r *http.Request)
	BroadcastRunCompleted(summary models.RunSummary)
}

// Recorder receives API level metrics
type Recorder interface {
	RecordAPIRequest(method, path string, status int, latency time.Duration)
	RecordPublish(status string)
}

// Dependencies groups the collaborators of the server. Publisher and
// Notifier may be nil.
type Dependencies struct {
	Simulator Simulator
	Store     ResultStore
	Publisher Publisher
	Notifier  Notifier
	Recorder  Recorder
}

// Server represents the API server
type Server struct {
	config     Config
	router     *gin.Engine
	httpServer *http.Server
	handlers   *Handlers
	recorder   Recorder
	notifier   Notifier
	log        *logger.Logger
}

// NewServer creates a new API server
func NewServer(config Config, deps Dependencies) *Server {
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = 10 * time.Second
	}

	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 120 * time.Second
	}

	if config.RunTimeout <= 0 {
		config.RunTimeout = config.WriteTimeout
	}

	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = 1 << 20
	}

	server := &Server{
		config:   config,
		router:   gin.New(),
		handlers: CreateHandlers(config, deps),
		recorder: deps.Recorder,
		notifier: deps.Notifier,
		log:      logger.GetLogger("api.server"),
	}

	server.SetupRoutes()

	return server
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the API server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.log.Infof("Starting API server on %s", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop stops the API server gracefully
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer != nil {
		s.log.Info("Stopping API server")
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}
