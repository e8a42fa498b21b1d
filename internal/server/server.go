package server

import (
	"context"
	"net"
	nethttp "net/http"
	"time"

	"github.com/GriffinCanCode/TermOS/backend/internal/api/middleware"
	"github.com/GriffinCanCode/TermOS/backend/internal/config"
	apihttp "github.com/GriffinCanCode/TermOS/backend/internal/http"
	"github.com/GriffinCanCode/TermOS/backend/internal/logging"
	"github.com/GriffinCanCode/TermOS/backend/internal/monitoring"
	"github.com/GriffinCanCode/TermOS/backend/internal/terminal"
	"github.com/GriffinCanCode/TermOS/backend/internal/ws"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server wraps the HTTP server and the session manager it fronts.
type Server struct {
	router  *gin.Engine
	manager *terminal.Manager
	httpSrv *nethttp.Server
	log     *logging.Logger
}

// New wires the session manager, event hub, and HTTP surface.
func New(cfg *config.Config, log *logging.Logger) *Server {
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := monitoring.NewMetrics()
	hub := ws.NewHub(log.Named("ws"))

	resolver := terminal.NewResolver(log.Named("resolver"), cfg.Terminal.AgentBinary, cfg.Terminal.EnvSnapshotTimeout)
	factory := terminal.NewFactory(log.Named("backend"))
	manager := terminal.NewManager(
		log.Named("terminal"),
		resolver,
		factory,
		hub,
		monitoring.NewObserver(metrics),
		terminal.Config{
			HighWater:    cfg.Terminal.BufferHighWater,
			LowWater:     cfg.Terminal.BufferLowWater,
			DefaultShell: cfg.Terminal.Shell,
		},
	)

	handlers := apihttp.NewHandlers(manager, log.Named("http"))
	wsHandler := ws.NewHandler(hub, manager, metrics, log.Named("ws"))

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	router.Use(monitoring.Middleware(metrics))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))

	router.POST("/sessions", handlers.CreateSession)
	router.GET("/sessions", handlers.ListSessions)
	router.GET("/sessions/:id", handlers.GetSession)
	router.POST("/sessions/:id/write", handlers.WriteSession)
	router.POST("/sessions/:id/resize", handlers.ResizeSession)
	router.POST("/sessions/:id/kill", handlers.KillSession)
	router.POST("/sessions/:id/restart", handlers.RestartSession)
	router.GET("/sessions/:id/buffer", handlers.GetBuffer)
	router.DELETE("/sessions/:id/buffer", handlers.ClearBuffer)

	router.GET("/ws", wsHandler.HandleConnection)

	return &Server{
		router:  router,
		manager: manager,
		log:     log,
		httpSrv: &nethttp.Server{
			Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
	}
}

// Manager exposes the session manager, mainly for tests.
func (s *Server) Manager() *terminal.Manager {
	return s.manager
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves until the listener fails or Close is called.
func (s *Server) Run() error {
	s.log.Info("server listening", zap.String("addr", s.httpSrv.Addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && err != nethttp.ErrServerClosed {
		return err
	}
	return nil
}

// Close kills every session and shuts the HTTP server down.
func (s *Server) Close() error {
	s.manager.Dispose()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(ctx)
}
