// Package server exposes the engine over HTTP and WebSocket, grounded
// on the teacher's cmd/server/main.go bootstrap: gin.New (not
// gin.Default, so middleware order is explicit), CORS configured
// before any other middleware, a raw http.Handler wrapper so
// WebSocket upgrades bypass Gin's ResponseWriter, and graceful
// shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/echoid/engine/internal/codebook"
	enginelog "github.com/echoid/engine/internal/logger"
	"github.com/echoid/engine/internal/recognizer"
	"github.com/echoid/engine/internal/store"
)

// Config configures a Server's HTTP surface. RecognizerConfig is the
// template every /identify call and WebSocket session constructs its
// own Recognizer from (a Recognizer carries per-session state and is
// never shared across requests).
type Config struct {
	Addr            string
	AllowedOrigins  []string
	RecognizerCfg   recognizer.Config
	ShutdownTimeout time.Duration
}

// DefaultConfig returns sane defaults for local development.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		AllowedOrigins:  []string{"http://localhost:3000"},
		RecognizerCfg:   recognizer.DefaultConfig(),
		ShutdownTimeout: 30 * time.Second,
	}
}

// Server wires the engine's store and codebook to HTTP and WebSocket
// handlers.
type Server struct {
	cfg   Config
	store store.DataStore
	cb    *codebook.Codebook
	log   *zap.Logger

	router *gin.Engine
	srv    *http.Server
}

// New constructs a Server bound to s and cb. log defaults to a no-op
// logger, matching every other engine constructor.
func New(cfg Config, s store.DataStore, cb *codebook.Codebook, log *zap.Logger) *Server {
	if log == nil {
		log = enginelog.Nop()
	}
	srv := &Server{cfg: cfg, store: s, cb: cb, log: log}
	srv.router = srv.newRouter()
	return srv
}

func (s *Server) newRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = s.cfg.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.Use(requestIDMiddleware())
	r.Use(ginLoggerMiddleware(s.log))
	r.Use(gin.Recovery())

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		api.POST("/index", s.handleIndex)
		api.POST("/identify", s.handleIdentify)
	}

	return r
}

// Handler returns the combined HTTP handler: Gin for every route
// except the WebSocket upgrade path, which is routed to a raw
// http.Handler because Gin's ResponseWriter wrapper interferes with
// connection hijacking.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/api/v1/ws/identify" {
			s.handleIdentifyWS(w, req)
			return
		}
		s.router.ServeHTTP(w, req)
	})
}

// Serve starts the HTTP server and blocks until ctx is canceled, then
// drains in-flight requests within cfg.ShutdownTimeout.
func (s *Server) Serve(ctx context.Context) error {
	s.srv = &http.Server{Addr: s.cfg.Addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", zap.String("addr", s.cfg.Addr))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"service":   "echoid",
	})
}
