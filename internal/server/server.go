package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	goHash "github.com/MrEthical07/goHash"
)

// Server serves a goHash Engine over HTTP.
type Server struct {
	engine *goHash.Engine
	redis  redis.UniversalClient
	logger *slog.Logger
	config Config
}

// New returns a Server for engine. redisClient is optional and only used by the
// health check; logger defaults to a discarding logger.
func New(engine *goHash.Engine, redisClient redis.UniversalClient, cfg Config, logger *slog.Logger) (*Server, error) {
	if engine == nil {
		return nil, errors.New("server: engine is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		engine: engine,
		redis:  redisClient,
		logger: logger,
		config: cfg,
	}, nil
}

// HTTPServer wraps the router in an http.Server with the configured timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Setup(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       time.Minute,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
}
