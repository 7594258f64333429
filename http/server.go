// Package http 提供HTTP服务器功能
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"fraudlens/ml"
	"fraudlens/monitoring"
	"fraudlens/store"
)

// ServerConfig 服务器配置
type ServerConfig struct {
	Port           int
	Timeout        time.Duration
	MaxUploadBytes int64
	PageSize       int
	AllowedOrigins []string
}

// DefaultServerConfig 默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:           8080,
		Timeout:        30 * time.Second,
		MaxUploadBytes: 16 << 20,
		PageSize:       25,
		AllowedOrigins: []string{"*"},
	}
}

// Deps 请求处理器依赖；会话槽等状态通过句柄传入而不是包级变量
type Deps struct {
	Logger    *zap.SugaredLogger
	Store     *store.Store
	Predictor *ml.Predictor
	Hub       *monitoring.Hub
	Metrics   *monitoring.Collector
}

// Server HTTP服务器
type Server struct {
	server *http.Server
	config ServerConfig
	deps   Deps
}

// NewServer 创建HTTP服务器
func NewServer(config ServerConfig, deps Deps) *Server {
	if config.PageSize <= 0 {
		config.PageSize = DefaultServerConfig().PageSize
	}
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = DefaultServerConfig().MaxUploadBytes
	}

	s := &Server{config: config, deps: deps}

	mux := http.NewServeMux()
	s.registerAPIRoutes(mux)
	s.registerPageRoutes(mux)

	chain := Chain(
		RecoveryMiddleware(deps.Logger),
		LoggerMiddleware(deps.Logger),
		SecurityHeadersMiddleware,
		CORSMiddleware(config.AllowedOrigins),
		TimeoutMiddleware(config.Timeout),
		RequestSizeMiddleware(config.MaxUploadBytes),
	)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      chain(mux),
		ReadTimeout:  config.Timeout,
		WriteTimeout: config.Timeout,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) registerAPIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/predict", s.handlePredict)
	mux.HandleFunc("GET /api/predictions", s.handlePredictions)
	mux.HandleFunc("GET /api/predictions/page", s.handlePredictionsPage)
	mux.HandleFunc("GET /api/download-predictions", s.handleDownload)
	mux.HandleFunc("GET /api/uploads", s.handleUploads)
	mux.HandleFunc("GET /api/metrics", s.handleMetrics)
	if s.deps.Hub != nil {
		mux.HandleFunc("GET /api/ws/dashboard", s.deps.Hub.HandleWebSocket)
	}
}

// Start 启动服务器
func (s *Server) Start() error {
	s.deps.Logger.Infow("starting HTTP server", "addr", s.server.Addr)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop 停止服务器
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.deps.Logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// Addr 返回服务器地址
func (s *Server) Addr() string {
	return s.server.Addr
}

// Handler 返回完整的中间件包装处理器
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
