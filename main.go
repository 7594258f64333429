package main

import (
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/yaml.v2"

	"fraudlens/db"
	qhttp "fraudlens/http"
	"fraudlens/logging"
	"fraudlens/ml"
	"fraudlens/monitoring"
	"fraudlens/store"
)

type Config struct {
	Http struct {
		Port           int `yaml:"port"`
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"http"`
	Upload struct {
		MaxBytes int64 `yaml:"max_bytes"`
		PageSize int   `yaml:"page_size"`
	} `yaml:"upload"`
	Model struct {
		Path string `yaml:"path"`
	} `yaml:"model"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Cache struct {
		Size int `yaml:"size"`
	} `yaml:"cache"`
	Log logging.Config `yaml:"log"`
}

func main() {
	// 1. Load config
	config, err := loadConfig("config.yaml")
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.New(config.Log)
	defer logger.Sync()

	// 2. Initialize audit database
	if err := os.MkdirAll(filepath.Dir(config.Database.Path), 0o755); err != nil {
		logger.Fatalw("failed to create database directory", "error", err)
	}
	if err := db.InitDB(config.Database.Path); err != nil {
		logger.Fatalw("failed to initialize database", "error", err)
	}
	defer db.Close()
	logger.Infow("database initialized", "path", config.Database.Path)

	// 3. Load the model bundle. A failed load keeps the process up in a
	// degraded state so /api/health can report model_loaded=false.
	provider := &ml.Provider{}
	if bundle, err := ml.LoadBundle(config.Model.Path); err != nil {
		logger.Warnw("model bundle failed to load, predictions unavailable",
			"path", config.Model.Path, "error", err)
	} else {
		provider.Swap(bundle)
		logger.Infow("model bundle loaded",
			"path", config.Model.Path,
			"encoder_classes", len(bundle.Encoder.Classes),
			"scaler_features", bundle.Scaler.Features)
	}

	// 4. Watch the bundle file for hot reloads
	watcher, err := ml.WatchBundle(config.Model.Path, provider, logger)
	if err != nil {
		logger.Warnw("bundle watcher unavailable", "error", err)
	} else {
		defer watcher.Close()
	}

	// 5. Session store and dashboard push
	sessionStore, err := store.New(config.Cache.Size)
	if err != nil {
		logger.Fatalw("failed to create session store", "error", err)
	}

	hub := monitoring.NewHub(logger)
	go hub.Run()
	defer hub.Stop()

	// 6. Start HTTP server
	serverConfig := qhttp.DefaultServerConfig()
	if config.Http.Port > 0 {
		serverConfig.Port = config.Http.Port
	}
	if config.Http.TimeoutSeconds > 0 {
		serverConfig.Timeout = time.Duration(config.Http.TimeoutSeconds) * time.Second
	}
	if config.Upload.MaxBytes > 0 {
		serverConfig.MaxUploadBytes = config.Upload.MaxBytes
	}
	if config.Upload.PageSize > 0 {
		serverConfig.PageSize = config.Upload.PageSize
	}

	server := qhttp.NewServer(serverConfig, qhttp.Deps{
		Logger:    logger,
		Store:     sessionStore,
		Predictor: ml.NewPredictor(provider),
		Hub:       hub,
		Metrics:   monitoring.NewCollector(),
	})
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("HTTP server failed", "error", err)
		}
	}()

	// 7. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		logger.Warnw("server forced to shutdown", "error", err)
	}

	logger.Info("exiting")
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
