package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"embedd/internal/catalog"
	"embedd/internal/config"
	"embedd/internal/encoder"
	"embedd/internal/executor"
	"embedd/internal/httpapi"
	"embedd/internal/registry"
	"embedd/internal/service"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	var (
		cfgPath   string
		addr      string
		models    string
		modelsDir string
		device    string
		workers   int
		queue     int
		logLevel  string
	)

	root := &cobra.Command{
		Use:           "embedd",
		Short:         "Embedding generation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Load the configured models and serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cfgPath, addr, models, modelsDir, device, workers, queue, logLevel)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}
	serve.Flags().StringVar(&cfgPath, "config", "", "Path to a config file (.yaml/.json/.toml)")
	serve.Flags().StringVar(&addr, "addr", "", "HTTP listen address, e.g. :8080 (defaults EMBEDD_ADDR or :8080)")
	serve.Flags().StringVar(&models, "models", "", "Comma-separated canonical model ids to load")
	serve.Flags().StringVar(&modelsDir, "models-dir", "", "Directory holding model weights (llama builds)")
	serve.Flags().StringVar(&device, "device", "", "Inference device: cpu or cuda")
	serve.Flags().IntVar(&workers, "workers", 0, "Inference worker pool size")
	serve.Flags().IntVar(&queue, "queue-depth", 0, "Inference queue depth before submitters block")
	serve.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug|info|warn|error")
	root.AddCommand(serve)

	return root
}

// resolveConfig merges file, environment and flag settings; flags win.
func resolveConfig(cfgPath, addr, models, modelsDir, device string, workers, queue int, logLevel string) (config.Config, error) {
	var cfg config.Config
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	cfg = config.ApplyEnv(cfg)
	if addr != "" {
		cfg.Addr = addr
	}
	if models != "" {
		cfg.Models = config.SplitCSV(models)
	}
	if modelsDir != "" {
		cfg.ModelsDir = modelsDir
	}
	if device != "" {
		cfg.Device = device
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if queue > 0 {
		cfg.QueueDepth = queue
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Device == "" {
		cfg.Device = "cpu"
	}
	return cfg, nil
}

func run(cfg config.Config) error {
	log := newLogger(cfg.LogLevel)

	cat := catalog.New(cfg.Models)
	log.Info().Str("backend", encoder.Backend()).Str("device", cfg.Device).Msg("starting embedd")
	opener := encoder.DefaultOpener(encoder.Options{
		ModelsDir: cfg.ModelsDir,
		Device:    cfg.Device,
	})
	reg := registry.Load(log, cat, opener)
	defer reg.Close()

	pool := executor.NewPool(cfg.Workers, cfg.QueueDepth)
	defer pool.Close()

	svc := service.New(log, reg, pool)

	httpapi.SetLogger(log)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetAPIKey(cfg.APIKey, cfg.RequireAuth)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins,
		[]string{"GET", "POST", "OPTIONS"}, []string{"Accept", "Authorization", "Content-Type"})
	httpapi.RegisterQueueGauge(pool.QueueLen)

	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(svc)}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Strs("loaded", reg.Loaded()).Msg("embedd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
		return err
	}
	return nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).With().Timestamp().Logger()
}
