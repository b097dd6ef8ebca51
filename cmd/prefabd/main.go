package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"prefab/internal/config"
	"prefab/internal/httpapi"
	"prefab/internal/predictor"
	"prefab/internal/registry"
)

func main() {
	// Flags with environment variable defaults
	defaultAddr := ":8080"
	if v := os.Getenv("PREFAB_ADDR"); v != "" {
		defaultAddr = v
	}
	defaultModels := "~/models/prefab"
	if v := os.Getenv("PREFAB_MODELS_DIR"); v != "" {
		defaultModels = v
	}
	addr := flag.String("addr", defaultAddr, "HTTP listen address, e.g. :8080")
	modelsDir := flag.String("models-dir", defaultModels, "Directory to scan for *.onnx ensemble weights")
	configPath := flag.String("config", "", "Optional config file (.yaml/.json/.toml); explicit flags take precedence")
	memBudgetMB := flag.Int("mem-budget-mb", 0, "Memory budget in MB for loaded ensembles (0=unlimited)")
	memMarginMB := flag.Int("mem-margin-mb", 0, "Reserved memory margin in MB to keep free")
	defaultModel := flag.String("default-model", "", "Default ensemble id when request omits model")
	tileSize := flag.Int("tile-size", 0, "Fallback tile size for models with dynamic input shapes")
	stepLength := flag.Int("step-length", 0, "Default sliding-window stride in px when requests omit one (0=half tile)")
	onnxLib := flag.String("onnx-lib", "", "Path to the onnxruntime shared library")
	logLevel := flag.String("log-level", os.Getenv("PREFAB_LOG_LEVEL"), "Request log level (off, error, info, debug)")
	flag.Parse()

	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		set := map[string]bool{}
		flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
		if !set["addr"] && cfg.Addr != "" {
			*addr = cfg.Addr
		}
		if !set["models-dir"] && cfg.ModelsDir != "" {
			*modelsDir = cfg.ModelsDir
		}
		if !set["mem-budget-mb"] && cfg.MemBudgetMB != 0 {
			*memBudgetMB = cfg.MemBudgetMB
		}
		if !set["mem-margin-mb"] && cfg.MemMarginMB != 0 {
			*memMarginMB = cfg.MemMarginMB
		}
		if !set["default-model"] && cfg.DefaultModel != "" {
			*defaultModel = cfg.DefaultModel
		}
		if !set["tile-size"] && cfg.TileSize != 0 {
			*tileSize = cfg.TileSize
		}
		if !set["step-length"] && cfg.StepLength != 0 {
			*stepLength = cfg.StepLength
		}
		if !set["onnx-lib"] && cfg.ONNXLibrary != "" {
			*onnxLib = cfg.ONNXLibrary
		}
		if !set["log-level"] && cfg.LogLevel != "" {
			*logLevel = cfg.LogLevel
		}
		if cfg.CORSEnabled {
			httpapi.SetCORSOptions(true, cfg.CORSOrigins,
				[]string{"GET", "POST", "OPTIONS"},
				[]string{"Content-Type", "X-Log-Level"})
		}
	}

	zl := zerolog.New(os.Stderr).With().Timestamp().Logger()
	httpapi.SetLogger(zl)
	if *logLevel != "" {
		httpapi.SetDefaultLogLevel(*logLevel)
	}

	// Load registry by scanning modelsDir for *.onnx weights
	reg, err := registry.LoadDir(*modelsDir)
	if err != nil {
		log.Fatalf("failed to load models: %v", err)
	}
	svc := predictor.NewService(predictor.ServiceConfig{
		Registry:     reg,
		BudgetMB:     *memBudgetMB,
		MarginMB:     *memMarginMB,
		DefaultModel: *defaultModel,
		TileSize:     *tileSize,
		StepLength:   *stepLength,
		Runtime:      &predictor.ONNXRuntime{LibraryPath: *onnxLib},
	})

	baseCtx, stopWork := context.WithCancel(context.Background())
	httpapi.SetBaseContext(baseCtx)
	mux := httpapi.NewMux(svc)
	srv := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		zl.Info().Str("addr", *addr).Str("models_dir", *modelsDir).Int("models", len(reg)).Msg("prefabd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	stopWork()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
	if err := svc.Close(); err != nil {
		log.Printf("unload error: %v", err)
	}
}
