package httpapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"prefab/internal/geom"
	"prefab/internal/imgio"
	"prefab/internal/predictor"
	"prefab/pkg/types"
)

// serverBaseCtx is canceled when the daemon shuts down; handlers derive
// their work contexts from it so shutdown cancels in-flight predictions.
var serverBaseCtx = context.Background()

// SetBaseContext installs the process-level context used by handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	serverBaseCtx = ctx
}

// workContext derives a handler context canceled by either the request
// ending or the daemon shutting down.
func workContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(r.Context())
	stop := context.AfterFunc(serverBaseCtx, cancel)
	return ctx, func() { stop(); cancel() }
}

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Models() []types.Model
	Status() types.StatusResponse
	Predict(ctx context.Context, id string, nums []int, device geom.Grid, stepLength int, binary bool) (geom.Grid, error)
	Ready() bool
}

// NewMux builds the router: /models, /status, /predict, /healthz,
// /readyz, /metrics, and the swagger UI when built with -tags=swagger.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	r.Use(MetricsMiddleware)

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(types.ModelsResponse{Models: svc.Models()}); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Post("/predict", func(w http.ResponseWriter, r *http.Request) { handlePredict(svc, w, r) })

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

func handlePredict(svc Service, w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req types.PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Image) == "" {
		writeJSONError(w, http.StatusBadRequest, "image is required")
		return
	}
	raw, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "image must be base64-encoded PNG")
		return
	}

	lvl := requestLogLevel(r)
	logPredictStart(r, lvl, req.Model)
	start := time.Now()

	fail := func(status int, err error) {
		writeJSONError(w, status, err.Error())
		logPredictEnd(r, lvl, status, start, err)
		observePrediction(req.Model, status, time.Since(start))
	}

	device, err := imgio.DecodeDeviceImage(bytes.NewReader(raw), req.DeviceLength, req.Resolution)
	if err != nil {
		fail(http.StatusBadRequest, err)
		return
	}

	ctx, cancel := workContext(r)
	defer cancel()
	out, err := svc.Predict(ctx, req.Model, req.Nums, device, req.StepLength, req.Binary)
	if err != nil {
		// If context was canceled (client disconnect), just return.
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		status := mapPredictError(err)
		if status == http.StatusTooManyRequests {
			IncrementBackpressure("predict")
		}
		fail(status, err)
		return
	}

	var png bytes.Buffer
	if err := imgio.EncodePNG(out, &png); err != nil {
		fail(http.StatusInternalServerError, err)
		return
	}
	resp := types.PredictResponse{
		Model:      req.Model,
		Nums:       req.Nums,
		Prediction: base64.StdEncoding.EncodeToString(png.Bytes()),
		Width:      out.W,
		Height:     out.H,
		Binary:     req.Binary,
		ElapsedMS:  time.Since(start).Milliseconds(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logPredictEnd(r, lvl, http.StatusInternalServerError, start, err)
		return
	}
	logPredictEnd(r, lvl, http.StatusOK, start, nil)
	observePrediction(req.Model, http.StatusOK, time.Since(start))
}

// mapPredictError maps well-known service errors to HTTP status codes.
func mapPredictError(err error) int {
	switch {
	case predictor.IsModelNotFound(err):
		return http.StatusNotFound
	case predictor.IsInvalidInput(err):
		return http.StatusBadRequest
	case imgio.IsDimensionMismatch(err):
		return http.StatusBadRequest
	case predictor.IsTooBusy(err):
		return http.StatusTooManyRequests
	case predictor.IsRuntimeUnavailable(err):
		return http.StatusServiceUnavailable
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}
