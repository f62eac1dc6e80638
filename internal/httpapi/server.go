package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"embedd/internal/service"
	"embedd/pkg/types"
)

// Version is reported by the root health endpoint.
const Version = "0.1.0"

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Embed(ctx context.Context, model string, inputs []string) (service.Result, error)
	ListModels() []types.ModelInfo
	Status() types.StatusResponse
	Loaded() []string
	Ready() bool
}

// NewMux builds the router with all endpoints registered.
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
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	h := &handlers{svc: svc}

	r.Get("/", h.root)
	r.Get("/models", h.models)
	r.Get("/status", h.status)
	r.Post("/v1/embeddings", h.embeddings)
	r.Post("/openai/v1/embeddings", h.openaiEmbeddings)

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
		w.Write([]byte("no models loaded"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

type handlers struct {
	svc Service
}

// root godoc
// @Summary  Service summary and loaded models
// @Tags     health
// @Produce  json
// @Success  200 {object} types.RootResponse
// @Router   / [get]
func (h *handlers) root(w http.ResponseWriter, r *http.Request) {
	loaded := h.svc.Loaded()
	status := "healthy"
	if len(loaded) == 0 {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, types.RootResponse{
		Service:         "embedd",
		Status:          status,
		Version:         Version,
		AvailableModels: loaded,
	})
}

// models godoc
// @Summary  List loaded models
// @Tags     models
// @Produce  json
// @Success  200 {object} types.ModelsResponse
// @Router   /models [get]
func (h *handlers) models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.ModelsResponse{Models: h.svc.ListModels()})
}

// status godoc
// @Summary  Detailed per-model load state and queue stats
// @Tags     models
// @Produce  json
// @Success  200 {object} types.StatusResponse
// @Router   /status [get]
func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status())
}

// embeddings godoc
// @Summary  Generate embeddings
// @Description Generates vector embeddings for one or more input texts using the requested model.
// @Tags     embeddings
// @Accept   json
// @Produce  json
// @Param    request body types.EmbeddingRequest true "Embedding request"
// @Success  200 {object} types.EmbeddingResponse
// @Failure  400 {object} types.ErrorResponse
// @Failure  422 {object} types.ErrorResponse
// @Failure  500 {object} types.ErrorResponse
// @Router   /v1/embeddings [post]
func (h *handlers) embeddings(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r, nativeFamily)
	if !ok {
		return
	}
	start := time.Now()
	logStart(r, req.Model, len(req.Input))
	res, err := h.svc.Embed(r.Context(), req.Model, req.Input)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		switch {
		case service.IsModelNotAvailable(err):
			writeDetailError(w, http.StatusBadRequest, "model_not_found: "+err.Error())
		case service.IsInferenceError(err):
			observeFailure(req.Model)
			writeDetailError(w, http.StatusInternalServerError, "failed to generate embeddings")
		default:
			writeDetailError(w, http.StatusInternalServerError, "internal error")
		}
		logEnd(r, req.Model, errorStatus(err), time.Since(start))
		return
	}
	observeSuccess(res.CanonicalID, len(res.Vectors))
	writeJSON(w, http.StatusOK, service.NativeResponse(res))
	logEnd(r, res.CanonicalID, http.StatusOK, time.Since(start))
}

// openaiEmbeddings godoc
// @Summary  Generate embeddings (OpenAI-compatible)
// @Description Drop-in replacement for the OpenAI embeddings API. Echoes the requested model id and uses the OpenAI error envelope.
// @Tags     embeddings
// @Accept   json
// @Produce  json
// @Param    request body types.EmbeddingRequest true "Embedding request"
// @Success  200 {object} types.EmbeddingResponse
// @Failure  400 {object} types.OpenAIErrorResponse
// @Failure  401 {object} types.OpenAIErrorResponse
// @Failure  500 {object} types.OpenAIErrorResponse
// @Router   /openai/v1/embeddings [post]
func (h *handlers) openaiEmbeddings(w http.ResponseWriter, r *http.Request) {
	if !authorize(r) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeOpenAIError(w, http.StatusUnauthorized, "Invalid or missing API key", "authentication_error", "", "invalid_api_key")
		return
	}
	req, ok := h.decodeRequest(w, r, openaiFamily)
	if !ok {
		return
	}
	start := time.Now()
	logStart(r, req.Model, len(req.Input))
	res, err := h.svc.Embed(r.Context(), req.Model, req.Input)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		switch {
		case service.IsModelNotAvailable(err):
			writeOpenAIError(w, http.StatusBadRequest,
				"The model '"+req.Model+"' does not exist", "invalid_request_error", "model", "model_not_found")
		case service.IsInferenceError(err):
			observeFailure(req.Model)
			writeOpenAIError(w, http.StatusInternalServerError,
				"An error occurred while generating embeddings", "server_error", "", "")
		default:
			writeOpenAIError(w, http.StatusInternalServerError,
				"Internal server error", "server_error", "", "")
		}
		logEnd(r, req.Model, errorStatus(err), time.Since(start))
		return
	}
	observeSuccess(res.CanonicalID, len(res.Vectors))
	writeJSON(w, http.StatusOK, service.OpenAIResponse(res))
	logEnd(r, res.CanonicalID, http.StatusOK, time.Since(start))
}

// errorFamily selects which error envelope a handler writes.
type errorFamily int

const (
	nativeFamily errorFamily = iota
	openaiFamily
)

func (f errorFamily) unsupportedMediaType(w http.ResponseWriter) {
	if f == openaiFamily {
		writeOpenAIError(w, http.StatusUnsupportedMediaType,
			"Content-Type must be application/json", "invalid_request_error", "", "")
		return
	}
	writeDetailError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
}

// invalid reports a request shape violation: 422 in the native envelope,
// 400 with invalid_request_error in the OpenAI one.
func (f errorFamily) invalid(w http.ResponseWriter, msg, param string) {
	if f == openaiFamily {
		writeOpenAIError(w, http.StatusBadRequest, msg, "invalid_request_error", param, "")
		return
	}
	writeDetailError(w, http.StatusUnprocessableEntity, msg)
}

// decodeRequest parses and validates the shared request body. On failure
// it writes the family-appropriate error and returns ok=false.
func (h *handlers) decodeRequest(w http.ResponseWriter, r *http.Request, family errorFamily) (types.EmbeddingRequest, bool) {
	var req types.EmbeddingRequest
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		family.unsupportedMediaType(w)
		return req, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		family.invalid(w, "invalid JSON body", "")
		return req, false
	}
	if msg, param := validateRequest(req); msg != "" {
		family.invalid(w, msg, param)
		return req, false
	}
	return req, true
}

// validateRequest enforces the shape rules shared by both endpoint
// families. Returns an empty message when the request is valid.
func validateRequest(req types.EmbeddingRequest) (msg, param string) {
	if strings.TrimSpace(req.Model) == "" {
		return "model is required", "model"
	}
	if len(req.Input) == 0 {
		return "input cannot be empty", "input"
	}
	for _, t := range req.Input {
		if strings.TrimSpace(t) == "" {
			return "input cannot contain empty strings", "input"
		}
	}
	if req.EncodingFormat != "" && req.EncodingFormat != "float" {
		return "only 'float' encoding_format is supported", "encoding_format"
	}
	return "", ""
}

func errorStatus(err error) int {
	switch {
	case service.IsModelNotAvailable(err):
		return http.StatusBadRequest
	case service.IsInferenceError(err):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && zlog != nil {
		zlog.Error().Err(err).Msg("failed to encode response")
	}
}
