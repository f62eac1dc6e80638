package types

import (
	"encoding/json"
	"fmt"
)

// Input is the request text payload. The wire format accepts either a
// single JSON string or an array of strings; both decode into a slice so
// the rest of the pipeline treats input uniformly as a batch.
type Input []string

// UnmarshalJSON accepts "text" or ["text", ...].
func (in *Input) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*in = Input{s}
		return nil
	}
	var items []string
	if err := json.Unmarshal(b, &items); err != nil {
		return fmt.Errorf("input must be a string or an array of strings")
	}
	*in = Input(items)
	return nil
}

// EmbeddingRequest is the request body accepted by both embedding endpoints.
type EmbeddingRequest struct {
	// Text(s) to embed. A single string or an array of strings.
	Input Input `json:"input" swaggertype:"array,string" example:"The quick brown fox jumps over the lazy dog."`
	// Model identifier: a canonical id or a known foreign alias.
	// example: sentence-transformers/all-MiniLM-L6-v2
	Model string `json:"model" example:"sentence-transformers/all-MiniLM-L6-v2"`
	// Accepted for OpenAI compatibility. Only "float" (or empty) is valid.
	// example: float
	EncodingFormat string `json:"encoding_format,omitempty" example:"float"`
	// End-user identifier. Accepted and ignored.
	User string `json:"user,omitempty"`
}

// EmbeddingData is one vector in a response, index-aligned with the input.
type EmbeddingData struct {
	Object string `json:"object" example:"embedding"`
	// The embedding vector.
	Embedding []float32 `json:"embedding"`
	// Position of this embedding in the request input.
	// example: 0
	Index int `json:"index" example:"0"`
}

// Usage carries approximate token counts. The counts are a character
// heuristic, not a tokenizer result.
type Usage struct {
	// example: 11
	PromptTokens int `json:"prompt_tokens" example:"11"`
	// example: 11
	TotalTokens int `json:"total_tokens" example:"11"`
}

// EmbeddingResponse is the success shape shared by both endpoint families.
// The native endpoint reports the canonical model id; the OpenAI-compatible
// endpoint echoes the id the client sent.
type EmbeddingResponse struct {
	Object string          `json:"object" example:"list"`
	Data   []EmbeddingData `json:"data"`
	// example: sentence-transformers/all-MiniLM-L6-v2
	Model string `json:"model" example:"sentence-transformers/all-MiniLM-L6-v2"`
	Usage Usage  `json:"usage"`
}

// ErrorResponse is the native error envelope.
type ErrorResponse struct {
	// Error message.
	// example: model 'x' is not available
	Detail string `json:"detail" example:"model 'x' is not available"`
}

// OpenAIError is the error object inside the OpenAI-compatible envelope.
type OpenAIError struct {
	// example: The model 'x' does not exist
	Message string `json:"message" example:"The model 'x' does not exist"`
	// example: invalid_request_error
	Type string `json:"type" example:"invalid_request_error"`
	// example: model
	Param string `json:"param,omitempty" example:"model"`
	// example: model_not_found
	Code string `json:"code,omitempty" example:"model_not_found"`
}

// OpenAIErrorResponse is the OpenAI-compatible error envelope.
type OpenAIErrorResponse struct {
	Error OpenAIError `json:"error"`
}

// ModelInfo describes one successfully loaded model.
type ModelInfo struct {
	// Canonical model identifier.
	// example: sentence-transformers/all-MiniLM-L6-v2
	ID string `json:"id" example:"sentence-transformers/all-MiniLM-L6-v2"`
	// Embedding dimensionality.
	// example: 384
	Dimension int `json:"dimension" example:"384"`
}

// ModelsResponse wraps the list returned by GET /models.
type ModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// ModelStatus reports per-model load state for GET /status.
type ModelStatus struct {
	// example: BAAI/bge-m3
	ID string `json:"id" example:"BAAI/bge-m3"`
	// "ready" or "failed".
	// example: ready
	State string `json:"state" example:"ready"`
	// Load failure reason, present when state is "failed".
	Reason string `json:"reason,omitempty"`
	// Embedding dimensionality, present when state is "ready".
	// example: 1024
	Dimension int `json:"dimension,omitempty" example:"1024"`
	// Load duration in milliseconds.
	// example: 812
	LoadMillis int64 `json:"load_ms" example:"812"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Per-model load states in catalog order.
	Models []ModelStatus `json:"models"`
	// Number of inference workers.
	// example: 4
	Workers int `json:"workers" example:"4"`
	// Inference calls currently waiting for a worker.
	// example: 0
	QueueLen int `json:"queue_len" example:"0"`
	// Queue capacity before submitters block.
	// example: 64
	QueueDepth int `json:"queue_depth" example:"64"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// RootResponse is the service summary returned by GET /.
type RootResponse struct {
	// example: embedd
	Service string `json:"service" example:"embedd"`
	// example: healthy
	Status string `json:"status" example:"healthy"`
	// example: 0.1.0
	Version string `json:"version" example:"0.1.0"`
	// Canonical ids of models that loaded successfully.
	AvailableModels []string `json:"available_models"`
}
