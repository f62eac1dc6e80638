package httpapi

import (
	"encoding/json"
	"net/http"

	"embedd/pkg/types"
)

// writeDetailError writes the native {"detail": ...} error envelope.
func writeDetailError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Detail: msg})
}

// writeOpenAIError writes the OpenAI-compatible error envelope.
func writeOpenAIError(w http.ResponseWriter, status int, msg, typ, param, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.OpenAIErrorResponse{Error: types.OpenAIError{
		Message: msg,
		Type:    typ,
		Param:   param,
		Code:    code,
	}})
}
