package service

import (
	"unicode/utf8"

	"embedd/pkg/types"
)

// NativeResponse shapes a result for the native endpoint. The model field
// reports the canonical id the request actually ran against.
func NativeResponse(res Result) types.EmbeddingResponse {
	return buildResponse(res, res.CanonicalID)
}

// OpenAIResponse shapes a result for the OpenAI-compatible endpoint. The
// model field echoes the id the client sent, aliases and all, so drop-in
// clients see the name they asked for.
func OpenAIResponse(res Result) types.EmbeddingResponse {
	return buildResponse(res, res.RequestedID)
}

func buildResponse(res Result, model string) types.EmbeddingResponse {
	data := make([]types.EmbeddingData, len(res.Vectors))
	for i, vec := range res.Vectors {
		data[i] = types.EmbeddingData{Object: "embedding", Embedding: vec, Index: i}
	}
	return types.EmbeddingResponse{Object: "list", Data: data, Model: model, Usage: res.Usage}
}

// estimateUsage approximates token counts as ceil(chars/4), summed over
// the batch. It is deterministic and cheap, nothing more; clients needing
// exact accounting must tokenize themselves.
func estimateUsage(texts []string) types.Usage {
	total := 0
	for _, t := range texts {
		n := utf8.RuneCountInString(t)
		total += (n + 3) / 4
	}
	return types.Usage{PromptTokens: total, TotalTokens: total}
}
