package service

import (
	"bytes"
	"encoding/json"

	"sales-gateway/internal/model"
)

// EmptyArrayFallback is the body substituted for any backend body that is
// not valid JSON: empty, truncated, HTML error pages and the like.
var EmptyArrayFallback = json.RawMessage(`[]`)

// Normalize turns a raw backend status and body into a response whose body
// is guaranteed to be JSON. Valid JSON of any shape is passed through
// compacted; anything else becomes EmptyArrayFallback. The status is never
// changed.
func Normalize(statusCode int, body []byte) model.NormalizedResponse {
	return model.NormalizedResponse{
		StatusCode: statusCode,
		Body:       normalizeBody(body),
	}
}

func normalizeBody(body []byte) json.RawMessage {
	if !json.Valid(body) {
		return EmptyArrayFallback
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return EmptyArrayFallback
	}
	return buf.Bytes()
}
