// internal/app/system/httpjson/httpjson.go

// Package httpjson holds the small request/response helpers every JSON
// handler shares: encode a payload, emit the uniform {"error": ...} body,
// and decode a size-limited request.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// Write encodes v as JSON with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error emits the uniform error body. The message is what the caller sees;
// keep it human-readable and free of internals.
func Error(w http.ResponseWriter, status int, message string) {
	Write(w, status, map[string]string{"error": message})
}

// Decode reads a JSON body into dst, enforcing maxBytes and rejecting
// trailing garbage. Returns a caller-presentable error.
func Decode(r *http.Request, dst any, maxBytes int64) error {
	body := http.MaxBytesReader(nil, r.Body, maxBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errors.New("request body too large")
		}
		return errors.New("invalid JSON body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
