package api

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
)

// errorResponse is the shape every error body takes.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON sends v as a JSON response. Encoding goes through a buffer
// first; once headers are written there is no way to report a failure.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.Printf("json encode failed: %v", err)
		writeErrorFallback(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("write response failed: %v", err)
	}
}

// writeError sends an errorResponse. public is the client-visible
// message; keep it generic for 5xx, where the underlying err goes to
// the log instead.
func writeError(w http.ResponseWriter, status int, public string, err error) {
	if public == "" {
		public = http.StatusText(status)
	}
	if status >= 500 && err != nil {
		log.Printf("internal error: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: public})
}

// writeErrorFallback emits plain text when JSON encoding itself failed,
// rather than recursing through writeJSON again.
func writeErrorFallback(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(message))
}
