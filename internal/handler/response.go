package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// writeJSON sends a JSON response. Headers and status must be set before the
// body — once Encode writes, header changes are silently ignored.
//
// The only JSON surface in this app is the connector endpoint, and its body
// shapes are a wire contract with the external identity system (see
// connector.go); everything else renders HTML.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}
