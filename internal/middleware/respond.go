package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError writes the flat JSON error shape used across the API.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
