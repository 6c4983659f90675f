package response

import (
	"encoding/json"
	"net/http"
)

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Envelope is the success body shared by every endpoint.
func Envelope(data any) map[string]any {
	return map[string]any{
		"success": true,
		"data":    data,
	}
}

func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope(data))
}

func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, Envelope(data))
}

// Raw writes an already encoded JSON body, such as a cached response.
func Raw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func Error(w http.ResponseWriter, status int, code string, message string) {
	JSON(w, status, map[string]any{
		"success": false,
		"error":   code,
		"message": message,
	})
}
