package httpx

import (
	"encoding/json"
	"net/http"
	"time"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Data      any       `json:"data,omitempty"`
	ErrorCode string    `json:"error_code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Response{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	})
}

func WriteError(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, Response{
		Success:   false,
		Message:   msg,
		ErrorCode: code,
		Timestamp: time.Now(),
	})
}
