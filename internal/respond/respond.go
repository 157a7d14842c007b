// Package respond implements the uniform response envelope shared by every
// handler: {success, message?, data?, token?, code?, error?}.
package respond

import (
	"encoding/json"
	"net/http"
)

// Envelope is the standard API response wrapper.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Token   string `json:"token,omitempty"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK writes a success response.
func OK(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Success: true, Message: message, Data: data})
}

// OKWithToken writes a success response that also carries a freshly issued
// access token at the envelope top level.
func OKWithToken(w http.ResponseWriter, status int, message string, data any, token string) {
	write(w, status, Envelope{Success: true, Message: message, Data: data, Token: token})
}

// Fail writes an error response with a human-readable message.
func Fail(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Success: false, Message: message, Error: message})
}

// FailCode writes an error response carrying a machine-readable code so
// clients can branch without string-matching messages.
func FailCode(w http.ResponseWriter, status int, code, message string) {
	write(w, status, Envelope{Success: false, Message: message, Code: code, Error: message})
}

func write(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
