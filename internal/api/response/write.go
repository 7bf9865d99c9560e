package response

import (
	"encoding/json"
	"net/http"
)

// encodeFailure is written when a response value cannot be marshalled
const encodeFailure = `{"error":{"code":"INTERNAL_ERROR","message":"failed to encode response"}}`

// JSON writes a JSON response.
// The body is marshalled before the status is sent, so an encoding
// failure still produces a well-formed 500.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	if data == nil {
		w.WriteHeader(status)
		return
	}

	body, err := json.Marshal(data)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(encodeFailure))
		return
	}

	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// NoContent writes a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
