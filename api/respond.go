package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/realslimshanky/Pricy/utils"
)

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, body interface{}, logger *utils.Logger) {
	data, err := json.Marshal(body)
	if err != nil {
		logger.Error("Failed to marshal JSON response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logger.Warn("Failed to write JSON response: %v", err)
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string, fields []FieldError, logger *utils.Logger) {
	respondJSON(w, status, ErrorResponse{Error: message, Fields: fields}, logger)
}
