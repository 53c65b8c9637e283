package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lakehouselib/lakehouse"
	"github.com/lakehouselib/lakehouse/devserver"
)

// ErrorResponse is the error body clients parse: {"detail": "..."}.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Detail: detail}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes the error response matching err.
func HandleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, devserver.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, devserver.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, lakehouse.ErrInvalidFilterFormat):
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, devserver.ErrConflict):
		WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, devserver.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, "Could not validate credentials")
	default:
		slog.Error("request error", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
