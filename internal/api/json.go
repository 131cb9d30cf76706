package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/eralp/turbonote/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeError maps an application error to its HTTP status and a safe
// response body, logging server-side failures.
func writeError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", slog.String("error", err.Error()))
	}
	writeJSON(w, status, errResponse{
		Error: apperr.Message(err),
		Code:  string(apperr.CodeOf(err)),
	})
}
