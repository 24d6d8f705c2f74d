package api

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/buildwatch/notifier/common"
)

// errorBody is the structured error response returned to REST clients.
type errorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondErrorMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorBody{Error: message, Status: status})
}

// respondError maps a service error to its HTTP status. Anything outside the typed
// taxonomy is an internal error, which is logged and reported without detail.
func respondError(w http.ResponseWriter, log *logrus.Entry, err error) {
	switch {
	case common.IsNotFound(err):
		respondErrorMessage(w, http.StatusNotFound, err.Error())
	case common.IsAccessDenied(err):
		respondErrorMessage(w, http.StatusForbidden, err.Error())
	case common.IsConflict(err):
		respondErrorMessage(w, http.StatusConflict, err.Error())
	default:
		log.WithError(err).Error("request failed")
		respondErrorMessage(w, http.StatusInternalServerError, "internal server error")
	}
}
