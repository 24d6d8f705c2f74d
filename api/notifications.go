package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/buildwatch/notifier/db"
	"github.com/buildwatch/notifier/model"
)

// NotificationService defines the notification operations exposed over HTTP.
type NotificationService interface {
	FindByID(ctx context.Context, user model.UserInfo, id int64) (*model.Notification, error)
	FindAll(ctx context.Context, user model.UserInfo, filter db.NotificationFilter, page model.PageRequest) (*model.Page[model.Notification], error)
	FindAllByUserID(ctx context.Context, user model.UserInfo, page model.PageRequest) (*model.Page[model.Notification], error)
	Delete(ctx context.Context, user model.UserInfo, id int64) error
}

// NotificationHandler serves the /v1/notifications endpoints.
type NotificationHandler struct {
	service NotificationService
	log     *logrus.Entry
}

// NewNotificationHandler returns a handler backed by the given service.
func NewNotificationHandler(service NotificationService, log *logrus.Entry) *NotificationHandler {
	return &NotificationHandler{service: service, log: log}
}

// Routes registers the notification endpoints on the router. The /my route has to be
// registered before /{id} so that chi does not treat "my" as an ID.
func (h *NotificationHandler) Routes(r chi.Router) {
	r.Get("/", h.FindAll)
	r.Get("/my", h.FindMine)
	r.Get("/{id}", h.FindByID)
	r.Delete("/{id}", h.Delete)
}

// FindAll handles GET /v1/notifications.
func (h *NotificationHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	page, err := parsePageRequest(r)
	if err != nil {
		respondErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	subscriptionID, err := parseOptionalInt64(r, "subscriptionId")
	if err != nil {
		respondErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	buildID, err := parseOptionalInt64(r, "buildId")
	if err != nil {
		respondErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	filter := db.NotificationFilter{SubscriptionID: subscriptionID, BuildID: buildID}

	result, err := h.service.FindAll(r.Context(), userInfo(r), filter, page)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// FindMine handles GET /v1/notifications/my.
func (h *NotificationHandler) FindMine(w http.ResponseWriter, r *http.Request) {
	page, err := parsePageRequest(r)
	if err != nil {
		respondErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.FindAllByUserID(r.Context(), userInfo(r), page)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// FindByID handles GET /v1/notifications/{id}.
func (h *NotificationHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	notification, err := h.service.FindByID(r.Context(), userInfo(r), id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, notification)
}

// Delete handles DELETE /v1/notifications/{id}.
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Delete(r.Context(), userInfo(r), id); err != nil {
		respondError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
