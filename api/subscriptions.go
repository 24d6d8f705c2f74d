package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/buildwatch/notifier/db"
	"github.com/buildwatch/notifier/model"
)

// SubscriptionService defines the subscription operations exposed over HTTP.
type SubscriptionService interface {
	Create(ctx context.Context, user model.UserInfo, subscriberID, subscribedAtID string) (*model.Subscription, error)
	FindByID(ctx context.Context, user model.UserInfo, id int64) (*model.Subscription, error)
	FindAll(ctx context.Context, user model.UserInfo, filter db.SubscriptionFilter, page model.PageRequest) (*model.Page[model.Subscription], error)
	Delete(ctx context.Context, user model.UserInfo, id int64) error
}

// SubscriptionHandler serves the /v1/subscriptions endpoints.
type SubscriptionHandler struct {
	service SubscriptionService
	log     *logrus.Entry
}

// NewSubscriptionHandler returns a handler backed by the given service.
func NewSubscriptionHandler(service SubscriptionService, log *logrus.Entry) *SubscriptionHandler {
	return &SubscriptionHandler{service: service, log: log}
}

// Routes registers the subscription endpoints on the router.
func (h *SubscriptionHandler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.FindAll)
	r.Get("/{id}", h.FindByID)
	r.Delete("/{id}", h.Delete)
}

type subscriptionRequest struct {
	SubscriberID   string `json:"subscriber_id"`
	SubscribedAtID string `json:"subscribed_at_id"`
}

// Create handles POST /v1/subscriptions.
func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body subscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.SubscriberID == "" || body.SubscribedAtID == "" {
		respondErrorMessage(w, http.StatusBadRequest, "subscriber_id and subscribed_at_id are required")
		return
	}

	subscription, err := h.service.Create(r.Context(), userInfo(r), body.SubscriberID, body.SubscribedAtID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, subscription)
}

// FindAll handles GET /v1/subscriptions.
func (h *SubscriptionHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	page, err := parsePageRequest(r)
	if err != nil {
		respondErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	filter := db.SubscriptionFilter{
		SubscriberID:   r.URL.Query().Get("subscriberId"),
		SubscribedAtID: r.URL.Query().Get("subscribedAtId"),
	}

	result, err := h.service.FindAll(r.Context(), userInfo(r), filter, page)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// FindByID handles GET /v1/subscriptions/{id}.
func (h *SubscriptionHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	subscription, err := h.service.FindByID(r.Context(), userInfo(r), id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, subscription)
}

// Delete handles DELETE /v1/subscriptions/{id}.
func (h *SubscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
