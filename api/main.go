// Package api exposes the subscription and notification services over HTTP. All /v1
// routes require a bearer token; the acting user's identity and roles are taken from
// the token claims.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Router builds the HTTP routing table for the service.
func Router(
	subscriptions SubscriptionService,
	notifications NotificationService,
	jwtSecret string,
	log *logrus.Entry,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	subscriptionHandler := NewSubscriptionHandler(subscriptions, log)
	notificationHandler := NewNotificationHandler(notifications, log)

	r.Route("/v1", func(r chi.Router) {
		r.Use(Authenticate(jwtSecret))
		r.Route("/subscriptions", subscriptionHandler.Routes)
		r.Route("/notifications", notificationHandler.Routes)
	})

	return r
}
