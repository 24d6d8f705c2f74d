package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/buildwatch/notifier/auth"
	"github.com/buildwatch/notifier/common"
	"github.com/buildwatch/notifier/db"
	"github.com/buildwatch/notifier/email"
	"github.com/buildwatch/notifier/model"
)

// Links holds the statically configured URLs that are included in every notification
// email.
type Links struct {
	Release     string
	Unsubscribe string
}

// Notifications implements the notification fanout along with the authorized reads and
// deletes of notification records.
type Notifications struct {
	notifications NotificationStore
	subscriptions SubscriptionStore
	dispatcher    email.Dispatcher
	links         Links
	log           *logrus.Entry
}

// NewNotifications returns a new notification service.
func NewNotifications(
	notifications NotificationStore,
	subscriptions SubscriptionStore,
	dispatcher email.Dispatcher,
	links Links,
	log *logrus.Entry,
) *Notifications {
	return &Notifications{
		notifications: notifications,
		subscriptions: subscriptions,
		dispatcher:    dispatcher,
		links:         links,
		log:           log,
	}
}

// CreateAll fans one build completion event out to every subscriber watching the build's
// author: one notification record and one email per subscription. Each subscriber is an
// independent unit of work, so a persistence or dispatch failure for one subscriber is
// logged and doesn't stop the remaining subscribers from being processed. A failure to
// resolve the subscriber set is fatal for the event and is returned to the caller, which
// owns the redelivery policy.
func (s *Notifications) CreateAll(ctx context.Context, message *model.BuildMessage) error {
	subscriptions, err := s.subscriptions.ListBySubscribedAtID(ctx, message.AuthorID)
	if err != nil {
		return errors.Wrap(err, "unable to resolve the subscriber set")
	}
	if len(subscriptions) == 0 {
		s.log.WithField("author_id", message.AuthorID).Info("no subscriptions for the author")
		return nil
	}

	for _, subscription := range subscriptions {
		log := s.log.WithFields(logrus.Fields{
			"build_id":        message.BuildID,
			"subscription_id": subscription.ID,
			"subscriber_id":   subscription.SubscriberID,
		})

		// Persist first; a notification that was never recorded is never mailed.
		notification := &model.Notification{
			BuildID:      message.BuildID,
			Subscription: subscription,
		}
		err = s.notifications.Insert(ctx, notification)
		if err != nil {
			log.WithError(err).Error("unable to save the notification")
			continue
		}
		log.WithField("id", notification.ID).Info("notification saved")

		// A send failure doesn't undo the saved notification.
		placeholders := []string{
			subscription.SubscribedAtUsername,
			message.BuildName,
			message.BuildDescription,
			s.links.Release,
			s.links.Unsubscribe,
		}
		err = s.dispatcher.Send(subscription.SubscriberEmail, placeholders)
		if err != nil {
			log.WithError(err).Error("unable to send the notification email")
			continue
		}
	}

	return nil
}

// FindByID looks up a single notification, which only the owner of its subscription and
// administrators may read.
func (s *Notifications) FindByID(ctx context.Context, user model.UserInfo, id int64) (*model.Notification, error) {
	notification, err := s.getOrNotFound(ctx, id)
	if err != nil {
		return nil, err
	}
	err = auth.RequireOwner(user, notification.Subscription.SubscriberID)
	if err != nil {
		return nil, err
	}
	return notification, nil
}

// FindAllByUserID returns one page of the acting user's own notifications.
func (s *Notifications) FindAllByUserID(
	ctx context.Context, user model.UserInfo, page model.PageRequest,
) (*model.Page[model.Notification], error) {
	notifications, total, err := s.notifications.ListBySubscriberID(ctx, user.UserID, page)
	if err != nil {
		return nil, err
	}
	result := model.NewPage(notifications, page, total)
	return &result, nil
}

// FindAll returns one page of notifications matching the filter. Listing across users is
// restricted to administrators.
func (s *Notifications) FindAll(
	ctx context.Context, user model.UserInfo, filter db.NotificationFilter, page model.PageRequest,
) (*model.Page[model.Notification], error) {
	err := auth.RequireAdmin(user)
	if err != nil {
		return nil, err
	}
	notifications, total, err := s.notifications.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	result := model.NewPage(notifications, page, total)
	return &result, nil
}

// Delete removes a single notification. Deletion is restricted to administrators.
func (s *Notifications) Delete(ctx context.Context, user model.UserInfo, id int64) error {
	err := auth.RequireAdmin(user)
	if err != nil {
		return err
	}
	_, err = s.getOrNotFound(ctx, id)
	if err != nil {
		return err
	}

	err = s.notifications.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.log.WithField("id", id).Info("notification deleted")
	return nil
}

func (s *Notifications) getOrNotFound(ctx context.Context, id int64) (*model.Notification, error) {
	notification, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if notification == nil {
		return nil, common.NewNotFound("notification", id)
	}
	return notification, nil
}
