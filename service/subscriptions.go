package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/buildwatch/notifier/auth"
	"github.com/buildwatch/notifier/common"
	"github.com/buildwatch/notifier/db"
	"github.com/buildwatch/notifier/directory"
	"github.com/buildwatch/notifier/model"
)

// Subscriptions implements the subscription lifecycle: creation with directory
// resolution, authorized reads, and authorized deletes.
type Subscriptions struct {
	store     SubscriptionStore
	directory directory.Client
	log       *logrus.Entry
}

// NewSubscriptions returns a new subscription service.
func NewSubscriptions(store SubscriptionStore, directoryClient directory.Client, log *logrus.Entry) *Subscriptions {
	return &Subscriptions{
		store:     store,
		directory: directoryClient,
		log:       log,
	}
}

// Create saves a new subscription on behalf of the acting user. The acting user must be
// the subscriber themself, self-subscription is rejected, both identities must be known
// to the directory, and the (subscriber, author) pair must not already exist. The
// author's display name and the subscriber's email address are resolved once here and
// stored with the subscription.
func (s *Subscriptions) Create(
	ctx context.Context, user model.UserInfo, subscriberID, subscribedAtID string,
) (*model.Subscription, error) {
	wrapMsg := "unable to create the subscription"

	// The authorization and consistency checks come before any directory calls.
	err := auth.RequireSelf(user, subscriberID)
	if err != nil {
		return nil, err
	}
	if subscriberID == subscribedAtID {
		return nil, common.NewConflict("user can't be subscribed to themself")
	}

	// Resolve both identities through the directory.
	subscribedAt, err := s.directory.ResolveUser(ctx, subscribedAtID)
	if err != nil {
		return nil, err
	}
	subscriber, err := s.directory.ResolveUser(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	err = common.ValidateEmailAddress(subscriber.Email)
	if err != nil {
		return nil, common.NewInternal("directory returned an invalid email address for user %s: %s", subscriberID, err)
	}

	// Check for an existing subscription. The unique index on the pair backs this check
	// up, so a concurrent create of the same pair still can't slip through.
	exists, err := s.store.ExistsPair(ctx, subscriberID, subscribedAtID)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	if exists {
		return nil, common.NewConflict(
			"user with id: %s already subscribed to user with id: %s", subscriberID, subscribedAtID)
	}

	// Save the subscription with the resolved snapshots.
	subscription := &model.Subscription{
		SubscriberID:         subscriberID,
		SubscribedAtID:       subscribedAtID,
		SubscriberEmail:      subscriber.Email,
		SubscribedAtUsername: subscribedAt.Username,
	}
	err = s.store.Insert(ctx, subscription)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"id":               subscription.ID,
		"subscriber_id":    subscriberID,
		"subscribed_at_id": subscribedAtID,
	}).Info("subscription created")
	return subscription, nil
}

// FindByID looks up a single subscription, which only its owner and administrators may
// read.
func (s *Subscriptions) FindByID(ctx context.Context, user model.UserInfo, id int64) (*model.Subscription, error) {
	subscription, err := s.getOrNotFound(ctx, id)
	if err != nil {
		return nil, err
	}
	err = auth.RequireOwner(user, subscription.SubscriberID)
	if err != nil {
		return nil, err
	}
	return subscription, nil
}

// FindAll returns one page of subscriptions matching the filter. Listing across users is
// restricted to administrators.
func (s *Subscriptions) FindAll(
	ctx context.Context, user model.UserInfo, filter db.SubscriptionFilter, page model.PageRequest,
) (*model.Page[model.Subscription], error) {
	err := auth.RequireAdmin(user)
	if err != nil {
		return nil, err
	}
	subscriptions, total, err := s.store.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	result := model.NewPage(subscriptions, page, total)
	return &result, nil
}

// Delete removes a single subscription along with its dependent notifications. Only the
// owner and administrators may delete a subscription.
func (s *Subscriptions) Delete(ctx context.Context, user model.UserInfo, id int64) error {
	subscription, err := s.getOrNotFound(ctx, id)
	if err != nil {
		return err
	}
	err = auth.RequireOwner(user, subscription.SubscriberID)
	if err != nil {
		return err
	}

	err = s.store.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.log.WithField("id", id).Info("subscription deleted")
	return nil
}

func (s *Subscriptions) getOrNotFound(ctx context.Context, id int64) (*model.Subscription, error) {
	subscription, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if subscription == nil {
		return nil, common.NewNotFound("subscription", id)
	}
	return subscription, nil
}
