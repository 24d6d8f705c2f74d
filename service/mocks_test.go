package service

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/buildwatch/notifier/common"
	"github.com/buildwatch/notifier/db"
	"github.com/buildwatch/notifier/directory"
	"github.com/buildwatch/notifier/model"
)

// testLogEntry returns a log entry that discards everything it's given.
func testLogEntry() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

// MockSubscriptionStore is an in-memory subscription store for testing.
type MockSubscriptionStore struct {
	Subscriptions []model.Subscription
	InsertErr     error
	ListErr       error
	DeletedIDs    []int64
	nextID        int64
}

func (m *MockSubscriptionStore) Insert(_ context.Context, subscription *model.Subscription) error {
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.nextID++
	subscription.ID = m.nextID
	m.Subscriptions = append(m.Subscriptions, *subscription)
	return nil
}

func (m *MockSubscriptionStore) GetByID(_ context.Context, id int64) (*model.Subscription, error) {
	for i := range m.Subscriptions {
		if m.Subscriptions[i].ID == id {
			subscription := m.Subscriptions[i]
			return &subscription, nil
		}
	}
	return nil, nil
}

func (m *MockSubscriptionStore) ExistsPair(_ context.Context, subscriberID, subscribedAtID string) (bool, error) {
	for _, subscription := range m.Subscriptions {
		if subscription.SubscriberID == subscriberID && subscription.SubscribedAtID == subscribedAtID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockSubscriptionStore) Delete(_ context.Context, id int64) error {
	for i := range m.Subscriptions {
		if m.Subscriptions[i].ID == id {
			m.Subscriptions = append(m.Subscriptions[:i], m.Subscriptions[i+1:]...)
			m.DeletedIDs = append(m.DeletedIDs, id)
			return nil
		}
	}
	return common.NewNotFound("subscription", id)
}

func (m *MockSubscriptionStore) List(
	_ context.Context, filter db.SubscriptionFilter, _ model.PageRequest,
) ([]model.Subscription, int64, error) {
	if m.ListErr != nil {
		return nil, 0, m.ListErr
	}
	var matches []model.Subscription
	for _, subscription := range m.Subscriptions {
		if filter.SubscriberID != "" && subscription.SubscriberID != filter.SubscriberID {
			continue
		}
		if filter.SubscribedAtID != "" && subscription.SubscribedAtID != filter.SubscribedAtID {
			continue
		}
		matches = append(matches, subscription)
	}
	return matches, int64(len(matches)), nil
}

func (m *MockSubscriptionStore) ListBySubscribedAtID(_ context.Context, subscribedAtID string) ([]model.Subscription, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var matches []model.Subscription
	for _, subscription := range m.Subscriptions {
		if subscription.SubscribedAtID == subscribedAtID {
			matches = append(matches, subscription)
		}
	}
	return matches, nil
}

// MockNotificationStore is an in-memory notification store for testing. Inserts can be
// made to fail for a specific subscription to exercise failure isolation.
type MockNotificationStore struct {
	Notifications    []model.Notification
	InsertErrForSubs map[int64]error
	DeletedIDs       []int64
	nextID           int64
}

func (m *MockNotificationStore) Insert(_ context.Context, notification *model.Notification) error {
	if err := m.InsertErrForSubs[notification.Subscription.ID]; err != nil {
		return err
	}
	m.nextID++
	notification.ID = m.nextID
	m.Notifications = append(m.Notifications, *notification)
	return nil
}

func (m *MockNotificationStore) GetByID(_ context.Context, id int64) (*model.Notification, error) {
	for i := range m.Notifications {
		if m.Notifications[i].ID == id {
			notification := m.Notifications[i]
			return &notification, nil
		}
	}
	return nil, nil
}

func (m *MockNotificationStore) Delete(_ context.Context, id int64) error {
	for i := range m.Notifications {
		if m.Notifications[i].ID == id {
			m.Notifications = append(m.Notifications[:i], m.Notifications[i+1:]...)
			m.DeletedIDs = append(m.DeletedIDs, id)
			return nil
		}
	}
	return common.NewNotFound("notification", id)
}

func (m *MockNotificationStore) List(
	_ context.Context, filter db.NotificationFilter, _ model.PageRequest,
) ([]model.Notification, int64, error) {
	var matches []model.Notification
	for _, notification := range m.Notifications {
		if filter.SubscriptionID != nil && notification.Subscription.ID != *filter.SubscriptionID {
			continue
		}
		if filter.BuildID != nil && notification.BuildID != *filter.BuildID {
			continue
		}
		matches = append(matches, notification)
	}
	return matches, int64(len(matches)), nil
}

func (m *MockNotificationStore) ListBySubscriberID(
	_ context.Context, subscriberID string, _ model.PageRequest,
) ([]model.Notification, int64, error) {
	var matches []model.Notification
	for _, notification := range m.Notifications {
		if notification.Subscription.SubscriberID == subscriberID {
			matches = append(matches, notification)
		}
	}
	return matches, int64(len(matches)), nil
}

// MockDirectoryClient resolves users from a fixed map and counts how often it was called.
type MockDirectoryClient struct {
	Users        map[string]directory.User
	ResolveCalls int
}

func (m *MockDirectoryClient) ResolveUser(_ context.Context, id string) (*directory.User, error) {
	m.ResolveCalls++
	user, ok := m.Users[id]
	if !ok {
		return nil, common.NewNotFound("user", id)
	}
	return &user, nil
}

func (m *MockDirectoryClient) UserExists(_ context.Context, id string) (bool, error) {
	_, ok := m.Users[id]
	return ok, nil
}

// SentEmail records one dispatch call.
type SentEmail struct {
	To           string
	Placeholders []string
}

// MockDispatcher records dispatch calls and can be made to fail for specific addresses.
type MockDispatcher struct {
	Sent    []SentEmail
	FailFor map[string]bool
}

func (m *MockDispatcher) Send(toAddress string, placeholders []string) error {
	if m.FailFor[toAddress] {
		return fmt.Errorf("smtp relay rejected the message for %s", toAddress)
	}
	m.Sent = append(m.Sent, SentEmail{To: toAddress, Placeholders: placeholders})
	return nil
}
