package api

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/buildwatch/notifier/common"
	"github.com/buildwatch/notifier/db"
	"github.com/buildwatch/notifier/model"
)

const testSecret = "test-secret"

func testLogEntry() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

// bearerToken builds a signed token for the given user, mirroring what the
// authentication service issues.
func bearerToken(t *testing.T, userID string, roles ...string) string {
	t.Helper()
	claims := userClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: userID,
		Roles:  roles,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

// MockSubscriptionService records the calls made by the handlers and returns canned
// results.
type MockSubscriptionService struct {
	Subscription *model.Subscription
	Page         *model.Page[model.Subscription]
	Err          error

	LastUser   model.UserInfo
	LastFilter db.SubscriptionFilter
	LastPage   model.PageRequest
	LastID     int64
}

func (m *MockSubscriptionService) Create(
	_ context.Context, user model.UserInfo, subscriberID, subscribedAtID string,
) (*model.Subscription, error) {
	m.LastUser = user
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Subscription, nil
}

func (m *MockSubscriptionService) FindByID(
	_ context.Context, user model.UserInfo, id int64,
) (*model.Subscription, error) {
	m.LastUser = user
	m.LastID = id
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Subscription, nil
}

func (m *MockSubscriptionService) FindAll(
	_ context.Context, user model.UserInfo, filter db.SubscriptionFilter, page model.PageRequest,
) (*model.Page[model.Subscription], error) {
	m.LastUser = user
	m.LastFilter = filter
	m.LastPage = page
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Page, nil
}

func (m *MockSubscriptionService) Delete(_ context.Context, user model.UserInfo, id int64) error {
	m.LastUser = user
	m.LastID = id
	return m.Err
}

// MockNotificationService records the calls made by the handlers and returns canned
// results.
type MockNotificationService struct {
	Notification *model.Notification
	Page         *model.Page[model.Notification]
	Err          error

	LastUser   model.UserInfo
	LastFilter db.NotificationFilter
	LastPage   model.PageRequest
	LastID     int64
	MineCalled bool
}

func (m *MockNotificationService) FindByID(
	_ context.Context, user model.UserInfo, id int64,
) (*model.Notification, error) {
	m.LastUser = user
	m.LastID = id
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Notification, nil
}

func (m *MockNotificationService) FindAll(
	_ context.Context, user model.UserInfo, filter db.NotificationFilter, page model.PageRequest,
) (*model.Page[model.Notification], error) {
	m.LastUser = user
	m.LastFilter = filter
	m.LastPage = page
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Page, nil
}

func (m *MockNotificationService) FindAllByUserID(
	_ context.Context, user model.UserInfo, page model.PageRequest,
) (*model.Page[model.Notification], error) {
	m.LastUser = user
	m.LastPage = page
	m.MineCalled = true
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Page, nil
}

func (m *MockNotificationService) Delete(_ context.Context, user model.UserInfo, id int64) error {
	m.LastUser = user
	m.LastID = id
	return m.Err
}

func testSubscription() *model.Subscription {
	return &model.Subscription{
		ID:                   7,
		SubscriberID:         "user-1",
		SubscribedAtID:       "author-1",
		SubscriberEmail:      "user-1@example.org",
		SubscribedAtUsername: "author",
		TimeCreated:          time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func testNotification() *model.Notification {
	return &model.Notification{
		ID:           11,
		BuildID:      42,
		Subscription: *testSubscription(),
		TimeCreated:  time.Date(2025, 5, 2, 12, 0, 0, 0, time.UTC),
	}
}

var errBoom = common.NewInternal("something broke")
