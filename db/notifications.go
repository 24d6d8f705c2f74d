package db

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/buildwatch/notifier/common"
	"github.com/buildwatch/notifier/model"
)

var notificationColumns = []string{
	"n.id",
	"n.build_id",
	"n.time_created",
	"s.id",
	"s.subscriber_id",
	"s.subscribed_at_id",
	"s.subscriber_email",
	"s.subscribed_at_username",
	"s.time_created",
}

// Notifications provides access to the notification table. Every read joins the owning
// subscription so that callers always see the subscriber the notification was created for.
type Notifications struct {
	db *sql.DB
}

// NewNotifications returns a new notification store.
func NewNotifications(db *sql.DB) *Notifications {
	return &Notifications{db: db}
}

// Insert saves a single notification, assigning its ID and creation timestamp.
func (n *Notifications) Insert(ctx context.Context, notification *model.Notification) error {
	wrapMsg := "unable to save the notification"

	// Build the insert statement.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Insert("notification").
		Columns("build_id", "subscription_id").
		Values(notification.BuildID, notification.Subscription.ID).
		Suffix("RETURNING id, time_created").
		ToSql()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	// Execute the insert statement, scanning the generated values into the notification.
	row := n.db.QueryRowContext(ctx, statement, args...)
	err = row.Scan(&notification.ID, &notification.TimeCreated)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	return nil
}

// GetByID looks up a single notification along with its subscription. The returned
// notification is nil if no notification with the given ID exists.
func (n *Notifications) GetByID(ctx context.Context, id int64) (*model.Notification, error) {
	wrapMsg := "unable to look up the notification"

	// Build the query.
	statement, args, err := n.baseQuery().
		Where(sq.Eq{"n.id": id}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Query the database.
	var notification model.Notification
	row := n.db.QueryRowContext(ctx, statement, args...)
	err = scanNotification(row, &notification)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return &notification, nil
}

// Delete removes a single notification.
func (n *Notifications) Delete(ctx context.Context, id int64) error {
	wrapMsg := "unable to delete the notification"

	// Build the delete statement.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Delete("notification").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	// Execute the delete statement and verify that a row was actually removed.
	result, err := n.db.ExecContext(ctx, statement, args...)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	if rowsAffected == 0 {
		return common.NewNotFound("notification", id)
	}

	return nil
}

// List returns one page of notifications matching the filter along with the total number
// of matching notifications.
func (n *Notifications) List(
	ctx context.Context, filter NotificationFilter, page model.PageRequest,
) ([]model.Notification, int64, error) {
	return n.list(ctx, func(builder sq.SelectBuilder) sq.SelectBuilder {
		return filter.Apply(builder)
	}, page)
}

// ListBySubscriberID returns one page of the notifications created for the given
// subscriber, along with the total number of that subscriber's notifications.
func (n *Notifications) ListBySubscriberID(
	ctx context.Context, subscriberID string, page model.PageRequest,
) ([]model.Notification, int64, error) {
	return n.list(ctx, func(builder sq.SelectBuilder) sq.SelectBuilder {
		return builder.Where(sq.Eq{"s.subscriber_id": subscriberID})
	}, page)
}

func (n *Notifications) list(
	ctx context.Context,
	constrain func(sq.SelectBuilder) sq.SelectBuilder,
	page model.PageRequest,
) ([]model.Notification, int64, error) {
	wrapMsg := "unable to list notifications"

	// Count the matching notifications.
	statement, args, err := constrain(
		sq.StatementBuilder.
			PlaceholderFormat(sq.Dollar).
			Select("count(*)").
			From("notification n").
			Join("subscription s ON n.subscription_id = s.id"),
	).ToSql()
	if err != nil {
		return nil, 0, errors.Wrap(err, wrapMsg)
	}
	var total int64
	err = n.db.QueryRowContext(ctx, statement, args...).Scan(&total)
	if err != nil {
		return nil, 0, errors.Wrap(err, wrapMsg)
	}

	// Fetch the requested page.
	statement, args, err = constrain(n.baseQuery()).
		OrderBy("n.id").
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, errors.Wrap(err, wrapMsg)
	}

	rows, err := n.db.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, wrapMsg)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var notification model.Notification
		err = scanNotification(rows, &notification)
		if err != nil {
			return nil, 0, errors.Wrap(err, wrapMsg)
		}
		notifications = append(notifications, notification)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, wrapMsg)
	}

	return notifications, total, nil
}

func (n *Notifications) baseQuery() sq.SelectBuilder {
	return sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select(notificationColumns...).
		From("notification n").
		Join("subscription s ON n.subscription_id = s.id")
}

func scanNotification(row rowScanner, notification *model.Notification) error {
	return row.Scan(
		&notification.ID,
		&notification.BuildID,
		&notification.TimeCreated,
		&notification.Subscription.ID,
		&notification.Subscription.SubscriberID,
		&notification.Subscription.SubscribedAtID,
		&notification.Subscription.SubscriberEmail,
		&notification.Subscription.SubscribedAtUsername,
		&notification.Subscription.TimeCreated,
	)
}
