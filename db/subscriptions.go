package db

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/buildwatch/notifier/common"
	"github.com/buildwatch/notifier/model"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint violation.
const uniqueViolation = "23505"

var subscriptionColumns = []string{
	"s.id",
	"s.subscriber_id",
	"s.subscribed_at_id",
	"s.subscriber_email",
	"s.subscribed_at_username",
	"s.time_created",
}

// Subscriptions provides access to the subscription table.
type Subscriptions struct {
	db *sql.DB
}

// NewSubscriptions returns a new subscription store.
func NewSubscriptions(db *sql.DB) *Subscriptions {
	return &Subscriptions{db: db}
}

// Insert saves a single subscription, assigning its ID and creation timestamp. A unique
// constraint violation on the (subscriber, author) pair is reported as a conflict, so two
// concurrent inserts of the same pair can't both succeed.
func (s *Subscriptions) Insert(ctx context.Context, subscription *model.Subscription) error {
	wrapMsg := "unable to save the subscription"

	// Build the insert statement.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Insert("subscription").
		Columns("subscriber_id", "subscribed_at_id", "subscriber_email", "subscribed_at_username").
		Values(
			subscription.SubscriberID,
			subscription.SubscribedAtID,
			subscription.SubscriberEmail,
			subscription.SubscribedAtUsername).
		Suffix("RETURNING id, time_created").
		ToSql()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	// Execute the insert statement, scanning the generated values into the subscription.
	row := s.db.QueryRowContext(ctx, statement, args...)
	err = row.Scan(&subscription.ID, &subscription.TimeCreated)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return common.NewConflict(
				"user with id: %s already subscribed to user with id: %s",
				subscription.SubscriberID, subscription.SubscribedAtID)
		}
		return errors.Wrap(err, wrapMsg)
	}

	return nil
}

// GetByID looks up a single subscription. The returned subscription is nil if no
// subscription with the given ID exists.
func (s *Subscriptions) GetByID(ctx context.Context, id int64) (*model.Subscription, error) {
	wrapMsg := "unable to look up the subscription"

	// Build the query.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select(subscriptionColumns...).
		From("subscription s").
		Where(sq.Eq{"s.id": id}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Query the database.
	var subscription model.Subscription
	row := s.db.QueryRowContext(ctx, statement, args...)
	err = scanSubscription(row, &subscription)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return &subscription, nil
}

// ExistsPair determines whether or not a subscription for the given pair already exists.
func (s *Subscriptions) ExistsPair(ctx context.Context, subscriberID, subscribedAtID string) (bool, error) {
	wrapMsg := "unable to check for an existing subscription"

	// Build the query.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select("count(*)").
		From("subscription").
		Where(sq.Eq{"subscriber_id": subscriberID}).
		Where(sq.Eq{"subscribed_at_id": subscribedAtID}).
		ToSql()
	if err != nil {
		return false, errors.Wrap(err, wrapMsg)
	}

	// Query the database.
	var total int64
	err = s.db.QueryRowContext(ctx, statement, args...).Scan(&total)
	if err != nil {
		return false, errors.Wrap(err, wrapMsg)
	}

	return total > 0, nil
}

// Delete removes a single subscription along with its dependent notifications, which are
// removed by the cascade on the foreign key.
func (s *Subscriptions) Delete(ctx context.Context, id int64) error {
	wrapMsg := "unable to delete the subscription"

	// Build the delete statement.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Delete("subscription").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	// Execute the delete statement and verify that a row was actually removed.
	result, err := s.db.ExecContext(ctx, statement, args...)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	if rowsAffected == 0 {
		return common.NewNotFound("subscription", id)
	}

	return nil
}

// List returns one page of subscriptions matching the filter along with the total number
// of matching subscriptions.
func (s *Subscriptions) List(
	ctx context.Context, filter SubscriptionFilter, page model.PageRequest,
) ([]model.Subscription, int64, error) {
	wrapMsg := "unable to list subscriptions"

	// Count the matching subscriptions.
	statement, args, err := filter.Apply(
		sq.StatementBuilder.
			PlaceholderFormat(sq.Dollar).
			Select("count(*)").
			From("subscription s"),
	).ToSql()
	if err != nil {
		return nil, 0, errors.Wrap(err, wrapMsg)
	}
	var total int64
	err = s.db.QueryRowContext(ctx, statement, args...).Scan(&total)
	if err != nil {
		return nil, 0, errors.Wrap(err, wrapMsg)
	}

	// Fetch the requested page.
	statement, args, err = filter.Apply(
		sq.StatementBuilder.
			PlaceholderFormat(sq.Dollar).
			Select(subscriptionColumns...).
			From("subscription s"),
	).
		OrderBy("s.id").
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, errors.Wrap(err, wrapMsg)
	}

	rows, err := s.db.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, wrapMsg)
	}
	defer rows.Close()

	var subscriptions []model.Subscription
	for rows.Next() {
		var subscription model.Subscription
		err = scanSubscription(rows, &subscription)
		if err != nil {
			return nil, 0, errors.Wrap(err, wrapMsg)
		}
		subscriptions = append(subscriptions, subscription)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, wrapMsg)
	}

	return subscriptions, total, nil
}

// ListBySubscribedAtID returns every subscription watching the given author, in a stable
// order. This is the lookup that drives the notification fanout.
func (s *Subscriptions) ListBySubscribedAtID(ctx context.Context, subscribedAtID string) ([]model.Subscription, error) {
	wrapMsg := "unable to list subscriptions for the author"

	// Build the query.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select(subscriptionColumns...).
		From("subscription s").
		Where(sq.Eq{"s.subscribed_at_id": subscribedAtID}).
		OrderBy("s.id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Query the database.
	rows, err := s.db.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	defer rows.Close()

	var subscriptions []model.Subscription
	for rows.Next() {
		var subscription model.Subscription
		err = scanSubscription(rows, &subscription)
		if err != nil {
			return nil, errors.Wrap(err, wrapMsg)
		}
		subscriptions = append(subscriptions, subscription)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return subscriptions, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubscription(row rowScanner, subscription *model.Subscription) error {
	return row.Scan(
		&subscription.ID,
		&subscription.SubscriberID,
		&subscription.SubscribedAtID,
		&subscription.SubscriberEmail,
		&subscription.SubscribedAtUsername,
		&subscription.TimeCreated,
	)
}
