package db

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"

	// Loads the PostgreSQL driver.
	_ "github.com/lib/pq"
)

// InitDatabase establishes a database connection and verifies that the database can be reached.
// The database isn't always available immediately at startup, so the initial ping is retried
// for up to a minute.
func InitDatabase(driverName, databaseURI string) (*sql.DB, error) {
	wrapMsg := "unable to initialize the database"

	// Establish the database connection.
	db, err := sql.Open(driverName, databaseURI)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Verify that the database can be reached.
	deadline := time.Now().Add(time.Minute)
	for {
		err = db.Ping()
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, errors.Wrap(err, wrapMsg)
		}
		time.Sleep(time.Second)
	}
}
