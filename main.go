package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DavidGamba/go-getoptions"
	"github.com/sirupsen/logrus"

	"github.com/buildwatch/notifier/api"
	"github.com/buildwatch/notifier/db"
	"github.com/buildwatch/notifier/directory"
	"github.com/buildwatch/notifier/email"
	"github.com/buildwatch/notifier/handlers"
	"github.com/buildwatch/notifier/handlerset"
	"github.com/buildwatch/notifier/service"
)

//go:embed migrations/*.up.sql
var migrationFiles embed.FS

// commandLineOptionValues represents the values of the command-line options that were passed on the command line when
// this service was invoked.
type commandLineOptionValues struct {
	Config string
}

func parseCommandLine() *commandLineOptionValues {
	optionValues := &commandLineOptionValues{}
	opt := getoptions.New()

	// Default option values.
	defaultConfigPath := "/etc/buildwatch/notifier.yml"

	// Define the command-line options.
	opt.Bool("help", false, opt.Alias("h", "?"))
	opt.StringVar(&optionValues.Config, "config", defaultConfigPath,
		opt.Alias("c"),
		opt.Description("the path to the configuration file"))

	// Parse the command line, handling requests for help and usage errors.
	_, err := opt.Parse(os.Args[1:])
	if opt.Called("help") {
		fmt.Fprintf(os.Stderr, opt.Help())
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n\n", err)
		fmt.Fprintf(os.Stderr, opt.Help(getoptions.HelpSynopsis))
		os.Exit(1)
	}

	return optionValues
}

func main() {
	// Parse the command-line.
	optionValues := parseCommandLine()

	// Initialize logging.
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	log := logger.WithField("service", "notifier")

	// Read in the configuration file.
	config, err := loadConfig(optionValues.Config)
	if err != nil {
		log.WithError(err).Fatal("unable to load the configuration")
	}

	// Establish the database connection and bring the schema up to date.
	database, err := db.InitDatabase("postgres", config.DatabaseURI)
	if err != nil {
		log.WithError(err).Fatal("unable to connect to the database")
	}
	defer database.Close()

	migrations, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		log.WithError(err).Fatal("unable to open the migrations")
	}
	err = db.Migrate(context.Background(), database, migrations)
	if err != nil {
		log.WithError(err).Fatal("unable to apply the database migrations")
	}

	// Build the services.
	directoryClient := directory.NewHTTPClient(config.DirectoryBaseURL, config.DirectoryTimeout)
	dispatcher := email.NewSMTPDispatcher(config.SMTP, log)
	subscriptionStore := db.NewSubscriptions(database)
	notificationStore := db.NewNotifications(database)
	subscriptions := service.NewSubscriptions(subscriptionStore, directoryClient, log)
	notifications := service.NewNotifications(notificationStore, subscriptionStore, dispatcher, config.Links, log)

	// Start consuming build events.
	consumeCtx, cancelConsume := context.WithCancel(context.Background())
	defer cancelConsume()

	handlerSet, err := handlerset.New(&config.AMQP, map[string]handlers.MessageHandler{
		"build.completed": handlers.NewBuildCompleted(notifications),
	}, log)
	if err != nil {
		log.WithError(err).Fatal("unable to connect to the message broker")
	}
	defer handlerSet.Close()

	consumeDone := make(chan error, 1)
	go func() {
		consumeDone <- handlerSet.Listen(consumeCtx)
	}()

	// Start the HTTP server.
	server := &http.Server{
		Addr:         config.ListenAddress,
		Handler:      api.Router(subscriptions, notifications, config.JWTSecret, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	serverDone := make(chan error, 1)
	go func() {
		log.WithField("address", config.ListenAddress).Info("http server starting")
		serverDone <- server.ListenAndServe()
	}()

	// Run until a shutdown signal arrives or one of the components fails.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("shutdown signal received")
	case err := <-consumeDone:
		if err != nil {
			log.WithError(err).Error("the message consumer stopped")
		}
	case err := <-serverDone:
		if err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("the http server stopped")
		}
	}

	// Stop the consumer first so that no new notifications arrive while draining.
	cancelConsume()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("the http server did not shut down cleanly")
	}

	log.Info("service stopped")
}
