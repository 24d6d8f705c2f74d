package main

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/buildwatch/notifier/common"
	"github.com/buildwatch/notifier/email"
	"github.com/buildwatch/notifier/service"
)

// serviceConfig represents the full configuration of this service, read from a single
// configuration file.
type serviceConfig struct {
	AMQP             common.AMQPSettings
	DatabaseURI      string
	ListenAddress    string
	JWTSecret        string
	DirectoryBaseURL string
	DirectoryTimeout time.Duration
	SMTP             email.SMTPSettings
	Links            service.Links
}

// loadConfig reads the configuration file and validates the settings that have no usable
// default.
func loadConfig(path string) (*serviceConfig, error) {
	wrapMsg := "unable to load the configuration file"

	cfg := viper.New()
	cfg.SetConfigFile(path)

	// Default option values.
	cfg.SetDefault("amqp.exchange.name", "builds")
	cfg.SetDefault("amqp.exchange.type", "topic")
	cfg.SetDefault("amqp.queue", "build-notifier")
	cfg.SetDefault("http.listen", ":8080")
	cfg.SetDefault("directory.timeout", "10s")
	cfg.SetDefault("mail.port", 587)
	cfg.SetDefault("mail.subject", "A build you're watching has completed")

	err := cfg.ReadInConfig()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	config := serviceConfig{
		AMQP: common.AMQPSettings{
			URI:          cfg.GetString("amqp.uri"),
			ExchangeName: cfg.GetString("amqp.exchange.name"),
			ExchangeType: cfg.GetString("amqp.exchange.type"),
			QueueName:    cfg.GetString("amqp.queue"),
		},
		DatabaseURI:      cfg.GetString("db.uri"),
		ListenAddress:    cfg.GetString("http.listen"),
		JWTSecret:        cfg.GetString("auth.jwt_secret"),
		DirectoryBaseURL: cfg.GetString("directory.base_url"),
		DirectoryTimeout: cfg.GetDuration("directory.timeout"),
		SMTP: email.SMTPSettings{
			Host:     cfg.GetString("mail.host"),
			Port:     cfg.GetInt("mail.port"),
			Username: cfg.GetString("mail.username"),
			Password: cfg.GetString("mail.password"),
			From:     cfg.GetString("mail.from"),
			Subject:  cfg.GetString("mail.subject"),
		},
		Links: service.Links{
			Release:     cfg.GetString("mail.release_link"),
			Unsubscribe: cfg.GetString("mail.unsubscribe_link"),
		},
	}

	// The settings below have no default that could possibly work.
	for setting, value := range map[string]string{
		"amqp.uri":           config.AMQP.URI,
		"db.uri":             config.DatabaseURI,
		"auth.jwt_secret":    config.JWTSecret,
		"directory.base_url": config.DirectoryBaseURL,
		"mail.host":          config.SMTP.Host,
		"mail.from":          config.SMTP.From,
	} {
		if value == "" {
			return nil, errors.Errorf("%s: missing required setting: %s", wrapMsg, setting)
		}
	}

	return &config, nil
}
