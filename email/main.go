// Package email renders and sends the build notification emails.
package email

import (
	_ "embed"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/buildwatch/notifier/common"
)

//go:embed template.html
var defaultTemplate string

// Dispatcher describes the operation of sending one notification message to one address.
type Dispatcher interface {

	// Send renders the message template with the given placeholder values and transmits
	// the result to the given address.
	Send(toAddress string, placeholders []string) error
}

// FillTemplate substitutes the positional `{{i}}` tokens in the template with the
// corresponding placeholder values. Tokens without a corresponding value are left
// verbatim so that a short placeholder list never fails the send.
func FillTemplate(template string, placeholders []string) string {
	for i, value := range placeholders {
		template = strings.ReplaceAll(template, fmt.Sprintf("{{%d}}", i), value)
	}
	return template
}

// SMTPSettings represents the settings that we require in order to submit messages to
// the mail relay.
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Subject  string
}

// SMTPDispatcher sends notification emails through an SMTP relay.
type SMTPDispatcher struct {
	settings SMTPSettings
	template string
	log      *logrus.Entry
}

// NewSMTPDispatcher returns a dispatcher that submits messages to the configured relay
// using the built-in notification template.
func NewSMTPDispatcher(settings SMTPSettings, log *logrus.Entry) *SMTPDispatcher {
	return &SMTPDispatcher{
		settings: settings,
		template: defaultTemplate,
		log:      log,
	}
}

// Send renders the notification template and transmits the result to the given address.
func (d *SMTPDispatcher) Send(toAddress string, placeholders []string) error {
	wrapMsg := fmt.Sprintf("unable to send a notification email to %s", toAddress)

	// Refuse to hand a malformed address to the relay.
	err := common.ValidateEmailAddress(toAddress)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	body := FillTemplate(d.template, placeholders)
	message := d.formatMessage(toAddress, body)

	// Submit the message to the relay.
	addr := fmt.Sprintf("%s:%d", d.settings.Host, d.settings.Port)
	var clientAuth smtp.Auth
	if d.settings.Username != "" {
		clientAuth = smtp.PlainAuth("", d.settings.Username, d.settings.Password, d.settings.Host)
	}
	err = smtp.SendMail(addr, clientAuth, d.settings.From, []string{toAddress}, message)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	d.log.WithField("to", toAddress).Info("notification email sent")
	return nil
}

func (d *SMTPDispatcher) formatMessage(toAddress, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", d.settings.From)
	fmt.Fprintf(&b, "To: %s\r\n", toAddress)
	fmt.Fprintf(&b, "Subject: %s\r\n", d.settings.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
