package notifier

import (
	"fmt"

	"github.com/Pasiduchamod/QBox-Backend/config"
	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"
)

// Notifier delivers out-of-band messages to lecturers (room summaries,
// account mail). Subscribed students never receive email, only
// websocket events.
type Notifier interface {
	Send(to, subject, body string) error
}

// FromConfig picks the delivery driver named in configuration. Unknown
// drivers fall back to the log notifier so a misconfigured deployment
// still starts.
func FromConfig() Notifier {
	switch config.Conf.NOTIFIER.Driver {
	case "smtp":
		return NewSMTPNotifier()
	case "log":
		return NewLogNotifier()
	default:
		log.Warn().Str("driver", config.Conf.NOTIFIER.Driver).Msg("unknown notifier driver, falling back to log")
		return NewLogNotifier()
	}
}

type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPNotifier() *SMTPNotifier {
	cfg := config.Conf.NOTIFIER
	return &SMTPNotifier{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (n *SMTPNotifier) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}

	return nil
}

// LogNotifier writes notifications to the structured log. Used in
// development and as the fallback driver.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(to, subject, body string) error {
	log.Info().
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("notifier: message delivered to log")
	return nil
}
