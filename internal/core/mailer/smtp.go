package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/gomail.v2"
)

var ErrNoSender = errors.New("mailer: sender address not configured")

var deliveries = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "mail_deliveries_total", Help: "Mail delivery attempts by result"},
	[]string{"result"},
)

func init() { prometheus.MustRegister(deliveries) }

type Message struct {
	To      string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

type SMTP struct {
	From string
	send func(...*gomail.Message) error
}

// NewSMTP sends as username; an empty username makes every Send fail with ErrNoSender.
func NewSMTP(host string, port int, username, password string) *SMTP {
	d := gomail.NewDialer(host, port, username, password)
	return &SMTP{From: username, send: d.DialAndSend}
}

func (s *SMTP) Send(ctx context.Context, m Message) error {
	err := s.deliver(ctx, m)
	if err != nil {
		deliveries.WithLabelValues("error").Inc()
		return err
	}
	deliveries.WithLabelValues("ok").Inc()
	return nil
}

func (s *SMTP) deliver(ctx context.Context, m Message) error {
	if s.From == "" {
		return ErrNoSender
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.send(Compose(s.From, m)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", m.To, err)
	}
	return nil
}

func Compose(from string, m Message) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/html", m.HTML)
	return msg
}
