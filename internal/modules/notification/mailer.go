package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"
)

type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
	Timeout  time.Duration
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer emails booking events to a single front desk address.
type Mailer struct {
	cfg    MailerConfig
	dialer sender
	loc    *time.Location
}

func NewMailer(cfg MailerConfig, loc *time.Location) *Mailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		loc:    loc,
	}
}

func (m *Mailer) Notify(ctx context.Context, e Event) error {
	msg := m.buildMessage(e)

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	wait := m.cfg.Timeout
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < wait {
			wait = d
		}
	}

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send booking email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return context.DeadlineExceeded
	}
}

func (m *Mailer) buildMessage(e Event) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", strings.TrimSpace(m.cfg.From))
	msg.SetHeader("To", strings.TrimSpace(m.cfg.To))
	msg.SetHeader("Subject", subject(e))
	msg.SetBody("text/plain", body(e, m.loc))
	return msg
}

func subject(e Event) string {
	switch e.Type {
	case EventBookingCreated:
		return fmt.Sprintf("New booking #%d", e.BookingID)
	case EventBookingConfirmed:
		return fmt.Sprintf("Booking #%d confirmed", e.BookingID)
	case EventBookingCancelled:
		return fmt.Sprintf("Booking #%d cancelled", e.BookingID)
	case EventSpecialistAssigned:
		return fmt.Sprintf("Specialist assigned to booking #%d", e.BookingID)
	default:
		return fmt.Sprintf("Booking #%d is now %s", e.BookingID, e.Status)
	}
}

func body(e Event, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Booking: #%d\n", e.BookingID)
	fmt.Fprintf(&b, "Status: %s\n", e.Status)
	fmt.Fprintf(&b, "Customer: %d\n", e.CustomerID)
	if e.SpecialistID != nil {
		fmt.Fprintf(&b, "Specialist: %d\n", *e.SpecialistID)
	}
	fmt.Fprintf(&b, "Start: %s\n", e.StartTime.In(loc).Format("Mon 02 Jan 2006 15:04 MST"))
	if e.Reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", e.Reason)
	}
	return b.String()
}
