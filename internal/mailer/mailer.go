// Package mailer sends notification email as a one-way background
// dispatch. Callers enqueue and move on; failures are logged, never
// returned, and never block a request.
package mailer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	mail "github.com/wneessen/go-mail"
)

const (
	queueSize   = 64
	sendTimeout = 15 * time.Second
)

type Config struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	From         string
}

type job struct {
	id      string
	to      string
	subject string
	body    string
}

type Mailer struct {
	client *mail.Client // nil when SMTP is unconfigured
	from   string
	jobs   chan job
	done   chan struct{}
}

// New builds a Mailer and starts its worker. When cfg.SMTPHost is empty
// the mailer still accepts jobs but only logs them.
func New(cfg Config) (*Mailer, error) {
	m := &Mailer{
		from: cfg.From,
		jobs: make(chan job, queueSize),
		done: make(chan struct{}),
	}

	if cfg.SMTPHost != "" {
		opts := []mail.Option{mail.WithPort(cfg.SMTPPort)}
		if cfg.SMTPUser != "" {
			opts = append(opts,
				mail.WithSMTPAuth(mail.SMTPAuthPlain),
				mail.WithUsername(cfg.SMTPUser),
				mail.WithPassword(cfg.SMTPPassword),
			)
		}
		client, err := mail.NewClient(cfg.SMTPHost, opts...)
		if err != nil {
			return nil, fmt.Errorf("creating smtp client: %w", err)
		}
		m.client = client
	}

	go m.worker()
	return m, nil
}

// SendWelcome queues the signup notification.
func (m *Mailer) SendWelcome(email, name string) {
	m.enqueue(email, "Thanks for joining in!",
		fmt.Sprintf("Welcome to the app, %s. Let me know how you get along with the app.", name))
}

// SendCancellation queues the account-deletion notification.
func (m *Mailer) SendCancellation(email, name string) {
	m.enqueue(email, "Sorry to see you go!",
		fmt.Sprintf("Goodbye, %s. I hope to see you back sometime soon.", name))
}

// Close stops accepting jobs and waits for the worker to drain the queue.
func (m *Mailer) Close() {
	close(m.jobs)
	<-m.done
}

func (m *Mailer) enqueue(to, subject, body string) {
	j := job{id: uuid.NewString(), to: to, subject: subject, body: body}
	select {
	case m.jobs <- j:
	default:
		log.Printf("mailer: queue full, dropping mail %s to %s", j.id, j.to)
	}
}

func (m *Mailer) worker() {
	defer close(m.done)
	for j := range m.jobs {
		m.send(j)
	}
}

func (m *Mailer) send(j job) {
	if m.client == nil {
		log.Printf("mailer: smtp not configured, skipping mail %s (%q) to %s", j.id, j.subject, j.to)
		return
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		log.Printf("mailer: mail %s invalid from address: %v", j.id, err)
		return
	}
	if err := msg.To(j.to); err != nil {
		log.Printf("mailer: mail %s invalid recipient %s: %v", j.id, j.to, err)
		return
	}
	msg.Subject(j.subject)
	msg.SetBodyString(mail.TypeTextPlain, j.body)

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		log.Printf("mailer: sending mail %s to %s failed: %v", j.id, j.to, err)
	}
}
