package ports

import "context"

// Message is one outbound email.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers feedback reports to supplier contacts.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
