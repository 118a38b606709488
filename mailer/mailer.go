package mailer

import "context"

// Attachment is a file included with a message, already rendered.
type Attachment struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}

// Message is one outbound email.
type Message struct {
	To          string       `json:"to"`
	Subject     string       `json:"subject"`
	Html        string       `json:"html"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Mailer delivers messages. The production implementation talks to the
// mail API over http; tests inject a recording fake.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}
