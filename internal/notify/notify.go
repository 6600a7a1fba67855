// Package notify delivers one-time passcodes out of band.
package notify

import (
	"context"
	"fmt"
	"time"
)

// Message is a plain-text mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// OTPMessage builds the mail carrying a login code.
func OTPMessage(to, code string, ttl time.Duration) Message {
	return Message{
		To:      to,
		Subject: "Your ReFoundly login code",
		Body: fmt.Sprintf("Your ReFoundly verification code is %s.\n\n"+
			"It expires in %d minutes. If you did not try to log in, you can ignore this message.\n",
			code, int(ttl.Minutes())),
	}
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Message) error

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }
