package notify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
)

// OutboxSender writes each message to a file in Dir instead of sending it.
// It stands in for a mail relay in development.
type OutboxSender struct {
	Dir string
}

// Send writes msg to Dir/<ulid>.eml with owner-only permissions.
func (o *OutboxSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(o.Dir, 0o700); err != nil {
		return fmt.Errorf("creating outbox: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "To: %s\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\n\n", msg.Subject)
	b.WriteString(msg.Body)

	path := filepath.Join(o.Dir, ulid.Make().String()+".eml")
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("writing outbox message: %w", err)
	}
	return nil
}
