// Package messaging provides the message delivery abstraction for the Stink
// bot: the transport-facing Service interface, the WhatsApp-backed
// implementation and the chunked delivery pacer.
package messaging

import (
	"context"

	"github.com/Mwvndva/stink/internal/models"
)

// Service defines a pluggable message delivery abstraction. It supports
// sending messages and exposes a channel of normalized inbound events.
type Service interface {
	// SendMessage sends a message to a recipient address.
	SendMessage(ctx context.Context, to string, body string) error

	// Start begins background processing (e.g., transport event polling).
	Start(ctx context.Context) error

	// Stop stops background processing and cleans up resources.
	Stop() error

	// Messages returns a channel of normalized inbound messages.
	Messages() <-chan models.IncomingMessage
}
