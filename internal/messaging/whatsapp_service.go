package messaging

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Mwvndva/stink/internal/models"
	"github.com/Mwvndva/stink/internal/whatsapp"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
)

// Constants for WhatsAppService configuration
const (
	// DefaultChannelBufferSize defines the buffer size for the inbound channel
	DefaultChannelBufferSize = 100
	// DefaultChannelTimeout defines the timeout for non-blocking channel operations
	DefaultChannelTimeout = 1 * time.Second
)

// WhatsAppService implements Service using the Whatsmeow-based client.
type WhatsAppService struct {
	client   whatsapp.Sender
	waClient *whatsapp.Client // underlying client for event handling
	messages chan models.IncomingMessage
	done     chan struct{}
	stopOnce sync.Once
}

// NewWhatsAppService creates a new WhatsAppService wrapping the given sender.
func NewWhatsAppService(client whatsapp.Sender) *WhatsAppService {
	service := &WhatsAppService{
		client:   client,
		messages: make(chan models.IncomingMessage, DefaultChannelBufferSize),
		done:     make(chan struct{}),
	}

	// Only a full client exposes transport events; mocks stay send-only.
	if waClient, ok := client.(*whatsapp.Client); ok {
		service.waClient = waClient
		slog.Debug("WhatsAppService created with full client for event handling")
	} else {
		slog.Debug("WhatsAppService created with interface client (likely mock)")
	}

	return service
}

// Start begins background event processing.
func (s *WhatsAppService) Start(ctx context.Context) error {
	slog.Debug("WhatsAppService.Start invoked")
	if s.waClient != nil {
		go s.handleEvents(ctx)
		slog.Debug("WhatsAppService event handler started")
	} else {
		slog.Debug("WhatsAppService no full client available, skipping event handling")
	}
	return nil
}

// Stop halts inbound processing; subsequent transport events are dropped.
// The messages channel is deliberately left open: the event handler stays
// registered until the transport disconnects, and closing here would turn a
// late event into a send on a closed channel. Safe to call more than once.
func (s *WhatsAppService) Stop() error {
	slog.Info("WhatsAppService.Stop invoked")
	s.stopOnce.Do(func() { close(s.done) })
	return nil
}

// SendMessage sends one message through the transport.
func (s *WhatsAppService) SendMessage(ctx context.Context, to string, body string) error {
	slog.Debug("WhatsAppService.SendMessage invoked", "to", to, "body_length", len(body))
	if err := s.client.SendMessage(ctx, to, body); err != nil {
		slog.Error("WhatsAppService.SendMessage error", "error", err, "to", to)
		return err
	}
	return nil
}

// Messages returns the channel of normalized inbound messages.
func (s *WhatsAppService) Messages() <-chan models.IncomingMessage {
	return s.messages
}

// handleEvents registers the whatsmeow event handler and pumps inbound
// messages into the channel until the context is cancelled.
func (s *WhatsAppService) handleEvents(ctx context.Context) {
	if s.waClient == nil || s.waClient.GetClient() == nil {
		slog.Error("WhatsAppService.handleEvents: no client available")
		return
	}

	s.waClient.GetClient().AddEventHandler(func(evt interface{}) {
		switch v := evt.(type) {
		case *events.Message:
			s.handleIncomingMessage(v)
		case *events.Connected:
			slog.Info("WhatsAppService: transport connected")
		case *events.Disconnected:
			slog.Warn("WhatsAppService: transport disconnected")
		case *events.LoggedOut:
			slog.Error("WhatsAppService: session logged out, re-authentication required")
		default:
			// Other event types (receipts, presence) are not part of the core.
		}
	})

	<-ctx.Done()
	slog.Debug("WhatsAppService.handleEvents stopping due to context cancellation")
}

// handleIncomingMessage normalizes one inbound transport event. Filtering
// of status and group messages is the pipeline's decision; the flags are
// carried through.
func (s *WhatsAppService) handleIncomingMessage(evt *events.Message) {
	if evt.Message == nil {
		return
	}

	var messageText string
	switch {
	case evt.Message.Conversation != nil:
		messageText = *evt.Message.Conversation
	case evt.Message.ExtendedTextMessage != nil && evt.Message.ExtendedTextMessage.Text != nil:
		messageText = *evt.Message.ExtendedTextMessage.Text
	default:
		// Skip non-text messages (images, audio, etc.)
		slog.Debug("WhatsAppService ignoring non-text message", "from", evt.Info.Sender.String())
		return
	}

	msg := models.IncomingMessage{
		From:     evt.Info.Sender.User,
		Body:     messageText,
		IsStatus: evt.Info.Chat == types.StatusBroadcastJID,
		IsGroup:  evt.Info.IsGroup || evt.Info.Chat.Server == whatsapp.GroupJIDSuffix,
		Time:     evt.Info.Timestamp,
	}

	select {
	case <-s.done:
		slog.Debug("WhatsAppService stopped, dropping inbound message", "from", msg.From)
		return
	default:
	}

	select {
	case s.messages <- msg:
		slog.Debug("WhatsAppService incoming message forwarded", "from", msg.From, "body_length", len(msg.Body))
	case <-s.done:
		slog.Debug("WhatsAppService stopped, dropping inbound message", "from", msg.From)
	case <-time.After(DefaultChannelTimeout):
		slog.Warn("WhatsAppService messages channel blocked, dropping message", "from", msg.From, "timeout", DefaultChannelTimeout)
	}
}
