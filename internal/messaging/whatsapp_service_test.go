package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/Mwvndva/stink/internal/whatsapp"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
)

func textEvent(from types.JID, chat types.JID, text string) *events.Message {
	return &events.Message{
		Info: types.MessageInfo{
			MessageSource: types.MessageSource{
				Chat:   chat,
				Sender: from,
			},
			Timestamp: time.Now(),
		},
		Message: &waE2E.Message{Conversation: &text},
	}
}

func TestHandleIncomingMessageNormalization(t *testing.T) {
	service := NewWhatsAppService(whatsapp.NewMockClient())

	sender := types.NewJID("15551234567", whatsapp.JIDSuffix)
	service.handleIncomingMessage(textEvent(sender, sender, "hello there"))

	select {
	case msg := <-service.Messages():
		if msg.From != "15551234567" {
			t.Errorf("expected sender address 15551234567, got %q", msg.From)
		}
		if msg.Body != "hello there" {
			t.Errorf("expected body %q, got %q", "hello there", msg.Body)
		}
		if msg.IsStatus || msg.IsGroup {
			t.Errorf("direct chat should not be flagged: status=%v group=%v", msg.IsStatus, msg.IsGroup)
		}
		if msg.Time.IsZero() {
			t.Error("expected message timestamp to be carried through")
		}
	default:
		t.Fatal("expected a normalized message on the channel")
	}
}

func TestHandleIncomingMessageExtendedText(t *testing.T) {
	service := NewWhatsAppService(whatsapp.NewMockClient())

	text := "a longer quoted reply"
	sender := types.NewJID("15551234567", whatsapp.JIDSuffix)
	evt := textEvent(sender, sender, "")
	evt.Message = &waE2E.Message{
		ExtendedTextMessage: &waE2E.ExtendedTextMessage{Text: &text},
	}
	service.handleIncomingMessage(evt)

	select {
	case msg := <-service.Messages():
		if msg.Body != text {
			t.Errorf("expected extended text body %q, got %q", text, msg.Body)
		}
	default:
		t.Fatal("expected extended text message on the channel")
	}
}

func TestHandleIncomingMessageFlags(t *testing.T) {
	sender := types.NewJID("15551234567", whatsapp.JIDSuffix)

	t.Run("status broadcast", func(t *testing.T) {
		service := NewWhatsAppService(whatsapp.NewMockClient())
		service.handleIncomingMessage(textEvent(sender, types.StatusBroadcastJID, "story update"))

		select {
		case msg := <-service.Messages():
			if !msg.IsStatus {
				t.Error("expected status broadcast flag to be set")
			}
		default:
			t.Fatal("expected status message on the channel")
		}
	})

	t.Run("group chat", func(t *testing.T) {
		service := NewWhatsAppService(whatsapp.NewMockClient())
		group := types.NewJID("120363001234567890", whatsapp.GroupJIDSuffix)
		service.handleIncomingMessage(textEvent(sender, group, "hi all"))

		select {
		case msg := <-service.Messages():
			if !msg.IsGroup {
				t.Error("expected group flag to be set")
			}
		default:
			t.Fatal("expected group message on the channel")
		}
	})
}

func TestHandleIncomingMessageIgnoresNonText(t *testing.T) {
	service := NewWhatsAppService(whatsapp.NewMockClient())

	sender := types.NewJID("15551234567", whatsapp.JIDSuffix)
	evt := textEvent(sender, sender, "")
	evt.Message = &waE2E.Message{ImageMessage: &waE2E.ImageMessage{}}
	service.handleIncomingMessage(evt)

	evt.Message = nil
	service.handleIncomingMessage(evt)

	select {
	case msg := <-service.Messages():
		t.Fatalf("non-text messages should be dropped, got %+v", msg)
	default:
	}
}

func TestServiceSendPassthroughAndLifecycle(t *testing.T) {
	service := NewWhatsAppService(whatsapp.NewMockClient())

	if err := service.Start(context.Background()); err != nil {
		t.Fatalf("failed to start service: %v", err)
	}
	if err := service.SendMessage(context.Background(), "+15551234567", "ping"); err != nil {
		t.Errorf("mock send should succeed: %v", err)
	}
	if err := service.Stop(); err != nil {
		t.Errorf("failed to stop service: %v", err)
	}
	if err := service.Stop(); err != nil {
		t.Errorf("repeated stop should be safe: %v", err)
	}
}

func TestIncomingMessageAfterStopDropped(t *testing.T) {
	service := NewWhatsAppService(whatsapp.NewMockClient())

	if err := service.Stop(); err != nil {
		t.Fatalf("failed to stop service: %v", err)
	}

	// An event still in flight when the service stops must be dropped, not
	// delivered and never panic the handler.
	sender := types.NewJID("15551234567", whatsapp.JIDSuffix)
	service.handleIncomingMessage(textEvent(sender, sender, "late arrival"))

	select {
	case msg := <-service.Messages():
		t.Fatalf("message delivered after stop: %+v", msg)
	default:
	}
}
