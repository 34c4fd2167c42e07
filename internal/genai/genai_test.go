package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewClient(WithAPIKey("test-key"), WithBaseURL(url), WithTimeout(2*time.Second))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(); err == nil {
		t.Error("expected error when API key is missing")
	}
}

func TestRespondSuccess(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  hey bestie!  "}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	history := []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "heyyy"},
	}
	reply := c.Respond(context.Background(), "be stink", history, "how are you")
	if reply != "hey bestie!" {
		t.Errorf("expected trimmed provider reply, got %q", reply)
	}

	// The fixed generation parameters must reach the wire, including the
	// injected top_k.
	if gotBody["top_k"] != float64(DefaultTopK) {
		t.Errorf("top_k not injected, body: %v", gotBody)
	}
	if gotBody["temperature"] != DefaultTemperature {
		t.Errorf("temperature = %v, want %v", gotBody["temperature"], DefaultTemperature)
	}
	msgs, ok := gotBody["messages"].([]any)
	if !ok || len(msgs) != 4 {
		t.Fatalf("expected system + 2 history + user = 4 messages, got %v", gotBody["messages"])
	}
	first := msgs[0].(map[string]any)
	if first["role"] != "system" {
		t.Errorf("first message role = %v, want system", first["role"])
	}
	last := msgs[3].(map[string]any)
	if last["role"] != "user" || last["content"] != "how are you" {
		t.Errorf("last message = %v, want new user turn", last)
	}
}

func TestRespondFallbackOnUnreachableEndpoint(t *testing.T) {
	// Point at a closed server so the request fails immediately.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := newTestClient(t, srv.URL)
	reply := c.Respond(context.Background(), "be stink", nil, "hello")
	if reply != FallbackReply {
		t.Errorf("expected fallback reply, got %q", reply)
	}
}

func TestRespondFallbackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	if reply := c.Respond(context.Background(), "be stink", nil, "hello"); reply != FallbackReply {
		t.Errorf("expected fallback reply on 5xx, got %q", reply)
	}
}

func TestRespondFallbackOnMalformedPayload(t *testing.T) {
	cases := map[string]string{
		"no choices":    `{"choices":[]}`,
		"empty content": `{"choices":[{"message":{"role":"assistant","content":"   "}}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(body))
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL)
			if reply := c.Respond(context.Background(), "be stink", nil, "hello"); reply != FallbackReply {
				t.Errorf("expected fallback reply, got %q", reply)
			}
		})
	}
}
