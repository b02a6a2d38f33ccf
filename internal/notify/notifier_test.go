package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSender struct {
	name   string
	err    error
	titles []string
}

func (f *fakeSender) Send(ctx context.Context, title, message string) error {
	f.titles = append(f.titles, title)
	return f.err
}

func (f *fakeSender) Name() string { return f.name }

func TestNotify_FiltersByEventType(t *testing.T) {
	sender := &fakeSender{name: "fake"}
	n := NewNotifier([]Sender{sender}, []string{EventPositionClosed}, testLogger())

	require.NoError(t, n.Notify(context.Background(), EventPositionOpened, "OPEN HYPE", "spread 1.2%"))
	assert.Empty(t, sender.titles, "opened events are not in the allowed list")

	require.NoError(t, n.Notify(context.Background(), EventPositionClosed, "CLOSE HYPE", "converged"))
	assert.Equal(t, []string{"CLOSE HYPE"}, sender.titles)
}

func TestNotify_EmptyEventListAllowsAll(t *testing.T) {
	sender := &fakeSender{name: "fake"}
	n := NewNotifier([]Sender{sender}, nil, testLogger())

	require.NoError(t, n.Notify(context.Background(), EventPositionOpened, "OPEN", ""))
	require.NoError(t, n.Notify(context.Background(), EventVenueDown, "VENUE DOWN", ""))
	assert.Len(t, sender.titles, 2)
}

func TestNotify_SenderFailureDoesNotBlockOthers(t *testing.T) {
	failing := &fakeSender{name: "telegram", err: errors.New("chat not found")}
	healthy := &fakeSender{name: "webhook"}
	n := NewNotifier([]Sender{failing, healthy}, nil, testLogger())

	err := n.Notify(context.Background(), EventPositionClosed, "CLOSE HYPE", "converged")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram: chat not found")
	assert.Equal(t, []string{"CLOSE HYPE"}, healthy.titles, "delivery continues past a failed sender")
}

func TestNotify_NoSendersIsANoOp(t *testing.T) {
	n := NewNotifier(nil, nil, testLogger())
	assert.NoError(t, n.Notify(context.Background(), EventPositionOpened, "OPEN", ""))
}

func TestWebhookSender_PostsBoldTitlePayload(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := NewWebhookSender(srv.URL)
	require.NoError(t, s.Send(context.Background(), "OPEN HYPE", "spread 1.2%"))
	assert.Equal(t, "**OPEN HYPE**\nspread 1.2%", got["content"])
	assert.Equal(t, "webhook", s.Name())
}

func TestWebhookSender_NonSuccessStatusIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewWebhookSender(srv.URL).Send(context.Background(), "OPEN", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "invalid token")
}

func TestTelegramSender_PostsSendMessage(t *testing.T) {
	var (
		gotPath string
		got     map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	s := NewTelegramSender("bot-token", "42")
	s.apiBase = srv.URL
	require.NoError(t, s.Send(context.Background(), "CLOSE HYPE", "converged, pnl 0.9%"))

	assert.Equal(t, "/botbot-token/sendMessage", gotPath)
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "*CLOSE HYPE*\nconverged, pnl 0.9%", got["text"])
	assert.Equal(t, "Markdown", got["parse_mode"])
	assert.Equal(t, "telegram", s.Name())
}
