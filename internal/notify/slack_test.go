package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/reportbot/internal/config"
	"git.home.luguber.info/inful/reportbot/internal/errors"
)

func slackConfig(apiURL string) config.SlackConfig {
	return config.SlackConfig{BotToken: "xoxb-test", Channel: "C123", APIURL: apiURL}
}

func TestSlackNotifier_Send(t *testing.T) {
	t.Run("posts message with auth and channel", func(t *testing.T) {
		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "Bearer xoxb-test", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"ok": true}`))
		}))
		defer srv.Close()

		n, err := NewSlackNotifier(slackConfig(srv.URL))
		require.NoError(t, err)

		err = n.Send(context.Background(), Message{Kind: KindReminder, Text: "hello"})
		require.NoError(t, err)
		require.Equal(t, "C123", got["channel"])
		require.Equal(t, "hello", got["text"])
	})

	t.Run("api-level error surfaces", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok": false, "error": "channel_not_found"}`))
		}))
		defer srv.Close()

		n, err := NewSlackNotifier(slackConfig(srv.URL))
		require.NoError(t, err)

		err = n.Send(context.Background(), Message{Kind: KindError, Text: "x"})
		require.Error(t, err)
		require.True(t, errors.IsCategory(err, errors.CategoryNotification))
		require.Contains(t, err.Error(), "channel_not_found")
	})

	t.Run("http error surfaces", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		n, err := NewSlackNotifier(slackConfig(srv.URL))
		require.NoError(t, err)

		err = n.Send(context.Background(), Message{Kind: KindSuccess, Text: "x"})
		require.Error(t, err)
		require.True(t, errors.IsCategory(err, errors.CategoryNotification))
	})
}

func TestNewSlackNotifier_Validation(t *testing.T) {
	_, err := NewSlackNotifier(config.SlackConfig{Channel: "C123"})
	require.Error(t, err)

	_, err = NewSlackNotifier(config.SlackConfig{BotToken: "xoxb-test"})
	require.Error(t, err)
}
