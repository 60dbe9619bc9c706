package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSendMessage(t *testing.T) {
	var gotPath string
	var gotBody sendMessageRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "HTML", 5*time.Second)
	err := client.SendMessage(context.Background(), "bot-token-1", "@mychannel", "hello")

	assert.NoError(t, err)
	assert.Equal(t, "/botbot-token-1/sendMessage", gotPath)
	assert.Equal(t, "@mychannel", gotBody.ChatID)
	assert.Equal(t, "hello", gotBody.Text)
	assert.Equal(t, "HTML", gotBody.ParseMode)
}

func TestSendMessageAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second)
	err := client.SendMessage(context.Background(), "tok", "@missing", "hello")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestSendMessageNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient(server.URL, "", time.Second)
	err := client.SendMessage(context.Background(), "tok", "@c", "hello")

	assert.Error(t, err)
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient("", "", 0)

	assert.Equal(t, DefaultAPIBase, client.apiBase)
	assert.Equal(t, "HTML", client.parseMode)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}
