package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSender struct {
	err  error
	sent []*bot.SendMessageParams
}

func (f *fakeSender) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &models.Message{}, nil
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := New(":0", &fakeSender{}, zap.NewNop())
	w := doRequest(t, s, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestSendNotification(t *testing.T) {
	sender := &fakeSender{}
	s := New(":0", sender, zap.NewNop())

	w := doRequest(t, s, http.MethodPost, "/internal/send-notification", `{"chat_id":123,"text":"hi"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(123), sender.sent[0].ChatID)
	assert.Equal(t, "hi", sender.sent[0].Text)
}

func TestSendNotificationMissingFields(t *testing.T) {
	sender := &fakeSender{}
	s := New(":0", sender, zap.NewNop())

	for _, body := range []string{
		`{"chat_id":123}`,
		`{"text":"hi"}`,
		`{"chat_id":123,"text":""}`,
		`{}`,
		`not json`,
	} {
		w := doRequest(t, s, http.MethodPost, "/internal/send-notification", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
		assert.Contains(t, w.Body.String(), "error", "body %q", body)
	}
	assert.Empty(t, sender.sent, "no side effect on bad input")
}

func TestSendNotificationSendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("chat not found")}
	s := New(":0", sender, zap.NewNop())

	w := doRequest(t, s, http.MethodPost, "/internal/send-notification", `{"chat_id":123,"text":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "chat not found")
}
