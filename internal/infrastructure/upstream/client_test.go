package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/Conte777/operator-service/config"
	"github.com/Conte777/operator-service/internal/infrastructure/metrics"
	pkgerrors "github.com/Conte777/operator-service/pkg/errors"
)

type scriptedResponse struct {
	status int
	body   string
}

// newScriptedServer replays responses in order, repeating the last one
func newScriptedServer(t *testing.T, responses ...scriptedResponse) (*httptest.Server, *int32) {
	t.Helper()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(atomic.AddInt32(&calls, 1)) - 1
		if n >= len(responses) {
			n = len(responses) - 1
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(responses[n].status)
		_, _ = io.WriteString(w, responses[n].body)
	}))
	t.Cleanup(srv.Close)

	return srv, &calls
}

func newTestClient(baseURL string, maxAttempts int) *Client {
	return NewClient(&config.UpstreamConfig{
		BaseURL:     baseURL,
		Timeout:     2 * time.Second,
		MaxAttempts: maxAttempts,
		RetryDelay:  10 * time.Millisecond,
		RateLimit:   1000,
		RateBurst:   100,
	}, metrics.NewMetrics(prometheus.NewRegistry()), zerolog.Nop())
}

const transientBody = `{"error":"Cannot run the event loop while another loop is running"}`

func TestCall_TransientThenSuccess(t *testing.T) {
	srv, calls := newScriptedServer(t,
		scriptedResponse{http.StatusInternalServerError, transientBody},
		scriptedResponse{http.StatusOK, `{"success":true,"phone_code_hash":"h1"}`},
	)
	client := newTestClient(srv.URL, 2)

	result, err := client.SendCode(context.Background(), "+380951234567", "op-1")
	require.NoError(t, err)
	assert.Equal(t, "h1", result.PhoneCodeHash)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestCall_TransientExhausted(t *testing.T) {
	srv, calls := newScriptedServer(t,
		scriptedResponse{http.StatusOK, transientBody},
		scriptedResponse{http.StatusOK, transientBody},
		scriptedResponse{http.StatusOK, `{"success":true}`},
	)
	client := newTestClient(srv.URL, 2)

	_, err := client.Call(context.Background(), EndpointSendCode, map[string]string{"phone": "x"}, 0)
	require.Error(t, err)

	var unavailable *pkgerrors.ServiceUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, ErrUnavailableMessage, err.Error())
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestCall_DefinitiveNotRetried(t *testing.T) {
	srv, calls := newScriptedServer(t,
		scriptedResponse{http.StatusBadRequest, `{"error":"PHONE_CODE_INVALID"}`},
		scriptedResponse{http.StatusOK, `{"success":true}`},
	)
	client := newTestClient(srv.URL, 3)

	_, err := client.VerifyCode(context.Background(), "+380951234567", "12345", "h1", "op-1")
	require.Error(t, err)

	var upstreamErr *pkgerrors.UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, "PHONE_CODE_INVALID", upstreamErr.Error())
	assert.Equal(t, http.StatusBadRequest, upstreamErr.Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestCall_SuccessFalseIsDefinitive(t *testing.T) {
	srv, _ := newScriptedServer(t,
		scriptedResponse{http.StatusOK, `{"success":false,"message":"flood wait"}`},
	)
	client := newTestClient(srv.URL, 2)

	_, err := client.Call(context.Background(), EndpointSendCode, struct{}{}, 0)
	require.Error(t, err)
	assert.Equal(t, "flood wait", err.Error())
}

func TestCall_NonJSONErrorBody(t *testing.T) {
	srv, _ := newScriptedServer(t,
		scriptedResponse{http.StatusBadGateway, "bad gateway"},
	)
	client := newTestClient(srv.URL, 2)

	_, err := client.Call(context.Background(), EndpointChats, struct{}{}, 0)
	require.Error(t, err)
	assert.Equal(t, "HTTP 502: bad gateway", err.Error())
}

func TestCall_TransportErrorRetried(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := newTestClient(url, 2)

	_, err := client.Call(context.Background(), EndpointChats, struct{}{}, 0)
	require.Error(t, err)

	var unavailable *pkgerrors.ServiceUnavailableError
	assert.True(t, errors.As(err, &unavailable))
}

func TestCall_TimeoutCountsAsFailedAttempt(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			time.Sleep(300 * time.Millisecond)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"phone_code_hash":"h2"}`)
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(srv.URL, 2)
	client.timeout = 100 * time.Millisecond

	result, err := client.SendCode(context.Background(), "+380951234567", "op-1")
	require.NoError(t, err)
	assert.Equal(t, "h2", result.PhoneCodeHash)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCall_ContextCancelledDuringPause(t *testing.T) {
	srv, calls := newScriptedServer(t, scriptedResponse{http.StatusOK, transientBody})
	client := newTestClient(srv.URL, 3)
	client.retryDelay = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Call(ctx, EndpointChats, struct{}{}, 0)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestCall_ExplicitAttemptBudget(t *testing.T) {
	srv, calls := newScriptedServer(t, scriptedResponse{http.StatusOK, transientBody})
	client := newTestClient(srv.URL, 2)

	_, err := client.Call(context.Background(), EndpointChats, struct{}{}, 1)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestCall_RequestShape(t *testing.T) {
	var got map[string]interface{}
	var path, method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, method = r.URL.Path, r.Method
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, `{"messages":[{"id":7,"text":"hi"}],"chatTitle":"Alice"}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 1)
	result, err := client.ListMessages(context.Background(), "op-1", "+380951234567", "98765", 50)
	require.NoError(t, err)

	assert.Equal(t, EndpointChatMessages, path)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "op-1", got["operator"])
	assert.Equal(t, "+380951234567", got["account"])
	assert.Equal(t, "98765", got["chat_id"])
	assert.Equal(t, float64(50), got["limit"])

	require.Len(t, result.Messages, 1)
	assert.Equal(t, "7", result.Messages[0].ID.String())
	assert.Equal(t, "Alice", result.ChatTitle)
}

func TestListConversations_DecodesIDs(t *testing.T) {
	srv, _ := newScriptedServer(t, scriptedResponse{http.StatusOK,
		`{"chats":[{"id":98765,"name":"Alice","type":"user"},{"id":"-100123","name":"News","type":"channel"}]}`})
	client := newTestClient(srv.URL, 1)

	chats, err := client.ListConversations(context.Background(), "op-1", "+380951234567")
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, "98765", chats[0].ID.String())
	assert.Equal(t, "-100123", chats[1].ID.String())
}

func TestCall_RateLimiterHonored(t *testing.T) {
	srv, calls := newScriptedServer(t, scriptedResponse{http.StatusOK, `{"chats":[]}`})
	client := newTestClient(srv.URL, 1)
	client.limiter = rate.NewLimiter(rate.Every(time.Hour), 1)

	_, err := client.Call(context.Background(), EndpointChats, struct{}{}, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Call(ctx, EndpointChats, struct{}{}, 0)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}
