package business

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Conte777/operator-service/config"
	accountentities "github.com/Conte777/operator-service/internal/domain/account/entities"
	"github.com/Conte777/operator-service/internal/domain/chats/entities"
	chatserrors "github.com/Conte777/operator-service/internal/domain/chats/errors"
	"github.com/Conte777/operator-service/internal/infrastructure/metrics"
	"github.com/Conte777/operator-service/internal/infrastructure/upstream"
	pkgerrors "github.com/Conte777/operator-service/pkg/errors"
)

const (
	phoneA = "+380951234567"
	phoneB = "+380671234567"
)

type mockDirectory struct {
	accounts []*accountentities.Account
	err      error
}

func (m *mockDirectory) ListAuthenticated(context.Context, string) ([]*accountentities.Account, error) {
	return m.accounts, m.err
}

type mockSessions struct {
	mu       sync.Mutex
	chats    map[string][]upstream.RawChat
	errs     map[string]error
	messages *upstream.MessagesResult
	calls    []string
	limit    int
	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (m *mockSessions) ListConversations(_ context.Context, _, phone string) ([]upstream.RawChat, error) {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		peak := m.peak.Load()
		if n <= peak || m.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, phone)
	return m.chats[phone], m.errs[phone]
}

func (m *mockSessions) ListMessages(_ context.Context, _, phone, chatID string, limit int) (*upstream.MessagesResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, phone+"/"+chatID)
	m.limit = limit
	return m.messages, m.errs[phone]
}

func account(id, phone string) *accountentities.Account {
	return &accountentities.Account{ID: id, OperatorID: "op", PhoneNumber: phone, IsAuthenticated: true}
}

func chat(id, name, kind string) upstream.RawChat {
	return upstream.RawChat{ID: upstream.FlexibleID(id), Name: name, Type: kind}
}

func newUseCase(directory *mockDirectory, sessions *mockSessions) *UseCase {
	cfg := &config.AggregationConfig{MaxConcurrent: 8, DefaultMessages: 50, MaxMessages: 200, Timezone: "UTC"}
	return NewUseCase(directory, sessions, metrics.NewMetrics(prometheus.NewRegistry()), cfg, zerolog.Nop())
}

func TestFetchConversations_PartialFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	sessions := &mockSessions{
		chats: map[string][]upstream.RawChat{
			phoneA: {chat("1", "Alice", "user"), chat("2", "Team", "group")},
		},
		errs: map[string]error{phoneB: pkgerrors.NewServiceUnavailableError(upstream.ErrUnavailableMessage)},
	}
	uc := newUseCase(&mockDirectory{accounts: []*accountentities.Account{account("a", phoneA), account("b", phoneB)}}, sessions)

	agg, err := uc.FetchConversations(context.Background(), "op", "", nil)
	require.NoError(t, err)

	require.Len(t, agg.Conversations, 2)
	assert.Equal(t, phoneA+"_1", agg.Conversations[0].Key)
	assert.Equal(t, phoneA+"_2", agg.Conversations[1].Key)

	require.Len(t, agg.PartialErrors, 1)
	assert.Equal(t, "b", agg.PartialErrors[0].AccountID)
	assert.Equal(t, phoneB, agg.PartialErrors[0].Phone)
	assert.Equal(t, upstream.ErrUnavailableMessage, agg.PartialErrors[0].Error)

	stats, err := agg.Stats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, phoneB, stats[1].AccountPhone)
}

func TestFetchConversations_AllFail(t *testing.T) {
	defer goleak.VerifyNone(t)

	sessions := &mockSessions{errs: map[string]error{
		phoneA: errors.New("boom"),
		phoneB: errors.New("boom"),
	}}
	uc := newUseCase(&mockDirectory{accounts: []*accountentities.Account{account("a", phoneA), account("b", phoneB)}}, sessions)

	agg, err := uc.FetchConversations(context.Background(), "op", "", nil)
	assert.Nil(t, agg)
	assert.ErrorIs(t, err, chatserrors.ErrAllAccountsFailed)
}

func TestFetchConversations_SingleTargetFailureKeepsItsError(t *testing.T) {
	rejection := pkgerrors.NewUpstreamError(400, "AUTH_KEY_UNREGISTERED")
	sessions := &mockSessions{errs: map[string]error{phoneB: rejection}}
	uc := newUseCase(&mockDirectory{accounts: []*accountentities.Account{account("a", phoneA), account("b", phoneB)}}, sessions)

	_, err := uc.FetchConversations(context.Background(), "op", phoneB, nil)
	assert.ErrorIs(t, err, rejection)
	assert.Equal(t, []string{phoneB}, sessions.calls)
}

func TestFetchConversations_FilterNotAuthenticated(t *testing.T) {
	sessions := &mockSessions{}
	uc := newUseCase(&mockDirectory{accounts: []*accountentities.Account{account("a", phoneA)}}, sessions)

	_, err := uc.FetchConversations(context.Background(), "op", phoneB, nil)
	assert.ErrorIs(t, err, chatserrors.ErrAccountNotFound)
	assert.Empty(t, sessions.calls)
}

func TestFetchConversations_NoAccounts(t *testing.T) {
	uc := newUseCase(&mockDirectory{}, &mockSessions{})

	agg, err := uc.FetchConversations(context.Background(), "op", "", nil)
	require.NoError(t, err)
	assert.Empty(t, agg.Conversations)
	assert.Empty(t, agg.PartialErrors)

	stats, err := agg.Stats(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestFetchConversations_MergeOrderAndDedupe(t *testing.T) {
	sessions := &mockSessions{
		chats: map[string][]upstream.RawChat{
			phoneA: {chat("3", "C", "channel"), chat("1", "A", ""), chat("3", "C again", "channel"), chat("", "no id", "")},
			phoneB: {chat("1", "B", "supergroup")},
		},
		delay: 5 * time.Millisecond,
	}
	uc := newUseCase(&mockDirectory{accounts: []*accountentities.Account{account("a", phoneA), account("b", phoneB)}}, sessions)

	agg, err := uc.FetchConversations(context.Background(), "op", "", nil)
	require.NoError(t, err)

	keys := make([]string, 0, len(agg.Conversations))
	for _, c := range agg.Conversations {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{phoneA + "_3", phoneA + "_1", phoneB + "_1"}, keys)
	assert.Equal(t, "C", agg.Conversations[0].Title)
	assert.Equal(t, entities.KindSupergroup, agg.Conversations[2].Kind)
}

func TestFetchConversations_ConcurrencyLimit(t *testing.T) {
	accounts := make([]*accountentities.Account, 0, 5)
	for _, phone := range []string{"+380500000001", "+380500000002", "+380500000003", "+380500000004", "+380500000005"} {
		accounts = append(accounts, account(phone, phone))
	}
	sessions := &mockSessions{delay: 10 * time.Millisecond}
	uc := newUseCase(&mockDirectory{accounts: accounts}, sessions)
	uc.maxConcurrent = 2

	_, err := uc.FetchConversations(context.Background(), "op", "", nil)
	require.NoError(t, err)
	assert.Len(t, sessions.calls, 5)
	assert.LessOrEqual(t, sessions.peak.Load(), int32(2))
}

func TestFetchConversations_DailyStats(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	sessions := &mockSessions{chats: map[string][]upstream.RawChat{
		phoneA: {{
			ID:               "98765",
			Name:             "Alice",
			Type:             "user",
			LastMessage:      &upstream.RawLastMessage{Text: "hi", Date: json.RawMessage(`"2026-10-15T18:00:00+00:00"`)},
			FirstMessageDate: json.RawMessage(`"2026-10-16T00:01:00"`),
		}},
	}}
	uc := newUseCase(&mockDirectory{accounts: []*accountentities.Account{account("a", phoneA)}}, sessions)
	uc.now = func() time.Time { return now }

	agg, err := uc.FetchConversations(context.Background(), "op", "", time.UTC)
	require.NoError(t, err)

	require.NotNil(t, agg.Conversations[0].LastMessage)
	assert.Equal(t, "Alice", agg.Conversations[0].LastMessage.Sender)

	stats, err := agg.Stats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 1, stats[0].NewToday)
	assert.Equal(t, 0, stats[0].ActiveToday)
}

func TestFetchConversations_DirectoryError(t *testing.T) {
	uc := newUseCase(&mockDirectory{err: errors.New("db down")}, &mockSessions{})

	_, err := uc.FetchConversations(context.Background(), "op", "", nil)
	assert.EqualError(t, err, "db down")
}

func TestFetchMessages(t *testing.T) {
	sessions := &mockSessions{messages: &upstream.MessagesResult{
		Messages: []upstream.RawMessage{
			{ID: "1", Text: "first", IsIncoming: true, IsRead: true, Timestamp: json.RawMessage(`1760610000`)},
			{ID: "2", Text: "second", IsIncoming: false, IsRead: true},
			{ID: "3", Text: "third", IsIncoming: true},
		},
	}}
	uc := newUseCase(&mockDirectory{accounts: []*accountentities.Account{account("a", phoneA)}}, sessions)

	page, err := uc.FetchMessages(context.Background(), "op", phoneA+"_98765", 2)
	require.NoError(t, err)

	assert.Equal(t, []string{phoneA + "/98765"}, sessions.calls)
	assert.Equal(t, 2, sessions.limit)
	require.Len(t, page.Messages, 2)
	assert.Equal(t, "first", page.Messages[0].Text)
	assert.Equal(t, "second", page.Messages[1].Text)
	require.NotNil(t, page.Messages[0].Timestamp)
	assert.Equal(t, int64(1760610000), page.Messages[0].Timestamp.Unix())
	assert.Equal(t, "Chat", page.ChatTitle)
	assert.Equal(t, entities.MessageSummary{Total: 2, Read: 2, Incoming: 1}, page.Summary)
}

func TestFetchMessages_UsesStoredPhone(t *testing.T) {
	sessions := &mockSessions{messages: &upstream.MessagesResult{}}
	uc := newUseCase(&mockDirectory{accounts: []*accountentities.Account{account("a", phoneA)}}, sessions)

	key := "+38095-1234567_5"
	page, err := uc.FetchMessages(context.Background(), "op", key, 10)
	require.NoError(t, err)

	assert.Equal(t, []string{phoneA + "/5"}, sessions.calls)
	assert.Equal(t, phoneA, page.AccountPhone)
	assert.Equal(t, key, page.Key)
}

func TestFetchMessages_Limits(t *testing.T) {
	sessions := &mockSessions{messages: &upstream.MessagesResult{ChatTitle: "Team"}}
	uc := newUseCase(&mockDirectory{accounts: []*accountentities.Account{account("a", phoneA)}}, sessions)

	page, err := uc.FetchMessages(context.Background(), "op", phoneA+"_1", 0)
	require.NoError(t, err)
	assert.Equal(t, 50, sessions.limit)
	assert.Equal(t, "Team", page.ChatTitle)
	assert.NotNil(t, page.Messages)

	_, err = uc.FetchMessages(context.Background(), "op", phoneA+"_1", 1000)
	require.NoError(t, err)
	assert.Equal(t, 200, sessions.limit)
}

func TestFetchMessages_Errors(t *testing.T) {
	sessions := &mockSessions{}
	uc := newUseCase(&mockDirectory{accounts: []*accountentities.Account{account("a", phoneA)}}, sessions)

	_, err := uc.FetchMessages(context.Background(), "op", "abc_1", 10)
	assert.ErrorIs(t, err, chatserrors.ErrMalformedKey)

	_, err = uc.FetchMessages(context.Background(), "op", phoneB+"_1", 10)
	assert.ErrorIs(t, err, chatserrors.ErrAccountNotFound)

	assert.Empty(t, sessions.calls)
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
		want *time.Time
	}{
		{"rfc3339", `"2026-10-16T12:30:00+03:00"`, &want},
		{"rfc3339 nano", `"2026-10-16T09:30:00.000123Z"`, ptr(want.Add(123 * time.Microsecond))},
		{"naive iso", `"2026-10-16T09:30:00"`, &want},
		{"naive with space", `"2026-10-16 09:30:00"`, &want},
		{"unix number", `1792143000`, ptr(time.Unix(1792143000, 0))},
		{"unix string", `"1792143000"`, ptr(time.Unix(1792143000, 0))},
		{"null", `null`, nil},
		{"empty", ``, nil},
		{"empty string", `""`, nil},
		{"garbage", `"yesterday"`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTimestamp(json.RawMessage(tt.raw))
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %s", got)
		})
	}
}

func TestNormalizeConversation_Defaults(t *testing.T) {
	c := normalizeConversation(account("a", phoneA), upstream.RawChat{ID: "7", UnreadCount: -3})

	assert.Equal(t, "Untitled", c.Title)
	assert.Equal(t, entities.KindPrivate, c.Kind)
	assert.Equal(t, 0, c.UnreadCount)
	assert.Nil(t, c.LastMessage)
	assert.Nil(t, c.FirstMessageAt)
	assert.Equal(t, "a", c.AccountID)
}

func ptr(t time.Time) *time.Time {
	return &t
}
