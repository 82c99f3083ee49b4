package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/skillshare/internal/domain"
	"github.com/vedran77/skillshare/internal/logging"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type staticTokens map[string]uuid.UUID

func (s staticTokens) Parse(token string) (uuid.UUID, error) {
	id, ok := s[token]
	if !ok {
		return uuid.Nil, errors.New("unknown token")
	}
	return id, nil
}

func TestNewEvent_Encoding(t *testing.T) {
	topic := uuid.MustParse("7b0c5f0e-3c2a-4d8e-9a55-0f3f7f9b8c11")

	evt, err := NewEvent(EventTypeRegistration, &topic, RegistrationPayload{
		WorkshopID:      topic,
		Participants:    2,
		MaxParticipants: 5,
		SpotsRemaining:  3,
	})
	require.NoError(t, err)
	assert.NotZero(t, evt.Timestamp)

	data, err := json.Marshal(evt)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "workshop.registration", raw["type"])
	assert.Equal(t, topic.String(), raw["topic"])

	payload := raw["payload"].(map[string]any)
	assert.Equal(t, float64(2), payload["current_participants"])
	assert.Equal(t, float64(3), payload["spots_remaining"])
}

func TestNewEvent_FeedEventHasNoTopic(t *testing.T) {
	evt, err := NewEvent(EventTypeArticlePublished, nil, ArticlePayload{Title: "Hello"})
	require.NoError(t, err)

	data, err := json.Marshal(evt)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"topic"`)
}

type liveHub struct {
	hub      *Hub
	notifier *HubNotifier
	url      string
}

func startHub(t *testing.T, tokens staticTokens) *liveHub {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(logging.Nop{})
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	srv := httptest.NewServer(ServeWS(hub, tokens, []string{"*"}))
	t.Cleanup(func() {
		cancel()
		<-stopped
		srv.Close()
	})

	return &liveHub{
		hub:      hub,
		notifier: NewHubNotifier(hub),
		url:      "ws" + strings.TrimPrefix(srv.URL, "http"),
	}
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, evt Event) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, conn, evt))
}

func read(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var evt Event
	require.NoError(t, wsjson.Read(ctx, conn, &evt))
	return evt
}

// roundTrip sends a ping so earlier client events are known to be handled.
func roundTrip(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	send(t, conn, Event{Type: EventTypePing})
	require.Equal(t, EventTypePong, read(t, conn).Type)
}

func subscribe(t *testing.T, conn *websocket.Conn, topic uuid.UUID) {
	t.Helper()
	payload, err := json.Marshal(TopicPayload{ID: topic})
	require.NoError(t, err)
	send(t, conn, Event{Type: EventTypeSubscribe, Payload: payload})
	roundTrip(t, conn)
}

func TestServeWS_RejectsMissingOrBadToken(t *testing.T) {
	live := startHub(t, staticTokens{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, live.url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)

	_, resp, err = websocket.Dial(ctx, live.url+"?token=nope", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestHub_TopicRouting(t *testing.T) {
	live := startHub(t, staticTokens{"a": uuid.New(), "b": uuid.New()})
	workshopID := uuid.New()

	follower := dial(t, live.url+"?token=a")
	bystander := dial(t, live.url+"?token=b")
	subscribe(t, follower, workshopID)
	roundTrip(t, bystander)

	live.notifier.NotifyRegistration(workshopID, 4, 5)
	live.notifier.NotifyWorkshopCreated(&domain.WorkshopSummary{
		Workshop: domain.Workshop{ID: uuid.New(), Title: "Knitting"},
		HostName: "host",
	})

	got := read(t, follower)
	assert.Equal(t, EventTypeRegistration, got.Type)
	require.NotNil(t, got.Topic)
	assert.Equal(t, workshopID, *got.Topic)

	var reg RegistrationPayload
	require.NoError(t, json.Unmarshal(got.Payload, &reg))
	assert.Equal(t, 4, reg.Participants)
	assert.Equal(t, 1, reg.SpotsRemaining)

	// Feed events reach everyone; the bystander never sees the topic event.
	assert.Equal(t, EventTypeWorkshopCreated, read(t, follower).Type)
	assert.Equal(t, EventTypeWorkshopCreated, read(t, bystander).Type)
}

func TestClient_UnknownEventAndUnsubscribe(t *testing.T) {
	live := startHub(t, staticTokens{"a": uuid.New()})
	articleID := uuid.New()
	conn := dial(t, live.url+"?token=a")

	send(t, conn, Event{Type: "dance"})
	got := read(t, conn)
	assert.Equal(t, EventTypeError, got.Type)

	var e ErrorPayload
	require.NoError(t, json.Unmarshal(got.Payload, &e))
	assert.Equal(t, "UNKNOWN_EVENT", e.Code)

	subscribe(t, conn, articleID)
	payload, err := json.Marshal(TopicPayload{ID: articleID})
	require.NoError(t, err)
	send(t, conn, Event{Type: EventTypeUnsubscribe, Payload: payload})
	roundTrip(t, conn)

	live.notifier.NotifyArticleComment(&domain.ArticleComment{ID: uuid.New(), ArticleID: articleID})
	live.notifier.NotifyArticlePublished(&domain.KnowledgeArticle{ID: uuid.New(), Title: "Next"})

	assert.Equal(t, EventTypeArticlePublished, read(t, conn).Type)
}

func TestClient_SubscribeLimit(t *testing.T) {
	c := &Client{topics: make(map[uuid.UUID]struct{})}
	for range maxTopics {
		require.True(t, c.Subscribe(uuid.New()))
	}
	assert.False(t, c.Subscribe(uuid.New()))
}
