package question

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ws "github.com/gokatarajesh/trivia-api/pkg/http/ws"
)

func newQuizWSServer(t *testing.T, store *fakeStore, hub *ws.Hub) *websocket.Conn {
	t.Helper()
	h := NewWSHandler(newTestService(store, nil, nil, firstSource{}), hub, ws.NewUpgrader("*"), zerolog.Nop())
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg ws.Message) ws.Message {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got ws.Message
	require.NoError(t, conn.ReadJSON(&got))
	return got
}

func TestWSNextQuestion(t *testing.T) {
	conn := newQuizWSServer(t, seededStore(), ws.NewHub(zerolog.Nop()))

	got := roundTrip(t, conn, ws.Message{
		Type:      ws.TypeNextQuestion,
		Payload:   json.RawMessage(`{"previous_questions":[1,2],"quiz_category":{"id":1}}`),
		RequestID: "r1",
	})
	assert.Equal(t, ws.TypeQuestion, got.Type)
	assert.Equal(t, "r1", got.RequestID)

	var payload QuestionPayload
	require.NoError(t, json.Unmarshal(got.Payload, &payload))
	assert.True(t, payload.Success)
	require.NotNil(t, payload.Question)
	assert.Equal(t, 3, payload.Question.ID)

	got = roundTrip(t, conn, ws.Message{
		Type:    ws.TypeNextQuestion,
		Payload: json.RawMessage(`{"previous_questions":[1,2,3],"quiz_category":{"id":1}}`),
	})
	assert.JSONEq(t, `{"success":true,"question":null}`, string(got.Payload))
}

func TestWSNextQuestionValidation(t *testing.T) {
	conn := newQuizWSServer(t, seededStore(), ws.NewHub(zerolog.Nop()))

	got := roundTrip(t, conn, ws.Message{Type: ws.TypeNextQuestion, RequestID: "r2"})
	assert.Equal(t, ws.TypeError, got.Type)
	assert.Equal(t, "r2", got.RequestID)

	var payload ws.ErrorPayload
	require.NoError(t, json.Unmarshal(got.Payload, &payload))
	assert.Equal(t, "validation_failed", payload.Code)
	assert.Equal(t, MsgQuizCategoryRequired, payload.Message)
}

func TestWSPingAndUnknown(t *testing.T) {
	conn := newQuizWSServer(t, seededStore(), ws.NewHub(zerolog.Nop()))

	got := roundTrip(t, conn, ws.Message{Type: ws.TypePing, RequestID: "p"})
	assert.Equal(t, ws.TypePong, got.Type)
	assert.Equal(t, "p", got.RequestID)

	got = roundTrip(t, conn, ws.Message{Type: "dance"})
	assert.Equal(t, ws.TypeError, got.Type)
	assert.Contains(t, string(got.Payload), "unknown_message_type")
}

func TestBroadcasterForwardsCatalogEvents(t *testing.T) {
	hub := ws.NewHub(zerolog.Nop())
	conn := newQuizWSServer(t, seededStore(), hub)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	b := NewBroadcaster(nil, hub, "", zerolog.Nop())
	b.forward(`not json`)
	b.forward(`{"type":"something_else","id":1}`)
	b.forward(`{"type":"question_created","id":7,"category":2}`)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got ws.Message
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, ws.TypeQuestionCreated, got.Type)
	assert.JSONEq(t, `{"type":"question_created","id":7,"category":2}`, string(got.Payload))
}
