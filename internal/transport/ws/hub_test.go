package ws

import (
	"encoding/json"
	"testing"
	"time"

	"amiai/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubSendAndCount(t *testing.T) {
	hub := NewHub()

	conn := &Connection{ID: "c1", Send: make(chan []byte, 8), Hub: hub}
	hub.Register(conn)

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	hub.Send("c1", "queue_joined", model.QueueJoinedPayload{Position: 1, Message: "排队中"})

	select {
	case data := <-conn.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, MessageType("queue_joined"), msg.Type)

		var payload model.QueueJoinedPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, 1, payload.Position)
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}

	// messages to unknown connections are dropped, not fatal
	hub.Send("ghost", "queue_joined", model.QueueJoinedPayload{})

	hub.Unregister(conn)
	require.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 10*time.Millisecond)
}
