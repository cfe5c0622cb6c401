package realtime

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub *Subscription) *Event {
	t.Helper()
	select {
	case event := <-sub.C:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func assertNothing(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case event := <-sub.C:
		t.Fatalf("unexpected event %+v", event)
	default:
	}
}

func TestHubDeliversToTopicSubscribersOnly(t *testing.T) {
	hub := NewHub(8)
	alice := hub.Subscribe(UserTopic("alice"), TopicGlobal)
	bob := hub.Subscribe(UserTopic("bob"), TopicGlobal)
	defer hub.Unsubscribe(alice)
	defer hub.Unsubscribe(bob)

	hub.PublishJSON(EventNotification, UserTopic("alice"), map[string]string{"message": "liked your post"})

	event := receive(t, alice)
	assert.Equal(t, EventNotification, event.Type)
	assert.Equal(t, "user:alice", event.Topic)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, "liked your post", payload["message"])
	assertNothing(t, bob)

	hub.PublishJSON(EventGlobalMessage, TopicGlobal, map[string]string{"content": "hi"})
	assert.Equal(t, EventGlobalMessage, receive(t, alice).Type)
	assert.Equal(t, EventGlobalMessage, receive(t, bob).Type)
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub(1)
	sub := hub.Subscribe(TopicGlobal)
	assert.Equal(t, 1, hub.SubscriberCount(TopicGlobal))

	hub.Unsubscribe(sub)
	_, open := <-sub.C
	assert.False(t, open)
	assert.Zero(t, hub.SubscriberCount(TopicGlobal))

	// A second unsubscribe must not close the channel twice.
	hub.Unsubscribe(sub)
}

func TestHubSlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub(1)
	sub := hub.Subscribe(TopicGlobal)
	defer hub.Unsubscribe(sub)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			hub.PublishJSON(EventGlobalMessage, TopicGlobal, i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	assert.Len(t, sub.C, 1)
}

type recordingRelay struct {
	events []*Event
	err    error
}

func (r *recordingRelay) Publish(event *Event) error {
	r.events = append(r.events, event)
	return r.err
}

func TestHubForwardsToRelay(t *testing.T) {
	hub := NewHub(4)
	relay := &recordingRelay{err: errors.New("redis down")}
	hub.SetRelay(relay)
	sub := hub.Subscribe(UserTopic("a"))
	defer hub.Unsubscribe(sub)

	hub.PublishJSON(EventChatMessage, UserTopic("a"), "hello")

	require.Len(t, relay.events, 1)
	assert.Equal(t, EventChatMessage, receive(t, sub).Type, "local delivery does not depend on the relay")
}

func TestRelayDecodeSkipsOwnEvents(t *testing.T) {
	relay := &RedisRelay{instanceID: "self"}
	event, err := NewEvent(EventGlobalMessage, TopicGlobal, "x")
	require.NoError(t, err)

	own, err := json.Marshal(envelope{Origin: "self", Event: event})
	require.NoError(t, err)
	decoded, err := relay.decode(string(own))
	require.NoError(t, err)
	assert.Nil(t, decoded)

	foreign, err := json.Marshal(envelope{Origin: "other", Event: event})
	require.NoError(t, err)
	decoded, err = relay.decode(string(foreign))
	require.NoError(t, err)
	require.NotNil(t, decoded)
	assert.Equal(t, TopicGlobal, decoded.Topic)

	_, err = relay.decode("not json")
	assert.Error(t, err)
}
