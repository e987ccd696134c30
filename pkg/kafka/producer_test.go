package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestNewEvent_Fields(t *testing.T) {
	type profileData struct {
		ProfileID int64  `json:"profileId"`
		Status    string `json:"status"`
	}

	data := profileData{ProfileID: 7, Status: "pending"}
	event, err := NewEvent("profile.created", "7", "business_profile", "profilepulse", data)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "profile.created", event.EventType)
	assert.Equal(t, "7", event.AggregateID)
	assert.Equal(t, "business_profile", event.AggregateType)
	assert.Equal(t, 1, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)

	var got profileData
	require.NoError(t, event.UnmarshalData(&got))
	assert.Equal(t, data, got)
}

func TestNewEvent_InvalidData(t *testing.T) {
	_, err := NewEvent("test.event", "agg-1", "test", "svc", make(chan int))
	require.Error(t, err)
}

func TestEvent_Chaining(t *testing.T) {
	event, err := NewEvent("test.event", "agg-1", "test", "svc", nil)
	require.NoError(t, err)
	event.Metadata = nil

	result := event.WithCorrelationID("corr-xyz").WithMetadata("user_id", "1")
	assert.Same(t, event, result)
	assert.Equal(t, "corr-xyz", event.CorrelationID)
	assert.Equal(t, "1", event.Metadata["user_id"])
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "profilepulse.profile.created", Topic("profile", "created"))
	assert.Equal(t, "profilepulse.profile.status-changed", Topic("profile", "status-changed"))
}

func TestDefaultProducerConfig(t *testing.T) {
	brokers := []string{"broker1:9092", "broker2:9092"}
	cfg := DefaultProducerConfig(brokers)

	assert.Equal(t, brokers, cfg.Brokers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 10*time.Millisecond, cfg.BatchTimeout)
	assert.False(t, cfg.Async)
}

func TestProducer_PublishWritesKeyAndHeaders(t *testing.T) {
	w := &recordingWriter{}
	p := NewProducerWithWriter(w, []string{"localhost:9092"}, nil)

	event, err := NewEvent("profile.created", "42", "business_profile", "profilepulse", map[string]int{"id": 42})
	require.NoError(t, err)
	event.WithCorrelationID("req-1")

	require.NoError(t, p.Publish(context.Background(), "profilepulse.profile.created", event))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "profilepulse.profile.created", msg.Topic)
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, "profile.created", headerValue(msg, "event_type"))
	assert.Equal(t, "profilepulse", headerValue(msg, "source"))
	assert.Equal(t, "req-1", headerValue(msg, "correlation_id"))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.EventID, decoded.EventID)
}

func TestProducer_PublishError(t *testing.T) {
	w := &recordingWriter{err: errors.New("leader not available")}
	p := NewProducerWithWriter(w, nil, nil)

	event, err := NewEvent("profile.created", "1", "business_profile", "profilepulse", nil)
	require.NoError(t, err)

	err = p.Publish(context.Background(), "t", event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
}

func TestProducer_Close(t *testing.T) {
	w := &recordingWriter{}
	require.NoError(t, NewProducerWithWriter(w, nil, nil).Close())
	assert.True(t, w.closed)
}

func TestNewProducer_DoesNotConnect(t *testing.T) {
	p := NewProducer(DefaultProducerConfig([]string{"localhost:19092"}), nil)
	require.NotNil(t, p)
	assert.Equal(t, []string{"localhost:19092"}, p.brokers)
	assert.NoError(t, p.Close())
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	err := PingBrokers(t.Context(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}
