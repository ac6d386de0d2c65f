package events

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestPublishEvent_WritesJSON(t *testing.T) {
	w := &recordingWriter{}
	p := &Producer{writer: w}

	ev := New("order_created", 3, 42, map[string]any{"total": "350.00"})
	require.NoError(t, p.PublishEvent(context.Background(), TopicOrders, "42", ev))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, TopicOrders, w.msgs[0].Topic)
	assert.Equal(t, "42", string(w.msgs[0].Key))

	var got Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "order_created", got.Type)
	assert.EqualValues(t, 3, got.WebsiteID)
	assert.EqualValues(t, 42, got.EntityID)
	assert.WithinDuration(t, time.Now(), got.OccurredAt, time.Minute)
}

func TestPublishEvent_Errors(t *testing.T) {
	p := &Producer{writer: &recordingWriter{err: errors.New("broker down")}}

	err := p.PublishEvent(context.Background(), TopicCarts, "1", New("x", 1, 1, nil))
	assert.ErrorContains(t, err, "broker down")

	err = p.PublishEvent(context.Background(), TopicCarts, "1", make(chan int))
	assert.ErrorContains(t, err, "json.Marshal")
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.PublishEvent(context.Background(), TopicOrders, "k", nil))
}

func TestProducer_Integration(t *testing.T) {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		t.Skip("KAFKA_BROKERS not set")
	}
	p := NewProducer(strings.Split(brokers, ","))
	defer p.Close()

	require.NoError(t, p.PublishEvent(context.Background(), "test_events", "k", New("ping", 1, 1, nil)))
}
