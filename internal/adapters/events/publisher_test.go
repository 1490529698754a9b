package events

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingPublisherWritesEvent(t *testing.T) {
	var buf bytes.Buffer
	p := NewLoggingPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, p.Publish(context.Background(), "project.created", []byte(`{"id":"p1"}`), "p1"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "project.created", line["event_type"])
	assert.Equal(t, "p1", line["partition_key"])
}

func TestKafkaPublisherTopicFor(t *testing.T) {
	p, err := NewKafkaPublisher([]string{"localhost:9092"}, "tracker")
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	assert.Equal(t, "tracker.task", p.TopicFor("task.deleted"))
	assert.Equal(t, "tracker.user", p.TopicFor("user.registered"))

	_, err = NewKafkaPublisher(nil, "tracker")
	require.Error(t, err)
}

func TestKafkaPublisherFlushesSingleMessagesPromptly(t *testing.T) {
	p, err := NewKafkaPublisher([]string{"localhost:9092"}, "tracker")
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	assert.LessOrEqual(t, p.writer.BatchTimeout, 10*time.Millisecond)
	assert.Equal(t, 3, p.writer.MaxAttempts)
	assert.Equal(t, 5*time.Second, p.writer.WriteTimeout)
}
