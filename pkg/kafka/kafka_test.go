package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestProducerPublish(t *testing.T) {
	t.Run("writes to the topic", func(t *testing.T) {
		w := &fakeWriter{}
		p := newProducer(w, "import-events", testLogger())

		err := p.Publish(context.Background(), OutgoingMessage{
			Key:     "s-1",
			Value:   []byte(`{"session_id":"s-1"}`),
			Headers: map[string]string{"event_type": "import.committed"},
		})
		require.NoError(t, err)

		require.Len(t, w.messages, 1)
		msg := w.messages[0]
		assert.Equal(t, "import-events", msg.Topic)
		assert.Equal(t, []byte("s-1"), msg.Key)
		assert.JSONEq(t, `{"session_id":"s-1"}`, string(msg.Value))
		assert.Equal(t, []kafka.Header{{Key: "event_type", Value: []byte("import.committed")}}, msg.Headers)
	})

	t.Run("nothing to publish", func(t *testing.T) {
		w := &fakeWriter{}
		p := newProducer(w, "import-events", testLogger())

		require.NoError(t, p.Publish(context.Background()))
		assert.Empty(t, w.messages)
	})

	t.Run("returns write errors", func(t *testing.T) {
		w := &fakeWriter{err: errors.New("broker down")}
		p := newProducer(w, "import-events", testLogger())

		err := p.Publish(context.Background(), OutgoingMessage{Key: "s-1"})
		assert.EqualError(t, err, "broker down")
	})

	t.Run("close", func(t *testing.T) {
		w := &fakeWriter{}
		require.NoError(t, newProducer(w, "t", testLogger()).Close())
		assert.True(t, w.closed)
	})
}

func TestCompressionCodec(t *testing.T) {
	assert.Equal(t, kafka.Gzip, compressionCodec("gzip"))
	assert.Equal(t, kafka.Lz4, compressionCodec("lz4"))
	assert.Equal(t, kafka.Zstd, compressionCodec("zstd"))
	assert.Equal(t, kafka.Compression(0), compressionCodec("none"))
	assert.Equal(t, kafka.Snappy, compressionCodec(""))
}

type fakeReader struct {
	messages chan kafka.Message

	mu        sync.Mutex
	committed []int64
	closed    bool
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case msg := <-f.messages:
		return msg, nil
	}
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

func (f *fakeReader) committedOffsets() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.committed...)
}

func TestConsumer(t *testing.T) {
	reader := &fakeReader{messages: make(chan kafka.Message, 3)}

	var mu sync.Mutex
	var keys []string
	handler := func(_ context.Context, msg *IncomingMessage) error {
		mu.Lock()
		defer mu.Unlock()
		keys = append(keys, msg.Key)
		if msg.Header("event_type") == "broken" {
			return errors.New("cannot handle")
		}
		return nil
	}

	c := newConsumer(reader, "import-session-events", testLogger(), handler)
	require.NoError(t, c.Start(context.Background()))

	reader.messages <- kafka.Message{Key: []byte("s-1"), Offset: 1, Headers: []kafka.Header{{Key: "event_type", Value: []byte("import.session.updated")}}}
	reader.messages <- kafka.Message{Key: []byte("s-2"), Offset: 2, Headers: []kafka.Header{{Key: "event_type", Value: []byte("broken")}}}
	reader.messages <- kafka.Message{Key: []byte("s-3"), Offset: 3}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(keys) == 3
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, c.Stop())
	assert.True(t, reader.closed)
	assert.Equal(t, []string{"s-1", "s-2", "s-3"}, keys)
	assert.Equal(t, []int64{1, 3}, reader.committedOffsets())
}

func TestIncomingMessageDecode(t *testing.T) {
	msg := newIncomingMessage(kafka.Message{Value: []byte(`{"session_id":"s-9"}`)})

	var body struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, msg.Decode(&body))
	assert.Equal(t, "s-9", body.SessionID)
	assert.Empty(t, msg.Header("missing"))
}
