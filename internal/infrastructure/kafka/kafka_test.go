package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/honeynil/finboard/internal/models"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type fakeReader struct {
	msgs []kafka.Message
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeReader) Close() error { return nil }

type recordingHandler struct {
	mu  sync.Mutex
	got []models.Notification
}

func (h *recordingHandler) HandleNotification(ctx context.Context, n models.Notification) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.got = append(h.got, n)
	return nil
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.got)
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, topic: "dashboard-notifications"}
	n := models.Notification{ID: "n1", Level: models.LevelSuccess, Title: "Transfer Submitted!"}

	require.NoError(t, p.Publish(context.Background(), n))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "dashboard-notifications", w.msgs[0].Topic)
	assert.Equal(t, []byte("n1"), w.msgs[0].Key)

	var decoded models.Notification
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, n.Title, decoded.Title)

	w.err = errors.New("broker down")
	assert.Error(t, p.Publish(context.Background(), n))
}

func TestConsumer_HandleMessage(t *testing.T) {
	h := &recordingHandler{}
	c := &Consumer{reader: &fakeReader{}, topic: "t", handler: h}
	ctx := context.Background()

	value, _ := json.Marshal(models.Notification{ID: "n1", Title: "Card locked"})
	require.NoError(t, c.handleMessage(ctx, kafka.Message{Value: value}))
	assert.Equal(t, 1, h.count())

	assert.Error(t, c.handleMessage(ctx, kafka.Message{Value: []byte("{not json")}))
	assert.Error(t, c.handleMessage(ctx, kafka.Message{Value: []byte(`{"id":""}`)}))
	assert.Equal(t, 1, h.count())
}

func TestConsumer_ConsumeStopsOnCancel(t *testing.T) {
	good, _ := json.Marshal(models.Notification{ID: "n1", Title: "ok"})
	reader := &fakeReader{msgs: []kafka.Message{{Value: []byte("bad")}, {Value: good}}}
	h := &recordingHandler{}
	c := &Consumer{reader: reader, topic: "t", handler: h}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Consume(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return h.count() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop after cancel")
	}
}

type failingReader struct {
	reads atomic.Int32
}

func (r *failingReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.reads.Add(1)
	return kafka.Message{}, errors.New("connection reset")
}

func (r *failingReader) Close() error { return nil }

func TestConsumer_BacksOffOnReadErrors(t *testing.T) {
	reader := &failingReader{}
	c := &Consumer{reader: reader, topic: "t", handler: &recordingHandler{}, retryDelay: 50 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Consume(ctx)
		close(done)
	}()

	time.Sleep(120 * time.Millisecond)
	assert.LessOrEqual(t, reader.reads.Load(), int32(4))
	assert.GreaterOrEqual(t, reader.reads.Load(), int32(2))

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop during backoff")
	}
}

func TestNewConsumer_DefaultRetryDelay(t *testing.T) {
	c := NewConsumer([]string{"localhost:9092"}, "t", "g", &recordingHandler{})
	defer c.Close()
	assert.Equal(t, readRetryDelay, c.retryDelay)
}
