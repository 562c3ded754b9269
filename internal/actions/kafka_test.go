package actions

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kgo "github.com/segmentio/kafka-go"
)

type recordingWriter struct {
	msgs   []kgo.Message
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kgo.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaDispatcher(t *testing.T) {
	w := &recordingWriter{}
	d := &KafkaDispatcher{w: w}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cmd := Command{ID: "cmd-1", Type: Like, ViewerID: "me", PostID: "p1", IssuedAt: at}
	if err := d.Dispatch(context.Background(), cmd); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}

	msg := w.msgs[0]
	if string(msg.Key) != "me" || !msg.Time.Equal(at) {
		t.Errorf("unexpected key/time: %q %v", msg.Key, msg.Time)
	}
	var got Command
	if err := json.Unmarshal(msg.Value, &got); err != nil {
		t.Fatalf("value is not a command: %v", err)
	}
	if got.ID != "cmd-1" || got.Type != Like || got.PostID != "p1" {
		t.Errorf("unexpected payload %+v", got)
	}

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	if headers["command-id"] != "cmd-1" || headers["command-type"] != "like" {
		t.Errorf("unexpected headers %v", headers)
	}

	if err := d.Close(); err != nil || !w.closed {
		t.Fatalf("Close = %v, closed=%v", err, w.closed)
	}
}

func TestNewKafkaDispatcher(t *testing.T) {
	d := NewKafkaDispatcher("a:9092,b:9092", "feedview.commands")
	w, ok := d.w.(*kgo.Writer)
	if !ok {
		t.Fatalf("unexpected writer %T", d.w)
	}
	if w.Topic != "feedview.commands" || w.Addr == nil {
		t.Errorf("writer = topic %q addr %v", w.Topic, w.Addr)
	}
	if _, ok := w.Balancer.(*kgo.Hash); !ok {
		t.Errorf("commands of one viewer must share a partition, balancer is %T", w.Balancer)
	}
}
