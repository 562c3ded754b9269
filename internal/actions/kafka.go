package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	kgo "github.com/segmentio/kafka-go"
)

// messageWriter is the part of kafka.Writer the dispatcher uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kgo.Message) error
	Close() error
}

// KafkaDispatcher publishes commands to a Kafka topic keyed by viewer,
// so one viewer's commands keep their order.
type KafkaDispatcher struct {
	w messageWriter
}

func NewKafkaDispatcher(brokers, topic string) *KafkaDispatcher {
	w := &kgo.Writer{
		Addr:         kgo.TCP(strings.Split(brokers, ",")...),
		Topic:        topic,
		Balancer:     &kgo.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kgo.RequireOne,
	}
	return &KafkaDispatcher{w: w}
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, cmd Command) error {
	value, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}
	return d.w.WriteMessages(ctx, kgo.Message{
		Key:   []byte(cmd.ViewerID),
		Value: value,
		Time:  cmd.IssuedAt,
		Headers: []kgo.Header{
			{Key: "command-id", Value: []byte(cmd.ID)},
			{Key: "command-type", Value: []byte(cmd.Type)},
		},
	})
}

func (d *KafkaDispatcher) Close() error { return d.w.Close() }

// LogDispatcher only logs commands; used when no broker is configured
type LogDispatcher struct {
	Logger *log.Logger
}

func (d LogDispatcher) Dispatch(_ context.Context, cmd Command) error {
	logger := d.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("command %s %s by %s (post=%q user=%q group=%q)", cmd.ID, cmd.Type, cmd.ViewerID, cmd.PostID, cmd.Username, cmd.GroupName)
	return nil
}
