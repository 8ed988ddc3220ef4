package payments

import (
	"context"
	"fmt"
	"iter"
	"strconv"

	"github.com/segmentio/kafka-go"
)

// publishBatchSize bounds the number of messages sent per write.
const publishBatchSize = 1000

// messageWriter is the part of kafka.Writer the Publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher sends report rows to a Kafka topic, one message per client.
//
// Messages are keyed by client id and carry the run id both as a header and
// in the payload.
type Publisher struct {
	writer messageWriter
	runID  string
}

// NewPublisher creates a publisher writing to topic on brokers.
func NewPublisher(brokers []string, topic, runID string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
		runID: runID,
	}
}

// Publish sends every report and returns how many were written.
func (p *Publisher) Publish(ctx context.Context, reports iter.Seq[ClientReport]) (int, error) {
	var (
		batch []kafka.Message
		sent  int
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := p.writer.WriteMessages(ctx, batch...); err != nil {
			return fmt.Errorf("failed to publish report: %w", err)
		}
		sent += len(batch)
		batch = nil
		return nil
	}

	for r := range reports {
		msg, err := p.message(r)
		if err != nil {
			return sent, err
		}
		batch = append(batch, msg)
		if len(batch) >= publishBatchSize {
			if err := flush(); err != nil {
				return sent, err
			}
		}
	}
	return sent, flush()
}

func (p *Publisher) message(r ClientReport) (kafka.Message, error) {
	var w jsonObjectWriter
	w.Optional("run_id", p.runID)
	w.EmbedFrom(r)
	value, err := w.MarshalJSON()
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal client %d: %w", r.Client, err)
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(r.Client), 10)),
		Value: value,
	}
	if p.runID != "" {
		msg.Headers = []kafka.Header{{Key: "run-id", Value: []byte(p.runID)}}
	}
	return msg, nil
}

// Close flushes and releases the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
