package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/vaultsuite/onboard/internal/onboard/domain"
	"github.com/vaultsuite/onboard/internal/onboard/telemetry"
	"github.com/vaultsuite/onboard/pkg/slogx"
)

// DeadLetterSuffix is appended to the main topic to form the dead-letter
// topic name.
const DeadLetterSuffix = ".deadletter"

// messageWriter is the subset of kafka.Writer the dispatcher needs,
// kept small so tests can fake the transport.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaDispatcher publishes invitation requests to the invitations topic.
// The tenant id is the message key, and the hash balancer pins each
// tenant to one partition.
type KafkaDispatcher struct {
	writer    messageWriter
	brokers   []string
	telemetry telemetry.Emitter
}

// NewKafkaDispatcher builds a dispatcher writing to topic on brokers.
func NewKafkaDispatcher(brokers []string, topic string, emitter telemetry.Emitter) *KafkaDispatcher {
	if emitter == nil {
		emitter = telemetry.Nop{}
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaDispatcher{
		writer:    w,
		brokers:   brokers,
		telemetry: emitter,
	}
}

// newKafkaDispatcherWithWriter injects a test transport.
func newKafkaDispatcherWithWriter(w messageWriter, emitter telemetry.Emitter) *KafkaDispatcher {
	if emitter == nil {
		emitter = telemetry.Nop{}
	}
	return &KafkaDispatcher{writer: w, telemetry: emitter}
}

// Enqueue marshals the request and writes it keyed by tenant id.
func (d *KafkaDispatcher) Enqueue(ctx context.Context, req domain.InvitationRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("refusing to enqueue invalid request: %w", err)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal invitation request: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(req.TenantID),
		Value: payload,
	}
	if err := d.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write invitation request: %w", err)
	}

	d.telemetry.Emit(telemetry.EventEnqueued, map[string]string{
		"tenant_id":  req.TenantID,
		"request_id": req.RequestID,
	})
	slogx.FromContext(ctx).Debug("invitation request enqueued",
		"tenant_id", req.TenantID,
		"request_id", req.RequestID,
	)
	return nil
}

// Ping dials the first broker to verify the transport is reachable.
// Used by the readiness probe.
func (d *KafkaDispatcher) Ping(ctx context.Context) error {
	if len(d.brokers) == 0 {
		return nil
	}

	conn, err := kafka.DefaultDialer.DialContext(ctx, "tcp", d.brokers[0])
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	return conn.Close()
}

// Close flushes and closes the underlying writer.
func (d *KafkaDispatcher) Close() error {
	return d.writer.Close()
}
