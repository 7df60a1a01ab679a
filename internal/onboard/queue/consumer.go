package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/vaultsuite/onboard/internal/onboard/domain"
	"github.com/vaultsuite/onboard/internal/onboard/store"
	"github.com/vaultsuite/onboard/internal/onboard/telemetry"
	"github.com/vaultsuite/onboard/pkg/slogx"
)

// messageReader is the subset of kafka.Reader the consumer needs.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerConfig carries the transport settings for one consumer.
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string

	// MaxDeliveries bounds the in-place redelivery attempts for a message
	// before it is moved to the dead-letter topic. Defaults to 5.
	MaxDeliveries int

	// DedupTTL is the sliding window for duplicate request suppression.
	DedupTTL time.Duration
}

// Consumer pulls invitation requests off the topic and drives the
// processor. Redelivery for infrastructure faults happens in place, so
// per-partition ordering is preserved; a message that exhausts its
// deliveries is published to the dead-letter topic and committed.
type Consumer struct {
	reader        messageReader
	deadLetters   messageWriter
	store         store.Store
	processor     Processor
	telemetry     telemetry.Emitter
	logger        *slog.Logger
	maxDeliveries int
	dedup         *dedupWindow

	cancel context.CancelFunc
	doneCh chan struct{}
}

// NewConsumer builds a consumer for the invitations topic. The
// dead-letter writer targets the topic with DeadLetterSuffix appended.
func NewConsumer(cfg ConsumerConfig, st store.Store, proc Processor, emitter telemetry.Emitter, logger *slog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	deadLetters := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic + DeadLetterSuffix,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	return newConsumerWithTransport(cfg, reader, deadLetters, st, proc, emitter, logger)
}

func newConsumerWithTransport(cfg ConsumerConfig, reader messageReader, deadLetters messageWriter, st store.Store, proc Processor, emitter telemetry.Emitter, logger *slog.Logger) *Consumer {
	if cfg.MaxDeliveries <= 0 {
		cfg.MaxDeliveries = 5
	}
	if emitter == nil {
		emitter = telemetry.Nop{}
	}

	return &Consumer{
		reader:        reader,
		deadLetters:   deadLetters,
		store:         st,
		processor:     proc,
		telemetry:     emitter,
		logger:        logger,
		maxDeliveries: cfg.MaxDeliveries,
		dedup:         newDedupWindow(cfg.DedupTTL),
	}
}

// Start begins the background fetch loop. Non-blocking; call Stop to
// shut down.
func (c *Consumer) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.doneCh = make(chan struct{})

	go c.run(ctx)
	c.logger.Info("invitation consumer started", "max_deliveries", c.maxDeliveries)
}

// Stop cancels the fetch loop, waits for it to drain, and closes the
// transport.
func (c *Consumer) Stop() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.doneCh

	_ = c.reader.Close()
	_ = c.deadLetters.Close()
	c.logger.Info("invitation consumer stopped")
}

func (c *Consumer) run(ctx context.Context) {
	defer close(c.doneCh)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("failed to fetch message", "error", err)
			time.Sleep(time.Second)
			continue
		}

		c.handle(ctx, msg)
	}
}

// handle drives one message to completion: it is committed exactly once,
// after either successful processing, a deliberate drop, or dead-letter
// publication. The request id enters the duplicate window at the same
// point, so an in-place redelivery never collides with its own earlier
// attempt.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	var requestID string
	for attempt := 1; attempt <= c.maxDeliveries; attempt++ {
		id, err := c.processMessage(ctx, msg)
		requestID = id
		if err == nil {
			c.dedup.Mark(requestID)
			c.commit(ctx, msg)
			return
		}
		if ctx.Err() != nil {
			return
		}

		c.logger.Warn("message delivery failed",
			"error", err,
			"attempt", attempt,
			"max_deliveries", c.maxDeliveries,
			"offset", msg.Offset,
		)

		if attempt < c.maxDeliveries {
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
				return
			}
		}
	}

	c.deadLetter(ctx, msg)
	c.dedup.Mark(requestID)
	c.commit(ctx, msg)
}

// processMessage runs one delivery attempt and returns the request id of
// the parsed message. A nil error means the message is finished
// (processed or deliberately dropped); an error means the attempt hit an
// infrastructure fault and the message should be redelivered.
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) (string, error) {
	log := c.logger.With("offset", msg.Offset)

	var req domain.InvitationRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		log.Warn("dropping unparseable message", "error", err)
		c.telemetry.Emit(telemetry.EventDropped, map[string]string{"reason": "unparseable"})
		return "", nil
	}
	req.ApplyDefaults()

	if err := req.Validate(); err != nil {
		log.Warn("dropping invalid request", "error", err, "tenant_id", req.TenantID)
		c.telemetry.Emit(telemetry.EventDropped, map[string]string{
			"reason":    "invalid",
			"tenant_id": req.TenantID,
		})
		return req.RequestID, nil
	}

	log = log.With("tenant_id", req.TenantID, "request_id", req.RequestID)

	if c.dedup.Seen(req.RequestID) {
		log.Info("dropping duplicate request")
		c.telemetry.Emit(telemetry.EventDropped, map[string]string{
			"reason":    "duplicate",
			"tenant_id": req.TenantID,
		})
		return req.RequestID, nil
	}

	// A tenant whose invitation already landed is not re-invited; later
	// requests for it are skipped without touching the record.
	rec, err := c.store.Tenants().GetTenant(ctx, req.TenantID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return req.RequestID, err
	}
	if err == nil && rec.State.Terminal() {
		outcome := domain.SkippedOutcome("invitation already delivered")
		log.Info("skipping tenant with delivered invitation",
			"state", rec.State.String(),
			"note", outcome.StatusNote,
		)
		c.telemetry.Emit(telemetry.EventSkipped, map[string]string{"tenant_id": req.TenantID})
		return req.RequestID, nil
	}

	c.processor.Process(slogx.WithTenant(ctx, req.TenantID), req)
	return req.RequestID, nil
}

func (c *Consumer) deadLetter(ctx context.Context, msg kafka.Message) {
	dead := kafka.Message{
		Key:   msg.Key,
		Value: msg.Value,
	}
	if err := c.deadLetters.WriteMessages(ctx, dead); err != nil {
		c.logger.Error("failed to publish dead letter",
			"error", err,
			"offset", msg.Offset,
		)
		return
	}

	// The recorder consuming the dead-letter topic emits the telemetry
	// event, so publication and the record write are counted once.
	c.logger.Error("message moved to dead-letter topic",
		"tenant_id", string(msg.Key),
		"offset", msg.Offset,
	)
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("failed to commit offset", "error", err, "offset", msg.Offset)
	}
}
