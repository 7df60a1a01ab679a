package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/vaultsuite/onboard/internal/onboard/domain"
	"github.com/vaultsuite/onboard/internal/onboard/store"
	"github.com/vaultsuite/onboard/internal/onboard/store/drivers/sqlite"
)

type fakeReader struct {
	mu        sync.Mutex
	committed []kafka.Message
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, msgs...)
	return nil
}

func (f *fakeReader) Close() error { return nil }

type fakeProcessor struct {
	mu   sync.Mutex
	reqs []domain.InvitationRequest
}

func (f *fakeProcessor) Process(_ context.Context, req domain.InvitationRequest) domain.InvitationOutcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return domain.SentOutcome("inv-1", "usr-1")
}

func (f *fakeProcessor) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

// flakyStore fails GetTenant a fixed number of times before delegating,
// simulating a database that recovers while a message is being
// redelivered in place.
type flakyStore struct {
	store.Store
	failures int32
}

func (f *flakyStore) Tenants() store.Tenants { return flakyTenants{f} }

type flakyTenants struct{ s *flakyStore }

func (f flakyTenants) GetTenant(ctx context.Context, tenantID string) (domain.TenantInvitationRecord, error) {
	if atomic.AddInt32(&f.s.failures, -1) >= 0 {
		return domain.TenantInvitationRecord{}, errors.New("database is locked")
	}
	return f.s.Store.Tenants().GetTenant(ctx, tenantID)
}

func (f flakyTenants) UpsertTenant(ctx context.Context, rec domain.TenantInvitationRecord) error {
	return f.s.Store.Tenants().UpsertTenant(ctx, rec)
}

func (f flakyTenants) ListRetryCandidates(ctx context.Context, maxRetries int, before time.Time) ([]domain.TenantInvitationRecord, error) {
	return f.s.Store.Tenants().ListRetryCandidates(ctx, maxRetries, before)
}

// brokenStore simulates an unreachable database.
type brokenStore struct{ err error }

func (b brokenStore) Tenants() store.Tenants     { return brokenTenants(b) }
func (b brokenStore) ApplyMigrations() error     { return b.err }
func (b brokenStore) Close() error               { return nil }
func (b brokenStore) Ping(context.Context) error { return b.err }

type brokenTenants brokenStore

func (b brokenTenants) GetTenant(context.Context, string) (domain.TenantInvitationRecord, error) {
	return domain.TenantInvitationRecord{}, b.err
}

func (b brokenTenants) UpsertTenant(context.Context, domain.TenantInvitationRecord) error {
	return b.err
}

func (b brokenTenants) ListRetryCandidates(context.Context, int, time.Time) ([]domain.TenantInvitationRecord, error) {
	return nil, b.err
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTestConsumer(t *testing.T, st store.Store, maxDeliveries int) (*Consumer, *fakeReader, *fakeWriter, *fakeProcessor) {
	t.Helper()

	reader := &fakeReader{}
	deadLetters := &fakeWriter{}
	proc := &fakeProcessor{}
	c := newConsumerWithTransport(
		ConsumerConfig{MaxDeliveries: maxDeliveries},
		reader, deadLetters, st, proc, nil, slog.Default(),
	)
	return c, reader, deadLetters, proc
}

func requestMessage(t *testing.T, req domain.InvitationRequest) kafka.Message {
	t.Helper()

	payload, err := json.Marshal(req)
	require.NoError(t, err)
	return kafka.Message{Key: []byte(req.TenantID), Value: payload}
}

func TestProcessMessageDispatchesValidRequest(t *testing.T) {
	c, _, _, proc := newTestConsumer(t, newTestStore(t), 1)

	req := mustRequest(t, "tenant-1", "admin@example.com")
	id, err := c.processMessage(context.Background(), requestMessage(t, req))
	require.NoError(t, err)
	require.Equal(t, req.RequestID, id)

	require.Equal(t, 1, proc.calls())
	require.Equal(t, "tenant-1", proc.reqs[0].TenantID)
}

func TestProcessMessageDropsUnparseable(t *testing.T) {
	c, _, _, proc := newTestConsumer(t, newTestStore(t), 1)

	msg := kafka.Message{Value: []byte("{not json")}
	_, err := c.processMessage(context.Background(), msg)
	require.NoError(t, err)
	require.Zero(t, proc.calls())
}

func TestProcessMessageDropsInvalidRequest(t *testing.T) {
	c, _, _, proc := newTestConsumer(t, newTestStore(t), 1)

	msg := requestMessage(t, domain.InvitationRequest{TenantID: "tenant-1", RequestID: "req-1"})
	_, err := c.processMessage(context.Background(), msg)
	require.NoError(t, err)
	require.Zero(t, proc.calls())
}

func TestHandleDropsDuplicateRequest(t *testing.T) {
	c, reader, _, proc := newTestConsumer(t, newTestStore(t), 1)

	msg := requestMessage(t, mustRequest(t, "tenant-1", "admin@example.com"))
	c.handle(context.Background(), msg)
	c.handle(context.Background(), msg)

	require.Equal(t, 1, proc.calls())
	require.Len(t, reader.committed, 2)
}

func TestProcessMessageSkipsDeliveredTenant(t *testing.T) {
	st := newTestStore(t)
	c, _, _, proc := newTestConsumer(t, st, 1)

	rec := domain.NewTenantInvitationRecord("tenant-1")
	rec.AdminEmail = "admin@example.com"
	rec.State = domain.StateSent
	rec.InvitationDateUTC = time.Now().UTC()
	rec.RetryCount = 1
	require.NoError(t, st.Tenants().UpsertTenant(context.Background(), rec))

	msg := requestMessage(t, mustRequest(t, "tenant-1", "admin@example.com"))
	_, err := c.processMessage(context.Background(), msg)
	require.NoError(t, err)
	require.Zero(t, proc.calls())
}

func TestProcessMessageStoreFaultRequestsRedelivery(t *testing.T) {
	c, _, _, proc := newTestConsumer(t, brokenStore{err: errors.New("database is locked")}, 1)

	msg := requestMessage(t, mustRequest(t, "tenant-1", "admin@example.com"))
	_, err := c.processMessage(context.Background(), msg)
	require.Error(t, err)
	require.Zero(t, proc.calls())
}

func TestHandleRedeliversAfterTransientFault(t *testing.T) {
	st := &flakyStore{Store: newTestStore(t), failures: 1}
	c, reader, deadLetters, proc := newTestConsumer(t, st, 3)

	// The first attempt hits the store fault; the in-place redelivery
	// must reach the processor rather than match its own request id in
	// the duplicate window.
	msg := requestMessage(t, mustRequest(t, "tenant-1", "admin@example.com"))
	c.handle(context.Background(), msg)

	require.Equal(t, 1, proc.calls())
	require.Empty(t, deadLetters.msgs)
	require.Len(t, reader.committed, 1)
}

func TestHandleDeadLettersPersistentFault(t *testing.T) {
	c, reader, deadLetters, proc := newTestConsumer(t, brokenStore{err: errors.New("database is locked")}, 2)

	msg := requestMessage(t, mustRequest(t, "tenant-1", "admin@example.com"))
	c.handle(context.Background(), msg)

	require.Zero(t, proc.calls())
	require.Len(t, deadLetters.msgs, 1)
	require.Equal(t, "tenant-1", string(deadLetters.msgs[0].Key))
	require.Len(t, reader.committed, 1)
}

func TestHandleDeadLettersExhaustedMessage(t *testing.T) {
	c, reader, deadLetters, proc := newTestConsumer(t, brokenStore{err: errors.New("database is locked")}, 1)

	msg := requestMessage(t, mustRequest(t, "tenant-1", "admin@example.com"))
	c.handle(context.Background(), msg)

	require.Zero(t, proc.calls())
	require.Len(t, deadLetters.msgs, 1)
	require.Equal(t, "tenant-1", string(deadLetters.msgs[0].Key))
	require.Len(t, reader.committed, 1)
}

func TestHandleCommitsProcessedMessage(t *testing.T) {
	c, reader, deadLetters, proc := newTestConsumer(t, newTestStore(t), 3)

	msg := requestMessage(t, mustRequest(t, "tenant-1", "admin@example.com"))
	c.handle(context.Background(), msg)

	require.Equal(t, 1, proc.calls())
	require.Empty(t, deadLetters.msgs)
	require.Len(t, reader.committed, 1)
}
