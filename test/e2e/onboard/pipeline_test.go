package onboard_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/vaultsuite/onboard/internal/onboard/directory"
	"github.com/vaultsuite/onboard/internal/onboard/domain"
	"github.com/vaultsuite/onboard/internal/onboard/queue"
	"github.com/vaultsuite/onboard/internal/onboard/service"
	"github.com/vaultsuite/onboard/internal/onboard/store"
	"github.com/vaultsuite/onboard/internal/onboard/store/drivers/sqlite"
)

/*
 * End-to-end tests for the invitation pipeline against a real Kafka
 * broker. The directory is stubbed with an HTTP test server; everything
 * else (dispatcher, consumer, processor, store) is the real wiring.
 */

// setupKafka starts a single-node Kafka container and returns its broker
// addresses.
func setupKafka(t *testing.T) []string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	ctx := context.Background()
	container, err := tckafka.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("onboard-e2e"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	return brokers
}

// stubDirectory serves a Graph-style /invitations endpoint that accepts
// everything.
func stubDirectory(t *testing.T) directory.Sender {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "inv-e2e",
			"invitedUser": map[string]string{
				"id": "usr-e2e",
			},
		})
	}))
	t.Cleanup(srv.Close)

	return directory.NewGraphClientWithHTTP(srv.URL, srv.Client())
}

func newE2EStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

// waitForState polls the record until it reaches the wanted state.
func waitForState(t *testing.T, st store.Store, tenantID string, want domain.InvitationState) domain.TenantInvitationRecord {
	t.Helper()

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		rec, err := st.Tenants().GetTenant(context.Background(), tenantID)
		if err == nil && rec.State == want {
			return rec
		}
		time.Sleep(250 * time.Millisecond)
	}

	rec, err := st.Tenants().GetTenant(context.Background(), tenantID)
	require.NoError(t, err)
	require.Equal(t, want, rec.State, "record never reached wanted state")
	return rec
}

func TestInvitationPipelineEndToEnd(t *testing.T) {
	brokers := setupKafka(t)
	st := newE2EStore(t)

	proc := &service.Processor{
		Store:  st,
		Sender: stubDirectory(t),
	}

	const topic = "tenant-invitations-e2e"
	dispatcher := queue.NewKafkaDispatcher(brokers, topic, nil)
	t.Cleanup(func() { _ = dispatcher.Close() })

	consumer := queue.NewConsumer(queue.ConsumerConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: "onboard-e2e",
	}, st, proc, nil, slog.Default())
	consumer.Start()
	t.Cleanup(consumer.Stop)

	req, err := domain.NewInvitationRequest("tenant-e2e", "admin@example.com", "", "e2e")
	require.NoError(t, err)
	require.NoError(t, dispatcher.Enqueue(context.Background(), req))

	rec := waitForState(t, st, "tenant-e2e", domain.StateSent)
	require.Equal(t, "admin@example.com", rec.AdminEmail)
	require.Equal(t, "inv-e2e", rec.ExternalInviteID)
	require.Equal(t, "usr-e2e", rec.ExternalUserID)
	require.Equal(t, 1, rec.RetryCount)
}

func TestDeadLetterRoundTrip(t *testing.T) {
	brokers := setupKafka(t)
	st := newE2EStore(t)

	const topic = "tenant-invitations-dlq-e2e"

	// Publish straight onto the dead-letter topic, as the consumer does
	// for an exhausted message, and let the recorder pick it up.
	dispatcher := queue.NewKafkaDispatcher(brokers, topic+queue.DeadLetterSuffix, nil)
	t.Cleanup(func() { _ = dispatcher.Close() })

	recorder := queue.NewDeadLetterRecorder(queue.ConsumerConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: "onboard-dlq-e2e",
	}, st, nil, slog.Default())
	recorder.Start()
	t.Cleanup(recorder.Stop)

	req, err := domain.NewInvitationRequest("tenant-dead", "admin@example.com", "", "e2e")
	require.NoError(t, err)
	require.NoError(t, dispatcher.Enqueue(context.Background(), req))

	rec := waitForState(t, st, "tenant-dead", domain.StateFailed)
	require.Equal(t, domain.DeadLetterErrorText, rec.LastError)
	require.Equal(t, 1, rec.RetryCount)
}
