package store

import (
	"context"
	"errors"
	"time"

	"github.com/vaultsuite/onboard/internal/onboard/domain"
)

var ErrNotFound = errors.New("store: not found")

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. The tenant record store is a keyed document
// store: get-by-key and last-write-wins upsert, plus the one query the
// retry scheduler sweeps with. There is deliberately no transaction
// surface — per-tenant serialization happens above the store, and every
// write is a whole-record upsert.
type Store interface {
	Tenants() Tenants

	ApplyMigrations() error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Tenants interface {
	// GetTenant returns the invitation record for a tenant id.
	GetTenant(ctx context.Context, tenantID string) (domain.TenantInvitationRecord, error)

	// UpsertTenant writes the whole record, creating it if absent. The
	// driver bumps the revision and updated_at on every write.
	UpsertTenant(ctx context.Context, rec domain.TenantInvitationRecord) error

	// ListRetryCandidates returns Failed records below the attempt ceiling
	// whose last attempt is not newer than `before`, oldest first.
	ListRetryCandidates(ctx context.Context, maxAttempts int, before time.Time) ([]domain.TenantInvitationRecord, error)
}
