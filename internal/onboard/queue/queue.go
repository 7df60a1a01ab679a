// Package queue moves invitation requests between the HTTP boundary and
// the processor over Kafka. Messages are keyed by tenant id, so all
// requests for one tenant land on one partition and are consumed in
// order.
package queue

import (
	"context"

	"github.com/vaultsuite/onboard/internal/onboard/domain"
)

// Dispatcher accepts validated requests for asynchronous delivery.
type Dispatcher interface {
	// Enqueue hands the request to the transport. A nil error means the
	// transport accepted it, not that the invitation was processed.
	Enqueue(ctx context.Context, req domain.InvitationRequest) error

	Close() error
}

// Processor runs one invitation attempt. Satisfied by the service
// processor.
type Processor interface {
	Process(ctx context.Context, req domain.InvitationRequest) domain.InvitationOutcome
}
