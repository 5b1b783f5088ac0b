package bus

import (
	"context"

	"github.com/coursebridge/coursebridge-backend/internal/chathub"
)

// Bus forwards relay envelopes between processes so a room spread across
// several backend instances still behaves like one room.
type Bus interface {
	Publish(ctx context.Context, env chathub.Envelope) error
	StartForwarder(ctx context.Context, onEnvelope func(env chathub.Envelope)) error
	Close() error
}
