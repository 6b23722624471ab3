package realtime

import (
	"context"
	"errors"
)

// ErrGone is returned by a Gateway when the target channel is confirmed
// dead: the connection id is unknown or the peer has closed. It is the
// signal that drives pruning. Gateway implementations must map their
// provider-specific stale-channel signal onto this sentinel so the
// publisher's prune-or-retain decision stays a pure errors.Is check.
// Timeouts and transport errors are deliberately NOT ErrGone; they do not
// prove the peer is dead.
var ErrGone = errors.New("realtime: connection gone")

// Gateway is the deliver-to-connection primitive. Deliver pushes an already
// serialized event to a single open channel and reports one of three
// outcomes: nil (delivered), ErrGone (channel confirmed dead), or any other
// error (transient failure, target may still be alive).
type Gateway interface {
	Deliver(ctx context.Context, connectionID string, data []byte) error
}
