package transport

import (
	"errors"
	"fmt"
	"net"
)

// Error kinds surfaced by Peer. None are retried internally - the caller
// decides whether/how to recover, per spec.
var (
	ErrBind            = errors.New("transport: bind failed")
	ErrSend            = errors.New("transport: send failed")
	ErrReceive         = errors.New("transport: receive failed")
	ErrConnect         = errors.New("transport: connect failed")
	ErrTimeout         = errors.New("transport: receive timed out")
	ErrPayloadTooLarge = errors.New("transport: payload exceeds PayloadLen")
	ErrNotConnected    = errors.New("transport: peer has no known destination yet")
	ErrHistogramRecord = errors.New("transport: failed to record RTT sample")
	ErrFromBytes       = errors.New("transport: malformed datagram")
)

// errWrap joins a sentinel kind with the underlying cause so callers can
// errors.Is against the kind while still seeing the original error via
// errors.Unwrap/%w formatting.
func errWrap(kind, cause error) error {
	return fmt.Errorf("%w: %v", kind, cause)
}

// asNetError is errors.As specialized for net.Error, kept as a named helper
// so callers at call sites read as intent rather than boilerplate.
func asNetError(err error, target *net.Error) bool {
	return errors.As(err, target)
}
