// Package transport implements a connectionless, reliability-layered UDP
// peer: sequence numbers, a 32-bit ack bitfield covering the last
// MaxUnackedPackets datagrams, RTT sampling, and an optional-timeout
// receive. It is deliberately unordered/undelivered-tolerant - callers
// needing strict delivery build that on top, per spec.
package transport

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stats is a point-in-time snapshot of a Peer's internal bookkeeping, used
// for diagnostics (e.g. the host's /plugins endpoint).
type Stats struct {
	Seq                   uint16
	RemoteSeq             uint16
	BytesSent             int
	SendQueueDepth        int
	RecvQueueDepth        int
	FinalAckedSequenceLen int
}

// Peer is a single UDP endpoint layering reliability bookkeeping over a
// socket. A Peer is not safe for concurrent Send and Recv calls from
// multiple goroutines simultaneously mutating the same direction; callers
// typically dedicate one goroutine to sending and one to receiving, guarded
// by the mutex below for the shared sequence/queue state.
type Peer struct {
	mu sync.Mutex

	conn *net.UDPConn
	dest *net.UDPAddr // nil until known (listener-style, pre-first-recv)

	seq       uint16
	remoteSeq uint16
	bytesSent int

	sendQueue packetQueue
	recvQueue packetQueue

	finalAckedSequences []uint16

	// rtt is optional: when nil, RTT sampling is a no-op (non-fatal, per
	// spec's histogram-record error kind being non-fatal).
	rtt prometheus.Histogram
}

// Option configures a Peer at construction time.
type Option func(*Peer)

// WithRTTHistogram wires a Prometheus histogram to receive RTT samples, in
// microseconds, as acks are processed. Construct h via promauto so it's
// registered with whatever registry the host uses.
func WithRTTHistogram(h prometheus.Histogram) Option {
	return func(p *Peer) { p.rtt = h }
}

// BindOnly creates a listening Peer with no known destination. Send fails
// with ErrNotConnected until the first successful Recv adopts the sender's
// address as the destination.
func BindOnly(addr string, opts ...Option) (*Peer, error) {
	return bind(addr, nil, opts)
}

// BindDest creates a Peer already addressed to a specific remote, able to
// Send immediately.
func BindDest(addr, dest string, opts ...Option) (*Peer, error) {
	destAddr, err := net.ResolveUDPAddr("udp", dest)
	if err != nil {
		return nil, errWrap(ErrConnect, err)
	}
	return bind(addr, destAddr, opts)
}

func bind(addr string, dest *net.UDPAddr, opts []Option) (*Peer, error) {
	localAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, errWrap(ErrBind, err)
	}
	conn, err := net.ListenUDP("udp", localAddr)
	if err != nil {
		return nil, errWrap(ErrBind, err)
	}
	p := &Peer{conn: conn, dest: dest}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Close releases the underlying socket.
func (p *Peer) Close() error {
	return p.conn.Close()
}

// Send stamps the current seq/remoteSeq/ack-bits, transmits one datagram,
// records the send, and advances seq. Fails with ErrNotConnected if no
// destination is known yet (BindOnly peer, no Recv yet), and with
// ErrPayloadTooLarge if len(payload) > PayloadLen.
func (p *Peer) Send(payload []byte) (uint16, error) {
	if len(payload) > PayloadLen {
		return 0, ErrPayloadTooLarge
	}

	p.mu.Lock()
	dest := p.dest
	if dest == nil {
		p.mu.Unlock()
		return 0, ErrNotConnected
	}
	msg := newMessage(p.seq, p.remoteSeq, p.recvdAckBitsLocked(p.remoteSeq), payload)
	p.pushSendQueueLocked(msg.Seq)
	sentSeq := msg.Seq
	p.seq = nextSeq(p.seq)
	p.mu.Unlock()

	n, err := p.conn.WriteToUDP(msg.encode(), dest)
	if err != nil {
		return 0, errWrap(ErrSend, err)
	}

	p.mu.Lock()
	p.bytesSent += n
	p.mu.Unlock()

	return sentSeq, nil
}

// Recv blocks until the next datagram arrives. Its only bound is ctx's
// deadline, if ctx has one; cancelling ctx does not interrupt a read in
// progress.
func (p *Peer) Recv(ctx context.Context) (Message, error) {
	return p.recv(ctx, 0)
}

// RecvWithTimeout is Recv bounded by d (ctx is not consulted when d > 0).
// On timeout it fails with ErrTimeout, which is expected flow control, not a
// hard failure. d == 0 sets no read deadline of its own: the call then
// behaves exactly like Recv and does not poll without blocking.
func (p *Peer) RecvWithTimeout(ctx context.Context, d time.Duration) (Message, error) {
	return p.recv(ctx, d)
}

func (p *Peer) recv(ctx context.Context, d time.Duration) (Message, error) {
	switch {
	case d > 0:
		_ = p.conn.SetReadDeadline(time.Now().Add(d))
	default:
		if dl, ok := ctx.Deadline(); ok {
			_ = p.conn.SetReadDeadline(dl)
		} else {
			_ = p.conn.SetReadDeadline(time.Time{})
		}
	}

	buf := make([]byte, MsgLen)
	n, remote, err := p.conn.ReadFromUDP(buf)
	if err != nil {
		if isTimeout(err) {
			return Message{}, ErrTimeout
		}
		return Message{}, errWrap(ErrReceive, err)
	}

	msg, err := decodeMessage(buf[:n])
	if err != nil {
		return Message{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dest == nil {
		// First recv on a listener-style peer adopts the sender as dest.
		p.dest = remote
	}

	p.pushRecvQueueLocked(msg.Seq)

	if isNewer(p.remoteSeq, msg.Seq) {
		p.remoteSeq = msg.Seq
	}

	p.handleMessageAcksLocked(msg)

	return msg, nil
}

// recvdAckBitsLocked computes the outbound ack bitfield: bit n set iff
// recvQueue holds remote-n. Must be called with p.mu held.
func (p *Peer) recvdAckBitsLocked(remote uint16) uint32 {
	var bits uint32
	for n := uint16(0); n < MaxUnackedPackets; n++ {
		if remote < n {
			continue
		}
		if p.recvQueue.contains(remote - n) {
			bits |= 1 << n
		}
	}
	return bits
}

// handleMessageAcksLocked consumes an inbound ack bitfield positionally
// against sendQueue, marking entries acked, recording RTT, and appending to
// finalAckedSequences. Must be called with p.mu held.
func (p *Peer) handleMessageAcksLocked(msg Message) {
	now := time.Now()
	for i := 0; i < MaxUnackedPackets; i++ {
		if msg.AckBits&(1<<uint(i)) == 0 {
			continue
		}
		rec, ok := p.sendQueue.at(i)
		if !ok || rec.acked {
			continue
		}
		rec.acked = true
		p.finalAckedSequences = append(p.finalAckedSequences, rec.seq)
		if p.rtt != nil {
			p.rtt.Observe(float64(now.Sub(rec.stamp).Microseconds()))
		}
	}
}

func (p *Peer) pushSendQueueLocked(seq uint16) {
	p.sendQueue.push(packetRecord{seq: seq, stamp: time.Now()})
}

func (p *Peer) pushRecvQueueLocked(seq uint16) {
	p.recvQueue.push(packetRecord{seq: seq, stamp: time.Now(), acked: true})
}

// FinalAckedSequences returns a copy of the sequences this peer has sent
// that are now known, via ack bitfield, to have been received.
func (p *Peer) FinalAckedSequences() []uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]uint16, len(p.finalAckedSequences))
	copy(out, p.finalAckedSequences)
	return out
}

// Stats returns a snapshot of the peer's bookkeeping for diagnostics.
func (p *Peer) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Seq:                   p.seq,
		RemoteSeq:             p.remoteSeq,
		BytesSent:             p.bytesSent,
		SendQueueDepth:        p.sendQueue.len(),
		RecvQueueDepth:        p.recvQueue.len(),
		FinalAckedSequenceLen: len(p.finalAckedSequences),
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return asNetError(err, &ne) && ne.Timeout()
}
