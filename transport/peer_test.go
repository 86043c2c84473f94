package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBindOnly(t *testing.T) *Peer {
	t.Helper()
	p, err := BindOnly("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestPeer_BindOnlySendFailsBeforeFirstRecv(t *testing.T) {
	p := mustBindOnly(t)
	_, err := p.Send([]byte("hi"))
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestPeer_SendRecvRoundTrip(t *testing.T) {
	a := mustBindOnly(t)
	b, err := BindDest("127.0.0.1:0", a.conn.LocalAddr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	_, err = b.Send([]byte("ping"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msg, err := a.RecvWithTimeout(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(trimZero(msg.Payload[:])))

	// a now knows b's address and can reply.
	_, err = a.Send([]byte("pong"))
	require.NoError(t, err)

	msg, err = b.RecvWithTimeout(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(trimZero(msg.Payload[:])))
}

func TestPeer_SendPayloadTooLarge(t *testing.T) {
	p := mustBindOnly(t)
	_, err := p.Send(make([]byte, PayloadLen+1))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestPeer_RecvTimeout(t *testing.T) {
	p := mustBindOnly(t)
	ctx := context.Background()
	_, err := p.RecvWithTimeout(ctx, 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestPeer_AckBitfieldMarksFinalAcked(t *testing.T) {
	a := mustBindOnly(t)
	b, err := BindDest("127.0.0.1:0", a.conn.LocalAddr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	seq, err := b.Send([]byte("one"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = a.RecvWithTimeout(ctx, time.Second)
	require.NoError(t, err)

	// a replies, carrying an ack bitfield that covers b's seq.
	_, err = a.Send([]byte("ack-carrier"))
	require.NoError(t, err)

	_, err = b.RecvWithTimeout(ctx, time.Second)
	require.NoError(t, err)

	acked := b.FinalAckedSequences()
	require.Len(t, acked, 1)
	assert.Equal(t, seq, acked[0])
}

func trimZero(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] != 0 {
		i++
	}
	return b[:i]
}
