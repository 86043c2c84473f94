package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageEncodeDecodeRoundTrip(t *testing.T) {
	payload := []byte("hello world")
	m := newMessage(42, 41, 0b1011, payload)

	buf := m.encode()
	require.Len(t, buf, MsgLen)

	got, err := decodeMessage(buf)
	require.NoError(t, err)
	assert.Equal(t, m.Seq, got.Seq)
	assert.Equal(t, m.Ack, got.Ack)
	assert.Equal(t, m.AckBits, got.AckBits)
	assert.Equal(t, m.Payload, got.Payload)
}

func TestMessageDecodeTooShort(t *testing.T) {
	_, err := decodeMessage(make([]byte, MsgLen-1))
	assert.ErrorIs(t, err, ErrFromBytes)
}

func TestNewMessagePayloadPadding(t *testing.T) {
	m := newMessage(1, 0, 0, []byte{1, 2, 3})
	assert.Equal(t, byte(1), m.Payload[0])
	assert.Equal(t, byte(0), m.Payload[PayloadLen-1])
}
