package transport

import "encoding/binary"

// PayloadLen is the compile-time-fixed payload slot size of Message. It
// matches the reference implementation's bring-up value; production
// deployments needing larger snapshots should vendor a copy of this package
// with a bigger constant, since the wire format has no length prefix.
const PayloadLen = 16

// headerLen is the fixed 8-byte header: seq(2) + ack(2) + ack_bits(4). The
// PayloadLen-byte payload slot follows it.
const headerLen = 2 + 2 + 4

// MsgLen is the total fixed size of an encoded Message on the wire.
const MsgLen = headerLen + PayloadLen

// Message is the fixed-layout record exchanged between peers. Byte order on
// the wire is native (both peers are assumed to share endianness); this
// package standardizes on little-endian for the encode/decode helpers below,
// matching the reference's x86/ARM deployment targets.
type Message struct {
	Seq     uint16
	Ack     uint16
	AckBits uint32
	Payload [PayloadLen]byte
}

// newMessage builds a Message, zero-padding payload into the fixed slot.
// Callers are expected to have already validated len(payload) <= PayloadLen.
func newMessage(seq, ack uint16, ackBits uint32, payload []byte) Message {
	var m Message
	m.Seq = seq
	m.Ack = ack
	m.AckBits = ackBits
	copy(m.Payload[:], payload)
	return m
}

// encode serializes m into the fixed MsgLen-byte wire format.
func (m Message) encode() []byte {
	buf := make([]byte, MsgLen)
	binary.LittleEndian.PutUint16(buf[0:2], m.Seq)
	binary.LittleEndian.PutUint16(buf[2:4], m.Ack)
	binary.LittleEndian.PutUint32(buf[4:8], m.AckBits)
	copy(buf[8:8+PayloadLen], m.Payload[:])
	return buf
}

// decodeMessage parses a datagram's bytes into a Message, failing with
// ErrFromBytes if too few bytes were received to fill the fixed layout.
func decodeMessage(buf []byte) (Message, error) {
	if len(buf) < MsgLen {
		return Message{}, ErrFromBytes
	}
	var m Message
	m.Seq = binary.LittleEndian.Uint16(buf[0:2])
	m.Ack = binary.LittleEndian.Uint16(buf[2:4])
	m.AckBits = binary.LittleEndian.Uint32(buf[4:8])
	copy(m.Payload[:], buf[8:8+PayloadLen])
	return m, nil
}
