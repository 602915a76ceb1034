package protocol

import (
	"bytes"
	"fmt"
)

// Encode serializes msg behind its type tag. The returned slice is owned by
// the caller.
func Encode(msg Message) []byte {
	w := writerPool.Get().(*Writer)
	defer writerPool.Put(w)

	w.Reset()
	EncodeTo(w, msg)

	return bytes.Clone(w.Bytes())
}

// EncodeTo appends the tagged encoding of msg to w.
func EncodeTo(w *Writer, msg Message) {
	w.WriteUint8(uint8(msg.Type()))
	msg.encode(w)
}

// Decode parses one datagram. Count fields above their maximum are clamped
// before any element is read; bytes after the message body are ignored.
func Decode(data []byte) (Message, error) {
	r := NewReader(data)

	tag := MessageType(r.ReadUint8())
	if err := r.Err(); err != nil {
		return nil, err
	}

	msg := newMessage(tag)
	if msg == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMessageType, uint8(tag))
	}

	msg.decode(r)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", tag, err)
	}
	return msg, nil
}

func newMessage(t MessageType) Message {
	switch t {
	case MsgConnectRequest:
		return &ConnectRequest{}
	case MsgConnectAccept:
		return &ConnectAcceptData{}
	case MsgConnectReject:
		return &ConnectReject{}
	case MsgDisconnect:
		return &Disconnect{}
	case MsgUpdateState:
		return &UpdateStateMessage{}
	case MsgGameState:
		return &GameStateMessage{}
	case MsgHeartbeat:
		return &Heartbeat{}
	}
	return nil
}
