package protocol

import "errors"

var (
	ErrShortBuffer        = errors.New("buffer too short")
	ErrUnknownMessageType = errors.New("unknown message type")
)
