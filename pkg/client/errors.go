package client

import "errors"

var (
	ErrMissingDialer  = errors.New("client config has no dialer")
	ErrMissingInput   = errors.New("client config has no input")
	ErrAlreadyRunning = errors.New("client is already running")
)
