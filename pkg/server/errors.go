package server

import "errors"

var (
	ErrServerFull         = errors.New("server is full")
	ErrClientIDsExhausted = errors.New("client ids exhausted")
	ErrAlreadyRunning     = errors.New("server is already running")
	ErrMissingPacketConn  = errors.New("server config has no packet conn")
	ErrInvalidSpawnPoints = errors.New("server config needs at least one spawn point")
)
