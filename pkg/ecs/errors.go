package ecs

import "errors"

var (
	ErrEntityPoolFull = errors.New("entity pool is full")
)
