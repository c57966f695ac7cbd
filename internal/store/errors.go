package store

import "errors"

var (
	ErrNotFound      = errors.New("entity not found")
	ErrNoActiveCycle = errors.New("no active cycle")
)
