package model

import "errors"

var ErrNoPrimaryLoop = errors.New("store loop is not running")

// EffectScopeConfig sizes the queues behind a store loop or a notification dispatcher.
type EffectScopeConfig struct {
	BufferSize int // default: 1
	NumWorkers int // default: 1
}

func NewEffectScopeConfig(bufferSize int, numWorkers int) EffectScopeConfig {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return EffectScopeConfig{
		BufferSize: bufferSize,
		NumWorkers: numWorkers,
	}
}

// Partitionable routes a message to a worker. Messages with equal keys keep their order.
type Partitionable interface {
	PartitionKey() string
}
