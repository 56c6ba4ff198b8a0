package utils

import (
	"bytes"
	"sync"
)

// MaxBufferSize caps buffers returned to the pool.
const MaxBufferSize = 256 * 1024

// Pool is a typed sync.Pool. reset prepares a value for reuse and reports
// whether it should be kept at all.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T) bool
}

func NewPool[T any](newFn func() T, reset func(T) bool) *Pool[T] {
	return &Pool[T]{
		pool:  sync.Pool{New: func() any { return newFn() }},
		reset: reset,
	}
}

func (p *Pool[T]) Get() T { return p.pool.Get().(T) }

func (p *Pool[T]) Put(v T) {
	if p.reset != nil && !p.reset(v) {
		return
	}
	p.pool.Put(v)
}

// NewBufferPool pools render buffers, dropping any grown past limit.
func NewBufferPool(limit int) *Pool[*bytes.Buffer] {
	return NewPool(
		func() *bytes.Buffer { return new(bytes.Buffer) },
		func(b *bytes.Buffer) bool {
			if b.Cap() > limit {
				return false
			}
			b.Reset()
			return true
		},
	)
}

// SharedBufferPool serves page rendering.
var SharedBufferPool = NewBufferPool(MaxBufferSize)
