package llm

import (
	"fmt"
	"sync"
)

// KeyPool is an ordered set of provider API keys with a cursor pointing at
// the active key. The cursor only moves on Rotate, which callers invoke when
// the provider signals a rate limit. The pool is shared process-wide, so
// access is mutex-guarded.
type KeyPool struct {
	mu     sync.Mutex
	keys   []string
	cursor int
}

// NewKeyPool creates a pool from the given keys.
func NewKeyPool(keys []string) (*KeyPool, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("llm: key pool requires at least one key")
	}
	pool := &KeyPool{keys: make([]string, len(keys))}
	copy(pool.keys, keys)
	return pool, nil
}

// Current returns the active key.
func (p *KeyPool) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.keys[p.cursor]
}

// Rotate advances the cursor circularly and returns the new active key.
func (p *KeyPool) Rotate() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cursor = (p.cursor + 1) % len(p.keys)
	return p.keys[p.cursor]
}

// Size returns the number of keys in the pool.
func (p *KeyPool) Size() int {
	return len(p.keys)
}

// Cursor returns the current cursor position.
func (p *KeyPool) Cursor() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}
