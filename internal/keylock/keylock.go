// Package keylock serializes work per string key inside one process. The
// tick and the action handlers take the tournament id so that no two
// goroutines mutate the same hand at once.
package keylock

import (
	"context"
	"sync"
)

type keyMutex struct {
	ch       chan struct{}
	refCount int
}

// KeyLock is a set of mutexes created on demand and dropped once nobody
// holds or waits for them.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*keyMutex
}

func New() *KeyLock {
	return &KeyLock{locks: make(map[string]*keyMutex)}
}

func (kl *KeyLock) ref(key string) *keyMutex {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	m, ok := kl.locks[key]
	if !ok {
		m = &keyMutex{ch: make(chan struct{}, 1)}
		kl.locks[key] = m
	}
	m.refCount++
	return m
}

func (kl *KeyLock) unref(key string, m *keyMutex) {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	m.refCount--
	if m.refCount == 0 {
		delete(kl.locks, key)
	}
}

// Lock blocks until key is free or ctx is done.
func (kl *KeyLock) Lock(ctx context.Context, key string) error {
	m := kl.ref(key)
	select {
	case m.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		kl.unref(key, m)
		return ctx.Err()
	}
}

func (kl *KeyLock) Unlock(key string) {
	kl.mu.Lock()
	m, ok := kl.locks[key]
	kl.mu.Unlock()
	if !ok {
		return
	}
	<-m.ch
	kl.unref(key, m)
}

// WithLock runs fn while holding key.
func (kl *KeyLock) WithLock(ctx context.Context, key string, fn func() error) error {
	if err := kl.Lock(ctx, key); err != nil {
		return err
	}
	defer kl.Unlock(key)
	return fn()
}

// Len is the number of keys currently tracked.
func (kl *KeyLock) Len() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.locks)
}
