// Package keylock provides named mutexes. Every distinct key gets its own
// mutex, created lazily on first use and kept for the lifetime of the
// KeyLock. Locks for different keys never contend.
package keylock

import "sync"

type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New() *KeyLock {
	return &KeyLock{locks: make(map[string]*sync.Mutex)}
}

func (kl *KeyLock) get(key string) *sync.Mutex {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	l, ok := kl.locks[key]
	if !ok {
		l = &sync.Mutex{}
		kl.locks[key] = l
	}

	return l
}

// Lock blocks until the lock for key is acquired. Not re-entrant.
func (kl *KeyLock) Lock(key string) {
	kl.get(key).Lock()
}

func (kl *KeyLock) Unlock(key string) {
	kl.get(key).Unlock()
}
