// This file defines concurrency helpers used throughout the workspace:
// a reentrancy-checked mutex, grounded on bufbuild/buf's buflsp/mutex.go:
// a request that locks a mutex it already holds, or a second mutex from the
// same pool, panics instead of deadlocking.
package workspace

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

const poison = ^uint64(0)

var nextRequestID atomic.Uint64

// mutexPool tracks which request (if any) holds each mutex minted from the
// pool, so that two attempts to lock two different mutexes from the same
// pool under the same request are caught early instead of deadlocking.
//
// A zero mutexPool is ready to use.
type mutexPool struct {
	lock sync.Mutex
	held map[uint64]*mutex
}

// newMutex creates a new mutex in this pool.
func (mp *mutexPool) newMutex() mutex {
	return mutex{pool: mp}
}

func (mp *mutexPool) check(id uint64, mu *mutex, isUnlock bool) {
	if mp == nil {
		return
	}

	mp.lock.Lock()
	defer mp.lock.Unlock()

	if mp.held == nil {
		mp.held = make(map[uint64]*mutex)
	}

	if isUnlock {
		if held := mp.held[id]; held != mu {
			panic(fmt.Sprintf("workspace: attempted to unlock incorrect non-reentrant lock: %p -> %p", held, mu))
		}
		delete(mp.held, id)
		return
	}

	if held := mp.held[id]; held != nil {
		panic(fmt.Sprintf("workspace: attempted to acquire two non-reentrant locks at once: %p -> %p", mu, held))
	}
	mp.held[id] = mu
}

// mutex is a sync.Mutex augmented with reentrancy detection: Lock takes a
// context carrying a request ID (see withRequestID), and re-locking the
// same mutex with the same request ID panics instead of deadlocking
// silently.
type mutex struct {
	lock sync.Mutex
	who  atomic.Uint64
	pool *mutexPool
}

// Lock blocks until mu is acquired by the request in ctx, panicking if that
// request already holds it directly (non-reentrant double-lock). Returns
// an idempotent unlocker, safe to call multiple times or defer.
func (mu *mutex) Lock(ctx context.Context) (unlocker func()) {
	var unlocked bool
	unlocker = func() {
		if unlocked {
			return
		}
		mu.Unlock(ctx)
		unlocked = true
	}

	id := getRequestID(ctx)

	if mu.who.Load() == id && id > 0 {
		mu.who.Store(poison)
		panic("workspace: non-reentrant lock locked twice by the same request")
	}

	mu.pool.check(id, mu, false)

	mu.lock.Lock()
	mu.storeWho(id)

	return unlocker
}

// Unlock releases mu. It must be called with the same context that locked
// it.
func (mu *mutex) Unlock(ctx context.Context) {
	id := getRequestID(ctx)
	if mu.who.Load() != id {
		panic("workspace: lock was locked by one request and unlocked by another")
	}

	mu.storeWho(0)
	mu.pool.check(id, mu, true)
	mu.lock.Unlock()
}

func (mu *mutex) storeWho(id uint64) {
	for {
		old := mu.who.Load()
		if old == poison {
			panic("workspace: non-reentrant lock locked twice by the same request")
		}
		if mu.who.CompareAndSwap(old, id) {
			break
		}
	}
}

// withRequestID assigns a unique request ID to ctx, retrievable with
// getRequestID. withRequest calls this for a context that does not carry
// a request ID yet.
func withRequestID(ctx context.Context) context.Context {
	id := nextRequestID.Add(1)
	return context.WithValue(ctx, &nextRequestID, id)
}

func getRequestID(ctx context.Context) uint64 {
	if ctx == nil {
		return 0
	}
	id, ok := ctx.Value(&nextRequestID).(uint64)
	if !ok {
		return 0
	}
	return id + 1
}

// WithRequestID is the exported form of withRequestID, for tagging a
// context outside this package; nothing in this module calls it.
func WithRequestID(ctx context.Context) context.Context { return withRequestID(ctx) }
