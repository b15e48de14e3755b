package cache

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// A keyed cache driven by a shared clock of ticks.
//
// Every client calling wait() blocks until all clients have called wait() for the
// current tick, which makes the interleaving of GetOrCreate calls deterministic.
type tickedCacheServer[T any] struct {
	entries     map[string]hitResult[T]
	entriesLock sync.Mutex

	tick          atomic.Int64
	maxTicks      int64
	clientCount   int64
	waitingInTick atomic.Int64
}

type tickedCacheClient[T any] struct {
	server      *tickedCacheServer[T]
	desiredTick int64
}

var _ Cache[string] = (*tickedCacheClient[string])(nil)

func (client *tickedCacheClient[T]) getOrClaim(key string) hitResult[T] {
	client.server.entriesLock.Lock()
	defer client.server.entriesLock.Unlock()

	if entry, ok := client.server.entries[key]; ok {
		return hitResult[T]{
			data:    entry.data,
			valid:   entry.valid,
			claimed: false,
		}
	}

	client.server.entries[key] = hitResult[T]{valid: false}
	return hitResult[T]{
		valid:   false,
		claimed: true,
	}
}

func (client *tickedCacheClient[T]) set(key string, data T) {
	client.server.entriesLock.Lock()
	defer client.server.entriesLock.Unlock()

	client.server.entries[key] = hitResult[T]{data: data, valid: true}
}

func (client *tickedCacheClient[T]) delete(key string) {
	client.server.entriesLock.Lock()
	defer client.server.entriesLock.Unlock()

	delete(client.server.entries, key)
}

func (client *tickedCacheClient[T]) wait() {
	if client.server.isDone() {
		panic("wait() called after the last tick")
	}

	client.desiredTick++
	client.server.waitingInTick.Add(1)

	for client.server.tick.Load() < client.desiredTick {
		runtime.Gosched()
	}
}

func (client *tickedCacheClient[T]) waitUntilDone() {
	for !client.server.isDone() {
		client.wait()
	}
}

func (client *tickedCacheClient[T]) currentTick() int64 {
	return client.server.tick.Load()
}

func (server *tickedCacheServer[T]) isDone() bool {
	return server.tick.Load() >= server.maxTicks
}

// Advance the clock each time every client is waiting, until maxTicks is reached
func (server *tickedCacheServer[T]) processTicks() {
	for !server.isDone() {
		if server.waitingInTick.Load() != server.clientCount {
			runtime.Gosched()
			continue
		}

		// Reset before advancing, clients only wait again once the tick has moved
		server.waitingInTick.Store(0)
		server.tick.Add(1)
	}
}

func newTickedCache[T any](clientCount int, maxTicks int) (*tickedCacheServer[T], []*tickedCacheClient[T]) {
	server := &tickedCacheServer[T]{
		entries:     make(map[string]hitResult[T]),
		maxTicks:    int64(maxTicks),
		clientCount: int64(clientCount),
	}

	clients := make([]*tickedCacheClient[T], clientCount)
	for i := range clientCount {
		clients[i] = &tickedCacheClient[T]{server: server}
	}

	return server, clients
}
