package session

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 32

// keyedMutex provides per-key mutual exclusion via a fixed set of lock
// stripes. Two keys hashing to the same stripe share a lock, which is
// harmless for correctness and acceptable at this contention level.
type keyedMutex struct {
	stripes [lockStripes]sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	h := fnv.New32a()
	h.Write([]byte(key))
	m := &k.stripes[h.Sum32()%lockStripes]
	m.Lock()
	return m.Unlock
}
