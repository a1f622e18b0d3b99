package lock

import "sync"

// Keyed provides a mutex per string key. Used to serialize session opens
// per conversation scope and completion checks per session. Mutexes are
// never evicted; the key space (channels, live sessions) is small.
type Keyed struct {
	locks sync.Map
}

// NewKeyed returns an empty keyed lock set.
func NewKeyed() *Keyed {
	return &Keyed{}
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *Keyed) Lock(key string) func() {
	v, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
