package vault

import "sync"

// pathLocks hands out one mutex per target path so the
// existence-check-through-rename sequence never interleaves for the same
// file. Entries are never freed; the map is bounded by the number of
// distinct slugs written during the process lifetime.
type pathLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newPathLocks() *pathLocks {
	return &pathLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire returns the mutex for a path, creating it on first use.
// The caller is responsible for Lock/Unlock.
func (p *pathLocks) acquire(path string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, ok := p.locks[path]
	if !ok {
		l = &sync.Mutex{}
		p.locks[path] = l
	}
	return l
}
