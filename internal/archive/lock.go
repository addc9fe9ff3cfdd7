package archive

import (
	"path/filepath"
	"sync"
)

// pathLocks serializes writers per destination file within one process
type pathLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (p *pathLocks) lock(path string) (unlock func()) {
	key := path
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}

	p.mu.Lock()
	if p.locks == nil {
		p.locks = make(map[string]*sync.Mutex)
	}
	l, ok := p.locks[key]
	if !ok {
		l = &sync.Mutex{}
		p.locks[key] = l
	}
	p.mu.Unlock()

	l.Lock()
	return l.Unlock
}
