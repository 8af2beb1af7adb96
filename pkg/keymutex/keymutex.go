// Package keymutex предоставляет набор мьютексов, индексированных ключом.
// Записи создаются по требованию и удаляются, когда ими никто не пользуется.
package keymutex

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

type KeyMutex[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*entry
}

func New[K comparable]() *KeyMutex[K] {
	return &KeyMutex[K]{locks: make(map[K]*entry)}
}

// Lock блокирует ключ и возвращает функцию разблокировки.
// Разные ключи друг друга не блокируют.
func (k *KeyMutex[K]) Lock(key K) (unlock func()) {
	k.mu.Lock()
	en, ok := k.locks[key]
	if !ok {
		en = &entry{}
		k.locks[key] = en
	}
	en.refs++
	k.mu.Unlock()

	en.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			en.mu.Unlock()

			k.mu.Lock()
			en.refs--
			if en.refs == 0 {
				delete(k.locks, key)
			}
			k.mu.Unlock()
		})
	}
}

// Len возвращает число ключей, которые сейчас заблокированы или ожидают блокировки
func (k *KeyMutex[K]) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
