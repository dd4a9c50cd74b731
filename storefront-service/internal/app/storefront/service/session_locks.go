package service

import "sync"

// sessionLocks мьютексы по ключу сессии. Операции одной сессии выполняются
// строго последовательно, разные сессии не блокируют друг друга.
// Запись удаляется из карты, когда её больше никто не ждёт.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

// Lock захватывает мьютекс сессии и возвращает функцию освобождения
func (l *sessionLocks) Lock(session string) func() {
	l.mu.Lock()
	lock, ok := l.locks[session]
	if !ok {
		lock = &sessionLock{}
		l.locks[session] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, session)
		}
		l.mu.Unlock()
	}
}

func (l *sessionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
