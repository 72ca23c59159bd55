package pcp

// Lock runs f with exclusive access to *ptr and returns its result.
func Lock[B Locker, T, R any](b B, ptr *T, ceiling Level, f func(*T) R) (r R) {
	b.Lock(ceiling, func() {
		r = f(ptr)
	})
	return r
}

// Mutex is the proxy generated code hands to tasks for one shared resource. The ceiling is fixed
// when the proxy is created.
type Mutex[B Locker, T any] struct {
	backend B
	ptr     *T
	ceiling Level
}

func NewMutex[B Locker, T any](backend B, ptr *T, ceiling Level) Mutex[B, T] {
	return Mutex[B, T]{
		backend: backend,
		ptr:     ptr,
		ceiling: ceiling,
	}
}

func (m Mutex[B, T]) Lock(f func(*T)) {
	m.backend.Lock(m.ceiling, func() {
		f(m.ptr)
	})
}

func (m Mutex[B, T]) Ceiling() Level {
	return m.ceiling
}
