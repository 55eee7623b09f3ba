package memory

import (
	"errors"
	"sync"
	"sync/atomic"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// entry 单个聚合：mu 串行化写操作，cur 持有不可变的当前值
type entry[T any] struct {
	mu  sync.Mutex
	cur atomic.Pointer[T]
}

// aggregateStore 每个聚合一把锁；读路径只做原子读取，不会看到写了一半的值
type aggregateStore[T any] struct {
	mu      sync.RWMutex // 只保护索引结构
	entries map[string]*entry[T]
	order   []*entry[T]
	clone   func(*T) *T
}

func newAggregateStore[T any](clone func(*T) *T) *aggregateStore[T] {
	return &aggregateStore[T]{
		entries: make(map[string]*entry[T]),
		clone:   clone,
	}
}

func (s *aggregateStore[T]) insert(id string, v *T) error {
	e := &entry[T]{}
	e.cur.Store(s.clone(v))

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; ok {
		return ErrDuplicate
	}
	s.entries[id] = e
	s.order = append(s.order, e)
	return nil
}

func (s *aggregateStore[T]) lookup(id string) *entry[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[id]
}

func (s *aggregateStore[T]) get(id string) (*T, error) {
	e := s.lookup(id)
	if e == nil {
		return nil, ErrNotFound
	}
	return s.clone(e.cur.Load()), nil
}

// update 在聚合锁内执行 fn；fn 拿到当前值，必须返回新值而不是原地修改
func (s *aggregateStore[T]) update(id string, fn func(cur *T) (*T, error)) (*T, error) {
	e := s.lookup(id)
	if e == nil {
		return nil, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := fn(e.cur.Load())
	if err != nil {
		return nil, err
	}
	e.cur.Store(next)
	return s.clone(next), nil
}

// all 按插入顺序返回当前值，返回的是共享的不可变值
func (s *aggregateStore[T]) all() []*T {
	s.mu.RLock()
	entries := append([]*entry[T](nil), s.order...)
	s.mu.RUnlock()

	out := make([]*T, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.cur.Load())
	}
	return out
}

func (s *aggregateStore[T]) cloneAll() []*T {
	list := s.all()
	for i, v := range list {
		list[i] = s.clone(v)
	}
	return list
}

func (s *aggregateStore[T]) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
