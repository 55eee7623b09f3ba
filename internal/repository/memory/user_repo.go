package memory

import (
	"sync"

	"Lee_Meetup/internal/model"
)

// UserRepository 用户凭据存储，邮箱唯一
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*model.User
	byEmail map[string]*model.User
	order   []*model.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]*model.User),
	}
}

// Create 邮箱已存在时返回 ErrDuplicate，检查与插入在同一把锁内
func (r *UserRepository) Create(user *model.User) error {
	u := user.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return ErrDuplicate
	}
	if _, ok := r.byID[u.ID]; ok {
		return ErrDuplicate
	}
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u
	r.order = append(r.order, u)
	return nil
}

func (r *UserRepository) FindByID(id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u.Clone(), nil
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return u.Clone(), nil
}

func (r *UserRepository) List() []*model.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.User, 0, len(r.order))
	for _, u := range r.order {
		out = append(out, u.Clone())
	}
	return out
}

func (r *UserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
