package memory

import "Lee_Meetup/internal/model"

type CommunityRepository struct {
	store *aggregateStore[model.Community]
}

func NewCommunityRepository() *CommunityRepository {
	return &CommunityRepository{store: newAggregateStore((*model.Community).Clone)}
}

func (r *CommunityRepository) Create(c *model.Community) error {
	return r.store.insert(c.ID, c)
}

func (r *CommunityRepository) FindByID(id string) (*model.Community, error) {
	return r.store.get(id)
}

// Update 对单个社区做原子的读-改-写
func (r *CommunityRepository) Update(id string, fn func(cur *model.Community) (*model.Community, error)) (*model.Community, error) {
	return r.store.update(id, fn)
}

// All 返回共享的只读值，调用方不得修改
func (r *CommunityRepository) All() []*model.Community {
	return r.store.all()
}

func (r *CommunityRepository) List() []*model.Community {
	return r.store.cloneAll()
}

func (r *CommunityRepository) Count() int {
	return r.store.count()
}
