package memory

import "Lee_Meetup/internal/model"

type EventRepository struct {
	store *aggregateStore[model.Event]
}

func NewEventRepository() *EventRepository {
	return &EventRepository{store: newAggregateStore((*model.Event).Clone)}
}

func (r *EventRepository) Create(e *model.Event) error {
	return r.store.insert(e.ID, e)
}

func (r *EventRepository) FindByID(id string) (*model.Event, error) {
	return r.store.get(id)
}

// Update 容量检查和追加报名必须放在同一个 fn 里完成
func (r *EventRepository) Update(id string, fn func(cur *model.Event) (*model.Event, error)) (*model.Event, error) {
	return r.store.update(id, fn)
}

// All 返回共享的只读值，调用方不得修改
func (r *EventRepository) All() []*model.Event {
	return r.store.all()
}

func (r *EventRepository) List() []*model.Event {
	return r.store.cloneAll()
}

func (r *EventRepository) Count() int {
	return r.store.count()
}
