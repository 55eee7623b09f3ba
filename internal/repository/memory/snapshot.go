package memory

import (
	"fmt"

	"Lee_Meetup/internal/model"
)

// Repositories 三个聚合仓储的集合，负责整体快照与恢复
type Repositories struct {
	Users       *UserRepository
	Communities *CommunityRepository
	Events      *EventRepository
}

func NewRepositories() *Repositories {
	return &Repositories{
		Users:       NewUserRepository(),
		Communities: NewCommunityRepository(),
		Events:      NewEventRepository(),
	}
}

// Snapshot 每个聚合各自一致；聚合之间不保证同一时刻
func (r *Repositories) Snapshot() *model.Snapshot {
	return &model.Snapshot{
		Users:       r.Users.List(),
		Communities: r.Communities.List(),
		Events:      r.Events.List(),
	}
}

// Restore 启动时载入上一次的快照，只能在空仓储上调用
func (r *Repositories) Restore(s *model.Snapshot) error {
	if s == nil {
		return nil
	}
	for _, u := range s.Users {
		if err := r.Users.Create(u); err != nil {
			return fmt.Errorf("restore user %s: %w", u.ID, err)
		}
	}
	for _, c := range s.Communities {
		c.Members = dedupe(c.Members)
		if err := r.Communities.Create(c); err != nil {
			return fmt.Errorf("restore community %s: %w", c.ID, err)
		}
	}
	for _, e := range s.Events {
		e.Attendees = dedupe(e.Attendees)
		if err := r.Events.Create(e); err != nil {
			return fmt.Errorf("restore event %s: %w", e.ID, err)
		}
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
