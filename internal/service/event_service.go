package service

import (
	"context"
	"iter"
	"strings"
	"time"

	"github.com/google/uuid"

	"Lee_Meetup/internal/model"
	"Lee_Meetup/internal/pkg"
	"Lee_Meetup/internal/repository/memory"
)

const (
	msgEventMissing  = "Event not found"
	msgAlreadyRSVPed = "Already RSVP'd to this event"
	msgNotRSVPed     = "You have not RSVP'd to this event"
	msgEventFull     = "Event is full"
)

type EventFields struct {
	Title        string
	Description  string
	Date         string
	Time         string
	Location     string
	Category     string
	MaxAttendees Capacity
}

// EventFilter 空字段表示不过滤
type EventFilter struct {
	Category string
	Search   string
}

// EventService 活动报名账本，负责人数上限
type EventService struct {
	repo  *memory.EventRepository
	hooks CommitHook
	now   func() time.Time
}

func NewEventService(repo *memory.EventRepository, hooks CommitHook) *EventService {
	if hooks == nil {
		hooks = Hooks{}
	}
	return &EventService{repo: repo, hooks: hooks, now: time.Now}
}

func (s *EventService) Create(ctx context.Context, userID string, f EventFields) (e *model.Event, err error) {
	defer func() { observe("registration", "create", err) }()

	if userID == "" {
		return nil, pkg.Auth(msgAuthRequired)
	}
	if blank(f.Title) || blank(f.Description) || blank(f.Date) || blank(f.Time) || blank(f.Location) || blank(f.Category) {
		return nil, pkg.Validation(msgRequiredFields)
	}
	capacity, err := f.MaxAttendees.Value()
	if err != nil {
		return nil, err
	}

	e = &model.Event{
		ID:           uuid.NewString(),
		Title:        f.Title,
		Description:  f.Description,
		Date:         f.Date,
		Time:         f.Time,
		Location:     f.Location,
		Category:     f.Category,
		MaxAttendees: capacity,
		OrganizerID:  userID,
		Attendees:    []string{},
		CreatedAt:    s.now().UTC(),
	}
	if err = s.repo.Create(e); err != nil {
		return nil, err
	}
	return e.Clone(), s.commit(ctx, EventCreated, e.ID, userID)
}

// Register 重复检查、容量检查和追加在同一把聚合锁内完成
func (s *EventService) Register(ctx context.Context, userID, eventID string) (e *model.Event, err error) {
	defer func() { observe("registration", "register", err) }()

	if userID == "" {
		return nil, pkg.Auth(msgAuthRequired)
	}
	e, err = s.repo.Update(eventID, func(cur *model.Event) (*model.Event, error) {
		if cur.HasAttendee(userID) {
			return nil, pkg.Conflict(msgAlreadyRSVPed)
		}
		if cur.IsFull() {
			return nil, pkg.Capacity(msgEventFull)
		}
		return cur.WithAttendee(userID), nil
	})
	if err != nil {
		return nil, notFoundAs(err, msgEventMissing)
	}
	return e, s.commit(ctx, EventRSVPed, eventID, userID)
}

func (s *EventService) Cancel(ctx context.Context, userID, eventID string) (e *model.Event, err error) {
	defer func() { observe("registration", "cancel", err) }()

	if userID == "" {
		return nil, pkg.Auth(msgAuthRequired)
	}
	e, err = s.repo.Update(eventID, func(cur *model.Event) (*model.Event, error) {
		if !cur.HasAttendee(userID) {
			return nil, pkg.Conflict(msgNotRSVPed)
		}
		return cur.WithoutAttendee(userID), nil
	})
	if err != nil {
		return nil, notFoundAs(err, msgEventMissing)
	}
	return e, s.commit(ctx, EventRSVPCancelled, eventID, userID)
}

func (s *EventService) Get(id string) (*model.Event, error) {
	e, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFoundAs(err, msgEventMissing)
	}
	return e, nil
}

// List 惰性过滤，迭代时才读取当前状态，产出的都是副本
func (s *EventService) List(f EventFilter) iter.Seq[*model.Event] {
	term := strings.ToLower(f.Search)
	return func(yield func(*model.Event) bool) {
		for _, e := range s.repo.All() {
			if f.Category != "" && e.Category != f.Category {
				continue
			}
			if term != "" &&
				!strings.Contains(strings.ToLower(e.Title), term) &&
				!strings.Contains(strings.ToLower(e.Description), term) {
				continue
			}
			if !yield(e.Clone()) {
				return
			}
		}
	}
}

func (s *EventService) commit(ctx context.Context, typ ChangeType, id, userID string) error {
	if err := s.hooks.AfterCommit(ctx, Change{Type: typ, AggregateID: id, UserID: userID, At: s.now().UTC()}); err != nil {
		return pkg.Persistence(err)
	}
	return nil
}
