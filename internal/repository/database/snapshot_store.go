package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"Lee_Meetup/internal/model"
)

// 行结构带上 Seq，保证读回来的顺序与写入时一致
type userRow struct {
	model.User
	Seq int `gorm:"not null;index"`
}

func (userRow) TableName() string { return "users" }

type communityRow struct {
	model.Community
	Seq int `gorm:"not null;index"`
}

func (communityRow) TableName() string { return "communities" }

type eventRow struct {
	model.Event
	Seq int `gorm:"not null;index"`
}

func (eventRow) TableName() string { return "events" }

const batchSize = 200

type SnapshotStore struct {
	DB *gorm.DB
}

// NewSnapshotStore 自动建表（无版本迁移）
func NewSnapshotStore(db *gorm.DB) (*SnapshotStore, error) {
	if err := db.AutoMigrate(
		&userRow{},
		&communityRow{},
		&model.CommunityMember{},
		&eventRow{},
		&model.EventAttendee{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &SnapshotStore{DB: db}, nil
}

// Save 在一个事务里清空并重写全部表
func (s *SnapshotStore) Save(ctx context.Context, snap *model.Snapshot) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, table := range []any{&model.CommunityMember{}, &model.EventAttendee{}, &communityRow{}, &eventRow{}, &userRow{}} {
			if err := all.Delete(table).Error; err != nil {
				return err
			}
		}

		users := make([]userRow, 0, len(snap.Users))
		for i, u := range snap.Users {
			users = append(users, userRow{User: *u, Seq: i})
		}
		communities := make([]communityRow, 0, len(snap.Communities))
		var members []model.CommunityMember
		for i, c := range snap.Communities {
			communities = append(communities, communityRow{Community: *c, Seq: i})
			for pos, uid := range c.Members {
				members = append(members, model.CommunityMember{CommunityID: c.ID, UserID: uid, Position: pos})
			}
		}
		events := make([]eventRow, 0, len(snap.Events))
		var attendees []model.EventAttendee
		for i, e := range snap.Events {
			events = append(events, eventRow{Event: *e, Seq: i})
			for pos, uid := range e.Attendees {
				attendees = append(attendees, model.EventAttendee{EventID: e.ID, UserID: uid, Position: pos})
			}
		}

		if err := createAll(tx, users); err != nil {
			return err
		}
		if err := createAll(tx, communities); err != nil {
			return err
		}
		if err := createAll(tx, members); err != nil {
			return err
		}
		if err := createAll(tx, events); err != nil {
			return err
		}
		return createAll(tx, attendees)
	})
}

func createAll[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(&rows, batchSize).Error
}

func (s *SnapshotStore) Load(ctx context.Context) (*model.Snapshot, error) {
	db := s.DB.WithContext(ctx)
	snap := &model.Snapshot{}

	var users []userRow
	if err := db.Order("seq ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	for i := range users {
		u := users[i].User
		snap.Users = append(snap.Users, &u)
	}

	var communities []communityRow
	if err := db.Order("seq ASC").Find(&communities).Error; err != nil {
		return nil, fmt.Errorf("load communities: %w", err)
	}
	var members []model.CommunityMember
	if err := db.Order("community_id ASC, position ASC").Find(&members).Error; err != nil {
		return nil, fmt.Errorf("load community members: %w", err)
	}
	byCommunity := make(map[string][]string)
	for _, m := range members {
		byCommunity[m.CommunityID] = append(byCommunity[m.CommunityID], m.UserID)
	}
	for i := range communities {
		c := communities[i].Community
		c.Members = append([]string{}, byCommunity[c.ID]...)
		snap.Communities = append(snap.Communities, &c)
	}

	var events []eventRow
	if err := db.Order("seq ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	var attendees []model.EventAttendee
	if err := db.Order("event_id ASC, position ASC").Find(&attendees).Error; err != nil {
		return nil, fmt.Errorf("load event attendees: %w", err)
	}
	byEvent := make(map[string][]string)
	for _, a := range attendees {
		byEvent[a.EventID] = append(byEvent[a.EventID], a.UserID)
	}
	for i := range events {
		e := events[i].Event
		e.Attendees = append([]string{}, byEvent[e.ID]...)
		snap.Events = append(snap.Events, &e)
	}
	return snap, nil
}
