package model

import (
	"slices"
	"time"
)

type Event struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Title        string    `gorm:"size:200;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	Date         string    `gorm:"size:32" json:"date"`
	Time         string    `gorm:"size:32" json:"time"`
	Location     string    `gorm:"size:128" json:"location"`
	Category     string    `gorm:"size:64;index" json:"category"`
	MaxAttendees *int      `json:"maxAttendees"` // nil 表示不限人数
	OrganizerID  string    `gorm:"size:36;not null;index" json:"organizerId"`
	Attendees    []string  `gorm:"-" json:"attendees"`
	CreatedAt    time.Time `json:"createdAt"`
}

// EventAttendee 报名关系行，Position 保留报名顺序
type EventAttendee struct {
	ID       uint64 `gorm:"primaryKey"`
	EventID  string `gorm:"size:36;not null;index;uniqueIndex:uk_event_user"`
	UserID   string `gorm:"size:36;not null;index;uniqueIndex:uk_event_user"`
	Position int    `gorm:"not null"`
}

func (e *Event) HasAttendee(userID string) bool {
	return slices.Contains(e.Attendees, userID)
}

// IsFull 未设置容量的活动永远不会满
func (e *Event) IsFull() bool {
	return e.MaxAttendees != nil && len(e.Attendees) >= *e.MaxAttendees
}

func (e *Event) WithAttendee(userID string) *Event {
	cp := e.Clone()
	cp.Attendees = append(cp.Attendees, userID)
	return cp
}

func (e *Event) WithoutAttendee(userID string) *Event {
	cp := e.Clone()
	cp.Attendees = slices.DeleteFunc(cp.Attendees, func(id string) bool { return id == userID })
	return cp
}

func (e *Event) Clone() *Event {
	cp := *e
	cp.Attendees = append(make([]string, 0, len(e.Attendees)+1), e.Attendees...)
	if e.MaxAttendees != nil {
		n := *e.MaxAttendees
		cp.MaxAttendees = &n
	}
	return &cp
}
