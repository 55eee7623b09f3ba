package model

import (
	"slices"
	"time"
)

type Community struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:64;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"size:64;index" json:"category"`
	Location    string    `gorm:"size:128" json:"location"`
	OrganizerID string    `gorm:"size:36;not null;index" json:"organizerId"`
	Members     []string  `gorm:"-" json:"members"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CommunityMember 成员关系行，Position 保留加入顺序
type CommunityMember struct {
	ID          uint64 `gorm:"primaryKey"`
	CommunityID string `gorm:"size:36;not null;index;uniqueIndex:uk_community_user"`
	UserID      string `gorm:"size:36;not null;index;uniqueIndex:uk_community_user"`
	Position    int    `gorm:"not null"`
}

func (c *Community) HasMember(userID string) bool {
	return slices.Contains(c.Members, userID)
}

// WithMember 返回追加成员后的副本，原值不变
func (c *Community) WithMember(userID string) *Community {
	cp := c.Clone()
	cp.Members = append(cp.Members, userID)
	return cp
}

// WithoutMember 返回移除成员后的副本，原值不变
func (c *Community) WithoutMember(userID string) *Community {
	cp := c.Clone()
	cp.Members = slices.DeleteFunc(cp.Members, func(id string) bool { return id == userID })
	return cp
}

func (c *Community) Clone() *Community {
	cp := *c
	cp.Members = append(make([]string, 0, len(c.Members)+1), c.Members...)
	return &cp
}
