package model

import "time"

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"size:64;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:128;not null" json:"email"`
	PasswordHash string    `gorm:"column:password;size:255;not null" json:"-"`
	Phone        string    `gorm:"size:32" json:"phone"`
	Area         string    `gorm:"size:64" json:"area"`
	Bio          string    `gorm:"type:text" json:"bio"`
	Interests    []string  `gorm:"serializer:json" json:"interests"`
	Hobbies      []string  `gorm:"serializer:json" json:"hobbies"`
	Location     *string   `gorm:"size:128" json:"location"`
	Age          *int      `json:"age"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewUser 创建一个资料为空的用户
func NewUser(id, name, email, hash string, now time.Time) *User {
	return &User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Interests:    []string{},
		Hobbies:      []string{},
		CreatedAt:    now,
	}
}

func (u *User) Clone() *User {
	cp := *u
	cp.Interests = append([]string{}, u.Interests...)
	cp.Hobbies = append([]string{}, u.Hobbies...)
	return &cp
}
