package model

import "encoding/json"

// Snapshot 所有集合的完整快照，持久化层整体读写
type Snapshot struct {
	Users       []*User      `json:"users"`
	Communities []*Community `json:"communities"`
	Events      []*Event     `json:"events"`
}

// storedUser 落盘时需要保留密码哈希，对外的 User JSON 不带哈希
type storedUser struct {
	*User
	PasswordHash string `json:"passwordHash"`
}

type snapshotJSON struct {
	Users       []storedUser `json:"users"`
	Communities []*Community `json:"communities"`
	Events      []*Event     `json:"events"`
}

func (s *Snapshot) MarshalJSON() ([]byte, error) {
	out := snapshotJSON{
		Users:       make([]storedUser, 0, len(s.Users)),
		Communities: s.Communities,
		Events:      s.Events,
	}
	for _, u := range s.Users {
		out.Users = append(out.Users, storedUser{User: u, PasswordHash: u.PasswordHash})
	}
	if out.Communities == nil {
		out.Communities = []*Community{}
	}
	if out.Events == nil {
		out.Events = []*Event{}
	}
	return json.Marshal(out)
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var in snapshotJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	s.Users = make([]*User, 0, len(in.Users))
	for _, su := range in.Users {
		if su.User == nil {
			continue
		}
		su.User.PasswordHash = su.PasswordHash
		s.Users = append(s.Users, su.User)
	}
	s.Communities = in.Communities
	s.Events = in.Events
	return nil
}
