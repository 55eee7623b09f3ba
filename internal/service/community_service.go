package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"Lee_Meetup/internal/model"
	"Lee_Meetup/internal/pkg"
	"Lee_Meetup/internal/repository/memory"
)

const (
	msgRequiredFields   = "Please provide all required fields"
	msgAuthRequired     = "Authentication required"
	msgCommunityMissing = "Community not found"
	msgAlreadyMember    = "Already a member of this community"
	msgNotMember        = "You are not a member of this community"
)

type CommunityFields struct {
	Name        string
	Description string
	Category    string
	Location    string
}

// CommunityService 社区成员关系账本
type CommunityService struct {
	repo  *memory.CommunityRepository
	hooks CommitHook
	now   func() time.Time
}

func NewCommunityService(repo *memory.CommunityRepository, hooks CommitHook) *CommunityService {
	if hooks == nil {
		hooks = Hooks{}
	}
	return &CommunityService{repo: repo, hooks: hooks, now: time.Now}
}

// Create 创建者即组织者，并且是第一个成员
func (s *CommunityService) Create(ctx context.Context, userID string, f CommunityFields) (c *model.Community, err error) {
	defer func() { observe("membership", "create", err) }()

	if userID == "" {
		return nil, pkg.Auth(msgAuthRequired)
	}
	if blank(f.Name) || blank(f.Description) || blank(f.Category) || blank(f.Location) {
		return nil, pkg.Validation(msgRequiredFields)
	}

	c = &model.Community{
		ID:          uuid.NewString(),
		Name:        f.Name,
		Description: f.Description,
		Category:    f.Category,
		Location:    f.Location,
		OrganizerID: userID,
		Members:     []string{userID},
		CreatedAt:   s.now().UTC(),
	}
	if err = s.repo.Create(c); err != nil {
		return nil, err
	}
	return c.Clone(), s.commit(ctx, CommunityCreated, c.ID, userID)
}

// Join 重复加入返回 Conflict，而不是静默成功
func (s *CommunityService) Join(ctx context.Context, userID, communityID string) (c *model.Community, err error) {
	defer func() { observe("membership", "join", err) }()

	if userID == "" {
		return nil, pkg.Auth(msgAuthRequired)
	}
	c, err = s.repo.Update(communityID, func(cur *model.Community) (*model.Community, error) {
		if cur.HasMember(userID) {
			return nil, pkg.Conflict(msgAlreadyMember)
		}
		return cur.WithMember(userID), nil
	})
	if err != nil {
		return nil, notFoundAs(err, msgCommunityMissing)
	}
	return c, s.commit(ctx, CommunityJoined, communityID, userID)
}

func (s *CommunityService) Leave(ctx context.Context, userID, communityID string) (c *model.Community, err error) {
	defer func() { observe("membership", "leave", err) }()

	if userID == "" {
		return nil, pkg.Auth(msgAuthRequired)
	}
	c, err = s.repo.Update(communityID, func(cur *model.Community) (*model.Community, error) {
		if !cur.HasMember(userID) {
			return nil, pkg.Conflict(msgNotMember)
		}
		return cur.WithoutMember(userID), nil
	})
	if err != nil {
		return nil, notFoundAs(err, msgCommunityMissing)
	}
	return c, s.commit(ctx, CommunityLeft, communityID, userID)
}

func (s *CommunityService) Get(id string) (*model.Community, error) {
	c, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFoundAs(err, msgCommunityMissing)
	}
	return c, nil
}

func (s *CommunityService) List() []*model.Community {
	return s.repo.List()
}

func (s *CommunityService) commit(ctx context.Context, typ ChangeType, id, userID string) error {
	if err := s.hooks.AfterCommit(ctx, Change{Type: typ, AggregateID: id, UserID: userID, At: s.now().UTC()}); err != nil {
		return pkg.Persistence(err)
	}
	return nil
}

func notFoundAs(err error, msg string) error {
	if errors.Is(err, memory.ErrNotFound) {
		return pkg.NotFound(msg)
	}
	return err
}
