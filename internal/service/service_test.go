package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"Lee_Meetup/internal/model"
	"Lee_Meetup/internal/pkg"
	"Lee_Meetup/internal/repository/memory"
)

// memStore 记录最后一次保存的快照，可注入失败
type memStore struct {
	mu    sync.Mutex
	last  *model.Snapshot
	saves int
	err   error
}

func (m *memStore) Load(context.Context) (*model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		return &model.Snapshot{}, nil
	}
	return m.last, nil
}

func (m *memStore) Save(_ context.Context, snap *model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.last = snap
	m.saves++
	return nil
}

func (m *memStore) failWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

type fixture struct {
	repos       *memory.Repositories
	store       *memStore
	auth        *AuthService
	communities *CommunityService
	events      *EventService
	tokens      *pkg.TokenManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := memory.NewRepositories()
	store := &memStore{}
	tokens, err := pkg.NewTokenManager("test-secret", pkg.TokenTTL)
	require.NoError(t, err)

	hooks := Hooks{NewPersister(store, repos, zerolog.Nop())}
	return &fixture{
		repos:       repos,
		store:       store,
		tokens:      tokens,
		auth:        NewAuthService(repos.Users, tokens, hooks, pkg.NoopMailer{}, bcrypt.MinCost, zerolog.Nop()),
		communities: NewCommunityService(repos.Communities, hooks),
		events:      NewEventService(repos.Events, hooks),
	}
}

func (f *fixture) register(t *testing.T, name string) *model.User {
	t.Helper()
	_, u, err := f.auth.Register(context.Background(), name, name+"@example.com", "pw-"+name)
	require.NoError(t, err)
	return u
}

var errDisk = errors.New("disk full")
