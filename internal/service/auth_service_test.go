package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"Lee_Meetup/internal/pkg"
	"Lee_Meetup/internal/repository/memory"
)

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, in := range [][3]string{
		{"", "a@example.com", "pw"},
		{"Ann", "", "pw"},
		{"Ann", "a@example.com", ""},
		{"  ", "a@example.com", "pw"},
	} {
		_, _, err := f.auth.Register(ctx, in[0], in[1], in[2])
		assert.ErrorIs(t, err, pkg.ErrValidation, in)
	}
	assert.Equal(t, 0, f.repos.Users.Count())
}

func TestRegisterIssuesTokenAndPersists(t *testing.T) {
	f := newFixture(t)
	token, u, err := f.auth.Register(context.Background(), "Ann", "ann@example.com", "secret")
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Empty(t, u.Bio)
	assert.Empty(t, u.Interests)
	assert.NotEqual(t, "secret", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret")))

	id, err := f.auth.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	require.NotNil(t, f.store.last)
	assert.Len(t, f.store.last.Users, 1)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ann")
	_, _, err := f.auth.Register(context.Background(), "Other", "ann@example.com", "pw")
	assert.ErrorIs(t, err, pkg.ErrConflict)
	assert.Equal(t, "Email already registered", pkg.Message(err))
}

func TestRegisterConcurrentSameEmail(t *testing.T) {
	f := newFixture(t)
	var wg sync.WaitGroup
	var ok, conflicts atomic.Int32
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := f.auth.Register(context.Background(), fmt.Sprintf("n%d", i), "race@example.com", "pw")
			switch {
			case err == nil:
				ok.Add(1)
			case pkg.KindOf(err) == pkg.KindConflict:
				conflicts.Add(1)
			}
		}(i)
	}
	wg.Wait()
	assert.EqualValues(t, 1, ok.Load())
	assert.EqualValues(t, 15, conflicts.Load())
}

func TestLoginSameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ann")
	ctx := context.Background()

	_, _, wrongPw := f.auth.Login(ctx, "ann@example.com", "nope")
	_, _, unknown := f.auth.Login(ctx, "ghost@example.com", "nope")

	require.ErrorIs(t, wrongPw, pkg.ErrAuth)
	require.ErrorIs(t, unknown, pkg.ErrAuth)
	assert.Equal(t, wrongPw.Error(), unknown.Error())
	assert.Equal(t, pkg.KindOf(wrongPw).Status(), pkg.KindOf(unknown).Status())

	_, _, err := f.auth.Login(ctx, "", "x")
	assert.ErrorIs(t, err, pkg.ErrValidation)
}

func TestLoginIssuesFreshToken(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "ann")
	token, got, err := f.auth.Login(context.Background(), "ann@example.com", "pw-ann")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	id, err := f.auth.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)
}

func TestVerifyNeverCrossesUsers(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "a")
	b := f.register(t, "b")

	tokenA, _, err := f.auth.Login(context.Background(), "a@example.com", "pw-a")
	require.NoError(t, err)
	id, err := f.auth.Verify(tokenA)
	require.NoError(t, err)
	assert.Equal(t, a.ID, id)
	assert.NotEqual(t, b.ID, id)
}

func TestVerifyIsStateless(t *testing.T) {
	// 用户存储为空也能校验通过
	f := newFixture(t)
	token, err := f.tokens.Generate("someone")
	require.NoError(t, err)
	id, err := f.auth.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "someone", id)
}

func TestVerifyRejectsExpiredAndGarbage(t *testing.T) {
	f := newFixture(t)
	old := f.tokens.WithClock(func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) })
	token, err := old.Generate("u1")
	require.NoError(t, err)

	_, err = f.auth.Verify(token)
	assert.ErrorIs(t, err, pkg.ErrAuth)

	_, err = f.auth.Verify("garbage")
	assert.ErrorIs(t, err, pkg.ErrAuth)
}

func TestRegisterPersistenceFailureKeepsUser(t *testing.T) {
	f := newFixture(t)
	f.store.failWith(errDisk)

	token, u, err := f.auth.Register(context.Background(), "Ann", "ann@example.com", "pw")
	require.ErrorIs(t, err, pkg.ErrPersistence)
	assert.ErrorIs(t, err, errDisk)
	assert.NotEmpty(t, token)
	require.NotNil(t, u)

	_, err = f.repos.Users.FindByEmail("ann@example.com")
	assert.NoError(t, err)
}

type chanMailer chan string

func (c chanMailer) Send(to, _, _ string) error {
	c <- to
	return nil
}

func TestRegisterSendsWelcomeMail(t *testing.T) {
	repos := memory.NewRepositories()
	tokens, err := pkg.NewTokenManager("s", pkg.TokenTTL)
	require.NoError(t, err)
	mails := make(chanMailer, 1)
	auth := NewAuthService(repos.Users, tokens, nil, mails, bcrypt.MinCost, zerolog.Nop())

	_, _, err = auth.Register(context.Background(), "Ann", "ann@example.com", "pw")
	require.NoError(t, err)

	select {
	case to := <-mails:
		assert.Equal(t, "ann@example.com", to)
	case <-time.After(2 * time.Second):
		t.Fatal("welcome mail not sent")
	}
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "ann")
	got, err := f.auth.Profile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", got.Email)

	_, err = f.auth.Profile(context.Background(), "missing")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}
