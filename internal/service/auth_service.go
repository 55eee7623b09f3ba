package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"Lee_Meetup/internal/model"
	"Lee_Meetup/internal/pkg"
	"Lee_Meetup/internal/repository/memory"
)

const (
	msgRegisterRequired = "Name, email, and password are required"
	msgLoginRequired    = "Email and password are required"
	msgEmailTaken       = "Email already registered"
	msgBadCredentials   = "Invalid email or password"
	msgBadToken         = "Invalid or expired token"
	msgUserNotFound     = "User not found"
)

// AuthService 注册、登录与令牌校验；令牌校验不访问用户存储
type AuthService struct {
	users  *memory.UserRepository
	tokens *pkg.TokenManager
	hooks  CommitHook
	mailer pkg.Mailer
	cost   int
	log    zerolog.Logger
	now    func() time.Time

	// 未知邮箱时也做一次哈希比较，两种失败耗时接近
	dummyHash []byte
}

func NewAuthService(users *memory.UserRepository, tokens *pkg.TokenManager, hooks CommitHook, mailer pkg.Mailer, cost int, logger zerolog.Logger) *AuthService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if mailer == nil {
		mailer = pkg.NoopMailer{}
	}
	if hooks == nil {
		hooks = Hooks{}
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	return &AuthService{
		users:     users,
		tokens:    tokens,
		hooks:     hooks,
		mailer:    mailer,
		cost:      cost,
		log:       logger,
		now:       time.Now,
		dummyHash: dummy,
	}
}

// Register 落盘失败时返回 token、用户和 Persistence 错误，内存中的用户保留
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, *model.User, error) {
	if blank(name) || blank(email) || blank(password) {
		return "", nil, pkg.Validation(msgRegisterRequired)
	}

	// 先查一次，避免对重复邮箱做昂贵的哈希
	if _, err := s.users.FindByEmail(email); err == nil {
		return "", nil, pkg.Conflict(msgEmailTaken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", nil, err
	}

	user := model.NewUser(uuid.NewString(), name, email, string(hash), s.now().UTC())
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, memory.ErrDuplicate) {
			return "", nil, pkg.Conflict(msgEmailTaken)
		}
		return "", nil, err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", nil, err
	}

	s.sendWelcome(user)

	if err := s.hooks.AfterCommit(ctx, Change{Type: UserRegistered, AggregateID: user.ID, UserID: user.ID, At: user.CreatedAt}); err != nil {
		return token, user, pkg.Persistence(err)
	}
	return token, user, nil
}

func (s *AuthService) Login(_ context.Context, email, password string) (string, *model.User, error) {
	if blank(email) || blank(password) {
		return "", nil, pkg.Validation(msgLoginRequired)
	}

	user, err := s.users.FindByEmail(email)
	if err != nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return "", nil, pkg.Auth(msgBadCredentials)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, pkg.Auth(msgBadCredentials)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Verify 返回令牌绑定的用户 id
func (s *AuthService) Verify(token string) (string, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		s.log.Debug().Err(err).Msg("token rejected")
		return "", pkg.Auth(msgBadToken)
	}
	return claims.UserID, nil
}

func (s *AuthService) Profile(_ context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, pkg.NotFound(msgUserNotFound)
	}
	return user, nil
}

// sendWelcome 异步发送，失败只记日志
func (s *AuthService) sendWelcome(user *model.User) {
	to, name := user.Email, user.Name
	go func() {
		if err := s.mailer.Send(to, "Welcome", pkg.WelcomeHTML(name)); err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("welcome mail failed")
		}
	}()
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
