package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"Lee_Meetup/internal/metrics"
	"Lee_Meetup/internal/model"
)

type ChangeType string

const (
	UserRegistered     ChangeType = "user.registered"
	CommunityCreated   ChangeType = "community.created"
	CommunityJoined    ChangeType = "community.joined"
	CommunityLeft      ChangeType = "community.left"
	EventCreated       ChangeType = "event.created"
	EventRSVPed        ChangeType = "event.rsvp"
	EventRSVPCancelled ChangeType = "event.rsvp_cancelled"
)

// Change 一次已提交的状态变更
type Change struct {
	Type        ChangeType `json:"type"`
	AggregateID string     `json:"aggregateId"`
	UserID      string     `json:"userId"`
	At          time.Time  `json:"at"`
}

// CommitHook 内存状态提交之后调用；返回的错误不会回滚内存状态
type CommitHook interface {
	AfterCommit(ctx context.Context, ch Change) error
}

// Hooks 按顺序执行全部钩子，错误合并返回
type Hooks []CommitHook

func (h Hooks) AfterCommit(ctx context.Context, ch Change) error {
	var errs []error
	for _, hook := range h {
		if err := hook.AfterCommit(ctx, ch); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Store 持久化端口：整体读取与整体覆盖写入
type Store interface {
	Load(ctx context.Context) (*model.Snapshot, error)
	Save(ctx context.Context, snap *model.Snapshot) error
}

type SnapshotSource interface {
	Snapshot() *model.Snapshot
}

// Persister 每次提交后写一次完整快照。
// 快照在锁内生成，所以最后一次写入一定包含所有已提交的变更。
type Persister struct {
	mu     sync.Mutex
	store  Store
	source SnapshotSource
	log    zerolog.Logger
}

func NewPersister(store Store, source SnapshotSource, logger zerolog.Logger) *Persister {
	return &Persister{store: store, source: source, log: logger}
}

func (p *Persister) AfterCommit(ctx context.Context, ch Change) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	// 客户端断开不应打断落盘
	err := p.store.Save(context.WithoutCancel(ctx), p.source.Snapshot())
	metrics.PersistenceDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PersistenceFailures.Inc()
		p.log.Error().Err(err).
			Str("change", string(ch.Type)).
			Str("aggregate_id", ch.AggregateID).
			Msg("snapshot save failed, in-memory state kept")
		return err
	}
	return nil
}
