package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"Lee_Meetup/internal/metrics"
	"Lee_Meetup/internal/pkg"
)

// Sender 消息投递端口，生产环境是 Kafka
type Sender interface {
	Send(ctx context.Context, msgs ...pkg.Message) error
}

// LogSender 没有配置 broker 时只打日志
type LogSender struct {
	Log zerolog.Logger
}

func (s LogSender) Send(_ context.Context, msgs ...pkg.Message) error {
	for _, m := range msgs {
		s.Log.Info().Str("key", m.Key).RawJSON("payload", m.Value).Msg("outbox send")
	}
	return nil
}

const (
	defaultBatchSize = 200
	shutdownFlush    = 5 * time.Second
)

// Publisher 提交钩子只负责入队，后台 Run 循环批量投递，失败的批次留到下一轮重试
type Publisher struct {
	queue      chan Change
	pending    []Change // 只在 Run 协程里访问
	maxPending int
	sender     Sender
	batchSize  int
	interval   time.Duration
	log        zerolog.Logger
}

func NewPublisher(sender Sender, bufferSize int, interval time.Duration, logger zerolog.Logger) *Publisher {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Publisher{
		queue:      make(chan Change, bufferSize),
		maxPending: bufferSize,
		sender:     sender,
		batchSize:  defaultBatchSize,
		interval:   interval,
		log:        logger,
	}
}

// AfterCommit 不阻塞，队列满时丢弃并计数
func (p *Publisher) AfterCommit(_ context.Context, ch Change) error {
	select {
	case p.queue <- ch:
	default:
		metrics.OutboxDropped.WithLabelValues("queue_full").Inc()
		p.log.Warn().Str("change", string(ch.Type)).Str("aggregate_id", ch.AggregateID).Msg("outbox queue full, event dropped")
	}
	return nil
}

// Run outbox 启动器，ctx 结束时再尽力投递一次
func (p *Publisher) Run(ctx context.Context) error {
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), shutdownFlush)
			for p.drainOnce(flushCtx) > 0 {
			}
			cancel()
			return nil
		case <-t.C:
			p.drainOnce(ctx)
		}
	}
}

// drainOnce 投递一批，返回成功投递的条数
func (p *Publisher) drainOnce(ctx context.Context) int {
	p.collect()
	if len(p.pending) == 0 {
		return 0
	}

	n := min(len(p.pending), p.batchSize)
	batch := make([]pkg.Message, 0, n)
	for _, ch := range p.pending[:n] {
		value, err := json.Marshal(ch)
		if err != nil {
			// Change 只含基本类型，不会失败
			continue
		}
		batch = append(batch, pkg.Message{Key: ch.AggregateID, Value: value})
	}

	if err := p.sender.Send(ctx, batch...); err != nil {
		p.log.Warn().Err(err).Int("batch", n).Msg("outbox send failed, will retry")
		return 0
	}
	metrics.OutboxPublished.Add(float64(n))
	p.pending = p.pending[n:]
	return n
}

func (p *Publisher) collect() {
	for {
		select {
		case ch := <-p.queue:
			if len(p.pending) >= p.maxPending {
				p.pending = p.pending[1:]
				metrics.OutboxDropped.WithLabelValues("retry_overflow").Inc()
			}
			p.pending = append(p.pending, ch)
		default:
			return
		}
	}
}
