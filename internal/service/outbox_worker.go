package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/d60-Lab/staffing-ats/internal/repository"
)

// OutboxWorker 轮询 domain_outbox 的 pending 行，分发到事件总线后标记 done。
// 事件行与主事务同写，worker 在提交后才可见，保证至少一次分发。
type OutboxWorker struct {
	outbox       repository.OutboxRepository
	bus          *EventBus
	claimLimit   int
	pollInterval time.Duration
	workers      int
	metricsCh    chan time.Duration // outbox 写入 -> 分发完成的延迟
}

func NewOutboxWorker(outbox repository.OutboxRepository, bus *EventBus, workers, claimLimit int, pollInterval time.Duration) *OutboxWorker {
	if workers <= 0 {
		workers = 2
	}
	if claimLimit <= 0 {
		claimLimit = 64
	}
	if pollInterval <= 0 {
		pollInterval = 200 * time.Millisecond
	}
	return &OutboxWorker{
		outbox:       outbox,
		bus:          bus,
		workers:      workers,
		claimLimit:   claimLimit,
		pollInterval: pollInterval,
		metricsCh:    make(chan time.Duration, 65536),
	}
}

func (w *OutboxWorker) Metrics() <-chan time.Duration { return w.metricsCh }

// Start 启动轮询 worker，返回停止函数
func (w *OutboxWorker) Start() func(context.Context) error {
	stop := make(chan struct{})
	for i := 0; i < w.workers; i++ {
		go w.loop(stop)
	}
	return func(ctx context.Context) error { close(stop); return nil }
}

func (w *OutboxWorker) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			_ = w.ProcessOnce(context.Background())
		}
	}
}

// ProcessOnce 认领并分发一批事件
func (w *OutboxWorker) ProcessOnce(ctx context.Context) error {
	batch, err := w.outbox.ClaimPending(ctx, w.claimLimit)
	if err != nil {
		return err
	}
	for _, row := range batch {
		w.bus.Fire(Event{
			Type:      row.EventType,
			SendoutID: row.SendoutID,
			Payload:   json.RawMessage(row.Payload),
		})
		if err := w.outbox.MarkDone(ctx, row.ID); err != nil {
			_ = w.outbox.MarkFailed(ctx, row.ID)
			continue
		}
		if !row.CreatedAt.IsZero() {
			select {
			case w.metricsCh <- time.Since(row.CreatedAt):
			default:
			}
		}
	}
	return nil
}
