package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/staffing-ats/pkg/logger"
)

// 领域事件类型
const (
	EventSendoutCreated   = "sendout.created"
	EventSendoutUpdated   = "sendout.updated"
	EventSendoutConverted = "sendout.converted"
	EventSendoutDeleted   = "sendout.deleted"
)

// Event 提交后分发的领域事件（至少一次，消费方需幂等）
type Event struct {
	Type      string          `json:"type"`
	SendoutID string          `json:"sendout_id"`
	Payload   json.RawMessage `json:"payload"`
	EnqAt     time.Time       `json:"-"`
}

// EventHandler 事件消费者；返回错误仅记录，不回滚主事务
type EventHandler func(ctx context.Context, evt Event) error

// EventBus 进程内异步事件总线（channel + worker 池）
type EventBus struct {
	ch       chan Event
	mu       sync.RWMutex
	handlers []EventHandler
}

func NewEventBus(queueSize int) *EventBus {
	if queueSize <= 0 {
		queueSize = 10000
	}
	return &EventBus{ch: make(chan Event, queueSize)}
}

// Subscribe 注册消费者；须在 Start 前调用
func (b *EventBus) Subscribe(h EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Start 启动 worker，返回停止函数
func (b *EventBus) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 2
	}
	stopCh := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case evt := <-b.ch:
					b.dispatch(evt)
				case <-stopCh:
					return
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		close(stopCh)
		// 等待队列自然排空一小段时间
		timeout := time.After(2 * time.Second)
		for {
			select {
			case <-timeout:
				return nil
			default:
				if len(b.ch) == 0 {
					return nil
				}
				time.Sleep(50 * time.Millisecond)
			}
		}
	}
}

// Fire 非阻塞投递；队列满则丢弃并告警
func (b *EventBus) Fire(evt Event) {
	evt.EnqAt = time.Now()
	select {
	case b.ch <- evt:
	default:
		logger.Warn("event bus queue full, drop event",
			zap.String("type", evt.Type), zap.String("sendout", evt.SendoutID))
	}
}

func (b *EventBus) dispatch(evt Event) {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, h := range handlers {
		if err := h(ctx, evt); err != nil {
			logger.Warn("event handler failed",
				zap.String("type", evt.Type), zap.String("sendout", evt.SendoutID), zap.Error(err))
		}
	}
}

// QueueLen 当前队列长度（采样值）
func (b *EventBus) QueueLen() int { return len(b.ch) }
