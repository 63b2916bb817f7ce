package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/events"
)

const publishTimeout = 5 * time.Second

// Pool публикует события задач в фоне, чтобы запросы не ждали брокера
type Pool struct {
	publisher events.Publisher
	logger    *zap.Logger
	count     int
	queue     chan events.TaskEvent
	wg        sync.WaitGroup
	stop      chan struct{}
	stopOnce  sync.Once

	// mu делает проверку stopped и отправку в queue одним шагом относительно Stop
	mu      sync.RWMutex
	stopped bool
	dropped atomic.Int64
}

func NewPool(publisher events.Publisher, logger *zap.Logger, count, buffer int) *Pool {
	if count < 1 {
		count = 1
	}
	if buffer < 1 {
		buffer = 1
	}
	return &Pool{
		publisher: publisher,
		logger:    logger,
		count:     count,
		queue:     make(chan events.TaskEvent, buffer),
		stop:      make(chan struct{}),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.logger.Info("Starting event worker pool", zap.Int("workers", p.count))

	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop ждет, пока воркеры опубликуют все, что уже в очереди
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("Stopping event worker pool...")
		p.mu.Lock()
		p.stopped = true
		close(p.stop)
		p.mu.Unlock()

		p.wg.Wait()

		// остатки бывают, если Start не вызывали или ctx воркеров уже отменен
		for drained := false; !drained; {
			select {
			case e := <-p.queue:
				p.drop("pool stopped", e)
			default:
				drained = true
			}
		}
		p.logger.Info("Event worker pool stopped")
	})
}

// Emit never blocks: when the buffer is full or the pool is stopped the
// event is dropped.
func (p *Pool) Emit(e events.TaskEvent) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		p.drop("pool stopped", e)
		return
	}

	select {
	case p.queue <- e:
	default:
		p.drop("buffer full", e)
	}
}

// Dropped reports how many events were never handed to the publisher.
func (p *Pool) Dropped() int64 {
	return p.dropped.Load()
}

func (p *Pool) drop(reason string, e events.TaskEvent) {
	p.dropped.Add(1)
	p.logger.Warn("event dropped, "+reason, zap.String("type", e.Type), zap.Int64("task_id", e.TaskID))
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stop:
			p.drain(id)
			return
		case <-ctx.Done():
			return
		case e := <-p.queue:
			p.publish(ctx, id, e)
		}
	}
}

func (p *Pool) drain(id int) {
	for {
		select {
		case e := <-p.queue:
			p.publish(context.Background(), id, e)
		default:
			return
		}
	}
}

func (p *Pool) publish(ctx context.Context, workerID int, e events.TaskEvent) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.publisher.Publish(ctx, e); err != nil {
		p.logger.Error("publish event failed",
			zap.Int("worker", workerID),
			zap.String("type", e.Type),
			zap.Int64("task_id", e.TaskID),
			zap.Error(err),
		)
		return
	}
	p.logger.Debug("event published",
		zap.Int("worker", workerID),
		zap.String("type", e.Type),
		zap.Int64("task_id", e.TaskID),
	)
}
