// Package writequeue serializes writes per owner
// Package writequeue 按所有者串行化写操作
// SQLite allows a single writer; funnelling one owner's writes through one goroutine avoids "database is locked"
// SQLite 只允许单个写者，同一所有者的写操作经由同一个 goroutine 执行可避免 "database is locked"
package writequeue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// 错误定义
var (
	// ErrWriteQueueFull 所有者写队列已满
	ErrWriteQueueFull = errors.New("write queue is full")
	// ErrWriteQueueClosed 写队列管理器已关闭
	ErrWriteQueueClosed = errors.New("write queue is closed")
	// ErrWriteTimeout 写操作超时
	ErrWriteTimeout = errors.New("write operation timeout")
)

// Config write queue configuration
// Config 写队列配置
type Config struct {
	// QueueCapacity 每个所有者的队列容量，默认 100
	QueueCapacity int
	// WriteTimeout 等待单个写操作完成的最长时间，默认 30 秒
	WriteTimeout time.Duration
	// IdleTimeout 空闲队列回收时间，默认 10 分钟
	IdleTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		QueueCapacity: 100,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   10 * time.Minute,
	}
}

type writeOp struct {
	ctx    context.Context
	fn     func() error
	result chan error
}

// ownerQueue 单个所有者的写队列
type ownerQueue struct {
	owner    string
	ch       chan writeOp
	stopCh   chan struct{}
	stopOnce sync.Once
	lastUsed atomic.Int64
	wg       sync.WaitGroup
}

func (q *ownerQueue) stop() {
	q.stopOnce.Do(func() { close(q.stopCh) })
}

func (q *ownerQueue) touch() {
	q.lastUsed.Store(time.Now().UnixNano())
}

// Manager 管理所有所有者的写队列
type Manager struct {
	config Config
	logger *zap.Logger

	mu     sync.Mutex
	queues map[string]*ownerQueue
	closed bool

	ctx       context.Context
	cancel    context.CancelFunc
	cleanupWg sync.WaitGroup
}

// New creates a manager; nil cfg uses DefaultConfig, nil logger a nop logger
// New 创建写队列管理器；cfg 为 nil 时使用默认配置，logger 为 nil 时使用 nop logger
func New(cfg *Config, logger *zap.Logger) *Manager {
	c := DefaultConfig()
	if cfg != nil {
		if cfg.QueueCapacity > 0 {
			c.QueueCapacity = cfg.QueueCapacity
		}
		if cfg.WriteTimeout > 0 {
			c.WriteTimeout = cfg.WriteTimeout
		}
		if cfg.IdleTimeout > 0 {
			c.IdleTimeout = cfg.IdleTimeout
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		config: c,
		logger: logger,
		queues: make(map[string]*ownerQueue),
		ctx:    ctx,
		cancel: cancel,
	}

	m.cleanupWg.Add(1)
	go m.cleanupLoop()

	m.logger.Info("write queue manager started",
		zap.Int("queueCapacity", c.QueueCapacity),
		zap.Duration("writeTimeout", c.WriteTimeout),
		zap.Duration("idleTimeout", c.IdleTimeout))
	return m
}

// Execute runs fn on the owner's queue and waits for its result; writes of one owner run in FIFO order
// Execute 在所有者的队列中执行 fn 并等待结果；同一所有者的写操作按 FIFO 顺序执行
func (m *Manager) Execute(ctx context.Context, owner string, fn func() error) error {
	q, err := m.queue(owner)
	if err != nil {
		return err
	}

	op := writeOp{ctx: ctx, fn: fn, result: make(chan error, 1)}
	select {
	case q.ch <- op:
	default:
		return ErrWriteQueueFull
	}

	timeout := m.config.WriteTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-op.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrWriteTimeout
	case <-m.ctx.Done():
		return ErrWriteQueueClosed
	}
}

// queue 获取或懒创建所有者的队列
func (m *Manager) queue(owner string) (*ownerQueue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrWriteQueueClosed
	}
	if q, ok := m.queues[owner]; ok {
		q.touch()
		return q, nil
	}

	q := &ownerQueue{
		owner:  owner,
		ch:     make(chan writeOp, m.config.QueueCapacity),
		stopCh: make(chan struct{}),
	}
	q.touch()
	m.queues[owner] = q

	q.wg.Add(1)
	go m.worker(q)

	m.logger.Debug("created write queue", zap.String("owner", owner))
	return q, nil
}

func (m *Manager) worker(q *ownerQueue) {
	defer q.wg.Done()
	for {
		select {
		case op := <-q.ch:
			m.run(q, op)
		case <-q.stopCh:
			m.drain(q)
			return
		case <-m.ctx.Done():
			m.drain(q)
			return
		}
	}
}

func (m *Manager) run(q *ownerQueue, op writeOp) {
	q.touch()
	if err := op.ctx.Err(); err != nil {
		op.result <- err
		return
	}

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("write queue op panic", zap.String("owner", q.owner), zap.Any("panic", r))
				err = errors.New("write operation panicked")
			}
		}()
		err = op.fn()
	}()
	op.result <- err
}

func (m *Manager) drain(q *ownerQueue) {
	for {
		select {
		case op := <-q.ch:
			m.run(q, op)
		default:
			return
		}
	}
}

func (m *Manager) cleanupLoop() {
	defer m.cleanupWg.Done()
	ticker := time.NewTicker(m.config.IdleTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

// cleanup 回收空闲且为空的队列
func (m *Manager) cleanup() {
	threshold := time.Now().Add(-m.config.IdleTimeout).UnixNano()

	m.mu.Lock()
	defer m.mu.Unlock()
	for owner, q := range m.queues {
		if q.lastUsed.Load() < threshold && len(q.ch) == 0 {
			delete(m.queues, owner)
			q.stop()
			m.logger.Debug("cleaned up idle write queue", zap.String("owner", owner))
		}
	}
}

// Shutdown stops accepting writes and waits until queued writes finish or ctx expires
// Shutdown 停止接收写操作，等待已排队的写操作完成或 ctx 超时
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	queues := make([]*ownerQueue, 0, len(m.queues))
	for _, q := range m.queues {
		queues = append(queues, q)
	}
	m.mu.Unlock()

	m.logger.Info("write queue manager shutting down")

	done := make(chan struct{})
	go func() {
		for _, q := range queues {
			q.stop()
		}
		for _, q := range queues {
			q.wg.Wait()
		}
		close(done)
	}()

	select {
	case <-done:
		m.cancel()
		m.cleanupWg.Wait()
		m.logger.Info("write queue manager shutdown completed")
		return nil
	case <-ctx.Done():
		m.logger.Warn("write queue manager shutdown timeout, forcing cancellation")
		m.cancel()
		return ctx.Err()
	}
}

// QueueCount 返回当前活跃队列数量
func (m *Manager) QueueCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues)
}

// IsClosed 返回管理器是否已关闭
func (m *Manager) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
