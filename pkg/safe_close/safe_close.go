// Package safe_close 协调多个后台协程的统一关闭
package safe_close

import "sync"

// SafeClose 关闭信号只发送一次，WaitClosed 等待所有附加的协程退出
type SafeClose struct {
	once    sync.Once
	closeCh chan struct{}
	wg      sync.WaitGroup

	mu  sync.Mutex
	err error
}

// NewSafeClose 创建 SafeClose 实例
func NewSafeClose() *SafeClose {
	return &SafeClose{closeCh: make(chan struct{})}
}

// Attach runs fn in its own goroutine; fn must call done before returning
// Attach 在独立协程中运行 fn，fn 返回前必须调用 done
func (s *SafeClose) Attach(fn func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	var doneOnce sync.Once
	done := func() { doneOnce.Do(s.wg.Done) }
	go fn(done, s.closeCh)
}

// SendCloseSignal 发送关闭信号，只有第一次调用的 err 会被保留
func (s *SafeClose) SendCloseSignal(err error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.closeCh)
	})
}

// Done 关闭信号通道
func (s *SafeClose) Done() <-chan struct{} {
	return s.closeCh
}

// WaitClosed 等待所有附加的协程退出，返回触发关闭的错误
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
